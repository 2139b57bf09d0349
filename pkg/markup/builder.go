package markup

import (
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"
	"github.com/valyala/quicktemplate"
)

// Safe is markup that must not be escaped.
type Safe string

// Builder accumulates markup, escaping untrusted values.
// A Builder is not safe for concurrent use.
type Builder struct {
	buf *bytebufferpool.ByteBuffer
	qw  *quicktemplate.Writer
}

// NewBuilder returns a Builder backed by a pooled buffer. Call Release when done.
func NewBuilder() *Builder {
	buf := bytebufferpool.Get()
	return &Builder{
		buf: buf,
		qw:  quicktemplate.AcquireWriter(buf),
	}
}

// Raw writes s unescaped.
func (b *Builder) Raw(s string) *Builder {
	b.qw.N().S(s)
	return b
}

// Rawf writes formatted markup unescaped.
func (b *Builder) Rawf(format string, args ...any) *Builder {
	return b.Raw(fmt.Sprintf(format, args...))
}

// Text writes s HTML-escaped.
func (b *Builder) Text(s string) *Builder {
	// quicktemplate leaves backticks alone; they are escaped here as well.
	for i, part := range strings.Split(s, "`") {
		if i > 0 {
			b.qw.N().S("&#96;")
		}
		b.qw.E().S(part)
	}
	return b
}

// Textf writes formatted text HTML-escaped.
func (b *Builder) Textf(format string, args ...any) *Builder {
	return b.Text(fmt.Sprintf(format, args...))
}

// Value writes v formatted with %v, HTML-escaped.
func (b *Builder) Value(v any) *Builder {
	switch val := v.(type) {
	case Safe:
		return b.Raw(string(val))
	case int:
		b.qw.N().D(val)
		return b
	case string:
		return b.Text(val)
	}
	return b.Text(fmt.Sprint(v))
}

// Attr writes ` name="value"` with the value escaped.
func (b *Builder) Attr(name, value string) *Builder {
	b.qw.N().S(" ")
	b.qw.N().S(name)
	b.qw.N().S(`="`)
	b.Text(value)
	b.qw.N().S(`"`)
	return b
}

// Printf formats like fmt.Sprintf, escaping every argument except Safe and []Safe
// values. Arguments should be referenced with %s or %v.
func (b *Builder) Printf(format string, args ...any) *Builder {
	escaped := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case Safe:
			escaped[i] = string(v)
		case []Safe:
			var sb strings.Builder
			for _, s := range v {
				sb.WriteString(string(s))
			}
			escaped[i] = sb.String()
		case []string:
			escaped[i] = Escape(strings.Join(v, ""))
		default:
			escaped[i] = Escape(fmt.Sprint(v))
		}
	}
	return b.Raw(fmt.Sprintf(format, escaped...))
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// String returns the accumulated markup.
func (b *Builder) String() string {
	return b.buf.String()
}

// Reset discards the accumulated markup.
func (b *Builder) Reset() {
	b.buf.Reset()
}

// Release returns the buffers to their pools. The Builder must not be used after.
func (b *Builder) Release() {
	if b.qw != nil {
		quicktemplate.ReleaseWriter(b.qw)
		b.qw = nil
	}
	if b.buf != nil {
		bytebufferpool.Put(b.buf)
		b.buf = nil
	}
}

// Each calls fn for every item, writing into b.
func Each[T any](b *Builder, items []T, fn func(b *Builder, i int, item T)) *Builder {
	for i, item := range items {
		fn(b, i, item)
	}
	return b
}

// Escape returns s with & < > " ' and ` replaced by entities.
func Escape(s string) string {
	b := NewBuilder()
	defer b.Release()
	return b.Text(s).String()
}
