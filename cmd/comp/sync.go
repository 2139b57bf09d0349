package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/vango-dev/comp/internal/config"
	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/dom"
	"github.com/vango-dev/comp/pkg/metrics"
	"github.com/vango-dev/comp/pkg/reconcile"
)

type syncOptions struct {
	live    string
	target  string
	events  bool
	metrics bool
	quiet   bool
}

func syncCmd(load func() (*config.Config, error)) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize a live HTML file to a target",
		Long: `Synchronize the tree in --live so it matches --target, and print the
resulting markup.

Documents (markup containing <html>) are synchronized as a whole. Anything
else is parsed as a fragment and its first node is synchronized. The pass
statistics are printed to stderr.

Examples:
  comp sync --live page.html --target next.html
  comp sync --live list.html --target list2.html --events
  comp sync --live a.html --target b.html --config comp.yaml --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runSync(cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.live, "live", "l", "", "File holding the live tree")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "File holding the target tree")
	cmd.Flags().BoolVarP(&opts.events, "events", "e", false, "Print mount and dismount events")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print collected metrics")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print statistics")
	_ = cmd.MarkFlagRequired("live")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runSync(cfg *config.Config, opts syncOptions, stdout, stderr io.Writer) error {
	liveMarkup, err := os.ReadFile(opts.live)
	if err != nil {
		return err
	}
	targetMarkup, err := os.ReadFile(opts.target)
	if err != nil {
		return err
	}

	promRegistry := prometheus.NewRegistry()
	collector := metrics.New(
		metrics.WithRegistry(promRegistry),
		metrics.WithNamespace(cfg.Metrics.Namespace),
	)
	r := reconcile.New[*html.Node](dom.HTML{},
		append(cfg.ReconcileOptions(), reconcile.WithObserver(collector))...)

	var events []string
	if opts.events {
		r.Listen(func(e reconcile.Event[*html.Node]) {
			events = append(events, e.Type+" "+describe(e.Target, cfg.Attributes.Key))
		})
	}

	tree, err := parseLive(string(liveMarkup))
	if err != nil {
		return err
	}
	result, err := r.SynchronizeMarkup(tree.live, string(targetMarkup))
	if err != nil {
		return err
	}

	if tree.doc != nil {
		if err := html.Render(stdout, tree.doc); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	} else {
		fmt.Fprintln(stdout, dom.InnerHTML(tree.container))
	}

	if opts.quiet {
		return nil
	}
	printStats(stderr, result.Stats)
	for _, e := range events {
		fmt.Fprintln(stderr, e)
	}
	if opts.metrics {
		return printMetrics(stderr, promRegistry)
	}
	return nil
}

// liveTree is a parsed live input. Exactly one of doc and container is set.
type liveTree struct {
	doc       *html.Node
	container *html.Node
	live      *html.Node
}

func parseLive(markup string) (liveTree, error) {
	if strings.Contains(strings.ToLower(markup), "<html") {
		doc, err := dom.ParseDocument(markup)
		if err != nil {
			return liveTree{}, err
		}
		return liveTree{doc: doc, live: doc}, nil
	}

	nodes, err := dom.ParseFragment(strings.TrimSpace(markup))
	if err != nil {
		return liveTree{}, err
	}
	if len(nodes) == 0 {
		return liveTree{}, errors.New(errors.E202).WithDetail("live file is empty")
	}
	container := dom.Body()
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return liveTree{container: container, live: nodes[0]}, nil
}

func describe(n *html.Node, keyAttr string) string {
	name := (dom.HTML{}).Name(n)
	if key, ok := (dom.HTML{}).Attribute(n, "", keyAttr); ok {
		return fmt.Sprintf("<%s %s=%q>", name, keyAttr, key)
	}
	if id, ok := (dom.HTML{}).Attribute(n, "", "id"); ok {
		return fmt.Sprintf("<%s id=%q>", name, id)
	}
	return "<" + name + ">"
}

func printStats(w io.Writer, s reconcile.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"operation", "count"})
	for _, row := range []struct {
		op string
		n  int
	}{
		{"attributes set", s.AttrsSet},
		{"attributes removed", s.AttrsRemoved},
		{"text writes", s.TextWrites},
		{"inserted", s.Inserted},
		{"moved", s.Moved},
		{"removed", s.Removed},
		{"replaced", s.Replaced},
		{"mounted", s.Mounted},
		{"dismounted", s.Dismounted},
	} {
		table.Append([]string{row.op, humanize.Comma(int64(row.n))})
	}
	table.SetFooter([]string{"mutations", humanize.Comma(int64(s.Mutations()))})
	table.Render()
	fmt.Fprintf(w, "took %s\n", s.Duration)
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := f.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s_count %d", name, m.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
