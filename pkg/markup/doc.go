// Package markup provides the escaping helper handed to component render functions.
//
// A Builder accumulates markup. Text, Value and Printf arguments are HTML-escaped;
// Raw and Safe values are written as-is:
//
//	b.Raw("<ul>")
//	for _, item := range model.Items {
//	    b.Printf(`<li data-key="%s">%s</li>`, item.ID, item.Name)
//	}
//	b.Raw("</ul>")
//
// Checksum produces values for the reconciler's checksum marker.
package markup
