package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
)

// WriteTab renders the table as aligned text for terminal output.
func WriteTab(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	dashes := make([]string, len(t.Header))
	for i, h := range t.Header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	cells := make([]string, 0, len(t.Header))
	for _, row := range t.Rows {
		cells = cells[:0]
		for _, v := range row {
			cells = append(cells, formatValue(v))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return eris.Wrap(tw.Flush(), "export: flush table")
}
