package stats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnolang/recast/internal/props"
)

// WriteTSV writes one "count<TAB>label" line per label, sorted by label.
func WriteTSV(w io.Writer, c Counts) error {
	bw := bufio.NewWriter(w)
	for _, label := range c.Labels() {
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", c[label], label); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteProperties writes the accessor table as "key => name" lines,
// sorted by key.
func WriteProperties(w io.Writer, table *props.Table) error {
	bw := bufio.NewWriter(w)
	for _, e := range table.Entries() {
		if _, err := fmt.Fprintf(bw, "%s => %s\n", e.Key, e.Name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Report renders c as "label;count" lines sorted by label, suitable for
// pasting into a spreadsheet.
func Report(c Counts) string {
	var sb strings.Builder
	for _, label := range c.Labels() {
		sb.WriteString(label)
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(c[label]))
		sb.WriteByte('\n')
	}
	return sb.String()
}
