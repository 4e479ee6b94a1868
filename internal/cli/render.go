package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/canonical/sqlmagic"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

// render writes a result. Array results are written as a table and record
// results as indented JSON.
func render(w io.Writer, res *sqlmagic.Result) error {
	if res == nil {
		return nil
	}
	if res.Set != nil {
		if res.Set.Shape == sqlmagic.Record {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res.Set.Records); err != nil {
				return err
			}
		} else {
			renderTable(w, res.Set.Rows)
		}
	}
	if res.StatementID != "" {
		fmt.Fprintf(w, "Statement ID: %s\n", res.StatementID)
	}
	if len(res.Values) > 0 {
		fmt.Fprintf(w, "Values: %s\n", formatVar(res.Values))
	}
	if res.Set == nil && res.RowsAffected >= 0 {
		fmt.Fprintf(w, "(%d rows affected)\n", res.RowsAffected)
	}
	return nil
}

// renderTable writes array shaped rows, the first of which is the header.
func renderTable(w io.Writer, rows [][]any) {
	if len(rows) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row(rows[0]))
	for _, r := range rows[1:] {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows)-1)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("%x", v)
	}
	return fmt.Sprint(v)
}

// printStatus writes the status line, green on success, yellow when no
// rows were found and red on failure.
func printStatus(w io.Writer, st sqlmagic.Status) {
	c := okColor
	switch {
	case st.Failed():
		c = failColor
	case st.Code > 0:
		c = warnColor
	}
	c.Fprintln(w, st.String())
}
