package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.starlark.net/starlark"
)

// renderRows renders a list of row dicts in the requested format. Column
// order follows the dicts' own insertion order; when statements in one
// script produce different shapes, columns appear in first-seen order.
func renderRows(w io.Writer, rows *starlark.List, format string) error {
	var cols []string
	seen := make(map[string]bool)
	// Non-nil so an empty result set encodes as [] rather than null.
	results := []map[string]any{}

	for i := 0; i < rows.Len(); i++ {
		dict, ok := rows.Index(i).(*starlark.Dict)
		if !ok {
			return fmt.Errorf("unexpected row type %s", rows.Index(i).Type())
		}
		row := make(map[string]any, dict.Len())
		for _, item := range dict.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return fmt.Errorf("unexpected column key type %s", item[0].Type())
			}
			if !seen[string(key)] {
				seen[string(key)] = true
				cols = append(cols, string(key))
			}
			row[string(key)] = toGo(item[1])
		}
		results = append(results, row)
	}

	switch format {
	case "json":
		return renderJSON(w, results)
	case "csv":
		return renderCSV(w, cols, results)
	case "md", "markdown":
		return renderMarkdown(w, cols, results)
	default:
		return renderTable(w, cols, results)
	}
}

// toGo converts a row value to a plain Go value for rendering.
func toGo(v starlark.Value) any {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.String:
		return string(v)
	case starlark.Bytes:
		return []byte(v)
	case starlark.Float:
		return float64(v)
	default:
		return v.String()
	}
}

func renderTable(w io.Writer, cols []string, results []map[string]any) error {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, result := range results {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(results))
	return nil
}

func renderJSON(w io.Writer, results []map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, cols []string, results []map[string]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, result := range results {
		record := make([]string, len(cols))
		for i, col := range cols {
			record[i] = formatValue(result[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderMarkdown(w io.Writer, cols []string, results []map[string]any) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, result := range results {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}

	t.RenderMarkdown()
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d byte blob>", len(v))
	case float64:
		// Whole numbers render without the trailing .0 the float carries.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
