package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

type outputMode struct {
	json bool
}

// print writes value as JSON in --json mode, otherwise the rows as a table.
func (o outputMode) print(w io.Writer, value any, rows func() [][]string) error {
	if o.json {
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("format json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	table(w, rows())
	return nil
}

// done reports a control command.
func (o outputMode) done(w io.Writer, summary string, fields map[string]any) error {
	if o.json {
		fields["status"] = "ok"
		return o.print(w, fields, nil)
	}
	_, err := fmt.Fprintf(w, "ok: %s\n", summary)
	return err
}

func table(w io.Writer, rows [][]string) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func celsius(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "°C"
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64) + "%"
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
