package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/forPelevin/heatclip/internal/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// outcomeTable summarizes every candidate a run tried.
func outcomeTable(outcomes []types.ClipOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		file := "-"
		if o.File != "" {
			file = filepath.Base(o.File)
		}
		caption := "no"
		if o.CaptionApplied {
			caption = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", o.Rank),
			fmt.Sprintf("%.1f-%.1fs", o.Window.Start, o.Window.End),
			fmt.Sprintf("%.2f", o.Segment.Score),
			string(o.State),
			caption,
			file,
			o.Note,
		})
	}
	return renderTable(
		[]string{"Rank", "Window", "Score", "State", "Caption", "File", "Note"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
