package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/born-ml/reduce/internal/op"
	"github.com/born-ml/reduce/internal/tensor"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func newPlainTable(withHeader bool, alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0 && withHeader:
				return headerRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			return s.Align(alignment)
		})
}

func printOps(registry *op.Registry) {
	table := newPlainTable(true, lipgloss.Left).Headers("Operator", "Inputs", "Outputs")
	for _, name := range registry.SupportedOps() {
		inputs, outputs := op.SlotX, op.SlotOut
		if strings.HasSuffix(name, "_grad") {
			inputs = strings.Join([]string{op.SlotX, op.SlotOut, op.GradVarName(op.SlotOut)}, ", ")
			outputs = op.GradVarName(op.SlotX)
		}
		table.Row(name, inputs, outputs)
	}
	fmt.Println(table.Render())
}

// summary describes a tensor, e.g. "float32[2 3]@CPU: 6 elements, 24 B".
func summary(t *tensor.RawTensor) string {
	return fmt.Sprintf("%s: %s elements, %s", t, humanize.Comma(int64(t.NumElements())),
		humanize.Bytes(uint64(t.ByteSize())))
}

// tensorRows lays t out as a matrix: one row per index of the leading axes,
// one column per element of the last axis. Rank-1 tensors become a single row.
func tensorRows(t *tensor.RawTensor) (headers []string, rows [][]string) {
	shape := t.Shape()
	values := t.Float64s()
	cols := 1
	if shape.Rank() > 0 {
		cols = shape[shape.Rank()-1]
	}
	headers = append(headers, "index")
	for c := range cols {
		headers = append(headers, strconv.Itoa(c))
	}

	lead := shape
	if shape.Rank() > 0 {
		lead = shape[:shape.Rank()-1]
	}
	numRows := len(values) / max(cols, 1)
	index := make([]int, len(lead))
	for r := range numRows {
		row := []string{formatIndex(index)}
		for c := range cols {
			row = append(row, strconv.FormatFloat(values[r*cols+c], 'g', 6, 64))
		}
		rows = append(rows, row)
		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < lead[d] {
				break
			}
			index[d] = 0
		}
	}
	return headers, rows
}

func formatIndex(index []int) string {
	parts := make([]string, len(index))
	for i, v := range index {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func printTensor(name string, t *tensor.RawTensor) {
	headers, rows := tensorRows(t)
	table := newPlainTable(true, lipgloss.Left, lipgloss.Right).Headers(headers...)
	for _, row := range rows {
		table.Row(row...)
	}
	fmt.Printf("%s %s\n%s\n\n", titleStyle.Render(name), summary(t), table.Render())
}
