package fake

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

// FakeAnalyzer answers a small set of aggregation prompts directly against the
// table, with no network access. It backs keyless development setups and is
// the offline fallback in the provider factory.
type FakeAnalyzer struct{}

var _ llm.Analyzer = &FakeAnalyzer{}

func NewFakeAnalyzer() *FakeAnalyzer {
	return &FakeAnalyzer{}
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, tbl *table.Table, window []llm.Exchange, prompt string, opts ...llm.Option) (*llm.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrTimeout, err)
	}

	lower := strings.ToLower(prompt)

	if valueCol, groupCol, ok := matchAggregate(lower, tbl, "sum"); ok {
		return &llm.Result{Text: sumByGroup(tbl, valueCol, groupCol)}, nil
	}
	if _, groupCol, ok := matchAggregate(lower, tbl, "count"); ok {
		return &llm.Result{Text: countByGroup(tbl, groupCol)}, nil
	}
	if strings.Contains(lower, "how many rows") || strings.Contains(lower, "row count") {
		return &llm.Result{Text: fmt.Sprintf("The dataset has %d rows.", tbl.RowCount())}, nil
	}

	return &llm.Result{
		Text: fmt.Sprintf("The dataset has %d rows and %d columns: %s.",
			tbl.RowCount(), len(tbl.Columns), strings.Join(tbl.ColumnNames(), ", ")),
	}, nil
}

// matchAggregate looks for "<verb> <value column> by <group column>" shapes.
func matchAggregate(prompt string, tbl *table.Table, verb string) (valueCol, groupCol int, ok bool) {
	if !strings.Contains(prompt, verb) || !strings.Contains(prompt, " by ") {
		return -1, -1, false
	}
	valueCol, groupCol = -1, -1
	for i, c := range tbl.Columns {
		name := strings.ToLower(c.Name)
		if !strings.Contains(prompt, name) {
			continue
		}
		if strings.Contains(prompt, "by "+name) {
			groupCol = i
		} else if valueCol == -1 {
			valueCol = i
		}
	}
	if groupCol == -1 {
		return -1, -1, false
	}
	if verb == "count" {
		return -1, groupCol, true
	}
	return valueCol, groupCol, valueCol != -1
}

func sumByGroup(tbl *table.Table, valueCol, groupCol int) string {
	sums := make(map[string]float64)
	var order []string
	for _, row := range tbl.Rows {
		key := row[groupCol]
		v, err := strconv.ParseFloat(row[valueCol], 64)
		if err != nil {
			continue
		}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += v
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, key := range order {
		parts = append(parts, fmt.Sprintf("%s:%s", key, strconv.FormatFloat(sums[key], 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}

func countByGroup(tbl *table.Table, groupCol int) string {
	counts := make(map[string]int)
	var order []string
	for _, row := range tbl.Rows {
		key := row[groupCol]
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, key := range order {
		parts = append(parts, fmt.Sprintf("%s:%d", key, counts[key]))
	}
	return strings.Join(parts, ", ")
}
