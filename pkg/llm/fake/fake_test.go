package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

func salesTable() *table.Table {
	return &table.Table{
		Columns: []table.Column{
			{Name: "region", Dtype: "string"},
			{Name: "revenue", Dtype: "int64"},
		},
		Rows: [][]string{
			{"West", "20"},
			{"East", "15"},
			{"East", "25"},
		},
	}
}

func TestAnalyzeAggregates(t *testing.T) {
	f := NewFakeAnalyzer()

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"sum by group", "Sum revenue by region", "East:40, West:20"},
		{"count by group", "count rows by region", "East:2, West:1"},
		{"row count", "How many rows are there?", "The dataset has 3 rows."},
		{"fallback describes schema", "tell me something", "The dataset has 3 rows and 2 columns: region, revenue."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.Analyze(context.Background(), salesTable(), nil, tt.prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
		})
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	f := NewFakeAnalyzer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Analyze(ctx, salesTable(), nil, "Sum revenue by region")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrTimeout)
}
