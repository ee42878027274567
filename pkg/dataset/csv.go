package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Krussell101/data-visualizer/pkg/table"
)

const sampleValueLimit = 5

// CSVIngestor is the reference ingestion collaborator: it decodes CSV files
// from local disk. Other backends (object storage, Excel) implement Loader
// the same way without touching the engine.
type CSVIngestor struct {
	BaseDir string
}

func NewCSVIngestor(baseDir string) *CSVIngestor {
	return &CSVIngestor{BaseDir: baseDir}
}

// Ensure CSVIngestor implements Loader
var _ Loader = &CSVIngestor{}

// Load decodes the dataset's file and verifies the stored fingerprint still
// matches the bytes on disk. A mismatch means the file changed out from under
// the Dataset record, which must surface as a load failure, never as a
// silently different table.
func (ing *CSVIngestor) Load(ctx context.Context, datasetID string, fingerprint string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(ing.path(datasetID))
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", datasetID, err)
	}

	if got := Fingerprint(raw); got != fingerprint {
		return nil, fmt.Errorf("dataset %s: fingerprint mismatch (expected %s, file is %s)", datasetID, fingerprint, got)
	}

	tbl, _, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", datasetID, err)
	}
	return tbl, nil
}

// Store writes uploaded bytes to disk and returns their fingerprint.
func (ing *CSVIngestor) Store(datasetID string, raw []byte) (string, error) {
	if err := os.MkdirAll(ing.BaseDir, 0755); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}
	if err := os.WriteFile(ing.path(datasetID), raw, 0644); err != nil {
		return "", fmt.Errorf("write dataset %s: %w", datasetID, err)
	}
	return Fingerprint(raw), nil
}

// Remove deletes the stored file. Missing files are not an error.
func (ing *CSVIngestor) Remove(datasetID string) error {
	err := os.Remove(ing.path(datasetID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (ing *CSVIngestor) path(datasetID string) string {
	return ing.BaseDir + "/" + datasetID + ".csv"
}

// Decode parses CSV bytes into a table and extracts its metadata: row and
// column counts, per-column declared type, null counts, and the first few
// unique non-null values as samples.
func Decode(raw []byte) (*table.Table, *table.Metadata, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1 // tolerate ragged rows, recorded as a warning

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("file has no columns")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse header: %w", err)
	}
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("file has no columns")
	}

	var warnings []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse row %d: %w", len(rows)+2, err)
		}
		if len(record) != len(header) {
			warnings = append(warnings, fmt.Sprintf("row %d has %d fields, expected %d", len(rows)+2, len(record), len(header)))
			record = normalizeRow(record, len(header))
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file has no data rows")
	}

	columns := make([]table.Column, len(header))
	for i, name := range header {
		columns[i] = profileColumn(name, i, rows)
	}

	tbl := &table.Table{Columns: columns, Rows: rows}
	meta := &table.Metadata{
		RowCount:      len(rows),
		ColumnCount:   len(columns),
		Columns:       columns,
		FileSizeBytes: int64(len(raw)),
		ParseWarnings: warnings,
	}
	if meta.ParseWarnings == nil {
		meta.ParseWarnings = []string{}
	}
	return tbl, meta, nil
}

func normalizeRow(record []string, width int) []string {
	if len(record) > width {
		return record[:width]
	}
	padded := make([]string, width)
	copy(padded, record)
	return padded
}

// profileColumn infers the declared type and gathers null counts and samples.
// Type inference is strict: a single non-numeric value demotes the column.
func profileColumn(name string, idx int, rows [][]string) table.Column {
	col := table.Column{Name: name, Dtype: "int64"}

	seen := make(map[string]bool)
	for _, row := range rows {
		v := row[idx]
		if v == "" {
			col.NullCount++
			continue
		}

		switch col.Dtype {
		case "int64":
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				if _, ferr := strconv.ParseFloat(v, 64); ferr == nil {
					col.Dtype = "float64"
				} else {
					col.Dtype = "string"
				}
			}
		case "float64":
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				col.Dtype = "string"
			}
		}

		if len(col.SampleValues) < sampleValueLimit && !seen[v] {
			seen[v] = true
			col.SampleValues = append(col.SampleValues, v)
		}
	}

	if col.NullCount == len(rows) {
		// All-null columns carry no type evidence
		col.Dtype = "string"
	}
	if col.SampleValues == nil {
		col.SampleValues = []string{}
	}
	return col
}
