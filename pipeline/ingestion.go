package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Source column -> canonical name.
var columnRenames = map[string]string{
	"Title":       "title",
	"Description": "description",
	"subcategory": "subcategory",
}

// Tokens read as missing values, matching the defaults of common dataframe
// CSV readers.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Record is one labelled document. Missing cells are empty strings.
type Record struct {
	Line        int
	Title       string
	Description string
	Subcategory string
	Text        string
}

// IngestionStats describes a CSV read.
type IngestionStats struct {
	Rows         int `json:"rows"`
	MissingTitle int `json:"missing_title"`
	MissingDesc  int `json:"missing_description"`
	MissingLabel int `json:"missing_label"`
}

// LoadDocuments reads every row of the CSV at path.
func LoadDocuments(path string) ([]*Record, IngestionStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, IngestionStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	return ReadDocuments(file)
}

// ReadDocuments parses CSV from r. A UTF-8 BOM is stripped, extra columns are
// ignored, and short rows leave the trailing cells missing.
func ReadDocuments(r io.Reader) ([]*Record, IngestionStats, error) {
	var stats IngestionStats
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, errors.New("dataset is empty")
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(columnRenames))
	for i, name := range header {
		if canonical, ok := columnRenames[name]; ok {
			if _, dup := index[canonical]; !dup {
				index[canonical] = i
			}
		}
	}
	for _, canonical := range []string{"title", "description", "subcategory"} {
		if _, ok := index[canonical]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, canonical)
		}
	}

	var records []*Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("parse dataset: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if len(row) > len(header) {
			return nil, stats, fmt.Errorf("parse dataset: line %d: expected %d fields, saw %d", line, len(header), len(row))
		}

		rec := &Record{
			Line:        line,
			Title:       cell(row, index["title"]),
			Description: cell(row, index["description"]),
			Subcategory: cell(row, index["subcategory"]),
		}
		if rec.Title == "" {
			stats.MissingTitle++
		}
		if rec.Description == "" {
			stats.MissingDesc++
		}
		if rec.Subcategory == "" {
			stats.MissingLabel++
		}
		records = append(records, rec)
	}
	stats.Rows = len(records)
	return records, stats, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	if _, na := naTokens[row[i]]; na {
		return ""
	}
	return row[i]
}
