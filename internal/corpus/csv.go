// Package corpus loads the reference subsector taxonomy from delimited files.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"naicstag/internal/domain"
)

// Columns names the header cells holding each subsector field. When Raw is
// set, contents are taken from that column and normalized on load instead of
// being read pre-cleaned from Content.
type Columns struct {
	Code    string
	Name    string
	Content string
	Raw     string
}

// DefaultColumns matches the header of a cleaned subsector export.
func DefaultColumns() Columns {
	return Columns{
		Code:    "subsector_code",
		Name:    "subsector_name",
		Content: "cleaned_content",
	}
}

// CSVProvider implements domain.CorpusProvider over a CSV or TSV file.
type CSVProvider struct {
	path       string
	columns    Columns
	normalizer domain.Normalizer
}

// NewCSVProvider creates a provider. normalizer is only used when
// columns.Raw is set.
func NewCSVProvider(path string, columns Columns, normalizer domain.Normalizer) *CSVProvider {
	return &CSVProvider{path: path, columns: columns, normalizer: normalizer}
}

// Load reads every row of the file in order.
func (p *CSVProvider) Load() ([]domain.Subsector, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(p.path), err)
	}
	defer f.Close()
	records, err := Read(NewReader(f, p.path), p.columns, p.normalizer)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(p.path), err)
	}
	return records, nil
}

// Read parses subsector rows from r. The first row must be a header.
func Read(r *csv.Reader, cols Columns, normalizer domain.Normalizer) ([]domain.Subsector, error) {
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty corpus file")
		}
		return nil, err
	}
	for i := range header {
		header[i] = cleanCell(header[i])
	}
	codeIdx, err := requireColumn(header, cols.Code)
	if err != nil {
		return nil, err
	}
	nameIdx, err := requireColumn(header, cols.Name)
	if err != nil {
		return nil, err
	}
	contentCol := cols.Content
	if cols.Raw != "" {
		if normalizer == nil {
			return nil, errors.New("raw column requires a normalizer")
		}
		contentCol = cols.Raw
	}
	contentIdx, err := requireColumn(header, contentCol)
	if err != nil {
		return nil, err
	}

	var out []domain.Subsector
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		rec := domain.Subsector{
			Code:    cell(row, codeIdx),
			Name:    cell(row, nameIdx),
			Content: cell(row, contentIdx),
		}
		if rec.Code == "" {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: missing %s", line, cols.Code)
		}
		if cols.Raw != "" {
			rec.Content = normalizer.Normalize(rec.Content)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clean reads subsectors with a raw description column from r and writes a
// cleaned export (code, name, cleaned content) to w. It returns the number
// of rows written.
func Clean(r *csv.Reader, w io.Writer, cols Columns, normalizer domain.Normalizer) (int, error) {
	if cols.Raw == "" {
		return 0, errors.New("clean requires a raw description column")
	}
	records, err := Read(r, cols, normalizer)
	if err != nil {
		return 0, err
	}
	out := DefaultColumns()
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{out.Code, out.Name, out.Content}); err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Code, rec.Name, rec.Content}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// NewReader returns a CSV reader over r, switching to tabs when path has a
// .tsv extension.
func NewReader(r io.Reader, path string) *csv.Reader {
	reader := csv.NewReader(r)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	return reader
}

func requireColumn(header []string, name string) (int, error) {
	if name == "" {
		return -1, errors.New("column name is empty")
	}
	for i, col := range header {
		if strings.EqualFold(col, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header %v", name, header)
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
