// Package transcript loads the ordered transcript units that feed the
// splitting pipeline. Spreadsheets (.xlsx) and CSV files supply a named
// column; plain text files supply one unit per line.
package transcript

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"subseg/internal/services"
)

// DefaultColumn is the header holding transcript text.
const DefaultColumn = "text"

// Options selects where units are read from inside the file.
type Options struct {
	// Column is the header name of the text column (xlsx and csv).
	Column string
	// Sheet is the worksheet name (xlsx); empty selects the first sheet.
	Sheet string
}

type loader func(path string, opts Options) ([]string, error)

var loaders = map[string]loader{
	".xlsx": loadXLSX,
	".csv":  loadCSV,
	".txt":  func(path string, _ Options) ([]string, error) { return loadText(path) },
}

// Supported reports whether path has an extension Load can read.
func Supported(path string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads units from path. Every unit is stripped of surrounding double
// quotes and whitespace; empty units are dropped. Any failure is reported as
// services.ErrInputUnavailable.
func Load(path string, opts Options) ([]string, error) {
	if strings.TrimSpace(opts.Column) == "" {
		opts.Column = DefaultColumn
	}
	ext := strings.ToLower(filepath.Ext(path))
	load, ok := loaders[ext]
	if !ok {
		return nil, services.Wrap(services.ErrInputUnavailable, "transcript", "load", path,
			fmt.Errorf("unsupported input extension %q", ext))
	}
	raw, err := load(path, opts)
	if err != nil {
		return nil, services.Wrap(services.ErrInputUnavailable, "transcript", "load", path, err)
	}
	units := clean(raw)
	if len(units) == 0 {
		return nil, services.Wrap(services.ErrInputUnavailable, "transcript", "load", path, errors.New("no text units found"))
	}
	return units, nil
}

func clean(raw []string) []string {
	units := make([]string, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
		if value != "" {
			units = append(units, value)
		}
	}
	return units
}

func loadXLSX(path string, opts Options) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return column(rows, opts.Column)
}

func loadCSV(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return column(rows, opts.Column)
}

func loadText(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\ufeff")
	}
	return lines, nil
}

// column returns the values under the header named name. Rows shorter than
// the column index are skipped.
func column(rows [][]string, name string) ([]string, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}
	idx := -1
	for i, header := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(rows[0], ", "))
	}
	values := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx < len(row) {
			values = append(values, row[idx])
		}
	}
	return values, nil
}
