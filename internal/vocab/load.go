package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a vocabulary source and validates every record. The format is
// picked by file extension: .csv, .xlsx, or a SQLite database file.
// Any malformed record fails the load with *FormatError.
func Load(source string) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		return LoadCSV(source)
	case ".xlsx":
		return LoadXLSX(source)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(source, DefaultTable)
	default:
		return nil, &FormatError{Source: source, Reason: "unsupported source format"}
	}
}

// columnMap resolves header names to record positions. The canonical
// headers are source, target, level and the optional pinyin; the column
// names of the upstream HSK sheets are accepted as aliases.
type columnMap struct {
	source, target, level, pinyin int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{source: -1, target: -1, level: -1, pinyin: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "source", "chinese":
			cols.source = i
		case "target", "english", "translation":
			cols.target = i
		case "level", "hsk_level":
			cols.level = i
		case "pinyin":
			cols.pinyin = i
		}
	}
	if cols.source < 0 || cols.target < 0 || cols.level < 0 {
		return cols, errors.New("header must name source, target and level columns")
	}
	return cols, nil
}

func entryFromRecord(record []string, cols columnMap) (Entry, error) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	e := Entry{
		Source: cell(cols.source),
		Target: cell(cols.target),
		Pinyin: cell(cols.pinyin),
	}
	if e.Source == "" {
		return e, errors.New("missing source text")
	}
	if e.Target == "" {
		return e, errors.New("missing target text")
	}

	rawLevel := cell(cols.level)
	level, err := strconv.Atoi(rawLevel)
	if err != nil {
		return e, fmt.Errorf("level %q is not a number", rawLevel)
	}
	if !ValidLevel(level) {
		return e, fmt.Errorf("level %d outside %d..%d", level, MinLevel, MaxLevel)
	}
	e.Level = level
	return e, nil
}

// LoadCSV reads vocabulary from a CSV file with a header row.
func LoadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, &FormatError{Source: path, Row: 1, Reason: "missing header row"}
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, &FormatError{Source: path, Row: 1, Reason: err.Error()}
	}

	var entries []Entry
	row := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Source: path, Row: row + 1, Reason: err.Error()}
		}
		row++
		if isBlank(record) {
			continue
		}
		e, err := entryFromRecord(record, cols)
		if err != nil {
			return nil, &FormatError{Source: path, Row: row, Reason: err.Error()}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadXLSX reads vocabulary from the first sheet of an Excel workbook.
func LoadXLSX(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("vocab: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &FormatError{Source: path, Row: 1, Reason: "missing header row"}
	}
	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, &FormatError{Source: path, Row: 1, Reason: err.Error()}
	}

	var entries []Entry
	for i, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		e, err := entryFromRecord(record, cols)
		if err != nil {
			return nil, &FormatError{Source: path, Row: i + 2, Reason: err.Error()}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
