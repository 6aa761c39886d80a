package vocab

import (
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultTable is the table read when no override is configured.
const DefaultTable = "vocabulary"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads vocabulary from a SQLite database file. The table needs
// source, target and level columns; pinyin is optional.
func LoadSQLite(path, table string) ([]Entry, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, &FormatError{Source: path, Reason: fmt.Sprintf("invalid table name %q", table)}
	}

	db, err := sqlx.Connect("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer db.Close()

	var rows []struct {
		Source string `db:"source"`
		Target string `db:"target"`
		Pinyin string `db:"pinyin"`
		Level  int    `db:"level"`
	}
	query := fmt.Sprintf(
		`SELECT source, target, COALESCE(pinyin, '') AS pinyin, level FROM %s`, table,
	)
	if err := db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("vocab: query %s: %w", table, err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, r := range rows {
		e, err := entryFromRecord(
			[]string{r.Source, r.Target, r.Pinyin, fmt.Sprintf("%d", r.Level)},
			columnMap{source: 0, target: 1, pinyin: 2, level: 3},
		)
		if err != nil {
			return nil, &FormatError{Source: path, Row: i + 1, Reason: err.Error()}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
