// Package vocab loads and serves the static HSK vocabulary set.
// Entries are read once at startup (or on an explicit reload) and are
// immutable afterwards; lookups are level-filtered and read-only.
package vocab

const (
	// MinLevel is the easiest HSK tier.
	MinLevel = 1
	// MaxLevel is the hardest HSK tier.
	MaxLevel = 6
)

// Entry is a single vocabulary pair. Source holds the Chinese side,
// Target the learner-language translation. Pinyin is optional and only
// shown as feedback decoration.
type Entry struct {
	Source string `db:"source" json:"source"`
	Target string `db:"target" json:"target"`
	Pinyin string `db:"pinyin" json:"pinyin,omitempty"`
	Level  int    `db:"level" json:"level"`
}

// ValidLevel reports whether level is within the HSK range.
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}
