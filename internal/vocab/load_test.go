package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "chinese,pinyin,english,hsk_level\n"+
		"回,huí,return,1\n"+
		"好,hǎo,good,1\n"+
		",,,\n"+
		"经济,jīngjì,economy,4\n")

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	want := Entry{Source: "回", Target: "return", Pinyin: "huí", Level: 1}
	if entries[0] != want {
		t.Fatalf("entries[0] = %+v, want %+v", entries[0], want)
	}
	if entries[2].Level != 4 {
		t.Fatalf("entries[2].Level = %d, want 4", entries[2].Level)
	}
}

func TestLoadCSVCanonicalHeaders(t *testing.T) {
	path := writeCSV(t, "source,target,level\n回,return,1\n")

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].Pinyin != "" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestLoadCSVFormatErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		row     int
	}{
		{"missing header column", "chinese,pinyin\n回,huí\n", 1},
		{"non numeric level", "source,target,level\n回,return,one\n", 2},
		{"level out of range", "source,target,level\n回,return,7\n", 2},
		{"level zero", "source,target,level\n回,return,0\n", 2},
		{"missing target", "source,target,level\n回,,1\n", 2},
		{"missing source", "source,target,level\n,return,1\n", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCSV(t, tc.content)
			_, err := Load(path)
			var fmtErr *FormatError
			if !errors.As(err, &fmtErr) {
				t.Fatalf("Load error = %v, want FormatError", err)
			}
			if fmtErr.Row != tc.row {
				t.Fatalf("row = %d, want %d", fmtErr.Row, tc.row)
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("words.txt")
	var fmtErr *FormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("Load error = %v, want FormatError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}
