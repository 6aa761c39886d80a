package quiz

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"return", "return"},
		{"Return", "return"},
		{"  Return ", "return"},
		{"to   go back", "to go back"},
		{"To\tGo\nBack", "to go back"},
		{"回", "回"},
		{" 经济 ", "经济"},
		{"HÉLLO", "héllo"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if d, ok := ParseDirection("st"); !ok || d != SourceToTarget {
		t.Fatalf("ParseDirection(st) = %q, %v", d, ok)
	}
	if d, ok := ParseDirection("ts"); !ok || d != TargetToSource {
		t.Fatalf("ParseDirection(ts) = %q, %v", d, ok)
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Fatal("ParseDirection accepted garbage")
	}
	if _, ok := ParseDirection(""); ok {
		t.Fatal("ParseDirection accepted empty string")
	}
}
