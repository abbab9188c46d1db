package compare

import (
	"reflect"
	"strings"
	"testing"
)

func TestDiffWordsInsert(t *testing.T) {
	before := Normalize("<p>Applies to IT staff.</p>", ModeSpaced)
	after := Normalize("<p>Applies to IT and Security staff.</p>", ModeSpaced)

	runs := DiffWords(before, after)

	var sawInsert bool
	for _, r := range runs {
		switch r.Kind {
		case RunInsert:
			if !strings.Contains(r.Text, "Security") {
				t.Errorf("insert run %q does not contain %q", r.Text, "Security")
			}
			sawInsert = true
		case RunDelete:
			if strings.Contains(r.Text, "IT") || strings.Contains(r.Text, "staff") {
				t.Errorf("unexpected delete run %q", r.Text)
			}
		}
	}
	if !sawInsert {
		t.Fatalf("no insert run in %v", runs)
	}
}

func TestDiffWordsKinds(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []Run
	}{
		{
			"identical",
			"one two three",
			"one two three",
			[]Run{{"one two three", RunEqual}},
		},
		{
			"replacement",
			"the quick fox",
			"the slow fox",
			[]Run{{"the", RunEqual}, {"quick", RunDelete}, {"slow", RunInsert}, {"fox", RunEqual}},
		},
		{
			"trailing insert",
			"alpha beta",
			"alpha beta gamma",
			[]Run{{"alpha beta", RunEqual}, {"gamma", RunInsert}},
		},
		{
			"leading delete",
			"alpha beta gamma",
			"beta gamma",
			[]Run{{"alpha", RunDelete}, {"beta gamma", RunEqual}},
		},
		{
			"all new",
			"",
			"brand new text",
			[]Run{{"brand new text", RunInsert}},
		},
		{
			"all removed",
			"old text",
			"",
			[]Run{{"old text", RunDelete}},
		},
		{
			"both empty",
			"",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffWords(tt.before, tt.after)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiffWords(%q, %q) = %v, want %v", tt.before, tt.after, got, tt.want)
			}
		})
	}
}

// Keeping equal+insert runs must rebuild the after text, and equal+delete
// the before text.
func TestDiffWordsReconstruction(t *testing.T) {
	pairs := [][2]string{
		{"one two three", "one two three"},
		{"the quick brown fox", "the slow brown dog"},
		{"", "entirely new"},
		{"entirely gone", ""},
		{"a b c d e", "b c x e f"},
		{"repeated words repeated words", "repeated words"},
	}

	for _, p := range pairs {
		runs := DiffWords(p[0], p[1])
		if got := Reconstruct(runs, RunEqual, RunDelete); got != p[0] {
			t.Errorf("delete+equal of (%q,%q) = %q", p[0], p[1], got)
		}
		if got := Reconstruct(runs, RunEqual, RunInsert); got != p[1] {
			t.Errorf("insert+equal of (%q,%q) = %q", p[0], p[1], got)
		}
	}
}

// The same input pair always yields the same script.
func TestDiffWordsDeterministic(t *testing.T) {
	before := "alpha beta gamma delta epsilon"
	after := "alpha gamma beta delta zeta"

	first := DiffWords(before, after)
	for i := 0; i < 10; i++ {
		if got := DiffWords(before, after); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v != %v", i, got, first)
		}
	}
}
