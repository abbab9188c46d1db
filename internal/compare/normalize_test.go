package compare

import "testing"

func TestNormalizeSpaced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Applies to IT staff.", "Applies to IT staff."},
		{"paragraph tags", "<p>Applies to IT staff.</p>", "Applies to IT staff."},
		{"nested markup", "<p>Applies to <strong>IT</strong> staff.</p>", "Applies to IT staff."},
		{"editor nbsp noise", "<p>Applies&nbsp;to&nbsp;IT staff.</p>", "Applies to IT staff."},
		{"entity ampersand", "<p>Policies &amp; Procedures</p>", "Policies & Procedures"},
		{"whitespace runs", "  Applies \n\t to   IT  staff. ", "Applies to IT staff."},
		{"block boundaries become spaces", "<p>First.</p><p>Second.</p>", "First. Second."},
		{"unknown named reference", "before &foobar; after", "before after"},
		{"escaped angle brackets stay escaped", "a &lt;b&gt; c", "a &lt;b&gt; c"},
		{"decoded brackets re-escaped", "<p>x &lt; 5 and y &gt; 3</p>", "x &lt; 5 and y &gt; 3"},
		{"empty markup", "<p></p>", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, ModeSpaced)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCompact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spacing removed entirely", "<p>Applies to IT staff.</p>", "AppliestoITstaff."},
		{"underscores as whitespace", "applies_to_IT", "appliestoIT"},
		{"hyphens as whitespace", "long-term plan", "longtermplan"},
		{"newlines and tabs", "a\n\tb  c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, ModeCompact)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Normalization must be a fixpoint: running it twice never changes the result.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain words",
		"<p>Applies to <b>IT</b> staff.</p>",
		"<p>Policies &amp; Procedures&nbsp;&hellip;</p>",
		"  spaced \n out\ttext  ",
		"<div><p>one</p><p>two</p></div>",
		"under_score and hyphen-ated",
		"a &lt;b&gt; c",
		"<p>x &lt; 5 and y &gt; 3</p>",
		"&amp;lt; double-encoded",
	}

	for _, mode := range []Mode{ModeSpaced, ModeCompact} {
		for _, in := range inputs {
			once := Normalize(in, mode)
			twice := Normalize(once, mode)
			if once != twice {
				t.Errorf("mode %d: Normalize not idempotent for %q: %q != %q", mode, in, once, twice)
			}
		}
	}
}

func TestFoldPreservesOnlyCase(t *testing.T) {
	if Fold("IT Staff") != "it staff" {
		t.Errorf("Fold(%q) = %q", "IT Staff", Fold("IT Staff"))
	}
}
