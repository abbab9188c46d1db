package compare

import "strings"

// RunKind classifies one run of a word-level edit script
type RunKind string

const (
	RunEqual  RunKind = "equal"
	RunInsert RunKind = "insert"
	RunDelete RunKind = "delete"
)

// Run is one maximal run of words sharing an edit kind. Keeping only
// equal+insert runs reconstructs the after text; equal+delete reconstructs
// the before text.
type Run struct {
	Text string  `json:"text"`
	Kind RunKind `json:"kind"`
}

// DiffWords computes a word-level edit script between two normalized
// strings. Tokens are whitespace-delimited words; alignment is a longest
// common subsequence with ties broken toward the earliest match, so output
// is deterministic for identical inputs.
func DiffWords(before, after string) []Run {
	a := strings.Fields(before)
	b := strings.Fields(after)

	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	if len(a) == 0 {
		return []Run{{Text: strings.Join(b, " "), Kind: RunInsert}}
	}
	if len(b) == 0 {
		return []Run{{Text: strings.Join(a, " "), Kind: RunDelete}}
	}

	// lcs[i][j] holds the LCS length of a[i:] and b[j:]
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	type op struct {
		word string
		kind RunKind
	}
	ops := make([]op, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, op{a[i], RunEqual})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, op{a[i], RunDelete})
			i++
		default:
			ops = append(ops, op{b[j], RunInsert})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, op{a[i], RunDelete})
	}
	for ; j < len(b); j++ {
		ops = append(ops, op{b[j], RunInsert})
	}

	// Merge consecutive same-kind operations into runs
	var runs []Run
	var words []string
	kind := ops[0].kind
	for _, o := range ops {
		if o.kind != kind {
			runs = append(runs, Run{Text: strings.Join(words, " "), Kind: kind})
			words = words[:0:0]
			kind = o.kind
		}
		words = append(words, o.word)
	}
	runs = append(runs, Run{Text: strings.Join(words, " "), Kind: kind})

	return runs
}

// Reconstruct joins the words of runs matching the given kinds, in order.
// Passing RunEqual with RunInsert yields the after text; RunEqual with
// RunDelete yields the before text.
func Reconstruct(runs []Run, kinds ...RunKind) string {
	keep := make(map[RunKind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}
	var words []string
	for _, r := range runs {
		if keep[r.Kind] && r.Text != "" {
			words = append(words, strings.Fields(r.Text)...)
		}
	}
	return strings.Join(words, " ")
}
