// File: internal/brain/patchdiff/patchdiff.go
package patchdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Summary counts line-level changes between a live patch and an update.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// AlreadyApplied reports whether every update line is matched, in order, by
// the live patch. An empty update is never applied.
func (s Summary) AlreadyApplied() bool {
	return s.Added == 0 && s.Unchanged > 0
}

// Summarize diffs live against update line by line. Blank lines are ignored
// so formatting differences do not count as changes.
func Summarize(live, update string) Summary {
	live, update = normalize(live), normalize(update)

	dmp := diffmatchpatch.New()
	// No timeout: the half-match speedup can return a non-minimal diff that
	// reports inserts for lines the live patch already has.
	dmp.DiffTimeout = 0
	liveChars, updateChars, lines := dmp.DiffLinesToChars(live, update)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(liveChars, updateChars, false), lines)

	var s Summary
	for _, d := range diffs {
		n := lineCount(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			s.Unchanged += n
		case diffmatchpatch.DiffDelete:
			s.Removed += n
		case diffmatchpatch.DiffInsert:
			s.Added += n
		}
	}
	return s
}

func normalize(s string) string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
}
