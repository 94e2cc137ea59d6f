// Package snapdiff compares flattened registry subtrees line by line.
package snapdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a change.
type Op int

const (
	Equal Op = iota
	Removed
	Added
)

func (o Op) prefix() string {
	switch o {
	case Removed:
		return "-"
	case Added:
		return "+"
	default:
		return " "
	}
}

// Change is one line of the diff.
type Change struct {
	Op   Op
	Line string
}

// Result is a line-level diff between two flattened trees.
type Result struct {
	Changes []Change
	Added   int
	Removed int
}

// Empty reports whether both sides were identical.
func (r Result) Empty() bool { return r.Added == 0 && r.Removed == 0 }

// Lines diffs from against to. Inputs are lines without trailing newlines.
func Lines(from, to []string) Result {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(joinLines(from), joinLines(to))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var r Result
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Removed
		case diffmatchpatch.DiffInsert:
			op = Added
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			r.Changes = append(r.Changes, Change{Op: op, Line: strings.TrimSuffix(line, "\n")})
			switch op {
			case Removed:
				r.Removed++
			case Added:
				r.Added++
			}
		}
	}
	return r
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Unified renders changed lines with -/+ markers under ---/+++ labels. When
// context is true, unchanged lines are included with a leading space.
func (r Result) Unified(fromLabel, toLabel string, context bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", fromLabel, toLabel)
	for _, c := range r.Changes {
		if c.Op == Equal && !context {
			continue
		}
		sb.WriteString(c.Op.prefix())
		sb.WriteString(c.Line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary is a one-line count of changes.
func (r Result) Summary() string {
	return fmt.Sprintf("%d added, %d removed", r.Added, r.Removed)
}
