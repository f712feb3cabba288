// Package difftext computes line-level diffs with the Myers algorithm and
// renders them as unified-diff hunks. The three-way merge package builds
// on the same edit script to classify and combine changes from two sides.
package difftext

import (
	"bytes"
	"fmt"
	"strings"
)

const defaultContextLines = 3

// EditType names one operation in an edit script.
type EditType int

const (
	EditKeep EditType = iota
	EditDelete
	EditInsert
)

// Edit is a single step of an edit script: OldLine/NewLine are 0-based
// indices into the respective line slices, meaningful according to Type
// (a Keep uses both, a Delete only OldLine, an Insert only NewLine).
type Edit struct {
	Type    EditType
	OldLine int
	NewLine int
}

// IsBinary reports whether data looks like binary content: a NUL byte
// within the first 8KB is taken as the signal, the same heuristic most
// line-oriented diff tools use.
func IsBinary(data []byte) bool {
	limit := len(data)
	if limit > 8192 {
		limit = 8192
	}
	return bytes.IndexByte(data[:limit], 0) != -1
}

// SplitLines splits content into lines without keeping the trailing empty
// element a non-newline-terminated split produces.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}
	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ComputeEdits returns the shortest edit script transforming oldLines into
// newLines, via Myers' O(ND) algorithm (Myers, "An O(ND) Difference
// Algorithm and Its Variations").
func ComputeEdits(oldLines, newLines []string) []Edit {
	n := len(oldLines)
	m := len(newLines)
	max := n + m
	if max == 0 {
		return nil
	}

	v := make([]int, 2*max+1)
	var trace [][]int

	for d := 0; d <= max; d++ {
		vCopy := make([]int, len(v))
		copy(vCopy, v)
		trace = append(trace, vCopy)

		for k := -d; k <= d; k += 2 {
			kIdx := k + max
			var x int
			if k == -d || (k != d && v[kIdx-1] < v[kIdx+1]) {
				x = v[kIdx+1]
			} else {
				x = v[kIdx-1] + 1
			}
			y := x - k

			for x < n && y < m && oldLines[x] == newLines[y] {
				x++
				y++
			}
			v[kIdx] = x

			if x >= n && y >= m {
				return backtrack(oldLines, newLines, trace, d, max)
			}
		}
	}
	return nil
}

func backtrack(oldLines, newLines []string, trace [][]int, d, max int) []Edit {
	var edits []Edit
	x := len(oldLines)
	y := len(newLines)

	for depth := d; depth > 0; depth-- {
		vPrev := trace[depth]
		k := x - y
		kIdx := k + max

		kPrevLeft := kIdx - 1
		kPrevRight := kIdx + 1
		canGoLeft := k != -depth && kPrevLeft >= 0 && kPrevLeft < len(vPrev)
		canGoRight := k != depth && kPrevRight >= 0 && kPrevRight < len(vPrev)

		var prevK int
		if !canGoLeft || (canGoRight && vPrev[kPrevLeft] < vPrev[kPrevRight]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		for x > prevX && y > prevY && x > 0 && y > 0 && oldLines[x-1] == newLines[y-1] {
			x--
			y--
			edits = append([]Edit{{Type: EditKeep, OldLine: x, NewLine: y}}, edits...)
		}
		if prevY < 0 {
			prevY = 0
		}

		if x > prevX {
			x--
			edits = append([]Edit{{Type: EditDelete, OldLine: x}}, edits...)
		} else if y > prevY {
			y--
			edits = append([]Edit{{Type: EditInsert, NewLine: y}}, edits...)
		}
	}

	for x > 0 && y > 0 {
		x--
		y--
		edits = append([]Edit{{Type: EditKeep, OldLine: x, NewLine: y}}, edits...)
	}
	for x > 0 {
		x--
		edits = append([]Edit{{Type: EditDelete, OldLine: x}}, edits...)
	}
	for y > 0 {
		y--
		edits = append([]Edit{{Type: EditInsert, NewLine: y}}, edits...)
	}
	return edits
}

// Hunk is one unified-diff hunk.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []string // prefixed with " ", "-", or "+"
}

// DiffLines renders the edit script between oldLines and newLines as
// unified-diff hunks with the given number of context lines. A
// non-positive context uses the default of 3 lines.
func DiffLines(oldLines, newLines []string, context int) []Hunk {
	if context <= 0 {
		context = defaultContextLines
	}
	edits := ComputeEdits(oldLines, newLines)
	return buildHunks(oldLines, newLines, edits, context)
}

// DiffBlobs is a convenience wrapper rendering unified hunks directly from
// byte content, splitting on newlines first.
func DiffBlobs(oldContent, newContent []byte, context int) []Hunk {
	return DiffLines(SplitLines(oldContent), SplitLines(newContent), context)
}

// buildHunks groups an edit script into unified-diff hunks: consecutive
// changes separated by at most 2*context keep-lines are merged into one
// hunk; wider gaps of keep-lines start a new hunk.
func buildHunks(oldLines, newLines []string, edits []Edit, context int) []Hunk {
	if len(edits) == 0 {
		return nil
	}

	var changeIdxs []int
	for i, e := range edits {
		if e.Type != EditKeep {
			changeIdxs = append(changeIdxs, i)
		}
	}
	if len(changeIdxs) == 0 {
		return nil
	}

	// oldPos[i]/newPos[i] hold how many old/new lines were consumed before
	// edit i, so a hunk's start line numbers and counts can be read off
	// directly from the edit index range it spans.
	oldPos := make([]int, len(edits)+1)
	newPos := make([]int, len(edits)+1)
	for i, e := range edits {
		oldPos[i+1] = oldPos[i]
		newPos[i+1] = newPos[i]
		switch e.Type {
		case EditKeep:
			oldPos[i+1]++
			newPos[i+1]++
		case EditDelete:
			oldPos[i+1]++
		case EditInsert:
			newPos[i+1]++
		}
	}

	var groupBounds [][2]int // [firstChangeIdx, lastChangeIdx] into changeIdxs
	gs := 0
	for i := 1; i < len(changeIdxs); i++ {
		gap := changeIdxs[i] - changeIdxs[i-1] - 1
		if gap > 2*context {
			groupBounds = append(groupBounds, [2]int{gs, i - 1})
			gs = i
		}
	}
	groupBounds = append(groupBounds, [2]int{gs, len(changeIdxs) - 1})

	var hunks []Hunk
	prevEnd := -1
	for _, gb := range groupBounds {
		firstChange := changeIdxs[gb[0]]
		lastChange := changeIdxs[gb[1]]

		start := firstChange - context
		if start <= prevEnd {
			start = prevEnd + 1
		}
		if start < 0 {
			start = 0
		}
		end := lastChange + context
		if end > len(edits)-1 {
			end = len(edits) - 1
		}
		prevEnd = end

		h := Hunk{
			OldStart: oldPos[start] + 1,
			NewStart: newPos[start] + 1,
		}
		for i := start; i <= end; i++ {
			switch edits[i].Type {
			case EditKeep:
				h.Lines = append(h.Lines, " "+oldLines[edits[i].OldLine])
				h.OldLines++
				h.NewLines++
			case EditDelete:
				h.Lines = append(h.Lines, "-"+oldLines[edits[i].OldLine])
				h.OldLines++
			case EditInsert:
				h.Lines = append(h.Lines, "+"+newLines[edits[i].NewLine])
				h.NewLines++
			}
		}
		hunks = append(hunks, h)
	}
	return hunks
}

// FormatUnified renders hunks in git-style unified diff form for path.
func FormatUnified(path string, hunks []Hunk) string {
	var b strings.Builder
	if len(hunks) == 0 {
		return ""
	}
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return b.String()
}
