// Package levenshtein computes edit distances and picks the closest spelling
// from a candidate list, for "did you mean" hints on misspelled names.
package levenshtein

import "strings"

// Context reuses its row buffer across Distance calls. The zero value is
// ready to use; a Context is not safe for concurrent use.
type Context struct {
	row []int
}

func (ctx *Context) buffer(length int) []int {
	if cap(ctx.row) < length {
		ctx.row = make([]int, length)
	}

	return ctx.row[:length]
}

// Distance returns the number of single-rune insertions, deletions and
// substitutions that turn a into b. It keeps one row of min(len) + 1 cells.
func (ctx *Context) Distance(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) == 0 {
		return len(long)
	}

	row := ctx.buffer(len(short) + 1)
	for idx := range row {
		row[idx] = idx
	}

	for col, longRune := range long {
		diag := row[0]
		row[0] = col + 1

		for idx, shortRune := range short {
			above := row[idx+1]

			cost := 1
			if shortRune == longRune {
				cost = 0
			}

			row[idx+1] = min(above+1, row[idx]+1, diag+cost)
			diag = above
		}
	}

	return row[len(short)]
}

// Closest returns the candidate nearest to word, compared case-insensitively.
// Ties keep the earlier candidate. It reports false when no candidate is
// within maxDistance edits.
func (ctx *Context) Closest(word string, candidates []string, maxDistance int) (string, bool) {
	word = strings.ToUpper(word)
	best, bestDistance := "", maxDistance+1

	for _, candidate := range candidates {
		distance := ctx.Distance(word, strings.ToUpper(candidate))
		if distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	return best, best != ""
}
