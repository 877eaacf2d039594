package cypher

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReleased is reported when a Result is released more than once.
var ErrReleased = errors.New("parse result already released")

// SyntaxError describes input the parser cannot accept.
type SyntaxError struct {
	// Offset is the byte offset of the offending input.
	Offset int
	// Line and Column are 1-based.
	Line    int
	Column  int
	Message string
}

func newSyntaxError(offset int, message string) *SyntaxError {
	return &SyntaxError{Offset: offset, Message: message}
}

// Error implements the error interface.
func (se *SyntaxError) Error() string {
	if se.Line > 0 {
		return fmt.Sprintf("line %d, column %d (offset %d): %s", se.Line, se.Column, se.Offset, se.Message)
	}

	return fmt.Sprintf("offset %d: %s", se.Offset, se.Message)
}

// locate fills Line and Column from the source text.
func (se *SyntaxError) locate(src string) {
	offset := min(max(se.Offset, 0), len(src))
	before := src[:offset]

	se.Line = strings.Count(before, "\n") + 1
	se.Column = offset - strings.LastIndexByte(before, '\n')
}
