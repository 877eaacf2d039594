package cypherast

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("cypher parse failed")
	// ErrConstruction matches every *ConstructionError.
	ErrConstruction = errors.New("node construction failed")
	// ErrInputTooLarge is returned for texts over the engine's input limit.
	ErrInputTooLarge = errors.New("query text exceeds size limit")
)

// ParseError reports input the parser rejected.
type ParseError struct {
	Offset  int
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %s", ErrParse, e.Line, e.Column, e.Message)
}

// Is reports ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConstructionError reports a host constructor failure for one node.
type ConstructionError struct {
	ID   int
	Kind string
	Err  error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: node %d (%s): %v", ErrConstruction, e.ID, e.Kind, e.Err)
}

// Is reports ErrConstruction.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// Unwrap returns the constructor's error.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}
