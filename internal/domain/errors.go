package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrNoBanks is returned when no bank is available to pick from.
	ErrNoBanks = errors.New("no question banks available")
	// ErrPositionOutOfRange indicates a question position outside [0, N).
	ErrPositionOutOfRange = errors.New("question position out of range")
	// ErrInvalidOption indicates a selected value that is not one of the question's options.
	ErrInvalidOption = errors.New("value is not an option of the question")
)

// ValidationError reports malformed demographic input, one message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

// IllegalTransitionError is returned when an operation is invoked in the wrong session phase.
type IllegalTransitionError struct {
	Op    string
	Phase string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while session is %s", e.Op, e.Phase)
}

// DataIntegrityError marks a question bank that must not be used for scoring.
type DataIntegrityError struct {
	BankID string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	if e.BankID == "" {
		return "question bank integrity: " + e.Reason
	}
	return fmt.Sprintf("question bank %q integrity: %s", e.BankID, e.Reason)
}
