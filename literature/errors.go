package literature

import (
	"errors"
	"fmt"
)

type ErrorKind byte

const (
	KindNotFound         ErrorKind = 1
	KindInvalidState     ErrorKind = 2
	KindOutOfTurn        ErrorKind = 3
	KindRuleViolation    ErrorKind = 4
	KindCapacityExceeded ErrorKind = 5
)

var errorKindNames = map[ErrorKind]string{
	KindNotFound:         "not_found",
	KindInvalidState:     "invalid_state",
	KindOutOfTurn:        "out_of_turn",
	KindRuleViolation:    "rule_violation",
	KindCapacityExceeded: "capacity_exceeded",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a rejected command. Msg is shown to players as is.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error of the same kind, so callers can test against the
// sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInvalidState     = &Error{Kind: KindInvalidState, Msg: "invalid state"}
	ErrOutOfTurn        = &Error{Kind: KindOutOfTurn, Msg: "It is not your turn!"}
	ErrRuleViolation    = &Error{Kind: KindRuleViolation, Msg: "rule violation"}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded, Msg: "The game is already full!"}
)

// KindOf returns the kind of a rejection, or 0 for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind ErrorKind, format string, args ...any) error {
	if len(args) == 0 {
		return &Error{Kind: kind, Msg: format}
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func invalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

func ruleViolation(format string, args ...any) error {
	return newError(KindRuleViolation, format, args...)
}
