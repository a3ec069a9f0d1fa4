package tracker

import "errors"

// Kind classifies a failed tracker operation.
type Kind int

const (
	// KindValidation means the input broke a field rule.
	KindValidation Kind = iota + 1
	// KindNotFound means the target or a referenced entity does not exist.
	KindNotFound
	// KindConflict means the write would break a uniqueness rule.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a user-facing outcome. Message is shown verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation returns a validation failure carrying msg.
func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

// NotFound returns a not-found outcome carrying msg.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// Conflict returns a conflict outcome carrying msg.
func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the Kind of err, or 0 when err is not a tracker error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict outcome.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
