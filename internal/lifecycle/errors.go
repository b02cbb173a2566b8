package lifecycle

import "errors"

// Kind classifies a lifecycle error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a classified operation failure. The message is safe to return to
// the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func forbidden(msg string) error    { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflict(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

// KindOf returns the error's kind, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

// Principal is the authenticated caller, resolved upstream from the JWT.
type Principal struct {
	UserID int64
	Role   string
}
