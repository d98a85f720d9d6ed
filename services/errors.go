package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mentorhub/forum/utils"
)

// Kind classifies a failed forum operation.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindValidation
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Cause narrows a NotFound or Unauthorized failure so clients can pick the
// right recovery: hide the control, refresh the list, or re-authenticate.
type Cause string

const (
	CauseNone           Cause = ""
	CauseMissing        Cause = "missing"
	CauseAlreadyDeleted Cause = "already-deleted"
	CauseOwnership      Cause = "ownership"
	CauseRouteOrigin    Cause = "route-origin"
	CauseCategoryScope  Cause = "category-scope"
	CauseRole           Cause = "role"
)

// Denial reasons surfaced verbatim to clients.
const (
	ReasonPostNotFound      = "Post not found"
	ReasonReplyNotFound     = "Reply not found"
	ReasonAlreadyDeleted    = "already deleted"
	ReasonNotPostOwner      = "You can only manage your own posts"
	ReasonNotReplyOwner     = "You can only manage your own replies"
	ReasonLoginRequired     = "Authentication required"
	ReasonNoModeratorGrant  = "No active moderator grant"
	ReasonAdminOnly         = "Administrator role required"
	ReasonModeratorNotFound = "Moderator grant not found"
	reasonInternal          = "internal error"
)

// Error is the structured failure returned by every forum operation.
type Error struct {
	Kind    Kind
	Cause   Cause
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts the structured error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a forum Error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

// CauseOf returns the cause carried by err, if any.
func CauseOf(err error) Cause {
	if e, ok := AsError(err); ok {
		return e.Cause
	}
	return CauseNone
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Cause: CauseMissing, Message: msg}
}

func alreadyDeleted() *Error {
	return &Error{Kind: KindNotFound, Cause: CauseAlreadyDeleted, Message: ReasonAlreadyDeleted}
}

func unauthorized(cause Cause, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Cause: cause, Message: msg}
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// storeFailure logs the underlying error and hides it behind a generic message.
func storeFailure(op string, err error) *Error {
	utils.Logger.Error("forum store failure", zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindStoreFailure, Message: reasonInternal, Err: err}
}
