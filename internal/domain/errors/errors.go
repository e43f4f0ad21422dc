package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrClosed           = errors.New("engine closed")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDraft     = errors.New("invalid phone number draft")
	ErrImportInProgress = errors.New("import step already in progress")
	ErrEmptyImage       = errors.New("image is empty")
)

// Kind classifies a failed remote call.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindDecode
	KindValidation
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// SyncError reports a remote call that did not complete successfully.
type SyncError struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s error (status %d)", e.Op, e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

func (e *SyncError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match remote 404s.
func (e *SyncError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// KindForStatus maps a non-2xx HTTP status to its error kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// IsKind reports whether err wraps a SyncError of the given kind.
func IsKind(err error, kind Kind) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr) && syncErr.Kind == kind
}

// UserMessage returns the text to show for err. Validation details from the
// service are passed through verbatim.
func UserMessage(err error) string {
	var syncErr *SyncError
	if errors.As(err, &syncErr) && syncErr.Message != "" {
		return syncErr.Message
	}
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// DuplicateError is returned when an add would repeat a number already tracked
// or currently being created.
type DuplicateError struct {
	Number string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("phone number %s already exists", e.Number)
}

// NotConfirmedError is returned when a delete answered 2xx without the
// confirmation sentinel.
type NotConfirmedError struct {
	Detail string
}

func (e *NotConfirmedError) Error() string {
	if e.Detail == "" {
		return "delete not confirmed by server"
	}
	return fmt.Sprintf("delete not confirmed by server: %s", e.Detail)
}
