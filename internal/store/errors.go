package store

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
)

// Error is a non-2xx response from the store
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is lets callers match a status class with errors.Is
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// Message returns the server-provided reason when err came from the store,
// otherwise the plain error text.
func Message(err error) string {
	var storeErr *Error
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	return err.Error()
}
