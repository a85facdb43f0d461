package apperr

import (
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeAlreadyInProgress  = "ALREADY_IN_PROGRESS"
	CodeExecutorFailure    = "EXECUTOR_FAILURE"
	CodeTimeout            = "TIMEOUT"
	CodeStorageFailure     = "STORAGE_FAILURE"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func New(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) MapToHTTPCode() int {
	switch e.Code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case CodeAlreadyInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
