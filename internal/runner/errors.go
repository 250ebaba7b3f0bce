package runner

import (
	"errors"
	"fmt"
)

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeLoadFailed indicates a table could not be read.
	ErrCodeLoadFailed RunErrorCode = "LOAD_FAILED"

	// ErrCodeCheckError indicates the checker rejected its input.
	ErrCodeCheckError RunErrorCode = "CHECK_ERROR"

	// ErrCodeRecordFailed indicates the run log write failed.
	ErrCodeRecordFailed RunErrorCode = "RECORD_FAILED"
)

// RunError is an error raised while executing one check.
type RunError struct {
	Code    RunErrorCode
	Check   string
	Message string
	Err     error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Check != "" {
		msg = fmt.Sprintf("%s (check=%s)", msg, e.Check)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is a LOAD_FAILED run error.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error) bool {
	return hasCode(err, ErrCodeLoadFailed)
}

// IsCheckError reports whether err is a CHECK_ERROR run error.
func IsCheckError(err error) bool {
	return hasCode(err, ErrCodeCheckError)
}

// IsRecordError reports whether err is a RECORD_FAILED run error.
func IsRecordError(err error) bool {
	return hasCode(err, ErrCodeRecordFailed)
}

func hasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
