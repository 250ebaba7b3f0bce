package plan

import (
	"fmt"
	"strings"

	"github.com/roach88/tally/internal/check"
	"github.com/roach88/tally/internal/source"
)

// Validation error codes (E100-E199)
const (
	ErrKeyRequired      = "E101" // key is required
	ErrCountRequired    = "E102" // count is required
	ErrDetailRequired   = "E103" // detail.data is required
	ErrSummaryRequired  = "E104" // summary.data is required
	ErrInvalidMode      = "E105" // mode is not fail_fast or collect_all
	ErrInvalidFormat    = "E106" // format unknown or not inferable
	ErrDuplicateColumns = "E107" // count column doubles as the summary key
	ErrInvalidMaxRows   = "E108" // max_rows is negative
)

// ValidationError is one semantic problem in a check definition.
type ValidationError struct {
	Check   string `json:"check"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s.%s: %s", e.Code, e.Line, e.Check, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Check, e.Field, e.Message)
}

// Validate returns every problem found in c (it does not stop at the first).
func Validate(c *Check) []ValidationError {
	var errs []ValidationError
	add := func(field, code, msg string) {
		errs = append(errs, ValidationError{Check: c.Name, Field: field, Code: code, Message: msg})
	}

	if strings.TrimSpace(c.Key) == "" {
		add("key", ErrKeyRequired, "key is required and must be non-empty")
	}
	if strings.TrimSpace(c.Count) == "" {
		add("count", ErrCountRequired, "count is required and must be non-empty")
	}
	if _, err := check.ParseMode(string(c.Mode)); err != nil {
		add("mode", ErrInvalidMode, err.Error())
	}

	summaryKey := c.SummaryKey
	if summaryKey == "" {
		summaryKey = c.Key
	}
	if c.Count != "" && c.Count == summaryKey {
		add("count", ErrDuplicateColumns, fmt.Sprintf("count column %q is also the summary key", c.Count))
	}

	errs = append(errs, validateSpec(c.Name, "detail", c.Detail, ErrDetailRequired)...)
	errs = append(errs, validateSpec(c.Name, "summary", c.Summary, ErrSummaryRequired)...)
	return errs
}

func validateSpec(checkName, field string, s source.Spec, requiredCode string) []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(s.Data) == "" {
		return append(errs, ValidationError{
			Check:   checkName,
			Field:   field + ".data",
			Code:    requiredCode,
			Message: field + ".data is required",
		})
	}
	format, err := s.ResolveFormat()
	if err != nil {
		errs = append(errs, ValidationError{Check: checkName, Field: field + ".format", Code: ErrInvalidFormat, Message: err.Error()})
	} else if format == source.FormatFixed && s.Dictionary == "" {
		errs = append(errs, ValidationError{Check: checkName, Field: field + ".dictionary", Code: ErrInvalidFormat, Message: "fixed format requires a dictionary"})
	}
	if s.MaxRows < 0 {
		errs = append(errs, ValidationError{Check: checkName, Field: field + ".max_rows", Code: ErrInvalidMaxRows, Message: "max_rows must not be negative"})
	}
	return errs
}
