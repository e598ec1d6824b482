package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every *Error returned from parsing.
var ErrInvalid = errors.New("validation: invalid values")

// Issue is a single rule violation.
type Issue struct {
	Field   string `json:"field"`
	Path    string `json:"path,omitempty"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// Result captures the outcome of validating a value set.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// NewResult builds a Result from collected issues.
func NewResult(issues []Issue) Result {
	return Result{Valid: len(issues) == 0, Issues: issues}
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	return &Error{Issues: append([]Issue(nil), r.Issues...)}
}

// ByField groups issues by field name.
func (r Result) ByField() map[string][]Issue {
	out := make(map[string][]Issue)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue)
	}
	return out
}

// FieldIssue returns the first issue reported for field.
func (r Result) FieldIssue(field string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Field == field {
			return issue, true
		}
	}
	return Issue{}, false
}

// Error carries the issues of a failed parse.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = issue.Field
		}
		parts = append(parts, fmt.Sprintf("%s: %s", path, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalid.Error(), strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error {
	return ErrInvalid
}

// Issues extracts the issues from err when it is (or wraps) an *Error.
func Issues(err error) []Issue {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}
