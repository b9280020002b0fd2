package parsing

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// rawSnippetLen bounds how much model text ParseError.Snippet returns.
const rawSnippetLen = 200

// APICallError reports a language model call that did not produce a reply.
// Model names the provider model when known.
type APICallError struct {
	Model   string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	msg := "language model call failed"
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError reports model output that does not match the recommendation grammar.
// Raw holds the unmodified model text.
type ParseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unparseable model output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unparseable model output: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Snippet returns the start of Raw on one line, for log messages.
func (e *ParseError) Snippet() string {
	s := strings.Join(strings.Fields(e.Raw), " ")
	if utf8.RuneCountInString(s) <= rawSnippetLen {
		return s
	}
	return string([]rune(s)[:rawSnippetLen]) + "..."
}

// ValidationError rejects a request before any stage runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}
