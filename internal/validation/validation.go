package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperengineering/lexicon/internal/types"
)

// MaxWordLength is the longest word accepted from a request.
const MaxWordLength = 256

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateWord checks a word taken from a request path or body.
// Words are matched exactly, so surrounding whitespace is not trimmed.
func ValidateWord(c *Collector, word string) {
	c.Add(ValidateRequired("word", word))
	c.Add(ValidateUTF8("word", word))
	c.Add(ValidateNoNullBytes("word", word))
	c.Add(ValidateMaxLength("word", word, MaxWordLength))
}

// ValidateLearnedRequest checks a learned-flag update for word.
func ValidateLearnedRequest(word string, req *types.LearnedRequest) []ValidationError {
	var c Collector
	ValidateWord(&c, word)
	if req.Learned == nil {
		c.Add(&ValidationError{Field: "learned", Message: "is required"})
	}
	return c.Errors()
}

// ValidateSortOrder checks an optional sort order override.
func ValidateSortOrder(c *Collector, value string) {
	if value == "" {
		return
	}
	c.Add(ValidateEnum("sort", value, []string{string(types.SortTimestamp), string(types.SortUnlearned)}))
}
