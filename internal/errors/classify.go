package errors

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Category buckets a failure into something a user can act on.
type Category string

const (
	CategoryInvalidCredential  Category = "invalid-credential"
	CategoryQuotaExceeded      Category = "quota-exceeded"
	CategoryInvalidRequest     Category = "invalid-request"
	CategoryServiceUnavailable Category = "service-unavailable"
	CategoryContentBlocked     Category = "content-blocked"
	CategoryUnexpected         Category = "unexpected"
	CategoryGenericUnavailable Category = "generic-unavailable"
)

// UserError is the presentation form of a failed operation. Message is safe
// to show directly; Cause keeps the original error for logs.
type UserError struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Cause    error    `json:"-"`
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

var categoryMessages = map[Category]string{
	CategoryInvalidCredential:  "The configured API key is invalid or missing. Check your credential and try again.",
	CategoryQuotaExceeded:      "The API quota has been exhausted. Wait a while before retrying, or review your plan limits.",
	CategoryInvalidRequest:     "The request was rejected as invalid. This usually indicates a malformed prompt or unsupported parameter.",
	CategoryServiceUnavailable: "The AI service is temporarily unavailable. Please try again in a few minutes.",
	CategoryContentBlocked:     "The request was blocked by content safety filters. Rephrase the input and try again.",
	CategoryGenericUnavailable: "The AI service could not complete the request. Please try again.",
}

// matcher rules are checked in order; the first substring hit wins.
var classifyRules = []struct {
	substrings []string
	category   Category
}{
	{[]string{"api key not valid"}, CategoryInvalidCredential},
	{[]string{"quota", "429"}, CategoryQuotaExceeded},
	{[]string{"400"}, CategoryInvalidRequest},
	{[]string{"500", "503"}, CategoryServiceUnavailable},
	{[]string{"safety"}, CategoryContentBlocked},
}

// Classify maps any error from the AI pipeline to a UserError. It is total:
// it never panics and never returns nil, whatever the input. An error that is
// already a UserError passes through unchanged so upper layers can classify
// defensively.
func Classify(err error) *UserError {
	if err == nil {
		return &UserError{
			Category: CategoryGenericUnavailable,
			Message:  categoryMessages[CategoryGenericUnavailable],
		}
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr
	}

	if cat, ok := classifyAppError(err); ok {
		return &UserError{Category: cat, Message: categoryMessages[cat], Cause: err}
	}

	text := err.Error()
	if strings.TrimSpace(text) == "" {
		return &UserError{
			Category: CategoryGenericUnavailable,
			Message:  categoryMessages[CategoryGenericUnavailable],
			Cause:    err,
		}
	}

	if cat, ok := classifyByStatus(err); ok {
		return &UserError{Category: cat, Message: categoryMessages[cat], Cause: err}
	}

	lower := strings.ToLower(text)
	for _, rule := range classifyRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return &UserError{
					Category: rule.category,
					Message:  categoryMessages[rule.category],
					Cause:    err,
				}
			}
		}
	}

	return &UserError{
		Category: CategoryUnexpected,
		Message:  fmt.Sprintf("An unexpected error occurred: %s", text),
		Cause:    err,
	}
}

// classifyAppError handles structured errors raised before any network call,
// most importantly the missing-credential case from the lazy client.
func classifyAppError(err error) (Category, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	switch appErr.Code {
	case ErrCodeMissingAPIKey:
		return CategoryInvalidCredential, true
	case ErrCodeInvalidRequest:
		return CategoryInvalidRequest, true
	default:
		return "", false
	}
}

// classifyByStatus consults a structured HTTP status when the SDK preserved
// one, ahead of the substring scan.
func classifyByStatus(err error) (Category, bool) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return "", false
	}
	switch apiErr.Code {
	case 401, 403:
		return CategoryInvalidCredential, true
	case 429:
		return CategoryQuotaExceeded, true
	case 400:
		return CategoryInvalidRequest, true
	case 500, 502, 503, 504:
		return CategoryServiceUnavailable, true
	default:
		return "", false
	}
}
