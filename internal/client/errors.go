package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 1 << 20

// APIError is returned for any non-2xx response. Body holds the parsed JSON
// error payload when the backend sent one.
type APIError struct {
	StatusCode int
	Status     string
	Body       json.RawMessage
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    http.StatusText(resp.StatusCode),
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 || !json.Valid(data) {
		return apiErr
	}
	apiErr.Body = json.RawMessage(data)

	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}

	switch v := payload.Error.(type) {
	case string:
		if v != "" {
			apiErr.Message = v
			return apiErr
		}
	case map[string]any:
		// OpenAI-style {"error": {"message": "..."}}
		if msg, ok := v["message"].(string); ok && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	if payload.Message != "" {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// IsStatus reports whether err is an *APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// ValidationError reports caller input rejected before any request was sent
type ValidationError struct {
	Fields []FieldError
}

// FieldError names one invalid input field
type FieldError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s (%s)", f.Field, f.Rule)
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return validate
}

// check validates v against its struct tags
func (c *Client) check(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return verr
}
