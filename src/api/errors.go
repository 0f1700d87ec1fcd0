package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/theleywin/SkillShare/src/models"
)

// AuthenticationError means the credentials were rejected or the session is
// no longer valid.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// AuthorizationError means the caller may not touch the entity, typically
// because it belongs to another user.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "not allowed"
	}
	return e.Message
}

// NotFoundError is raised locally when an operation names an id that the
// local list does not hold. No request is sent in that case.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NetworkError wraps transport failures: the request never got an answer.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is any other non-2xx answer.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, message)
}

// ValidationError is returned before dispatch when input is malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a request body and converts failures to *ValidationError.
func Validate(req any) error {
	if err := models.Validate(req); err != nil {
		return &ValidationError{Message: models.DescribeValidation(err)}
	}
	return nil
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// StatusCode returns the HTTP status behind err, or 0 when there is none.
func StatusCode(err error) int {
	var server *ServerError
	if errors.As(err, &server) {
		return server.Status
	}
	if IsAuthentication(err) {
		return http.StatusUnauthorized
	}
	if IsAuthorization(err) {
		return http.StatusForbidden
	}
	return 0
}

// Message returns the text meant for the user.
func Message(err error) string {
	var server *ServerError
	if errors.As(err, &server) && server.Message != "" {
		return server.Message
	}
	return errors.Cause(err).Error()
}
