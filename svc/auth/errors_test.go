package auth_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/summarist/svc/auth"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		expected string
	}{
		{err: nil, expected: ""},
		{err: auth.ErrInvalidEmail, expected: "Invalid email address"},
		{err: errors.Join(auth.ErrWeakPassword, errors.New("password: too short")), expected: "Password should be at least 6 characters"},
		{err: auth.ErrMissingPassword, expected: "Please enter a password"},
		{err: fmt.Errorf("login: %w", auth.ErrInvalidCredentials), expected: "Invalid email or password"},
		{err: auth.ErrEmailAlreadyExists, expected: "Email already in use"},
		{err: auth.ErrTooManyRequests, expected: "Too many attempts. Please try again later."},
		{err: auth.ErrProviderUnavailable, expected: "Network error. Check your connection."},
		{err: auth.ErrInvalidState, expected: "Sign-in link expired. Please try again."},
		{err: auth.ErrEmailNotVerified, expected: "Your Google account has no verified email."},
		{err: errors.New("dial tcp: connection refused"), expected: "An error occurred. Please try again."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, auth.UserMessage(tt.err))
	}
}
