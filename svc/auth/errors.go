package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("auth: invalid email or password")
	ErrEmailAlreadyExists  = errors.New("auth: email already in use")
	ErrWeakPassword        = errors.New("auth: password is too weak")
	ErrMissingPassword     = errors.New("auth: password is required")
	ErrInvalidEmail        = errors.New("auth: invalid email address")
	ErrTooManyRequests     = errors.New("auth: too many requests")
	ErrProviderUnavailable = errors.New("auth: identity provider unavailable")

	ErrInvalidState     = errors.New("auth: invalid or expired oauth state")
	ErrInvalidCode      = errors.New("auth: invalid authorization code")
	ErrNoPrimaryEmail   = errors.New("auth: provider returned no email")
	ErrEmailNotVerified = errors.New("auth: email is not verified by provider")
)

// UserMessage converts an authentication error into a short message that
// can be shown next to the sign-in form.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, ErrWeakPassword):
		return "Password should be at least 6 characters"
	case errors.Is(err, ErrMissingPassword):
		return "Please enter a password"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrEmailAlreadyExists):
		return "Email already in use"
	case errors.Is(err, ErrTooManyRequests):
		return "Too many attempts. Please try again later."
	case errors.Is(err, ErrProviderUnavailable):
		return "Network error. Check your connection."
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidCode):
		return "Sign-in link expired. Please try again."
	case errors.Is(err, ErrNoPrimaryEmail), errors.Is(err, ErrEmailNotVerified):
		return "Your Google account has no verified email."
	default:
		return "An error occurred. Please try again."
	}
}
