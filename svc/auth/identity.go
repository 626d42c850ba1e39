package auth

import (
	"time"

	"github.com/dmitrymomot/summarist/pkg/docstore"
)

// Sign-in methods recorded on accounts.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
)

// Identity is a signed-in principal.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Account is the stored credential record at accounts/{email}.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Method       string `json:"method"`
	PasswordHash string `json:"password_hash,omitempty"`
	GoogleID     string `json:"google_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// Identity returns the public part of the account.
func (a Account) Identity() *Identity {
	return &Identity{ID: a.ID, Email: a.Email}
}

// AccountPath returns the document path of the account for a normalized email.
func AccountPath(email string) string {
	return docstore.Join("accounts", email)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
