package state

import (
	"encoding/json"

	"github.com/dmitrymomot/summarist/svc/auth"
)

// IdentityStatus tells whether anyone is signed in.
type IdentityStatus uint8

const (
	// IdentityUnknown is the initial state while the session is being restored.
	IdentityUnknown IdentityStatus = iota
	// IdentityAbsent means nobody is signed in.
	IdentityAbsent
	// IdentityPresent means ID and Email are set.
	IdentityPresent
)

func (s IdentityStatus) String() string {
	switch s {
	case IdentityAbsent:
		return "absent"
	case IdentityPresent:
		return "present"
	default:
		return "unknown"
	}
}

// Identity is the session's view of the signed-in user.
type Identity struct {
	Status IdentityStatus
	ID     string
	Email  string
}

// Unknown is the identity of a session still being restored.
func Unknown() Identity { return Identity{Status: IdentityUnknown} }

// Absent is the identity of a signed-out session.
func Absent() Identity { return Identity{Status: IdentityAbsent} }

// Present is the identity of a signed-in user.
func Present(id, email string) Identity {
	return Identity{Status: IdentityPresent, ID: id, Email: email}
}

// IsPresent reports whether someone is signed in.
func (i Identity) IsPresent() bool { return i.Status == IdentityPresent }

func (i Identity) MarshalJSON() ([]byte, error) {
	type identityJSON struct {
		Status string `json:"status"`
		ID     string `json:"id,omitempty"`
		Email  string `json:"email,omitempty"`
	}
	return json.Marshal(identityJSON{Status: i.Status.String(), ID: i.ID, Email: i.Email})
}

func fromAuth(id *auth.Identity) Identity {
	if id == nil {
		return Absent()
	}
	return Present(id.ID, id.Email)
}
