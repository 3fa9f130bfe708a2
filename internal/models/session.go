package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/stampcard/internal/common"
)

// Session is the singleton "who is logged in" value: nobody, a customer or an
// admin, never both. The fields are unexported so a session can only be built
// whole through the constructors below.
type Session struct {
	user  string
	admin string
}

func EmptySession() Session {
	return Session{}
}

func CustomerSession(username string) Session {
	return Session{user: NormalizeUsername(username)}
}

func AdminSession(identity string) Session {
	return Session{admin: identity}
}

// User returns the logged in customer, or "" if there is none.
func (s Session) User() string { return s.user }

// Admin returns the logged in admin identity, or "".
func (s Session) Admin() string { return s.admin }

func (s Session) IsEmpty() bool { return s.user == "" && s.admin == "" }

func (s Session) IsCustomer() bool { return s.user != "" }

func (s Session) IsAdmin() bool { return s.admin != "" }

func (s Session) String() string {
	switch {
	case s.user != "":
		return "customer:" + s.user
	case s.admin != "":
		return "admin:" + s.admin
	default:
		return "anonymous"
	}
}

type sessionJSON struct {
	User  *string `json:"user"`
	Admin *string `json:"admin"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{User: strPtr(s.user), Admin: strPtr(s.admin)})
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var user, admin string
	if raw.User != nil {
		user = *raw.User
	}
	if raw.Admin != nil {
		admin = *raw.Admin
	}

	next, err := NewSession(user, admin)
	if err != nil {
		return err
	}
	*s = next
	return nil
}

// NewSession rebuilds a session from its stored parts. Both parts set is an
// invalid state and yields common.ErrInvalidSession.
func NewSession(user, admin string) (Session, error) {
	switch {
	case user != "" && admin != "":
		return Session{}, fmt.Errorf("user %q and admin %q: %w", user, admin, common.ErrInvalidSession)
	case user != "":
		return CustomerSession(user), nil
	case admin != "":
		return AdminSession(admin), nil
	default:
		return EmptySession(), nil
	}
}
