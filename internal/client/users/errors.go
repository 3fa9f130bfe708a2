package users

import "fmt"

// Error reports a failed repository operation. Err is one of the common
// sentinels (possibly wrapped) so callers keep matching with errors.Is.
type Error struct {
	Op       string
	Username string
	Err      error
}

func (e *Error) Error() string {
	if e.Username == "" {
		return fmt.Sprintf("users: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("users: %s %q: %v", e.Op, e.Username, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op, username string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Username: username, Err: err}
}
