package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Role classifies a connected party.
type Role string

const (
	// RolePending is the role of a connection that has not yet identified itself.
	RolePending Role = ""
	RoleEndUser Role = "user"
	RoleAdmin   Role = "admin"
)

// RoleFromAdminFlag maps the wire-level isAdmin flag to a Role.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleEndUser
}

// AccountID is the canonical numeric identity of an account. Clients send it
// as either a JSON number or a numeric string; both decode to the same value
// so equality comparisons never produce false negatives.
type AccountID int64

// UnmarshalJSON accepts both 42 and "42".
func (a *AccountID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("account id %q is not numeric", s)
	}
	*a = AccountID(n)
	return nil
}

// ParseAccountID normalizes an account id supplied in any of the forms a
// client may use (number, float-decoded number, or numeric string).
func ParseAccountID(v any) (AccountID, bool) {
	switch id := v.(type) {
	case AccountID:
		return id, true
	case int64:
		return AccountID(id), true
	case int:
		return AccountID(id), true
	case float64:
		return AccountID(int64(id)), true
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}
		return AccountID(n), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, false
		}
		return AccountID(n), true
	default:
		return 0, false
	}
}

// ConnectionIdentity is the registry's record for one live connection.
// It is created in the pending state on connect and populated when the
// connection identifies itself. The registry owns these records exclusively;
// other components refer to a connection by its id only.
type ConnectionIdentity struct {
	ConnectionID uuid.UUID
	AccountID    AccountID
	DisplayName  string
	Role         Role

	// CurrentRoom is the ticket the connection last joined, zero when the
	// connection has not joined any room. Room membership itself lives in
	// the membership index; this field is bookkeeping only.
	CurrentRoom int64
}

// IsPending reports whether the connection has identified itself yet.
func (c ConnectionIdentity) IsPending() bool {
	return c.Role == RolePending
}

// IsAdmin reports whether the connection belongs to an administrator.
func (c ConnectionIdentity) IsAdmin() bool {
	return c.Role == RoleAdmin
}
