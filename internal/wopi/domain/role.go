package domain

import (
	"errors"
	"strings"
)

// Role is the access level carried by a WOPI access token.
type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalises a role name. The meeting roles used by the decisions
// application map onto the two WOPI roles: a secretary edits, a member reads.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "editor", "secretary":
		return RoleEditor, nil
	case "viewer", "member":
		return RoleViewer, nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) CanWrite() bool { return r == RoleEditor }

func (r Role) String() string { return string(r) }

// Permission is the editor launch permission for the role.
func (r Role) Permission() string {
	if r.CanWrite() {
		return "edit"
	}
	return "readonly"
}
