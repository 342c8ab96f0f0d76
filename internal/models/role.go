package models

import "fmt"

// Role is a workspace role. The set is closed: OWNER > ADMIN > MEMBER.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// Rank orders roles for gate checks. Unknown roles rank below MEMBER.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

// AtLeast reports whether r satisfies a gate requiring min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// JoinStatus is the state of a join request. APPROVED and REJECTED are terminal.
type JoinStatus string

const (
	JoinStatusPending  JoinStatus = "PENDING"
	JoinStatusApproved JoinStatus = "APPROVED"
	JoinStatusRejected JoinStatus = "REJECTED"
)

func (s JoinStatus) Valid() bool {
	switch s {
	case JoinStatusPending, JoinStatusApproved, JoinStatusRejected:
		return true
	default:
		return false
	}
}

func (s JoinStatus) Terminal() bool {
	return s == JoinStatusApproved || s == JoinStatusRejected
}

func ParseJoinStatus(s string) (JoinStatus, error) {
	st := JoinStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown join request status %q", s)
	}
	return st, nil
}
