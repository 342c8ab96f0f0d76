package models

import (
	"testing"
	"time"
)

func TestRole_AtLeast(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleOwner, RoleOwner, true},
		{RoleOwner, RoleAdmin, true},
		{RoleAdmin, RoleOwner, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleMember, true},
		{Role("GUEST"), RoleMember, false},
	}
	for _, tc := range cases {
		if got := tc.role.AtLeast(tc.min); got != tc.want {
			t.Fatalf("%s.AtLeast(%s) = %v, want %v", tc.role, tc.min, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("ADMIN"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatalf("expected error for lowercase role")
	}
}

func TestJoinStatus_Terminal(t *testing.T) {
	if JoinStatusPending.Terminal() {
		t.Fatalf("PENDING must not be terminal")
	}
	if !JoinStatusApproved.Terminal() || !JoinStatusRejected.Terminal() {
		t.Fatalf("APPROVED and REJECTED must be terminal")
	}
}

func TestLifecycle_SoftDeleteAndRestore(t *testing.T) {
	l := Alive()
	now := time.Unix(1700000000, 0)
	l.SoftDelete(now)
	if l.IsActive() || l.DeletedAt == nil {
		t.Fatalf("expected inactive with timestamp")
	}
	first := *l.DeletedAt
	l.SoftDelete(now.Add(time.Hour))
	if !l.DeletedAt.Equal(first) {
		t.Fatalf("second soft delete must keep the first timestamp")
	}
	l.Restore()
	if !l.IsActive() || l.DeletedAt != nil {
		t.Fatalf("expected restored lifecycle")
	}
}
