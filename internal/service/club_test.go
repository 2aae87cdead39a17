package service

import (
	"testing"

	"github.com/readcircle/readcircle/internal/model"
	"github.com/stretchr/testify/assert"
)

func membership(userID, role string) *model.Membership {
	return &model.Membership{UserID: userID, Role: role}
}

func TestCanModifyClub(t *testing.T) {
	memberships := []*model.Membership{
		membership("alice", model.RoleAdmin),
		membership("bob", model.RoleMember),
	}

	assert.True(t, CanModifyClub(memberships, "alice"))
	assert.False(t, CanModifyClub(memberships, "bob"))
	assert.False(t, CanModifyClub(memberships, "carol"))

	// A club with no memberships has no admins
	assert.False(t, CanModifyClub(nil, "alice"))
}

func TestCanRemoveMember(t *testing.T) {
	tests := []struct {
		name        string
		memberships []*model.Membership
		requester   string
		target      string
		allowed     bool
		reason      string
	}{
		{
			name: "member leaves",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
				membership("bob", model.RoleMember),
			},
			requester: "bob",
			target:    "bob",
			allowed:   true,
		},
		{
			name: "admin removes member",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
				membership("bob", model.RoleMember),
			},
			requester: "alice",
			target:    "bob",
			allowed:   true,
		},
		{
			name: "member cannot remove another member",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
				membership("bob", model.RoleMember),
				membership("carol", model.RoleMember),
			},
			requester: "bob",
			target:    "carol",
			reason:    RemovalReasonForbidden,
		},
		{
			name: "sole admin cannot leave",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
				membership("bob", model.RoleMember),
			},
			requester: "alice",
			target:    "alice",
			reason:    RemovalReasonLastAdmin,
		},
		{
			name: "admin leaves when another admin remains",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
				membership("bob", model.RoleAdmin),
			},
			requester: "alice",
			target:    "alice",
			allowed:   true,
		},
		{
			name: "target is not a member",
			memberships: []*model.Membership{
				membership("alice", model.RoleAdmin),
			},
			requester: "alice",
			target:    "dave",
			reason:    RemovalReasonNotAMember,
		},
		{
			name:        "empty club",
			memberships: nil,
			requester:   "alice",
			target:      "alice",
			reason:      RemovalReasonNotAMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := CanRemoveMember(tt.memberships, tt.requester, tt.target)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, decision.Reason)
			}
		})
	}
}
