package services

import (
	"testing"

	"proost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupMakesCreatorAdmin(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewGroupService(db)

	group, err := svc.Create(user.ID, "Stamtafel", "vrijdagavond", true)
	require.NoError(t, err)
	assert.Len(t, group.InviteCode, 10)

	admin, err := svc.IsAdmin(user.ID, group.ID)
	require.NoError(t, err)
	assert.True(t, admin)

	_, err = svc.Create(user.ID, "", "", false)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestJoinByCodeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	creator := createUser(t, db, "joris")
	joiner := createUser(t, db, "willem")
	svc := NewGroupService(db)

	group, err := svc.Create(creator.ID, "Stamtafel", "", false)
	require.NoError(t, err)

	_, err = svc.JoinByCode(joiner.ID, group.InviteCode)
	require.NoError(t, err)
	_, err = svc.JoinByCode(joiner.ID, group.InviteCode)
	require.NoError(t, err)

	var count int64
	db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	_, err = svc.JoinByCode(joiner.ID, "NOPE123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveGroup(t *testing.T) {
	db := newTestDB(t)
	creator := createUser(t, db, "joris")
	joiner := createUser(t, db, "willem")
	svc := NewGroupService(db)

	group := createGroupWith(t, db, creator.ID, joiner.ID)

	require.NoError(t, svc.Leave(joiner.ID, group.ID))
	assert.ErrorIs(t, svc.Leave(joiner.ID, group.ID), ErrNotMember)

	member, err := svc.IsMember(joiner.ID, group.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestJoinRequestFlow(t *testing.T) {
	db := newTestDB(t)
	creator := createUser(t, db, "joris")
	applicant := createUser(t, db, "willem")
	svc := NewGroupService(db)

	group, err := svc.Create(creator.ID, "Stamtafel", "", true)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RequestJoin(applicant.ID, 9999), ErrNotFound)
	assert.ErrorIs(t, svc.RequestJoin(creator.ID, group.ID), ErrInvalidState)

	require.NoError(t, svc.RequestJoin(applicant.ID, group.ID))
	require.NoError(t, svc.RequestJoin(applicant.ID, group.ID)) // resubmission collapses

	requests, err := svc.JoinRequests(group.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, applicant.ID, requests[0].UserID)

	require.NoError(t, svc.ResolveJoinRequest(group.ID, applicant.ID, true))
	assert.ErrorIs(t, svc.ResolveJoinRequest(group.ID, applicant.ID, true), ErrNotFound)

	member, err := svc.IsMember(applicant.ID, group.ID)
	require.NoError(t, err)
	assert.True(t, member)

	requests, err = svc.JoinRequests(group.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestGroupsOfAndUserGroups(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	other := createUser(t, db, "willem")
	svc := NewGroupService(db)

	g1 := createGroupWith(t, db, user.ID)
	createGroupWith(t, db, other.ID)

	ids, err := svc.GroupsOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{g1.ID}, ids)

	groups, err := svc.UserGroups(user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g1.ID, groups[0].ID)
}
