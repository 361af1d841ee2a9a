package pg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigate-dev/unigate/internal/domain"
	internal_errors "github.com/unigate-dev/unigate/internal/errors"
)

func TestCreateUser(t *testing.T) {
	cleanTables(t)

	t.Run("self registration records a submitted audit event", func(t *testing.T) {
		user := createTestRegistrant(t, "jane@test.edu", domain.RoleStudent)
		assert.NotZero(t, user.Id)
		assert.Equal(t, domain.StatusPending, user.Status)
		assert.Equal(t, int64(1), user.Version)

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.AuditSubmitted, events[0].Action)
		assert.Nil(t, events[0].ActorId)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := storage.CreateUser(domain.User{
			Email:        "jane@test.edu",
			PasswordHash: "x",
			Role:         domain.RoleFaculty,
			Status:       domain.StatusPending,
			FirstName:    "Other",
			LastName:     "Person",
		}, nil)
		require.Error(t, err)
		assert.True(t, internal_errors.Is(err, internal_errors.KindDuplicateEmail))
	})

	t.Run("unknown department is rejected", func(t *testing.T) {
		missing := int64(9999)
		_, err := storage.CreateUser(domain.User{
			Email:        "nodept@test.edu",
			PasswordHash: "x",
			Role:         domain.RoleStudent,
			Status:       domain.StatusPending,
			FirstName:    "No",
			LastName:     "Dept",
			DepartmentId: &missing,
		}, nil)
		require.Error(t, err)
		assert.True(t, internal_errors.Is(err, internal_errors.KindValidation))
	})

	t.Run("provisioned account records the acting superadmin", func(t *testing.T) {
		actor := createTestAdmin(t, "root@test.edu")
		now := time.Now().UTC()
		created, err := storage.CreateUser(domain.User{
			Email:        "new-admin@test.edu",
			PasswordHash: "x",
			Role:         domain.RoleAdmin,
			Status:       domain.StatusApproved,
			FirstName:    "New",
			LastName:     "Admin",
			VerifiedAt:   &now,
			VerifiedBy:   &actor.Id,
		}, &actor)
		require.NoError(t, err)

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: created.Id})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.AuditProvisioned, events[0].Action)
		require.NotNil(t, events[0].ActorId)
		assert.Equal(t, actor.Id, *events[0].ActorId)
	})
}

func TestApproveUser(t *testing.T) {
	cleanTables(t)
	admin := createTestAdmin(t, "admin@test.edu")

	t.Run("pending to approved", func(t *testing.T) {
		user := createTestRegistrant(t, "pending@test.edu", domain.RoleStudent)

		updated, err := storage.ApproveUser(user.Id, admin)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, updated.Status)
		assert.Equal(t, user.Version+1, updated.Version)
		require.NotNil(t, updated.VerifiedAt)
		require.NotNil(t, updated.VerifiedBy)
		assert.Equal(t, admin.Id, *updated.VerifiedBy)

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id, Action: domain.AuditApproved})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].FromStatus)
		assert.Equal(t, domain.StatusPending, *events[0].FromStatus)
	})

	t.Run("re-approving is a no-op without a new audit event", func(t *testing.T) {
		user := createTestRegistrant(t, "twice@test.edu", domain.RoleStudent)

		first, err := storage.ApproveUser(user.Id, admin)
		require.NoError(t, err)

		second, err := storage.ApproveUser(user.Id, admin)
		require.NoError(t, err)
		assert.Equal(t, first.Version, second.Version)

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id, Action: domain.AuditApproved})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("approving a denied account clears the denial reason", func(t *testing.T) {
		user := createTestRegistrant(t, "denied-then@test.edu", domain.RoleFaculty)
		reason := "incomplete documents"
		_, err := storage.DenyUser(user.Id, admin, &reason)
		require.NoError(t, err)

		updated, err := storage.ApproveUser(user.Id, admin)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, updated.Status)
		assert.Nil(t, updated.DeniedReason)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := storage.ApproveUser(99999, admin)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))
	})
}

func TestDenyUser(t *testing.T) {
	cleanTables(t)
	admin := createTestAdmin(t, "admin@test.edu")

	t.Run("pending to denied with reason", func(t *testing.T) {
		user := createTestRegistrant(t, "deny-me@test.edu", domain.RoleStudent)
		reason := "unreadable transcript"

		updated, err := storage.DenyUser(user.Id, admin, &reason)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDenied, updated.Status)
		require.NotNil(t, updated.DeniedReason)
		assert.Equal(t, reason, *updated.DeniedReason)

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id, Action: domain.AuditDenied})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].Reason)
		assert.Equal(t, reason, *events[0].Reason)
	})

	t.Run("approved account cannot be denied", func(t *testing.T) {
		user := createTestRegistrant(t, "approved@test.edu", domain.RoleStudent)
		_, err := storage.ApproveUser(user.Id, admin)
		require.NoError(t, err)

		_, err = storage.DenyUser(user.Id, admin, nil)
		require.Error(t, err)
		assert.True(t, internal_errors.Is(err, internal_errors.KindInvalidTransition))
	})

	t.Run("re-denying without a new reason is a no-op", func(t *testing.T) {
		user := createTestRegistrant(t, "redeny@test.edu", domain.RoleStudent)
		reason := "first reason"
		first, err := storage.DenyUser(user.Id, admin, &reason)
		require.NoError(t, err)

		second, err := storage.DenyUser(user.Id, admin, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Version, second.Version)
	})
}

func TestDeleteUser(t *testing.T) {
	cleanTables(t)
	admin := createTestAdmin(t, "admin@test.edu")

	t.Run("removes the row but keeps the audit trail", func(t *testing.T) {
		user := createTestRegistrant(t, "goner@test.edu", domain.RoleStudent)

		deleted, err := storage.DeleteUser(user.Id, admin)
		require.NoError(t, err)
		assert.Equal(t, user.Email, deleted.Email)

		_, err = storage.UserById(user.Id)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))

		events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id})
		require.NoError(t, err)
		assert.Len(t, events, 2) // submitted + removed
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		user := createTestRegistrant(t, "twice-gone@test.edu", domain.RoleStudent)
		_, err := storage.DeleteUser(user.Id, admin)
		require.NoError(t, err)

		_, err = storage.DeleteUser(user.Id, admin)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))
	})
}

func TestWaitlistListing(t *testing.T) {
	cleanTables(t)
	admin := createTestAdmin(t, "admin@test.edu")

	student := createTestRegistrant(t, "student@test.edu", domain.RoleStudent)
	faculty := createTestRegistrant(t, "faculty@test.edu", domain.RoleFaculty)
	deniedStudent := createTestRegistrant(t, "denied@test.edu", domain.RoleStudent)
	_, err := storage.DenyUser(deniedStudent.Id, admin, nil)
	require.NoError(t, err)

	scope := []domain.Role{domain.RoleStudent, domain.RoleFaculty}

	t.Run("pending listing in submission order", func(t *testing.T) {
		users, err := storage.Waitlist(domain.WaitlistFilter{Status: domain.StatusPending}, scope, 50)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, student.Id, users[0].Id)
		assert.Equal(t, faculty.Id, users[1].Id)
	})

	t.Run("role filter", func(t *testing.T) {
		users, err := storage.Waitlist(domain.WaitlistFilter{Status: domain.StatusPending, Role: domain.RoleFaculty}, scope, 50)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, faculty.Id, users[0].Id)
	})

	t.Run("denied listing", func(t *testing.T) {
		users, err := storage.Waitlist(domain.WaitlistFilter{Status: domain.StatusDenied}, scope, 50)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, deniedStudent.Id, users[0].Id)
	})

	t.Run("roles outside scope are invisible", func(t *testing.T) {
		users, err := storage.Waitlist(domain.WaitlistFilter{Status: domain.StatusApproved}, scope, 50)
		require.NoError(t, err)
		assert.Empty(t, users) // the admin account is approved but out of scope
	})

	t.Run("limit", func(t *testing.T) {
		users, err := storage.Waitlist(domain.WaitlistFilter{Status: domain.StatusPending}, scope, 1)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestRecentlyRevoked(t *testing.T) {
	cleanTables(t)
	admin := createTestAdmin(t, "admin@test.edu")
	since := time.Now().UTC().Add(-time.Minute)

	denied := createTestRegistrant(t, "denied@test.edu", domain.RoleStudent)
	_, err := storage.DenyUser(denied.Id, admin, nil)
	require.NoError(t, err)

	removed := createTestRegistrant(t, "removed@test.edu", domain.RoleStudent)
	_, err = storage.ApproveUser(removed.Id, admin)
	require.NoError(t, err)
	_, err = storage.DeleteUser(removed.Id, admin)
	require.NoError(t, err)

	untouched := createTestRegistrant(t, "fine@test.edu", domain.RoleStudent)

	ids, err := storage.RecentlyRevoked(since)
	require.NoError(t, err)
	assert.Contains(t, ids, denied.Id)
	assert.Contains(t, ids, removed.Id) // revocation must survive row deletion
	assert.NotContains(t, ids, untouched.Id)
}
