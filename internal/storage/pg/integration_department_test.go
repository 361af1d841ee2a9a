package pg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigate-dev/unigate/internal/domain"
	internal_errors "github.com/unigate-dev/unigate/internal/errors"
)

func TestDepartments(t *testing.T) {
	cleanTables(t)

	t.Run("create and list", func(t *testing.T) {
		cs, err := storage.CreateDepartment("Computer Science", "CS")
		require.NoError(t, err)
		assert.NotZero(t, cs.Id)

		_, err = storage.CreateDepartment("Mathematics", "MATH")
		require.NoError(t, err)

		departments, err := storage.Departments()
		require.NoError(t, err)
		assert.Len(t, departments, 2)
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		_, err := storage.CreateDepartment("Cognitive Science", "CS")
		require.Error(t, err)
		assert.True(t, internal_errors.Is(err, internal_errors.KindConflict))
	})

	t.Run("delete of referenced department conflicts", func(t *testing.T) {
		dept, err := storage.CreateDepartment("Physics", "PHY")
		require.NoError(t, err)

		user := createTestRegistrant(t, "physicist@test.edu", domain.RoleStudent)
		_, err = storage.db.Exec(`UPDATE users SET department_id = $1 WHERE id = $2`, dept.Id, user.Id)
		require.NoError(t, err)

		err = storage.DeleteDepartment(dept.Id)
		require.Error(t, err)
		assert.True(t, internal_errors.Is(err, internal_errors.KindConflict))
	})

	t.Run("delete unreferenced department", func(t *testing.T) {
		dept, err := storage.CreateDepartment("History", "HIST")
		require.NoError(t, err)

		require.NoError(t, storage.DeleteDepartment(dept.Id))

		_, err = storage.DepartmentById(dept.Id)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))
	})

	t.Run("delete unknown department", func(t *testing.T) {
		err := storage.DeleteDepartment(99999)
		assert.True(t, internal_errors.Is(err, internal_errors.KindNotFound))
	})
}

func TestAuditRetention(t *testing.T) {
	cleanTables(t)
	user := createTestRegistrant(t, "old-news@test.edu", domain.RoleStudent)

	// Age the submitted event past the cutoff by hand.
	_, err := storage.db.Exec(
		`UPDATE audit_events SET created_at = now() - interval '400 days' WHERE user_id = $1`, user.Id)
	require.NoError(t, err)

	deleted, err := storage.DeleteAuditEventsBefore(time.Now().UTC().AddDate(0, 0, -365))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := storage.AuditEvents(domain.AuditFilter{UserId: user.Id})
	require.NoError(t, err)
	assert.Empty(t, events)
}
