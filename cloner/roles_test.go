package cloner

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneRolesSkipsManagedAndEveryone(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	sleeper := &sleepCounter{}
	w := newTestWriter(dst, sleeper)

	mapping, report := w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "1", Name: "Mod", Position: 2},
		{ID: "2", Name: "Bot", Position: 3, Managed: true},
		{ID: "0", Name: "@everyone", Position: 0, Everyone: true},
	})

	require.Len(t, mapping, 1)
	require.Contains(t, mapping, "1")
	assert.Equal(t, "Mod", mapping["1"].Name)
	assert.NotContains(t, mapping, "2")
	assert.NotContains(t, mapping, "0")
	assert.Equal(t, []string{"role:Mod"}, dst.writes())
	assert.Equal(t, 1, report.Created)
	assert.Empty(t, report.Failures)
}

func TestCloneRolesCreatesLowestFirst(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	w := newTestWriter(dst, &sleepCounter{})

	_, report := w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "10", Name: "Admin", Position: 9},
		{ID: "11", Name: "Member", Position: 1},
		{ID: "12", Name: "Helper", Position: 4},
		{ID: "13", Name: "Helper2", Position: 4},
		{ID: "14", Name: "Mod", Position: 6},
	})

	assert.Equal(t, []string{
		"role:Member",
		"role:Helper",
		"role:Helper2",
		"role:Mod",
		"role:Admin",
	}, dst.writes())
	assert.Equal(t, 5, report.Created)
}

func TestCloneRolesCarriesAttributes(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	w := newTestWriter(dst, &sleepCounter{})

	w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "1", Name: "Mod", Permissions: 0x2000, Color: 0xff8800, Hoist: true, Mentionable: true},
	})

	require.Len(t, dst.roles, 1)

	params := dst.roles[0]
	assert.Equal(t, "Mod", params.Name)
	assert.Equal(t, int64(0x2000), *params.Permissions)
	assert.Equal(t, 0xff8800, *params.Color)
	assert.True(t, *params.Hoist)
	assert.True(t, *params.Mentionable)
}

func TestCloneRolesHaltsOnPermissionDenied(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	dst.roleErrs["B"] = restError(http.StatusForbidden, 50013)

	sleeper := &sleepCounter{}
	w := newTestWriter(dst, sleeper)

	mapping, report := w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "1", Name: "A", Position: 1},
		{ID: "2", Name: "B", Position: 2},
		{ID: "3", Name: "C", Position: 3},
	})

	assert.Equal(t, []string{"role:A", "role:B"}, dst.writes())
	assert.Len(t, mapping, 1)
	assert.True(t, report.Halted)
	require.Len(t, report.Failures, 1)
	assert.True(t, errors.Is(report.Failures[0].Err, ErrPermissionDenied))
	assert.Equal(t, 1, sleeper.count)
}

func TestCloneRolesContinuesOnOtherErrors(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	dst.roleErrs["B"] = restError(http.StatusBadRequest, 50035)

	sleeper := &sleepCounter{}
	w := newTestWriter(dst, sleeper)

	mapping, report := w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "1", Name: "A", Position: 1},
		{ID: "2", Name: "B", Position: 2},
		{ID: "3", Name: "C", Position: 3},
	})

	assert.Equal(t, []string{"role:A", "role:B", "role:C"}, dst.writes())
	assert.Len(t, mapping, 2)
	assert.NotContains(t, mapping, "2")
	assert.False(t, report.Halted)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "B", report.Failures[0].Name)
	assert.True(t, errors.Is(report.Failures[0].Err, ErrTransientWrite))
	assert.Equal(t, 2, sleeper.count, "delay follows every successful creation only")
}

func TestCloneRolesSkipsInvalidIdentifier(t *testing.T) {
	t.Parallel()

	dst := newFakeDestination(true)
	w := newTestWriter(dst, &sleepCounter{})

	mapping, report := w.CloneRoles(context.Background(), testDestination, []RoleRecord{
		{ID: "abc", Name: "Broken", Position: 1},
		{ID: "2", Name: "Fine", Position: 2},
	})

	assert.Equal(t, []string{"role:Fine"}, dst.writes())
	assert.Len(t, mapping, 1)
	require.Len(t, report.Failures, 1)
	assert.True(t, errors.Is(report.Failures[0].Err, ErrInvalidIdentifier))
}
