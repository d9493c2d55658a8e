package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupModelsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}, &DepartmentSubscription{}, &Post{}))
	return db
}

func TestParseDepartment(t *testing.T) {
	for _, d := range AllDepartments() {
		got, ok := ParseDepartment(string(d))
		assert.True(t, ok, d)
		assert.Equal(t, d, got)
	}

	_, ok := ParseDepartment("Marketing")
	assert.False(t, ok)
	_, ok = ParseDepartment("hr")
	assert.False(t, ok, "matching is case sensitive")
	got, ok := ParseDepartment(" UI/UX ")
	assert.True(t, ok)
	assert.Equal(t, DepartmentUIUX, got)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Vice President")
	assert.True(t, ok)
	assert.Equal(t, RoleVicePresident, r)

	_, ok = ParseRole("CEO")
	assert.False(t, ok)

	assert.True(t, RoleManager.PostsInOwnDepartment())
	assert.True(t, RoleAssistant.PostsInOwnDepartment())
	assert.False(t, RoleMember.PostsInOwnDepartment())
	assert.True(t, RolePresident.CanAssignRoles())
	assert.False(t, RoleManager.CanAssignRoles())
}

func TestResolvePostDepartment(t *testing.T) {
	manager := &User{Role: RoleManager, Department: DepartmentHR}
	member := &User{Role: RoleMember, Department: DepartmentDesign}

	d, err := ResolvePostDepartment(manager, "")
	require.NoError(t, err)
	assert.Equal(t, DepartmentHR, d)

	d, err = ResolvePostDepartment(manager, DepartmentDevelopment)
	require.NoError(t, err)
	assert.Equal(t, DepartmentHR, d, "managers always post into their own department")

	_, err = ResolvePostDepartment(member, "")
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Equal(t, DepartmentRequiredMessage, appErr.Fields["department"])

	_, err = ResolvePostDepartment(member, "Nope")
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "department")

	d, err = ResolvePostDepartment(member, DepartmentMultimedia)
	require.NoError(t, err)
	assert.Equal(t, DepartmentMultimedia, d)
}

func TestUserMarshalJSON(t *testing.T) {
	u := User{
		ID:       7,
		Username: "ada",
		Password: "secret-hash",
		IsAdmin:  true,
		Subscriptions: []DepartmentSubscription{
			{Department: DepartmentGeneral},
			{Department: DepartmentHR},
		},
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "ada", out["username"])
	assert.NotContains(t, out, "password")
	assert.Equal(t, []interface{}{"General", "HR"}, out["subscriptions"])

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"id", "username", "email", "first_name", "last_name",
		"department", "role", "image", "subscriptions",
	}, keys)

	var back User
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, uint(7), back.ID)
	assert.Equal(t, []Department{DepartmentGeneral, DepartmentHR}, back.FollowedDepartments())
}

func TestUserHooks_RoleSequenceAndGeneralSubscription(t *testing.T) {
	db := setupModelsDB(t)

	admin := User{Username: "root", Email: "root@example.com", Password: "x", IsAdmin: true}
	require.NoError(t, db.Create(&admin).Error)
	assert.Equal(t, RoleMember, admin.Role)

	names := []string{"first", "second", "third"}
	created := make([]User, 0, len(names))
	for _, n := range names {
		u := User{Username: n, Email: n + "@example.com", Password: "x"}
		require.NoError(t, db.Create(&u).Error)
		created = append(created, u)
	}

	assert.Equal(t, RolePresident, created[0].Role)
	assert.Equal(t, RoleVicePresident, created[1].Role)
	assert.Equal(t, RoleMember, created[2].Role)

	for _, u := range append(created, admin) {
		var count int64
		require.NoError(t, db.Model(&DepartmentSubscription{}).
			Where("user_id = ? AND department = ?", u.ID, DepartmentGeneral).
			Count(&count).Error)
		assert.Equal(t, int64(1), count, u.Username)
	}
}

func TestPostHook_DepartmentRule(t *testing.T) {
	db := setupModelsDB(t)

	// Burn the President and Vice President slots.
	for _, n := range []string{"p", "vp"} {
		require.NoError(t, db.Create(&User{Username: n, Email: n + "@example.com", Password: "x"}).Error)
	}
	manager := User{Username: "mgr", Email: "mgr@example.com", Password: "x", Role: RoleManager, Department: DepartmentHR}
	require.NoError(t, db.Create(&manager).Error)
	member := User{Username: "mem", Email: "mem@example.com", Password: "x"}
	require.NoError(t, db.Create(&member).Error)

	p := Post{AuthorID: manager.ID, Title: "t", Content: "c"}
	require.NoError(t, db.Create(&p).Error)
	assert.Equal(t, DepartmentHR, p.Department)

	bad := Post{AuthorID: member.ID, Title: "t", Content: "c"}
	err := db.Create(&bad).Error
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, DepartmentRequiredMessage, appErr.Fields["department"])

	var count int64
	require.NoError(t, db.Model(&Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
