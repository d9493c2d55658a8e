package validation

import (
	"errors"
	"testing"

	"newsletter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Department string `json:"department" validate:"omitempty,department"`
	Role       string `json:"role" validate:"required,role"`
	Title      string `json:"title" validate:"required,notblank,max=10"`
	Username   string `json:"username" validate:"omitempty,username"`
	Password   string `json:"password" validate:"omitempty,password"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	return appErr.Fields
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Department: "UI/UX", Role: "Vice President", Title: "hello"}))
	assert.NoError(t, Struct(sample{Role: "Member", Title: "x", Username: "a.b+c", Password: "Abcdefg1"}))
}

func TestStruct_FieldMessages(t *testing.T) {
	fields := fieldsOf(t, Struct(sample{Department: "Sales", Role: "", Title: "   "}))

	assert.Equal(t, "Not a valid department.", fields["department"])
	assert.Equal(t, "This field is required.", fields["role"])
	assert.Equal(t, "This field may not be blank.", fields["title"])
}

func TestStruct_CustomTags(t *testing.T) {
	fields := fieldsOf(t, Struct(sample{Role: "King", Title: "ok", Username: "no spaces", Password: "short"}))

	assert.Equal(t, "Not a valid role.", fields["role"])
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}
