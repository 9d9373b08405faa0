package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamboard/internal/api/validation"
)

type signup struct {
	Name     string  `json:"name" validate:"required,nonblank,max=10"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

type invite struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,assignable_role"`
}

type taskPatch struct {
	Status    *string `json:"status" validate:"omitempty,task_status"`
	ProjectID string  `json:"projectId" validate:"required,uuid"`
}

func strPtr(s string) *string { return &s }

func TestStruct_Valid(t *testing.T) {
	errs := validation.Struct(signup{Name: "Ada", Email: "ada@example.com", Password: "longenough"})
	assert.Empty(t, errs)
}

func TestStruct_ReportsAllFieldsInOrder(t *testing.T) {
	errs := validation.Struct(signup{Name: "", Email: "nope", Password: "short", Avatar: strPtr("::")})

	require.Len(t, errs, 4)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "name is required", errs[0].Message)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "email must be a valid email address", errs[1].Message)
	assert.Equal(t, "password", errs[2].Field)
	assert.Equal(t, "password must be at least 8 characters", errs[2].Message)
	assert.Equal(t, "avatar", errs[3].Field)
}

func TestStruct_BlankAndTooLong(t *testing.T) {
	errs := validation.Struct(signup{Name: "   ", Email: "a@b.co", Password: "password"})
	require.Len(t, errs, 1)
	assert.Equal(t, "name is required", errs[0].Message)

	errs = validation.Struct(signup{Name: strings.Repeat("x", 11), Email: "a@b.co", Password: "password"})
	require.Len(t, errs, 1)
	assert.Equal(t, "name must be at most 10 characters", errs[0].Message)
}

func TestStruct_AssignableRole(t *testing.T) {
	tests := []struct {
		role  string
		valid bool
	}{
		{role: "", valid: true},
		{role: "ADMIN", valid: true},
		{role: "MEMBER", valid: true},
		{role: "VIEWER", valid: true},
		{role: "OWNER", valid: false},
		{role: "admin", valid: false},
		{role: "ROOT", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			errs := validation.Struct(invite{Email: "x@example.com", Role: tt.role})
			if tt.valid {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, "role", errs[0].Field)
			assert.Equal(t, "role must be one of ADMIN, MEMBER, VIEWER", errs[0].Message)
		})
	}
}

func TestStruct_TaskStatusAndUUID(t *testing.T) {
	errs := validation.Struct(taskPatch{Status: strPtr("BLOCKED"), ProjectID: "123"})

	require.Len(t, errs, 2)
	assert.Equal(t, "status must be one of TODO, IN_PROGRESS, DONE", errs[0].Message)
	assert.Equal(t, "projectId must be a valid UUID", errs[1].Message)

	assert.Empty(t, validation.Struct(taskPatch{ProjectID: "9b2f6c1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b"}))
	assert.Empty(t, validation.Struct(taskPatch{Status: strPtr("DONE"), ProjectID: "9b2f6c1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b"}))
}
