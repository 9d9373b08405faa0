package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamboard/internal/api/handler"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/user"
)

func memberParams(teamID, memberID uuid.UUID) map[string]string {
	return map[string]string{"teamId": teamID.String(), "memberId": memberID.String()}
}

func TestMemberHandler_AddDefaultsToMember(t *testing.T) {
	teamID := uuid.New()
	u := sampleUser()
	var inserted *membership.Member
	members := &mockMemberStore{insertFn: func(_ context.Context, m *membership.Member) error {
		m.ID = uuid.New()
		inserted = m
		return nil
	}}
	users := &mockUserRepo{getByIDFn: func(_ context.Context, _ uuid.UUID) (*user.User, error) { return u, nil }}
	h := handler.NewMemberHandler(members, users)

	body := mustJSON(t, map[string]string{"userId": u.ID.String()})
	req, w := makeChiRequest(http.MethodPost, "/members", body, map[string]string{"teamId": teamID.String()})
	h.Add(w, asUser(req, uuid.New()))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, membership.RoleMember, inserted.Role)
	assert.Equal(t, teamID, inserted.TeamID)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", data["user"].(map[string]interface{})["email"])
}

func TestMemberHandler_AddErrors(t *testing.T) {
	teamID := uuid.New()
	params := map[string]string{"teamId": teamID.String()}
	existing := sampleUser()

	tests := []struct {
		name       string
		body       string
		users      *mockUserRepo
		insertErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "owner role not assignable",
			body:       `{"userId":"` + existing.ID.String() + `","role":"OWNER"}`,
			users:      &mockUserRepo{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown user",
			body:       `{"userId":"` + uuid.NewString() + `"}`,
			users:      &mockUserRepo{},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "already member",
			body:       `{"userId":"` + existing.ID.String() + `","role":"VIEWER"}`,
			users:      &mockUserRepo{getByIDFn: func(_ context.Context, _ uuid.UUID) (*user.User, error) { return existing, nil }},
			insertErr:  membership.ErrAlreadyMember,
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_MEMBER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := &mockMemberStore{insertFn: func(_ context.Context, _ *membership.Member) error { return tt.insertErr }}
			h := handler.NewMemberHandler(members, tt.users)

			req, w := makeChiRequest(http.MethodPost, "/members", []byte(tt.body), params)
			h.Add(w, asUser(req, uuid.New()))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestMemberHandler_UpdateRole(t *testing.T) {
	teamID, memberID := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		current    membership.Role
		body       string
		wantStatus int
	}{
		{name: "member to admin", current: membership.RoleMember, body: `{"role":"ADMIN"}`, wantStatus: http.StatusOK},
		{name: "owner row immutable", current: membership.RoleOwner, body: `{"role":"VIEWER"}`, wantStatus: http.StatusForbidden},
		{name: "cannot promote to owner", current: membership.RoleAdmin, body: `{"role":"OWNER"}`, wantStatus: http.StatusBadRequest},
		{name: "role required", current: membership.RoleAdmin, body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := false
			members := &mockMemberStore{
				getByIDFn: func(_ context.Context, _, _ uuid.UUID) (*membership.Member, error) {
					return &membership.Member{ID: memberID, TeamID: teamID, UserID: uuid.New(), Role: tt.current}, nil
				},
				updateRoleFn: func(_ context.Context, _, _ uuid.UUID, role membership.Role) (*membership.Member, error) {
					updated = true
					return &membership.Member{ID: memberID, TeamID: teamID, Role: role}, nil
				},
			}
			h := handler.NewMemberHandler(members, &mockUserRepo{})

			req, w := makeChiRequest(http.MethodPatch, "/members/x", []byte(tt.body), memberParams(teamID, memberID))
			h.UpdateRole(w, asUser(req, uuid.New()))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, updated)
		})
	}
}

func TestMemberHandler_Remove(t *testing.T) {
	teamID, memberID, actorID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name       string
		target     membership.Member
		wantStatus int
		wantCode   string
	}{
		{name: "regular member", target: membership.Member{UserID: uuid.New(), Role: membership.RoleMember}, wantStatus: http.StatusNoContent},
		{name: "owner", target: membership.Member{UserID: uuid.New(), Role: membership.RoleOwner}, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "self", target: membership.Member{UserID: actorID, Role: membership.RoleAdmin}, wantStatus: http.StatusBadRequest, wantCode: "SELF_REMOVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			members := &mockMemberStore{
				getByIDFn: func(_ context.Context, _, _ uuid.UUID) (*membership.Member, error) {
					target := tt.target
					return &target, nil
				},
				deleteFn: func(_ context.Context, _, _ uuid.UUID) error {
					deleted = true
					return nil
				},
			}
			h := handler.NewMemberHandler(members, &mockUserRepo{})

			req, w := makeChiRequest(http.MethodDelete, "/members/x", nil, memberParams(teamID, memberID))
			h.Remove(w, asUser(req, actorID))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
			}
			assert.Equal(t, tt.wantStatus == http.StatusNoContent, deleted)
		})
	}
}

func TestMemberHandler_RemoveUnknownMember(t *testing.T) {
	h := handler.NewMemberHandler(&mockMemberStore{}, &mockUserRepo{})

	req, w := makeChiRequest(http.MethodDelete, "/members/x", nil, memberParams(uuid.New(), uuid.New()))
	h.Remove(w, asUser(req, uuid.New()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
