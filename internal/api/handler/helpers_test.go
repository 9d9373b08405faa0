package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamboard/internal/api/middleware"
	"github.com/daap14/teamboard/internal/auth"
	"github.com/daap14/teamboard/internal/invitation"
	"github.com/daap14/teamboard/internal/membership"
	"github.com/daap14/teamboard/internal/project"
	"github.com/daap14/teamboard/internal/task"
	"github.com/daap14/teamboard/internal/team"
	"github.com/daap14/teamboard/internal/user"
)

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// asUser attaches an authenticated identity to req.
func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), &auth.Identity{UserID: userID, Role: user.DefaultRole}))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "expected error object, got %v", env["error"])
	return errObj["code"].(string)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// --- Mock user repository ---

type mockUserRepo struct {
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	getByEmailFn func(ctx context.Context, email string) (*user.User, error)
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

// --- Mock membership store ---

type mockMemberStore struct {
	lookupFn     func(ctx context.Context, teamID, userID uuid.UUID) (membership.Role, error)
	insertFn     func(ctx context.Context, m *membership.Member) error
	getByIDFn    func(ctx context.Context, teamID, memberID uuid.UUID) (*membership.Member, error)
	updateRoleFn func(ctx context.Context, teamID, memberID uuid.UUID, role membership.Role) (*membership.Member, error)
	deleteFn     func(ctx context.Context, teamID, memberID uuid.UUID) error
	listFn       func(ctx context.Context, teamID uuid.UUID) ([]membership.Member, error)
}

func (m *mockMemberStore) Lookup(ctx context.Context, teamID, userID uuid.UUID) (membership.Role, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, teamID, userID)
	}
	return "", membership.ErrNotMember
}

func (m *mockMemberStore) Insert(ctx context.Context, mem *membership.Member) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, mem)
	}
	mem.ID = uuid.New()
	mem.JoinedAt = time.Now().UTC()
	return nil
}

func (m *mockMemberStore) GetByID(ctx context.Context, teamID, memberID uuid.UUID) (*membership.Member, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, teamID, memberID)
	}
	return nil, membership.ErrMemberNotFound
}

func (m *mockMemberStore) UpdateRole(ctx context.Context, teamID, memberID uuid.UUID, role membership.Role) (*membership.Member, error) {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, teamID, memberID, role)
	}
	return nil, membership.ErrMemberNotFound
}

func (m *mockMemberStore) Delete(ctx context.Context, teamID, memberID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, teamID, memberID)
	}
	return nil
}

func (m *mockMemberStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]membership.Member, error) {
	if m.listFn != nil {
		return m.listFn(ctx, teamID)
	}
	return []membership.Member{}, nil
}

// --- Mock team repository ---

type mockTeamRepo struct {
	createFn  func(ctx context.Context, t *team.Team) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	listFn    func(ctx context.Context, userID uuid.UUID) ([]team.Team, error)
	updateFn  func(ctx context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTeamRepo) Create(ctx context.Context, t *team.Team) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (m *mockTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]team.Team, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []team.Team{}, nil
}

func (m *mockTeamRepo) Update(ctx context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock project repository ---

type mockProjectRepo struct {
	createFn  func(ctx context.Context, p *project.Project) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*project.Project, error)
	listFn    func(ctx context.Context, teamID uuid.UUID) ([]project.Project, error)
	renameFn  func(ctx context.Context, id uuid.UUID, name string) (*project.Project, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProjectRepo) Create(ctx context.Context, p *project.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	p.ID = uuid.New()
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, project.ErrProjectNotFound
}

func (m *mockProjectRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]project.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx, teamID)
	}
	return []project.Project{}, nil
}

func (m *mockProjectRepo) Rename(ctx context.Context, id uuid.UUID, name string) (*project.Project, error) {
	if m.renameFn != nil {
		return m.renameFn(ctx, id, name)
	}
	return nil, project.ErrProjectNotFound
}

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock invitation manager ---

type mockInvitationManager struct {
	sendFn   func(ctx context.Context, in invitation.SendInput) (*invitation.Invitation, error)
	acceptFn func(ctx context.Context, token string, userID uuid.UUID) (*membership.Member, error)
	cancelFn func(ctx context.Context, teamID uuid.UUID, token string) (*invitation.Invitation, error)
	listFn   func(ctx context.Context, teamID uuid.UUID) ([]invitation.Invitation, error)
}

func (m *mockInvitationManager) Send(ctx context.Context, in invitation.SendInput) (*invitation.Invitation, error) {
	return m.sendFn(ctx, in)
}

func (m *mockInvitationManager) Accept(ctx context.Context, token string, userID uuid.UUID) (*membership.Member, error) {
	return m.acceptFn(ctx, token, userID)
}

func (m *mockInvitationManager) Cancel(ctx context.Context, teamID uuid.UUID, token string) (*invitation.Invitation, error) {
	return m.cancelFn(ctx, teamID, token)
}

func (m *mockInvitationManager) List(ctx context.Context, teamID uuid.UUID) ([]invitation.Invitation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, teamID)
	}
	return []invitation.Invitation{}, nil
}

// --- Mock task service ---

type mockTaskService struct {
	createFn func(ctx context.Context, t *task.Task, actorID uuid.UUID) error
	listFn   func(ctx context.Context, filter task.ListFilter) (*task.ListResult, error)
	updateFn func(ctx context.Context, id uuid.UUID, fields task.UpdateFields, actorID uuid.UUID) (*task.Task, error)
	deleteFn func(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

func (m *mockTaskService) Create(ctx context.Context, t *task.Task, actorID uuid.UUID) error {
	if m.createFn != nil {
		return m.createFn(ctx, t, actorID)
	}
	t.ID = uuid.New()
	t.CreatedByID = actorID
	return nil
}

func (m *mockTaskService) List(ctx context.Context, filter task.ListFilter) (*task.ListResult, error) {
	return m.listFn(ctx, filter)
}

func (m *mockTaskService) Update(ctx context.Context, id uuid.UUID, fields task.UpdateFields, actorID uuid.UUID) (*task.Task, error) {
	return m.updateFn(ctx, id, fields, actorID)
}

func (m *mockTaskService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, actorID)
	}
	return nil
}
