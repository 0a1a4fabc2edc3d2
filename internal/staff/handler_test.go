package staff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mango-army/events-backend/internal/models"
	"github.com/mango-army/events-backend/pkg/utils"
)

type fakeRequestStore struct {
	byID      *models.StaffRequest
	decideErr error
	reopened  []string
}

func (f *fakeRequestStore) Create(ctx context.Context, req *models.StaffRequest) error { return nil }

func (f *fakeRequestStore) GetByID(ctx context.Context, id string) (*models.StaffRequest, error) {
	if f.byID == nil || f.byID.ID != id {
		return nil, pgx.ErrNoRows
	}
	return f.byID, nil
}

func (f *fakeRequestStore) ListPending(ctx context.Context) ([]models.StaffRequest, error) {
	return nil, nil
}

func (f *fakeRequestStore) HasPending(ctx context.Context, discordID string) (bool, error) {
	return false, nil
}

func (f *fakeRequestStore) Decide(ctx context.Context, id string, status models.RequestStatus) (*models.StaffRequest, error) {
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	out := *f.byID
	out.Status = status
	return &out, nil
}

func (f *fakeRequestStore) Reopen(ctx context.Context, id string) error {
	f.reopened = append(f.reopened, id)
	return nil
}

type fakeUserStore struct {
	existing  map[string]*models.User
	createErr error
	created   []*models.User
}

func (f *fakeUserStore) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	if u, ok := f.existing[discordID]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, u)
	return nil
}

func pendingRequest() *models.StaffRequest {
	return &models.StaffRequest{
		ID:        "req-1",
		DiscordID: "617702007188488205",
		Username:  "mango",
		StaffType: models.StaffTypeMinecraft,
		Status:    models.StatusPending,
	}
}

func newDecisionRouter(reqs RequestStore, users UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(reqs, users, nil, []string{"admin-1"}, zap.NewNop())
	r := gin.New()
	r.POST("/api/auth/approve/:id", h.Approve)
	r.POST("/api/auth/reject/:id", h.Reject)
	return r
}

func postDecision(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(DecideRequest{AdminDiscordID: "admin-1"})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestApproveCreatesUserWithMappedRole(t *testing.T) {
	reqs := &fakeRequestStore{byID: pendingRequest()}
	users := &fakeUserStore{}
	r := newDecisionRouter(reqs, users)

	rec := postDecision(t, r, "/api/auth/approve/req-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, users.created, 1)
	created := users.created[0]
	assert.Equal(t, "617702007188488205", created.DiscordID)
	assert.Equal(t, []models.Role{models.RoleStaffMC}, created.Roles)
	assert.Equal(t, models.RoleStaffMC, created.Role)

	// The one-time password in the response must match the stored hash.
	var body struct {
		Data struct {
			User ApprovedUser `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, utils.CheckPassword(body.Data.User.Password, created.Password))
}

func TestApproveAlreadyDecidedConflicts(t *testing.T) {
	reqs := &fakeRequestStore{byID: pendingRequest(), decideErr: ErrAlreadyDecided}
	users := &fakeUserStore{}
	r := newDecisionRouter(reqs, users)

	rec := postDecision(t, r, "/api/auth/approve/req-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, users.created)
}

func TestRejectAlreadyDecidedConflicts(t *testing.T) {
	reqs := &fakeRequestStore{byID: pendingRequest(), decideErr: ErrAlreadyDecided}
	r := newDecisionRouter(reqs, &fakeUserStore{})

	rec := postDecision(t, r, "/api/auth/reject/req-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveUnknownRequestNotFound(t *testing.T) {
	r := newDecisionRouter(&fakeRequestStore{}, &fakeUserStore{})

	rec := postDecision(t, r, "/api/auth/approve/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveExistingUserConflicts(t *testing.T) {
	pending := pendingRequest()
	reqs := &fakeRequestStore{byID: pending}
	users := &fakeUserStore{existing: map[string]*models.User{
		pending.DiscordID: {DiscordID: pending.DiscordID},
	}}
	r := newDecisionRouter(reqs, users)

	rec := postDecision(t, r, "/api/auth/approve/req-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveReopensRequestWhenUserCreateFails(t *testing.T) {
	reqs := &fakeRequestStore{byID: pendingRequest()}
	users := &fakeUserStore{createErr: errors.New("insert failed")}
	r := newDecisionRouter(reqs, users)

	rec := postDecision(t, r, "/api/auth/approve/req-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"req-1"}, reqs.reopened)
}
