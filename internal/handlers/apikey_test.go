package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/otaslabs/otas-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// projectScope wires the full user+project authentication stack the way the
// admin key routes run in production.
type projectScope struct {
	jwtSvc   *services.JWTService
	users    *testutil.MockUserService
	projects *testutil.MockProjectService
	userID   uuid.UUID
	project  *models.Project
	token    string
}

func newProjectScope(t *testing.T, privilege models.Privilege) *projectScope {
	t.Helper()

	jwtSvc := newTestJWTService()
	users := new(testutil.MockUserService)
	projects := new(testutil.MockProjectService)

	userID := uuid.New()
	projectID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}
	project := &models.Project{ID: projectID, Name: "Checkout"}
	mapping := &models.UserProjectMapping{
		UserID: userID, ProjectID: projectID, Privilege: privilege, IsActive: true,
	}

	users.On("GetByID", mock.Anything, userID).Return(user, nil)
	projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
	projects.On("GetMapping", mock.Anything, userID, projectID).Return(mapping, nil)

	return &projectScope{
		jwtSvc:   jwtSvc,
		users:    users,
		projects: projects,
		userID:   userID,
		project:  project,
		token:    generateTestToken(t, jwtSvc, userID, user.Email),
	}
}

func (s *projectScope) request(t *testing.T, app http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(middleware.HeaderUserToken, s.token)
	req.Header.Set(middleware.HeaderProjectID, s.project.ID.String())
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyHandler_Create(t *testing.T) {
	scope := newProjectScope(t, models.PrivilegeAdmin)
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	keyID := uuid.New()
	name := "ci"
	key := &models.BackendAPIKey{
		ID: keyID, Prefix: "ab12cd34", ProjectID: scope.project.ID, Name: &name,
		Active: true, CreatedAt: time.Now(),
	}
	plainKey := "otas_ab12cd34_secret"

	mockKeys.On("Create", mock.Anything, scope.project.ID, &name, (*time.Time)(nil)).
		Return(key, plainKey, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserProjectAuth(scope.jwtSvc, scope.users, scope.projects))
	app.Use(middleware.RequireAdmin())
	app.Post("/api/project/v1/sdk/backend/key/create", handler.Create)

	rec := scope.request(t, app, http.MethodPost, "/api/project/v1/sdk/backend/key/create",
		dto.CreateAPIKeyRequest{Name: &name})

	assert.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "sdk_key_created", envelope.StatusDescription)

	var created dto.APIKeyCreatedResponse
	require.NoError(t, json.Unmarshal(envelope.Response, &created))
	assert.Equal(t, keyID, created.ID)
	assert.Equal(t, plainKey, created.Key)
	assert.Equal(t, "ab12cd34", created.Prefix)
	mockKeys.AssertExpectations(t)
}

func TestAPIKeyHandler_Create_MemberForbidden(t *testing.T) {
	scope := newProjectScope(t, models.PrivilegeMember)
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserProjectAuth(scope.jwtSvc, scope.users, scope.projects))
	app.Use(middleware.RequireAdmin())
	app.Post("/api/project/v1/sdk/backend/key/create", handler.Create)

	rec := scope.request(t, app, http.MethodPost, "/api/project/v1/sdk/backend/key/create",
		dto.CreateAPIKeyRequest{})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
	mockKeys.AssertNotCalled(t, "Create")
}

func TestAPIKeyHandler_List(t *testing.T) {
	scope := newProjectScope(t, models.PrivilegeMember)
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	keys := []models.BackendAPIKey{
		{ID: uuid.New(), Prefix: "ab12cd34", ProjectID: scope.project.ID, Active: true, CreatedAt: time.Now()},
		{ID: uuid.New(), Prefix: "ef56ab78", ProjectID: scope.project.ID, Active: true, CreatedAt: time.Now()},
	}
	mockKeys.On("List", mock.Anything, scope.project.ID).Return(keys, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserProjectAuth(scope.jwtSvc, scope.users, scope.projects))
	app.Get("/api/project/v1/sdk/backend/key/list", handler.List)

	rec := scope.request(t, app, http.MethodGet, "/api/project/v1/sdk/backend/key/list", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sdk_keys_fetched")
	assert.Contains(t, rec.Body.String(), "ab12cd34")
	assert.Contains(t, rec.Body.String(), "ef56ab78")
	// Hashes never leave the service layer.
	assert.NotContains(t, rec.Body.String(), "hashed_key")
	mockKeys.AssertExpectations(t)
}

func TestAPIKeyHandler_Revoke(t *testing.T) {
	scope := newProjectScope(t, models.PrivilegeAdmin)
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	keyID := uuid.New()
	mockKeys.On("Revoke", mock.Anything, keyID, scope.project.ID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserProjectAuth(scope.jwtSvc, scope.users, scope.projects))
	app.Use(middleware.RequireAdmin())
	app.Post("/api/project/v1/sdk/backend/key/revoke", handler.Revoke)

	rec := scope.request(t, app, http.MethodPost, "/api/project/v1/sdk/backend/key/revoke",
		dto.RevokeAPIKeyRequest{KeyID: keyID})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sdk_key_revoked")
	mockKeys.AssertExpectations(t)
}

func TestAPIKeyHandler_Revoke_NotFound(t *testing.T) {
	scope := newProjectScope(t, models.PrivilegeAdmin)
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	keyID := uuid.New()
	mockKeys.On("Revoke", mock.Anything, keyID, scope.project.ID).Return(services.ErrAPIKeyNotFound)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserProjectAuth(scope.jwtSvc, scope.users, scope.projects))
	app.Use(middleware.RequireAdmin())
	app.Post("/api/project/v1/sdk/backend/key/revoke", handler.Revoke)

	rec := scope.request(t, app, http.MethodPost, "/api/project/v1/sdk/backend/key/revoke",
		dto.RevokeAPIKeyRequest{KeyID: keyID})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "sdk_key_not_found")
}

func TestAPIKeyHandler_Authenticate(t *testing.T) {
	mockKeys := new(testutil.MockAPIKeyService)
	handler := NewAPIKeyHandler(mockKeys)

	projectID := uuid.New()
	project := &models.Project{ID: projectID, Name: "Checkout"}
	fullKey := "otas_ab12cd34_secret"

	mockKeys.On("VerifyKey", mock.Anything, fullKey).Return(project, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.SDKKeyAuth(mockKeys))
	app.Post("/api/project/v1/sdk/backend/key/authenticate", handler.Authenticate)

	req := httptest.NewRequest(http.MethodPost, "/api/project/v1/sdk/backend/key/authenticate", nil)
	req.Header.Set(middleware.HeaderSDKKey, fullKey)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "sdk_key_valid", envelope.StatusDescription)
	assert.Contains(t, string(envelope.Response), projectID.String())
	mockKeys.AssertExpectations(t)
}
