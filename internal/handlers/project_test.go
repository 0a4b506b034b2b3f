package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func newProjectApp(jwtSvc *services.JWTService, users *testutil.MockUserService, handler *ProjectHandler) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.UserAuth(jwtSvc, users))
	app.Post("/api/project/v1/create", handler.Create)
	app.Get("/api/project/v1/list", handler.List)
	return app
}

func TestProjectHandler_Create_Success(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	jwtSvc := newTestJWTService()
	handler := NewProjectHandler(mockProjectService)

	userID := uuid.New()
	projectID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}
	project := &models.Project{ID: projectID, Name: "Checkout", Description: "Payments flow", CreatedBy: userID}

	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockProjectService.On("Create", mock.Anything, "Checkout", "Payments flow", userID).Return(project, nil)

	app := newProjectApp(jwtSvc, mockUserService, handler)

	body := dto.CreateProjectRequest{ProjectName: "Checkout", ProjectDescription: "Payments flow"}
	token := generateTestToken(t, jwtSvc, userID, user.Email)
	req := httptest.NewRequest(http.MethodPost, "/api/project/v1/create", jsonBody(t, body))
	req.Header.Set(middleware.HeaderUserToken, token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, 1, envelope.Status)
	assert.Equal(t, "project_created", envelope.StatusDescription)
	assert.Contains(t, string(envelope.Response), projectID.String())
	mockProjectService.AssertExpectations(t)
}

func TestProjectHandler_Create_NameTooLong(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	jwtSvc := newTestJWTService()
	handler := NewProjectHandler(mockProjectService)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)

	app := newProjectApp(jwtSvc, mockUserService, handler)

	body := dto.CreateProjectRequest{ProjectName: strings.Repeat("x", 256)}
	token := generateTestToken(t, jwtSvc, userID, user.Email)
	req := httptest.NewRequest(http.MethodPost, "/api/project/v1/create", jsonBody(t, body))
	req.Header.Set(middleware.HeaderUserToken, token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "project_creation_failed")
}

func TestProjectHandler_Create_DescriptionTooLong(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	jwtSvc := newTestJWTService()
	handler := NewProjectHandler(mockProjectService)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)

	app := newProjectApp(jwtSvc, mockUserService, handler)

	body := dto.CreateProjectRequest{ProjectName: "Checkout", ProjectDescription: strings.Repeat("y", 301)}
	token := generateTestToken(t, jwtSvc, userID, user.Email)
	req := httptest.NewRequest(http.MethodPost, "/api/project/v1/create", jsonBody(t, body))
	req.Header.Set(middleware.HeaderUserToken, token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "project_creation_failed")
}

func TestProjectHandler_Create_Unauthenticated(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	handler := NewProjectHandler(mockProjectService)

	app := newProjectApp(newTestJWTService(), mockUserService, handler)

	body := dto.CreateProjectRequest{ProjectName: "Checkout"}
	req := httptest.NewRequest(http.MethodPost, "/api/project/v1/create", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_token")
}

func TestProjectHandler_List(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	jwtSvc := newTestJWTService()
	handler := NewProjectHandler(mockProjectService)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}
	projects := []models.Project{
		{ID: uuid.New(), Name: "Checkout", CreatedBy: userID},
		{ID: uuid.New(), Name: "Search", CreatedBy: userID},
	}

	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockProjectService.On("ListByUser", mock.Anything, userID).Return(projects, nil)

	app := newProjectApp(jwtSvc, mockUserService, handler)

	token := generateTestToken(t, jwtSvc, userID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/api/project/v1/list", nil)
	req.Header.Set(middleware.HeaderUserToken, token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "projects_fetched", envelope.StatusDescription)
	require.Contains(t, string(envelope.Response), "Checkout")
	assert.Contains(t, string(envelope.Response), "Search")
	mockProjectService.AssertExpectations(t)
}

func TestProjectHandler_List_Empty(t *testing.T) {
	mockUserService := new(testutil.MockUserService)
	mockProjectService := new(testutil.MockProjectService)
	jwtSvc := newTestJWTService()
	handler := NewProjectHandler(mockProjectService)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "ada@example.com"}

	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockProjectService.On("ListByUser", mock.Anything, userID).Return([]models.Project{}, nil)

	app := newProjectApp(jwtSvc, mockUserService, handler)

	token := generateTestToken(t, jwtSvc, userID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/api/project/v1/list", nil)
	req.Header.Set(middleware.HeaderUserToken, token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"projects":[]`)
}
