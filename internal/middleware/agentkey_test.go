package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAgentKeyApp(keys AgentKeyVerifier, resolved **models.Agent) http.Handler {
	app := drift.New()
	app.Use(AgentKeyAuth(keys))
	app.Get("/agent", func(c *drift.Context) {
		if resolved != nil {
			*resolved = GetAgent(c)
		}
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAgentKeyAuth_MissingKey(t *testing.T) {
	keys := new(testutil.MockAgentService)
	app := newAgentKeyApp(keys, nil)

	req := httptest.NewRequest(http.MethodGet, "/agent", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_agent_key")
}

func TestAgentKeyAuth_InvalidKey(t *testing.T) {
	keys := new(testutil.MockAgentService)
	app := newAgentKeyApp(keys, nil)

	keys.On("VerifyKey", mock.Anything, "agent_bogus_key").Return(nil, nil, services.ErrInvalidKey)

	req := httptest.NewRequest(http.MethodGet, "/agent", nil)
	req.Header.Set(HeaderAgentKey, "agent_bogus_key")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_or_expired_agent_key")
	keys.AssertExpectations(t)
}

func TestAgentKeyAuth_StoreFailure(t *testing.T) {
	keys := new(testutil.MockAgentService)
	app := newAgentKeyApp(keys, nil)

	keys.On("VerifyKey", mock.Anything, "agent_ab12cd34_secret").Return(nil, nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/agent", nil)
	req.Header.Set(HeaderAgentKey, "agent_ab12cd34_secret")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.NotContains(t, rec.Body.String(), "invalid_or_expired_agent_key")
	keys.AssertExpectations(t)
}

func TestAgentKeyAuth_ValidKey(t *testing.T) {
	keys := new(testutil.MockAgentService)
	agentID := uuid.New()
	agent := &models.Agent{ID: agentID, Name: "support-bot"}
	key := &models.AgentKey{ID: uuid.New(), AgentID: agentID, Active: true}

	fullKey, _, err := services.GenerateKey(services.NamespaceAgent)
	require.NoError(t, err)

	keys.On("VerifyKey", mock.Anything, fullKey).Return(agent, key, nil)

	var resolved *models.Agent
	app := newAgentKeyApp(keys, &resolved)

	req := httptest.NewRequest(http.MethodGet, "/agent", nil)
	req.Header.Set(HeaderAgentKey, fullKey)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolved)
	assert.Equal(t, agentID, resolved.ID)
	keys.AssertExpectations(t)
}

func newAgentSessionApp(jwtSvc *services.JWTService, claims **services.AgentSessionClaims) http.Handler {
	app := drift.New()
	app.Use(AgentSessionAuth(jwtSvc))
	app.Get("/session", func(c *drift.Context) {
		if claims != nil {
			*claims = GetAgentSessionClaims(c)
		}
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAgentSessionAuth_MissingToken(t *testing.T) {
	app := newAgentSessionApp(newTestJWTService(), nil)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_agent_session_token")
}

func TestAgentSessionAuth_InvalidToken(t *testing.T) {
	app := newAgentSessionApp(newTestJWTService(), nil)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderAgentSessionToken, "garbage-token")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_or_expired_token")
}

func TestAgentSessionAuth_ExpiredToken(t *testing.T) {
	expiringSvc := services.NewJWTService("test-secret-key", time.Hour, 1*time.Millisecond)
	app := newAgentSessionApp(expiringSvc, nil)

	token, err := expiringSvc.GenerateAgentSessionToken(uuid.New(), uuid.New())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderAgentSessionToken, token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_or_expired_token")
}

func TestAgentSessionAuth_UserTokenRejected(t *testing.T) {
	jwtSvc := newTestJWTService()
	app := newAgentSessionApp(jwtSvc, nil)

	// A user session token must not pass agent session auth even though it
	// is signed with the same secret.
	token := generateUserToken(t, jwtSvc, uuid.New(), "test@example.com")

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderAgentSessionToken, token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_or_expired_token")
}

func TestAgentSessionAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	sessionID := uuid.New()
	agentID := uuid.New()

	token, err := jwtSvc.GenerateAgentSessionToken(sessionID, agentID)
	require.NoError(t, err)

	var claims *services.AgentSessionClaims
	app := newAgentSessionApp(jwtSvc, &claims)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderAgentSessionToken, token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, sessionID, claims.AgentSessionID)
	assert.Equal(t, agentID, claims.AgentID)
}
