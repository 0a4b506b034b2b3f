package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/middleware"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService}
}

// Create handles POST /api/project/v1/sdk/backend/key/create. The full key
// appears in this response and nowhere else, ever.
func (h *APIKeyHandler) Create(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	key, plainKey, err := h.apiKeyService.Create(c.Request.Context(), project.ID, req.Name, req.ExpiresAt)
	if err != nil {
		log.Error().Err(err).Msg("sdk key create failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("sdk_key_creation_failed"))
		return
	}

	response := dto.APIKeyCreatedResponse{
		ID:        key.ID,
		Key:       plainKey,
		Prefix:    key.Prefix,
		Name:      key.Name,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	}
	if key.ExpiresAt != nil {
		formatted := key.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &formatted
	}

	_ = c.JSON(http.StatusCreated, dto.OK("sdk_key_created", response))
}

// List handles GET /api/project/v1/sdk/backend/key/list. Only prefixes and
// metadata are returned; secrets are unrecoverable.
func (h *APIKeyHandler) List(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	keys, err := h.apiKeyService.List(c.Request.Context(), project.ID)
	if err != nil {
		log.Error().Err(err).Msg("sdk key list failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("sdk_key_list_failed"))
		return
	}

	response := make([]dto.APIKeyResponse, 0, len(keys))
	for i := range keys {
		response = append(response, dto.NewAPIKeyResponse(&keys[i]))
	}

	_ = c.JSON(http.StatusOK, dto.OK("sdk_keys_fetched", map[string]any{
		"keys": response,
	}))
}

// Revoke handles POST /api/project/v1/sdk/backend/key/revoke. Revoking an
// already-revoked key succeeds without change.
func (h *APIKeyHandler) Revoke(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
		return
	}

	var req dto.RevokeAPIKeyRequest
	if err := c.BindJSON(&req); err != nil || req.KeyID == uuid.Nil {
		_ = c.JSON(http.StatusBadRequest, dto.Fail("invalid_json"))
		return
	}

	if err := h.apiKeyService.Revoke(c.Request.Context(), req.KeyID, project.ID); err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.Fail("sdk_key_not_found"))
			return
		}
		log.Error().Err(err).Msg("sdk key revoke failed")
		_ = c.JSON(http.StatusInternalServerError, dto.Fail("sdk_key_revoke_failed"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("sdk_key_revoked", nil))
}

// Authenticate handles POST /api/project/v1/sdk/backend/key/authenticate.
// SDKKeyAuth has already verified the key; this just echoes the project so
// other services can delegate verification here.
func (h *APIKeyHandler) Authenticate(c *drift.Context) {
	project := middleware.GetProject(c)
	if project == nil {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidSDKKey))
		return
	}

	_ = c.JSON(http.StatusOK, dto.OK("sdk_key_valid", map[string]any{
		"project": dto.NewProjectResponse(project),
	}))
}
