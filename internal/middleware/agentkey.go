package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

// AgentKeyVerifier resolves a full agent key string to its agent and key row.
type AgentKeyVerifier interface {
	VerifyKey(ctx context.Context, fullKey string) (*models.Agent, *models.AgentKey, error)
}

// AgentKeyAuth authenticates an opaque agent key from X-OTAS-AGENT-KEY.
func AgentKeyAuth(keys AgentKeyVerifier) drift.HandlerFunc {
	return func(c *drift.Context) {
		fullKey := c.GetHeader(HeaderAgentKey)
		if fullKey == "" {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingAgentKey))
			return
		}

		agent, key, err := keys.VerifyKey(c.Request.Context(), fullKey)
		if err != nil {
			if errors.Is(err, services.ErrInvalidKey) {
				_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidAgentKey))
				return
			}
			log.Error().Err(err).Msg("agent key verification failed")
			_ = c.JSON(http.StatusInternalServerError, dto.Fail(dto.CodeInternalError))
			return
		}

		c.Set(AgentKey, agent)
		c.Set(AgentKeyKey, key)
		c.Next()
	}
}

// AgentSessionAuth authenticates a signed agent session token from
// X-OTAS-AGENT-SESSION-TOKEN. Token verification is pure; no store access.
func AgentSessionAuth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token := c.GetHeader(HeaderAgentSessionToken)
		if token == "" {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingAgentSessionToken))
			return
		}

		claims, err := jwtService.ValidateAgentSessionToken(token)
		if err != nil {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidSessionToken))
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}
