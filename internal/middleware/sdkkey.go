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

// SDKKeyVerifier resolves a full SDK key string to its project.
type SDKKeyVerifier interface {
	VerifyKey(ctx context.Context, fullKey string) (*models.Project, error)
}

// SDKKeyAuth authenticates an opaque project SDK key from X-OTAS-SDK-KEY.
// Every credential failure past the header check (malformed key, unknown
// prefix, no matching candidate, revoked or expired row) produces the same
// invalid_sdk_key response. Store failures are logged and come back as a
// generic 500.
func SDKKeyAuth(keys SDKKeyVerifier) drift.HandlerFunc {
	return func(c *drift.Context) {
		fullKey := c.GetHeader(HeaderSDKKey)
		if fullKey == "" {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingSDKKey))
			return
		}

		project, err := keys.VerifyKey(c.Request.Context(), fullKey)
		if err != nil {
			if errors.Is(err, services.ErrInvalidKey) {
				_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidSDKKey))
				return
			}
			log.Error().Err(err).Msg("sdk key verification failed")
			_ = c.JSON(http.StatusInternalServerError, dto.Fail(dto.CodeInternalError))
			return
		}

		c.Set(ProjectKey, project)
		c.Next()
	}
}
