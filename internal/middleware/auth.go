package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/pkg/dto"
	"github.com/rs/zerolog/log"
)

// Credential header names. These are the wire contract.
const (
	HeaderUserToken         = "X-OTAS-USER-TOKEN"
	HeaderProjectID         = "X-OTAS-PROJECT-ID"
	HeaderSDKKey            = "X-OTAS-SDK-KEY"
	HeaderAgentKey          = "X-OTAS-AGENT-KEY"
	HeaderAgentSessionToken = "X-OTAS-AGENT-SESSION-TOKEN"
)

// UserResolver loads a user from a token's subject.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProjectResolver loads a project and the caller's mapping to it.
type ProjectResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetMapping(ctx context.Context, userID, projectID uuid.UUID) (*models.UserProjectMapping, error)
}

// UserAuth authenticates a user session token. The resolved user is attached
// to the request context.
func UserAuth(jwtService *services.JWTService, users UserResolver) drift.HandlerFunc {
	return func(c *drift.Context) {
		token := c.GetHeader(HeaderUserToken)
		if token == "" {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingToken))
			return
		}

		user, err := resolveUser(c, jwtService, users, token)
		if err != nil {
			failUserResolution(c, err)
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// UserProjectAuth authenticates a user session token together with an
// explicit project identifier, resolving user, project, and privilege. An
// authenticated user without an active mapping to the project is forbidden,
// never unauthorized.
func UserProjectAuth(jwtService *services.JWTService, users UserResolver, projects ProjectResolver) drift.HandlerFunc {
	return func(c *drift.Context) {
		token := c.GetHeader(HeaderUserToken)
		projectIDStr := c.GetHeader(HeaderProjectID)
		if token == "" || projectIDStr == "" {
			_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeMissingHeaders))
			return
		}

		user, err := resolveUser(c, jwtService, users, token)
		if err != nil {
			failUserResolution(c, err)
			return
		}

		projectID, err := uuid.Parse(projectIDStr)
		if err != nil {
			_ = c.JSON(http.StatusForbidden, dto.Fail(dto.CodeMappingInvalid))
			return
		}

		project, err := projects.GetByID(c.Request.Context(), projectID)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				_ = c.JSON(http.StatusForbidden, dto.Fail(dto.CodeMappingInvalid))
				return
			}
			log.Error().Err(err).Msg("project lookup failed")
			_ = c.JSON(http.StatusInternalServerError, dto.Fail(dto.CodeInternalError))
			return
		}

		mapping, err := projects.GetMapping(c.Request.Context(), user.ID, project.ID)
		if err != nil {
			if errors.Is(err, services.ErrMappingNotFound) {
				_ = c.JSON(http.StatusForbidden, dto.Fail(dto.CodeMappingInvalid))
				return
			}
			log.Error().Err(err).Msg("project mapping lookup failed")
			_ = c.JSON(http.StatusInternalServerError, dto.Fail(dto.CodeInternalError))
			return
		}

		c.Set(UserKey, user)
		c.Set(ProjectKey, project)
		c.Set(PrivilegeKey, mapping.Privilege)
		c.Next()
	}
}

// RequireAdmin gates an endpoint on Admin privilege. It must run after
// UserProjectAuth.
func RequireAdmin() drift.HandlerFunc {
	return func(c *drift.Context) {
		if GetPrivilege(c) != models.PrivilegeAdmin {
			_ = c.JSON(http.StatusForbidden, dto.Fail(dto.CodeForbidden))
			return
		}
		c.Next()
	}
}

func resolveUser(c *drift.Context, jwtService *services.JWTService, users UserResolver, token string) (*models.User, error) {
	claims, err := jwtService.ValidateUserToken(token)
	if err != nil {
		return nil, err
	}
	return users.GetByID(c.Request.Context(), claims.UserID)
}

// failUserResolution maps a resolveUser error onto the wire: bad or stale
// credentials are unauthorized, anything else is an internal failure.
func failUserResolution(c *drift.Context, err error) {
	if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrUserNotFound) {
		_ = c.JSON(http.StatusUnauthorized, dto.Fail(dto.CodeInvalidToken))
		return
	}
	log.Error().Err(err).Msg("user lookup failed")
	_ = c.JSON(http.StatusInternalServerError, dto.Fail(dto.CodeInternalError))
}
