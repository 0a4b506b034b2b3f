package middleware

import (
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/otaslabs/otas-api/internal/models"
	"github.com/otaslabs/otas-api/internal/services"
)

// Context keys for identities resolved by the authenticators. Handlers read
// them through the typed getters below; the request itself is never mutated.
const (
	UserKey          = "auth_user"
	ProjectKey       = "auth_project"
	PrivilegeKey     = "auth_privilege"
	AgentKey         = "auth_agent"
	AgentKeyKey      = "auth_agent_key"
	SessionClaimsKey = "auth_agent_session_claims"
)

func GetUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func GetProject(c *drift.Context) *models.Project {
	if v, ok := c.Get(ProjectKey); ok {
		if p, ok := v.(*models.Project); ok {
			return p
		}
	}
	return nil
}

func GetPrivilege(c *drift.Context) models.Privilege {
	if v, ok := c.Get(PrivilegeKey); ok {
		if p, ok := v.(models.Privilege); ok {
			return p
		}
	}
	return 0
}

func GetAgent(c *drift.Context) *models.Agent {
	if v, ok := c.Get(AgentKey); ok {
		if a, ok := v.(*models.Agent); ok {
			return a
		}
	}
	return nil
}

func GetAgentKey(c *drift.Context) *models.AgentKey {
	if v, ok := c.Get(AgentKeyKey); ok {
		if k, ok := v.(*models.AgentKey); ok {
			return k
		}
	}
	return nil
}

func GetAgentSessionClaims(c *drift.Context) *services.AgentSessionClaims {
	if v, ok := c.Get(SessionClaimsKey); ok {
		if claims, ok := v.(*services.AgentSessionClaims); ok {
			return claims
		}
	}
	return nil
}
