package server

import (
	agentdomain "github.com/agencydesk/agencydesk/internal/agent/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// Identity is established upstream; the gateway forwards the verified
// actor in trusted headers.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	ctxActorID   = "actor_id"
	ctxActorRole = "actor_role"
)

// ActorRequired extracts the forwarded identity and rejects requests
// without one.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := snowflake.ParseString(c.GetHeader(HeaderActorID))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		role := agentdomain.Role(c.GetHeader(HeaderActorRole))
		if !role.Valid() {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(ctxActorID, id)
		c.Set(ctxActorRole, role)
		c.Next()
	}
}

func (s *Server) RequireRole(roles ...agentdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ctxActorRole)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func actorID(c *gin.Context) snowflake.ID {
	if v, ok := c.Get(ctxActorID); ok {
		if id, ok := v.(snowflake.ID); ok {
			return id
		}
	}
	return 0
}

func actorRole(c *gin.Context) agentdomain.Role {
	if v, ok := c.Get(ctxActorRole); ok {
		if role, ok := v.(agentdomain.Role); ok {
			return role
		}
	}
	return ""
}
