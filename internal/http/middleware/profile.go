package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/contractor-billing/internal/auth"
	"github.com/nurpe/contractor-billing/internal/model"
)

const profileKey = "actingProfile"

// ProfileSource resolves a profile id to the acting profile.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// ResolveProfile extracts the bearer token, resolves the acting profile and
// stores it in the request context. Requests without a resolvable profile
// proceed unauthenticated; each handler decides what absence means.
func ResolveProfile(parser *auth.Parser, profiles ProfileSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		profileID, err := parser.ParseProfileID(token)
		if err != nil {
			c.Next()
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), profileID)
		if err != nil || profile == nil {
			c.Next()
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

// ProfileFrom returns the acting profile resolved for the request, if any.
func ProfileFrom(c *gin.Context) (*model.Profile, bool) {
	value, exists := c.Get(profileKey)
	if !exists {
		return nil, false
	}
	profile, ok := value.(*model.Profile)
	if !ok || profile == nil {
		return nil, false
	}
	return profile, true
}

// SetProfile is a test seam for handlers that read the acting profile.
func SetProfile(c *gin.Context, profile *model.Profile) {
	c.Set(profileKey, profile)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
