package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
	"github.com/noah-isme/vgp-compliance-api/pkg/response"
)

// RequireRoles admits requests whose JWT claims carry one of roles. It must be
// mounted after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		names = append(names, string(role))
	}

	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, permitted := allowed[claims.Role]; !permitted {
			forbidden := appErrors.Clone(appErrors.ErrForbidden, "role not permitted for this operation")
			forbidden.Meta = map[string]interface{}{"required_roles": names}
			response.Error(c, forbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
