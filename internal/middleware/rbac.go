package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

// RequireRoles admits only callers whose token carries one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireScopeClaims rejects tokens of scoped roles that lack the scope they
// are confined to: a department head needs a department, a student a
// formation and a professor a professor id.
func RequireScopeClaims() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		missing := ""
		switch claims.Role {
		case models.RoleDepartmentHead:
			if claims.DepartmentID == "" {
				missing = "department"
			}
		case models.RoleStudent:
			if claims.FormationID == "" {
				missing = "formation"
			}
		case models.RoleProfessor:
			if claims.ProfessorID == "" {
				missing = "professor"
			}
		}
		if missing != "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is not bound to a "+missing))
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}
