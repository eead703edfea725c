package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/middleware"
	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopedExamFilter confines a listing to what the caller may see. Scoped roles
// get their claim applied over whatever the query asked for.
func scopedExamFilter(claims *models.JWTClaims, departmentID, formationID string) (models.ExamFilter, error) {
	if claims == nil {
		return models.ExamFilter{}, appErrors.ErrUnauthorized
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleViceDean:
		return models.ExamFilter{DepartmentID: departmentID, FormationID: formationID}, nil
	case models.RoleDepartmentHead:
		return models.ExamFilter{DepartmentID: claims.DepartmentID, FormationID: formationID}, nil
	case models.RoleStudent:
		return models.ExamFilter{FormationID: claims.FormationID}, nil
	case models.RoleProfessor:
		return models.ExamFilter{ProfessorID: claims.ProfessorID}, nil
	default:
		return models.ExamFilter{}, appErrors.ErrForbidden
	}
}
