package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-scheduler-api/internal/middleware"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.Claims(c)
	return claims
}

// homeDepartment returns the department a manager token is bound to, or ""
// when the caller may act on every department.
func homeDepartment(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleManager {
		return ""
	}
	return claims.DepartmentID
}

// authorizeDepartment rejects department-bound managers acting outside their department.
func authorizeDepartment(c *gin.Context, departmentID string) error {
	home := homeDepartment(c)
	if home == "" || home == departmentID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "department is outside your scope")
}
