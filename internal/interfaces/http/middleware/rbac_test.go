package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"scholar-sync-api/internal/domain/entity"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(entity.UserRoleAdmin, PermAdminAccess))
	assert.True(t, HasPermission(entity.UserRoleAdmin, PermDocumentUpload))
	assert.True(t, HasPermission(entity.UserRoleFaculty, PermDocumentUpload))
	assert.False(t, HasPermission(entity.UserRoleFaculty, PermAdminAccess))
	assert.True(t, HasPermission(entity.UserRoleStudent, PermDocumentRead))
	assert.False(t, HasPermission(entity.UserRoleStudent, PermDocumentUpload))
	assert.False(t, HasPermission(entity.UserRole("ghost"), PermDocumentRead))
}

func performWithRole(handler gin.HandlerFunc, role string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.GET("/t", func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePermission(t *testing.T) {
	mw := RequirePermission(PermDocumentUpload)

	assert.Equal(t, http.StatusOK, performWithRole(mw, "faculty").Code)
	assert.Equal(t, http.StatusOK, performWithRole(mw, "admin").Code)
	assert.Equal(t, http.StatusForbidden, performWithRole(mw, "student").Code)
	assert.Equal(t, http.StatusForbidden, performWithRole(mw, "").Code)
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(entity.UserRoleAdmin, entity.UserRoleFaculty)

	assert.Equal(t, http.StatusOK, performWithRole(mw, "admin").Code)
	assert.Equal(t, http.StatusOK, performWithRole(mw, "faculty").Code)
	assert.Equal(t, http.StatusForbidden, performWithRole(mw, "student").Code)
}

func TestRequireAdmin(t *testing.T) {
	mw := RequireAdmin()

	assert.Equal(t, http.StatusOK, performWithRole(mw, "admin").Code)
	assert.Equal(t, http.StatusForbidden, performWithRole(mw, "faculty").Code)
}
