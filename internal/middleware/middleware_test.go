package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	token  string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != v.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}
}

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func serve(router *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := &validatorStub{token: "good", claims: &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}}
	router := gin.New()
	router.GET("/p", JWT(stub), func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		require.True(t, exists)
		require.Equal(t, "u-1", value.(*models.JWTClaims).UserID)
		c.Status(http.StatusNoContent)
	})

	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/p", nil).Code)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/p", map[string]string{"Authorization": "Basic abc"}).Code)
	require.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/p", map[string]string{"Authorization": "Bearer bad"}).Code)
	require.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/p", map[string]string{"Authorization": "bearer good"}).Code)
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		claims *models.JWTClaims
		want   int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"student", &models.JWTClaims{Role: models.RoleStudent}, http.StatusForbidden},
		{"vice dean", &models.JWTClaims{Role: models.RoleViceDean}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/g", withClaims(tc.claims), RequireRoles(models.RoleAdmin, models.RoleViceDean), ok)
			require.Equal(t, tc.want, serve(router, http.MethodPost, "/g", nil).Code)
		})
	}
}

func TestRequireScopeClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		claims *models.JWTClaims
		want   int
	}{
		{"head without department", &models.JWTClaims{Role: models.RoleDepartmentHead}, http.StatusForbidden},
		{"head with department", &models.JWTClaims{Role: models.RoleDepartmentHead, DepartmentID: "dept-1"}, http.StatusNoContent},
		{"student without formation", &models.JWTClaims{Role: models.RoleStudent}, http.StatusForbidden},
		{"professor without id", &models.JWTClaims{Role: models.RoleProfessor}, http.StatusForbidden},
		{"admin unscoped", &models.JWTClaims{Role: models.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/s", withClaims(tc.claims), RequireScopeClaims(), ok)
			require.Equal(t, tc.want, serve(router, http.MethodGet, "/s", nil).Code)
		})
	}
}

type observerStub struct {
	method, path string
	status       int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/exams/:id", ok)

	serve(router, http.MethodGet, "/exams/42", nil)
	require.Equal(t, "/exams/:id", observer.path)
	require.Equal(t, http.StatusNoContent, observer.status)

	serve(router, http.MethodGet, "/nope", nil)
	require.Equal(t, "unmatched", observer.path)
	require.Equal(t, http.StatusNotFound, observer.status)
}
