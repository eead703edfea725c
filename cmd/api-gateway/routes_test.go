package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/dto"
	"github.com/noah-isme/unischedule-api/internal/handler"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/config"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/export"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func (tokenStub) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return nil, appErrors.ErrInvalidCredentials
}

type timetableStub struct{}

func (timetableStub) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	return &dto.GenerateTimetableResponse{}, nil
}

func (timetableStub) ListExams(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error) {
	return []models.ExamListing{}, nil
}

func (timetableStub) ListConflicts(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, error) {
	return []models.Conflict{}, nil
}

func (timetableStub) ValidateDepartment(ctx context.Context, departmentID string) (*dto.ValidateDepartmentResponse, error) {
	return &dto.ValidateDepartmentResponse{DepartmentID: departmentID}, nil
}

func (timetableStub) Export(ctx context.Context, filter models.ExamFilter, format export.Format) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "t.csv", ContentType: "text/csv"}, nil
}

func testRouter() http.Handler {
	tokens := tokenStub{
		"admin":   {UserID: "u-1", Role: models.RoleAdmin},
		"head":    {UserID: "u-2", Role: models.RoleDepartmentHead, DepartmentID: "dept-1"},
		"student": {UserID: "u-3", Role: models.RoleStudent, FormationID: "form-1"},
		"orphan":  {UserID: "u-4", Role: models.RoleStudent},
	}
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	return newRouter(cfg, zap.NewNop(), routeDeps{
		auth:      handler.NewAuthHandler(tokens),
		timetable: handler.NewTimetableHandler(timetableStub{}, timetableStub{}),
		metrics:   handler.NewMetricsHandler(service.NewMetricsService(), nil, nil),
		authSvc:   tokens,
		observer:  nil,
	})
}

func TestRouterAccessMatrix(t *testing.T) {
	router := testRouter()
	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/exams", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/exams", "student", http.StatusOK},
		{http.MethodGet, "/api/v1/exams", "orphan", http.StatusForbidden},
		{http.MethodPost, "/api/v1/schedule/generate", "student", http.StatusForbidden},
		{http.MethodPost, "/api/v1/schedule/generate", "admin", http.StatusOK},
		{http.MethodPost, "/api/v1/schedule/generate", "head", http.StatusOK},
		{http.MethodPost, "/api/v1/department/validate", "admin", http.StatusForbidden},
		{http.MethodPost, "/api/v1/department/validate", "head", http.StatusOK},
		{http.MethodGet, "/api/v1/conflicts", "head", http.StatusOK},
		{http.MethodGet, "/api/v1/schedule/export", "student", http.StatusOK},
		{http.MethodPost, "/api/v1/auth/login", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, tc.want, w.Code, "%s %s as %q", tc.method, tc.path, tc.token)
	}
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
