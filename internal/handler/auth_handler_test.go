package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type authMock struct {
	req models.LoginRequest
	err error
}

func (m *authMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600, User: models.UserInfo{ID: "u-1", Role: models.RoleDepartmentHead}}, nil
}

func TestAuthLogin(t *testing.T) {
	mockSvc := &authMock{}
	handler := NewAuthHandler(mockSvc)
	c, w := newTimetableContext(http.MethodPost, "/auth/login", []byte(`{"email":"head@uni.test","password":"secret"}`), nil)

	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "head@uni.test", mockSvc.req.Email)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "token", envelope.Data.AccessToken)
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authMock{err: appErrors.ErrInvalidCredentials})
	c, w := newTimetableContext(http.MethodPost, "/auth/login", []byte(`{"email":"head@uni.test","password":"nope"}`), nil)

	handler.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthLoginMalformedPayload(t *testing.T) {
	handler := NewAuthHandler(&authMock{})
	c, w := newTimetableContext(http.MethodPost, "/auth/login", bytes.Repeat([]byte("{"), 2), nil)

	handler.Login(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMe(t *testing.T) {
	handler := NewAuthHandler(&authMock{})
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent, FormationID: "form-1"}
	c, w := newTimetableContext(http.MethodGet, "/auth/me", nil, claims)

	handler.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"formation_id":"form-1"`)

	c, w = newTimetableContext(http.MethodGet, "/auth/me", nil, nil)
	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
