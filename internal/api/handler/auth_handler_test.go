package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/config"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListAdmins(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if emails, ok := args.Get(0).([]string); ok {
		return emails, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) AddAdmin(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if emails, ok := args.Get(0).([]string); ok {
		return emails, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) RemoveAdmin(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if emails, ok := args.Get(0).([]string); ok {
		return emails, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) IsAdmin(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

const testJWTSecret = "test-secret-material"

func authTestConfig() config.Config {
	var cfg config.Config
	cfg.Server.Auth.Enabled = true
	cfg.Server.Auth.JWTSecret = testJWTSecret
	return cfg
}

func postToken(handler *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.GenerateBearerToken(rec, req)
	return rec
}

func TestGenerateBearerToken(t *testing.T) {
	t.Run("issues a signed token for a listed admin", func(t *testing.T) {
		admins := new(MockAdminService)
		admins.On("ListAdmins", mock.Anything).Return([]string{"owner@shop.example"}, nil)
		admins.On("IsAdmin", mock.Anything, "owner@shop.example").Return(true, nil)
		handler := NewAuthHandler(authTestConfig(), admins, testLogger())

		rec := postToken(handler, `{"email":"owner@shop.example"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		var resp dto.TokenResponse
		require.NoError(t, json.Unmarshal(envelope.Data, &resp))
		require.True(t, strings.HasPrefix(resp.Token, "Bearer "))

		parsed, err := jwt.Parse(strings.TrimPrefix(resp.Token, "Bearer "), func(tok *jwt.Token) (any, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, "owner@shop.example", claims["email"])
		assert.NotNil(t, claims["exp"])
	})

	t.Run("admits any email while the allow-list is empty", func(t *testing.T) {
		admins := new(MockAdminService)
		admins.On("ListAdmins", mock.Anything).Return([]string{}, nil)
		handler := NewAuthHandler(authTestConfig(), admins, testLogger())

		rec := postToken(handler, `{"email":"first@shop.example"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		admins.AssertNotCalled(t, "IsAdmin", mock.Anything, mock.Anything)
	})

	t.Run("rejects an email off the allow-list", func(t *testing.T) {
		admins := new(MockAdminService)
		admins.On("ListAdmins", mock.Anything).Return([]string{"owner@shop.example"}, nil)
		admins.On("IsAdmin", mock.Anything, "stranger@shop.example").Return(false, nil)
		handler := NewAuthHandler(authTestConfig(), admins, testLogger())

		rec := postToken(handler, `{"email":"stranger@shop.example"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.True(t, strings.HasPrefix(envelope.Message, "FORBIDDEN:"))
	})

	t.Run("requires an email", func(t *testing.T) {
		admins := new(MockAdminService)
		handler := NewAuthHandler(authTestConfig(), admins, testLogger())

		rec := postToken(handler, `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		admins.AssertNotCalled(t, "ListAdmins", mock.Anything)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		admins := new(MockAdminService)
		handler := NewAuthHandler(authTestConfig(), admins, testLogger())

		rec := postToken(handler, `{"email":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
