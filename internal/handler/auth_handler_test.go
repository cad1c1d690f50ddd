package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"smartledger/internal/domain"
	"smartledger/internal/handler"
	"smartledger/internal/service"
	"smartledger/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(h gin.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("Register", mock.Anything, service.RegisterInput{
		Email:    "new@test.com",
		Password: "secret123",
	}).Return(&domain.User{UserID: "u1", Email: "new@test.com"}, nil)

	w := postJSON(h.Register, "/register", map[string]string{
		"email":    "new@test.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "ok", resp["status"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "u1", user["user_id"])
	// The password hash never leaves the server.
	assert.NotContains(t, w.Body.String(), "password")
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
		Return(nil, domain.ErrDuplicateEmail)

	w := postJSON(h.Register, "/register", map[string]string{
		"email":    "taken@test.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeBody(t, w)["status"])
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	w := postJSON(h.Register, "/register", map[string]string{"email": "new@test.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("Login", mock.Anything, service.LoginInput{
		Email:    "a@test.com",
		Password: "password123",
	}).Return(&domain.User{
		UserID:         "u1",
		Email:          "a@test.com",
		Token:          "tok-123",
		TokenExpiresAt: "2026-04-15 10:30:00",
	}, nil)

	w := postJSON(h.Login, "/login", map[string]string{
		"email":    "a@test.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "tok-123", user["token"])
	assert.Equal(t, "2026-04-15 10:30:00", user["token_expires_at"])
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("Login", mock.Anything, mock.AnythingOfType("service.LoginInput")).
		Return(nil, domain.ErrInvalidCredentials)

	w := postJSON(h.Login, "/login", map[string]string{
		"email":    "a@test.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_VerifyToken_Valid(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("VerifyToken", mock.Anything, "tok-123").Return(&service.TokenIdentity{
		UserID:    "u1",
		Email:     "a@test.com",
		ExpiresAt: "2026-04-15 10:30:00",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/verify_token?token=tok-123", nil)

	h.VerifyToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "u1", resp["user_id"])
}

func TestAuthHandler_VerifyToken_StoreFailureIsNotAVerdict(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	// A store outage must not tell the client their token is dead.
	mockAuth.On("VerifyToken", mock.Anything, "tok").
		Return(nil, errors.New("auth.VerifyToken: dial tcp 127.0.0.1:5432: connection refused"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/verify_token?token=tok", nil)

	h.VerifyToken(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "error", resp["status"])
	assert.NotContains(t, resp, "valid")
	// Internal detail stays out of the response body.
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

func TestAuthHandler_VerifyToken_Invalid(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth)

	mockAuth.On("VerifyToken", mock.Anything, "stale").Return(nil, domain.ErrUnauthorized)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/verify_token?token=stale", nil)

	h.VerifyToken(c)

	// Validity is reported in the body so clients can poll without error handling.
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, false, resp["valid"])
}
