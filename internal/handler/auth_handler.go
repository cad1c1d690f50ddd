package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartledger/internal/domain"
	"smartledger/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account. The user_id is optional; one is generated
// when absent.
func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "registered", "user": user})
}

// Login verifies credentials and issues a fresh token, replacing any
// previously issued one.
func (h *AuthHandler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "login successful", "user": user})
}

// VerifyToken reports whether a token is currently valid. Invalid tokens are
// reported in the body rather than via an error status so clients can poll;
// store failures are not a verdict on the token and surface as errors.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	token := c.Query("token")

	identity, err := h.authService.VerifyToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"valid":   false,
				"message": "invalid or expired token",
			})
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"valid":      true,
		"user_id":    identity.UserID,
		"expires_at": identity.ExpiresAt,
	})
}
