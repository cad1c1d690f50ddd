package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartledger/internal/domain"
	"smartledger/internal/parser"
)

// RespondOK sends a 200 response with status "ok" merged into the payload.
func RespondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"status": "ok"}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondError sends an error envelope with the given HTTP status. The body is
// always well-formed JSON so callers never see a bare transport error.
func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"status": "error", "message": msg})
}

// MapDomainError translates domain errors to an HTTP status and message.
// Validation and conflict details are safe to surface; anything unexpected
// collapses to a generic 500.
func MapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingBillID),
		errors.Is(err, domain.ErrMissingCategory),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidNWType),
		errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, domain.ErrDuplicateEmail.Error()
	case errors.Is(err, domain.ErrDuplicateUserID):
		return http.StatusBadRequest, domain.ErrDuplicateUserID.Error()
	case errors.Is(err, domain.ErrDuplicateBillID):
		return http.StatusConflict, domain.ErrDuplicateBillID.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "not allowed to act on this bill"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrParserBackend):
		return http.StatusBadGateway, "parser backend failure"
	default:
		return http.StatusInternalServerError, "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Provider rate limits are passed through as 429 with a Retry-After so
// clients back off instead of retrying into the same limit.
func HandleError(c *gin.Context, err error) {
	var rle *parser.RateLimitError
	if errors.As(err, &rle) {
		c.Header("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds())))
		RespondError(c, http.StatusTooManyRequests, "parser backend rate limited, retry later")
		return
	}

	status, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, msg)
}
