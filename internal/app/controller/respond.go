package controller

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
)

// specificCodes gives well-known service errors their own client code.
var specificCodes = []struct {
	err  error
	code string
}{
	{service.ErrProductNotFound, errors.ProductNotFound},
	{service.ErrCartItemNotFound, errors.CartItemNotFound},
	{service.ErrOrderNotFound, errors.OrderNotFound},
	{service.ErrReviewNotFound, errors.ReviewNotFound},
	{service.ErrInvalidQuantity, errors.CartInvalidQuantity},
	{service.ErrInvalidRating, errors.ReviewInvalidRating},
	{service.ErrInvalidOrderStatus, errors.OrderInvalidStatus},
	{service.ErrInvalidAmount, errors.PaymentInvalidAmount},
	{service.ErrWrongPassword, errors.AuthWrongPassword},
	{service.ErrReviewExists, errors.ReviewAlreadyExists},
	{service.ErrUsernameExists, errors.AuthUsernameExists},
	{service.ErrEmailExists, errors.AuthEmailAlreadyExists},
	{service.ErrNotReviewOwner, errors.AuthzOwnerOnly},
	{service.ErrOrderNotPending, errors.OrderInvalidState},
	{service.ErrInvalidCredentials, errors.AuthInvalidCredentials},
	{service.ErrTokenRevoked, errors.AuthTokenRevoked},
	{service.ErrInvalidToken, errors.AuthTokenInvalid},
}

// statusFor maps an error kind to its HTTP status and fallback code.
func statusFor(err error) (int, string) {
	switch {
	case stderrors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest, errors.CartInsufficientStock
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, errors.ValidationInvalidInput
	case stderrors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest, errors.OrderInvalidState
	case stderrors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, errors.ResourceConflict
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, errors.ResourceNotFound
	case stderrors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, errors.AuthzForbidden
	case stderrors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, errors.AuthUnauthorized
	case stderrors.Is(err, service.ErrGateway):
		return http.StatusInternalServerError, errors.PaymentGatewayError
	default:
		return http.StatusInternalServerError, errors.InternalServerError
	}
}

// respondServiceError writes the error body for a failed service call.
// Unexpected errors are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error, context string) {
	status, code := statusFor(err)
	for _, sc := range specificCodes {
		if stderrors.Is(err, sc.err) {
			code = sc.code
			break
		}
	}

	if status == http.StatusInternalServerError {
		middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
			"context": context,
		})
		if code == errors.InternalServerError {
			info := errors.ParseError(err, context)
			errors.RespondWithError(c, status, info.Code, info.Message)
			return
		}
		errors.RespondWithError(c, status, code, "The payment provider is unavailable. Please try again")
		return
	}

	errors.RespondWithError(c, status, code, err.Error())
}

// parseIDParam reads a positive integer path parameter, answering 400 otherwise.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// requireUserID reads the authenticated user, answering 401 when absent.
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}
