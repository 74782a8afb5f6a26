package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// isConflict reports duplicate username or email, which the account
// endpoints answer with 409.
func isConflict(err error) bool {
	return stderrors.Is(err, service.ErrUsernameExists) || stderrors.Is(err, service.ErrEmailExists)
}

func conflictCode(err error) string {
	if stderrors.Is(err, service.ErrUsernameExists) {
		return errors.AuthUsernameExists
	}
	return errors.AuthEmailAlreadyExists
}

// GetMe returns the caller's profile
// GET /api/v1/users/me
func (ctrl *UserController) GetMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe edits the caller's profile
// PUT /api/v1/users/me
func (ctrl *UserController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile update request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.RespondWithBindingError(c, err)
		return
	}

	user, err := ctrl.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if isConflict(err) {
			errors.Conflict(c, conflictCode(err), err.Error())
			return
		}
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword
// POST /api/v1/users/change-password
func (ctrl *UserController) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	if err := ctrl.userService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// ListUsers
// GET /api/v1/users (admin)
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GetUser
// GET /api/v1/users/:id (admin)
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser
// DELETE /api/v1/users/:id (admin)
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.Status(http.StatusNoContent)
}
