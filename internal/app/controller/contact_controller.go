package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
)

type ContactController struct {
	notifications service.NotificationService
}

func NewContactController(notifications service.NotificationService) *ContactController {
	return &ContactController{notifications: notifications}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// Submit forwards a contact form to the shop inbox
// POST /api/v1/contact/submit
func (ctrl *ContactController) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	err := ctrl.notifications.SendContactMessage(c.Request.Context(), service.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondServiceError(c, err, "contact")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}
