package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// Rating is range-checked by the service so the error carries its own code.
type ReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text" binding:"max=2000"`
}

// ListProductReviews
// GET /api/v1/reviews/product/:productId
func (ctrl *ReviewController) ListProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	reviews, err := ctrl.reviewService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err, "review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

// CreateReview
// POST /api/v1/reviews/product/:productId
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), productID, userID, req.Rating, req.ReviewText)
	if err != nil {
		respondServiceError(c, err, "review")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// UpdateReview
// PUT /api/v1/reviews/:reviewId
func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), reviewID, userID, req.Rating, req.ReviewText)
	if err != nil {
		respondServiceError(c, err, "review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// DeleteReview
// DELETE /api/v1/reviews/:reviewId
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := ctrl.reviewService.Delete(c.Request.Context(), reviewID, userID); err != nil {
		respondServiceError(c, err, "review")
		return
	}
	c.Status(http.StatusNoContent)
}
