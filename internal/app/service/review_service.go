package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewView struct {
	ID         uint      `json:"id"`
	ProductID  uint      `json:"product_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ReviewService interface {
	Create(ctx context.Context, productID, userID uint, rating int, text string) (*model.Review, error)
	Update(ctx context.Context, reviewID, userID uint, rating int, text string) (*model.Review, error)
	Delete(ctx context.Context, reviewID, userID uint) error
	ListByProduct(ctx context.Context, productID uint) ([]ReviewView, error)
}

type reviewService struct {
	db          *gorm.DB
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) Create(ctx context.Context, productID, userID uint, rating int, text string) (*model.Review, error) {
	logger.Info("Creating review", map[string]interface{}{
		"product_id": productID,
		"user_id":    userID,
		"rating":     rating,
	})

	review := &model.Review{
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		ReviewText: strings.TrimSpace(text),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)

		if _, err := s.productRepo.WithTx(tx).FindByIDForUpdate(productID); err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}
		if !model.ValidRating(rating) {
			return ErrInvalidRating
		}

		if _, err := reviews.FindByProductAndUser(productID, userID); err == nil {
			return ErrReviewExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := reviews.Create(review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrReviewExists
			}
			return err
		}
		return s.recompute(tx, productID)
	})
	if err != nil {
		s.logFailure("Failed to create review", err, productID, userID)
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
	})
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID, userID uint, rating int, text string) (*model.Review, error) {
	var updated *model.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)

		review, err := reviews.FindByID(reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if review.UserID != userID {
			return ErrNotReviewOwner
		}
		if !model.ValidRating(rating) {
			return ErrInvalidRating
		}
		if _, err := s.productRepo.WithTx(tx).FindByIDForUpdate(review.ProductID); err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}

		review.Rating = rating
		review.ReviewText = strings.TrimSpace(text)
		if err := reviews.Update(review); err != nil {
			return err
		}

		updated = review
		return s.recompute(tx, review.ProductID)
	})
	if err != nil {
		s.logFailure("Failed to update review", err, reviewID, userID)
		return nil, err
	}

	logger.Info("Review updated", map[string]interface{}{
		"review_id": reviewID,
		"rating":    rating,
	})
	return updated, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)

		review, err := reviews.FindByID(reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if review.UserID != userID {
			return ErrNotReviewOwner
		}

		if err := reviews.Delete(review.ID); err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		return s.recompute(tx, review.ProductID)
	})
	if err != nil {
		s.logFailure("Failed to delete review", err, reviewID, userID)
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})
	return nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uint) ([]ReviewView, error) {
	db := s.db.WithContext(ctx)

	if _, err := s.productRepo.WithTx(db).FindByID(productID); err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}

	reviews, err := s.reviewRepo.WithTx(db).FindByProductID(productID)
	if err != nil {
		return nil, err
	}

	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, ReviewView{
			ID:         r.ID,
			ProductID:  r.ProductID,
			UserID:     r.UserID,
			Username:   r.User.Username,
			Rating:     r.Rating,
			ReviewText: r.ReviewText,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return views, nil
}

// recompute rewrites the product's derived rating fields from all of its reviews.
func (s *reviewService) recompute(tx *gorm.DB, productID uint) error {
	stats, err := s.reviewRepo.WithTx(tx).StatsForProduct(productID)
	if err != nil {
		return err
	}
	return s.productRepo.WithTx(tx).UpdateRatingStats(productID, stats.Average, int(stats.Count))
}

func (s *reviewService) logFailure(msg string, err error, id, userID uint) {
	fields := map[string]interface{}{
		"id":      id,
		"user_id": userID,
	}
	if isDomainError(err) {
		fields["reason"] = err.Error()
		logger.Warn(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}
