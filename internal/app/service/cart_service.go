package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItemView is one cart line with the product fields the storefront renders.
type CartItemView struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductImageURL string          `json:"product_image_url"`
	ProductStock    int             `json:"product_stock"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// CartView is the computed cart. TotalAmount is derived on every read.
type CartView struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"user_id"`
	Username    string          `json:"username"`
	Items       []CartItemView  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type CartService interface {
	GetCart(ctx context.Context, userID *uint) (*CartView, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*CartView, error)
	Clear(ctx context.Context, userID uint) (*CartView, error)
	// ClearInTx empties the user's cart inside the caller's transaction.
	ClearInTx(tx *gorm.DB, userID uint) error
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID *uint) (*CartView, error) {
	if userID == nil {
		return emptyCartView(0), nil
	}

	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": *userID,
	})
	return s.loadView(s.db.WithContext(ctx), *userID)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		logger.Warn("Cannot add to cart: non-positive quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		product, err := s.productRepo.WithTx(tx).FindByIDForUpdate(productID)
		if err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}

		cart, err := carts.FindOrCreateCart(userID)
		if err != nil {
			return err
		}

		item, err := carts.FindItem(cart.ID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = &model.CartItem{CartID: cart.ID, UserID: userID, ProductID: productID}
		} else if err != nil {
			return err
		}

		requested := item.Quantity + quantity
		if !product.InStock(requested) {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, requested, product.StockQuantity)
		}

		item.Quantity = requested
		return carts.SaveItem(item)
	})
	if err != nil {
		s.logRejection("Failed to add item to cart", err, userID, productID)
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return s.loadView(db, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		product, err := s.productRepo.WithTx(tx).FindByIDForUpdate(productID)
		if err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}

		cart, err := carts.FindOrCreateCart(userID)
		if err != nil {
			return err
		}

		item, err := carts.FindItem(cart.ID, productID)
		if err != nil {
			return notFoundAs(err, ErrCartItemNotFound)
		}

		if !product.InStock(quantity) {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, product.StockQuantity)
		}

		item.Quantity = quantity
		return carts.SaveItem(item)
	})
	if err != nil {
		s.logRejection("Failed to update cart item", err, userID, productID)
		return nil, err
	}

	return s.loadView(db, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uint) (*CartView, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	db := s.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)

		cart, err := carts.FindOrCreateCart(userID)
		if err != nil {
			return err
		}

		item, err := carts.FindItem(cart.ID, productID)
		if err != nil {
			return notFoundAs(err, ErrCartItemNotFound)
		}
		return carts.DeleteItem(item.ID)
	})
	if err != nil {
		s.logRejection("Failed to remove cart item", err, userID, productID)
		return nil, err
	}

	return s.loadView(db, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uint) (*CartView, error) {
	db := s.db.WithContext(ctx)

	removed, err := s.cartRepo.WithTx(db).DeleteItemsByUserID(userID)
	if err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"removed": removed,
	})
	return s.loadView(db, userID)
}

func (s *cartService) ClearInTx(tx *gorm.DB, userID uint) error {
	_, err := s.cartRepo.WithTx(tx).DeleteItemsByUserID(userID)
	return err
}

func (s *cartService) loadView(db *gorm.DB, userID uint) (*CartView, error) {
	carts := s.cartRepo.WithTx(db)
	if _, err := carts.FindOrCreateCart(userID); err != nil {
		return nil, err
	}

	cart, err := carts.FindCartByUserID(userID)
	if err != nil {
		logger.Error("Failed to load cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return buildCartView(cart), nil
}

func (s *cartService) logRejection(msg string, err error, userID, productID uint) {
	fields := map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	}
	if isDomainError(err) {
		fields["reason"] = err.Error()
		logger.Warn(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}

func emptyCartView(userID uint) *CartView {
	return &CartView{
		UserID:      userID,
		Items:       []CartItemView{},
		TotalAmount: decimal.Zero,
	}
}

func buildCartView(cart *model.Cart) *CartView {
	view := emptyCartView(cart.UserID)
	view.ID = cart.ID
	view.Username = cart.User.Username

	for _, item := range cart.Items {
		// Soft-deleted products are not preloaded.
		if item.Product.ID == 0 {
			continue
		}
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartItemView{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.Product.Name,
			ProductPrice:    item.Product.Price,
			ProductImageURL: item.Product.ImageURL,
			ProductStock:    item.Product.StockQuantity,
			Quantity:        item.Quantity,
			LineTotal:       lineTotal,
		})
		view.TotalAmount = view.TotalAmount.Add(lineTotal)
	}
	return view
}
