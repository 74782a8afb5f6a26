package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/internal/storage"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductListOptions struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ProductInput carries the admin-editable product fields.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
	Tags          []string
}

// ImageUpload is an image received with a product form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ProductService interface {
	List(ctx context.Context, opts ProductListOptions) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, input ProductInput, image *ImageUpload) (*model.Product, error)
	Update(ctx context.Context, id uint, input ProductInput, image *ImageUpload) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	DecrementStock(ctx context.Context, id uint, quantity int) (*model.Product, error)
}

type productService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	blobs       storage.BlobStore
}

func NewProductService(db *gorm.DB, productRepo repository.ProductRepository, blobs storage.BlobStore) ProductService {
	return &productService{
		db:          db,
		productRepo: productRepo,
		blobs:       blobs,
	}
}

func (s *productService) repo(ctx context.Context) repository.ProductRepository {
	return s.productRepo.WithTx(s.db.WithContext(ctx))
}

func (s *productService) List(ctx context.Context, opts ProductListOptions) ([]model.Product, error) {
	products, err := s.repo(ctx).FindWithFilter(repository.ProductFilter{
		Search:   opts.Search,
		Category: opts.Category,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.repo(ctx).FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return s.repo(ctx).ListCategories()
}

func validateProductInput(input ProductInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return invalidArgument("name is required")
	case input.Price.IsNegative():
		return invalidArgument("price must not be negative")
	case input.StockQuantity < 0:
		return invalidArgument("stock quantity must not be negative")
	}
	return nil
}

func applyProductInput(p *model.Product, input ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Price = input.Price
	p.StockQuantity = input.StockQuantity
	p.Category = strings.TrimSpace(input.Category)
	p.Tags = input.Tags
}

func (s *productService) Create(ctx context.Context, input ProductInput, image *ImageUpload) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":      input.Name,
		"has_image": image != nil,
	})

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{}
	applyProductInput(product, input)

	if image != nil {
		if err := s.attachImage(ctx, product, image); err != nil {
			return nil, err
		}
	}

	if err := s.repo(ctx).Create(product); err != nil {
		s.deleteBlob(ctx, product.ImageKey)
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uint, input ProductInput, image *ImageUpload) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	// Upload before locking the row so the lock is not held across the blob store call.
	var staged model.Product
	if image != nil {
		if err := s.attachImage(ctx, &staged, image); err != nil {
			return nil, err
		}
	}

	var (
		product *model.Product
		oldKey  string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)

		locked, err := repo.FindByIDForUpdate(id)
		if err != nil {
			return notFoundAs(err, ErrProductNotFound)
		}

		oldKey = locked.ImageKey
		applyProductInput(locked, input)
		if image != nil {
			locked.ImageKey = staged.ImageKey
			locked.ImageURL = staged.ImageURL
		}

		if err := repo.Update(locked); err != nil {
			return err
		}
		product = locked
		return nil
	})
	if err != nil {
		s.deleteBlob(ctx, staged.ImageKey)
		return nil, err
	}

	if image != nil && oldKey != "" && oldKey != product.ImageKey {
		s.deleteBlob(ctx, oldKey)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo(ctx).Delete(id); err != nil {
		return notFoundAs(err, ErrProductNotFound)
	}
	s.deleteBlob(ctx, product.ImageKey)

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) DecrementStock(ctx context.Context, id uint, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	repo := s.repo(ctx)
	if err := repo.DecrementStock(id, quantity); err != nil {
		if errors.Is(err, repository.ErrStockUnderflow) {
			logger.Warn("Stock decrement refused", map[string]interface{}{
				"product_id": id,
				"quantity":   quantity,
			})
			return nil, ErrInsufficientStock
		}
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return s.Get(ctx, id)
}

func (s *productService) attachImage(ctx context.Context, product *model.Product, image *ImageUpload) error {
	if s.blobs == nil {
		return invalidArgument("image uploads are not configured")
	}
	if err := storage.ValidateContentType(image.ContentType, storage.AllowedImageTypes); err != nil {
		return invalidArgument("%s", err.Error())
	}
	if err := storage.ValidateFileSize(int64(len(image.Data)), storage.MaxImageSize); err != nil {
		return invalidArgument("%s", err.Error())
	}

	key, err := s.blobs.Put(ctx, storage.NewKey(storage.ProductImageFolder, image.Filename), image.Data, image.ContentType)
	if err != nil {
		logger.Error("Failed to store product image", err, map[string]interface{}{
			"filename": image.Filename,
		})
		return err
	}

	product.ImageKey = key
	product.ImageURL = s.blobs.URL(key)
	return nil
}

func (s *productService) deleteBlob(ctx context.Context, key string) {
	if key == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete product image", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
