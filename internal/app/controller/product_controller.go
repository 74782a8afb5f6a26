package controller

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
	"github.com/ikkim/teashop-backend/internal/storage"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductForm is the multipart body of create and update. Tags are comma separated.
type ProductForm struct {
	Name          string `form:"name" binding:"required,max=255"`
	Description   string `form:"description"`
	Price         string `form:"price" binding:"required"`
	StockQuantity int    `form:"stock_quantity" binding:"gte=0"`
	Category      string `form:"category" binding:"max=100"`
	Tags          string `form:"tags"`
}

type DecrementStockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GetAllProducts lists the catalog with optional search and category filter
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := ctrl.productService.List(c.Request.Context(), service.ProductListOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetCategories returns the distinct non-empty categories
// GET /api/v1/products/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.productService.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateProduct
// POST /api/v1/products (admin, multipart)
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	input, image, ok := ctrl.bindForm(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), input, image)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct
// PUT /api/v1/products/:id (admin, multipart)
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, image, ok := ctrl.bindForm(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, input, image)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct
// DELETE /api/v1/products/:id (admin)
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.Status(http.StatusNoContent)
}

// DecrementStock removes units from stock, refusing to go below zero
// POST /api/v1/products/:id/stock/decrement (admin)
func (ctrl *ProductController) DecrementStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DecrementStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	product, err := ctrl.productService.DecrementStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctrl *ProductController) bindForm(c *gin.Context) (service.ProductInput, *service.ImageUpload, bool) {
	log := middleware.GetLoggerFromContext(c)

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		log.Warn("Invalid product form", map[string]interface{}{
			"error": err.Error(),
		})
		errors.RespondWithBindingError(c, err)
		return service.ProductInput{}, nil, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil {
		errors.RespondWithValidationError(c, map[string]string{"price": "must be a decimal number"})
		return service.ProductInput{}, nil, false
	}

	input := service.ProductInput{
		Name:          form.Name,
		Description:   form.Description,
		Price:         price,
		StockQuantity: form.StockQuantity,
		Category:      form.Category,
		Tags:          splitTags(form.Tags),
	}

	image, ok := readImage(c)
	if !ok {
		return service.ProductInput{}, nil, false
	}
	return input, image, true
}

// readImage loads the optional "image" part. A missing part is not an error.
func readImage(c *gin.Context) (*service.ImageUpload, bool) {
	header, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, true
	}
	if err != nil {
		errors.BadRequest(c, errors.UploadFailed, "Could not read image upload")
		return nil, false
	}
	if header.Size > storage.MaxImageSize {
		errors.BadRequest(c, errors.UploadFileTooLarge, "Image exceeds the 5MB limit")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		errors.BadRequest(c, errors.UploadFailed, "Could not read image upload")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		errors.BadRequest(c, errors.UploadFailed, "Could not read image upload")
		return nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, true
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
