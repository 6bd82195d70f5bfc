package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/scandoo/scandoo/internal/service"
	"github.com/scandoo/scandoo/internal/utils"
)

// ProductHandler handles the product HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProduct handles GET /products/:code
func (h *ProductHandler) GetProduct(c *gin.Context) {
	code := c.Param("code")

	product, err := h.productService.FetchByCode(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCode):
			utils.Error(c, 400, "Product code is required")
		case errors.Is(err, utils.ErrNotFound):
			utils.Error(c, 404, "product not found")
		case errors.Is(err, utils.ErrStoreUnavailable):
			utils.Error(c, 500, "Database connection error. Please check your MongoDB configuration.")
		default:
			utils.Error(c, 500, "Error fetching product")
		}
		return
	}

	c.JSON(200, product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, 400, "Invalid request body")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &in)
	if err != nil {
		writeMutationError(c, err, "Error creating product")
		return
	}

	c.JSON(201, product)
}

// UpdateProduct handles PUT /products/:code
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	code := c.Param("code")

	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, 400, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateByCode(c.Request.Context(), code, &in)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Error(c, 404, "product not found")
			return
		}
		writeMutationError(c, err, "Error updating product")
		return
	}

	c.JSON(200, product)
}

// writeMutationError maps create/update failures to response codes:
// invalid input 400, store connectivity 500 with a configuration hint,
// anything else 500 with a generic message.
func writeMutationError(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, utils.ErrInvalidCode):
		utils.Error(c, 400, "Product code is required")
	case utils.IsValidation(err):
		utils.Error(c, 400, err.Error())
	case errors.Is(err, utils.ErrStoreUnavailable):
		utils.Error(c, 500, "Database connection error. Please check your MongoDB configuration.")
	default:
		utils.Error(c, 500, generic)
	}
}
