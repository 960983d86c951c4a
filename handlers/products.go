package handlers

import (
	"context"
	"fmt"
	"net/http"

	"restaurant-api/apperrors"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	Products ProductStore
}

type createProductRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Price    float64                `json:"price" binding:"required,gt=0"`
	Image    string                 `json:"image" binding:"required"`
	Category models.ProductCategory `json:"category" binding:"required"`
	Type     models.ProductType     `json:"type" binding:"required"`
}

type updateProductRequest struct {
	Name     *string                 `json:"name"`
	Price    *float64                `json:"price"`
	Image    *string                 `json:"image"`
	Category *models.ProductCategory `json:"category"`
	Type     *models.ProductType     `json:"type"`
}

// CreateProduct adds a product to the menu
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	if !req.Category.Valid() || !req.Type.Valid() {
		_ = c.Error(fmt.Errorf("%w: unknown category or type", apperrors.ErrBadRequest))
		return
	}

	exists, err := h.Products.ExistsByName(ctx, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if exists {
		_ = c.Error(fmt.Errorf("%w: product %q", apperrors.ErrConflict, req.Name))
		return
	}

	product := models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Image:    req.Image,
		Category: req.Category,
		Type:     req.Type,
	}
	if err := h.Products.Create(ctx, &product); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListProducts returns the whole menu
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(products) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.Products.FindByID(c.Request.Context(), c.Param("productId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct changes the given product fields
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	raw, _, err := readBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateProductRequest
	if err := bindBody(raw, &req); err != nil {
		_ = c.Error(err)
		return
	}
	fields, err := req.fields()
	if err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.Products.Update(c.Request.Context(), c.Param("productId"), fields)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (r updateProductRequest) fields() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if r.Name != nil {
		if blank(r.Name) {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrBadRequest)
		}
		fields["name"] = *r.Name
	}
	if r.Price != nil {
		if *r.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", apperrors.ErrBadRequest)
		}
		fields["price"] = *r.Price
	}
	if r.Image != nil {
		if blank(r.Image) {
			return nil, fmt.Errorf("%w: image cannot be empty", apperrors.ErrBadRequest)
		}
		fields["image"] = *r.Image
	}
	if r.Category != nil {
		if !r.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrBadRequest, *r.Category)
		}
		fields["category"] = *r.Category
	}
	if r.Type != nil {
		if !r.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown type %q", apperrors.ErrBadRequest, *r.Type)
		}
		fields["type"] = *r.Type
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields", apperrors.ErrBadRequest)
	}
	return fields, nil
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("productId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
