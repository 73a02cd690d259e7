package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/models"
)

type ProductService interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, owner primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, id string, in models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UpdateResponse struct {
	Message        string          `json:"message"`
	UpdatedProduct *models.Product `json:"updatedProduct"`
}

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// GetProducts lists every product.
func (h *ProductHandler) GetProducts(c *gin.Context) error {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, products)
	return nil
}

// GetProductByID returns one product.
func (h *ProductHandler) GetProductByID(c *gin.Context) error {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, product)
	return nil
}

// CreateProduct creates a sample product owned by the caller. The request
// body is ignored; the admin fills in real values with an update.
func (h *ProductHandler) CreateProduct(c *gin.Context) error {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		return apperror.Unauthorized("Not authorized, no token")
	}

	product, err := h.products.Create(c.Request.Context(), id.UserID)
	if err != nil {
		return err
	}
	c.JSON(http.StatusCreated, product)
	return nil
}

// UpdateProduct overwrites the supplied fields and responds 201, which
// clients depend on.
func (h *ProductHandler) UpdateProduct(c *gin.Context) error {
	var in models.ProductUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		return &apperror.Error{
			Kind:    apperror.KindInvalidArgument,
			Message: "invalid product payload",
			Err:     err,
		}
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	c.JSON(http.StatusCreated, UpdateResponse{Message: "Product updated", UpdatedProduct: product})
	return nil
}

// DeleteProduct removes a product permanently.
func (h *ProductHandler) DeleteProduct(c *gin.Context) error {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		return err
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Producted deleted successfully"})
	return nil
}
