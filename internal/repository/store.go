package repository

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrInvalidID = errors.New("invalid product ID")
)

// ProductStore persists products. Implementations hold no business rules:
// they report ErrNotFound on a miss and ErrInvalidID for an identifier the
// backend cannot parse.
type ProductStore interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// Create assigns the identifier and timestamps, then inserts.
	Create(ctx context.Context, product *models.Product) error
	// Save replaces the stored document with the same identifier.
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
