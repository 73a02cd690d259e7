// Package service implements the product lifecycle: list, get, create with
// sample values, update and permanent delete.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repository"
)

// Client-visible messages. Get and Update share one wording, Delete has its
// own.
const (
	MsgResourceNotFound = "Resource not found"
	MsgProductNotFound  = "Product not found"
)

// Observer receives one call per operation. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveProductOp(op, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveProductOp(string, string) {}

type ProductService struct {
	store    repository.ProductStore
	log      *zap.Logger
	observer Observer
}

// NewProductService builds the service. log and observer may be nil.
func NewProductService(store repository.ProductStore, log *zap.Logger, observer Observer) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &ProductService{store: store, log: log, observer: observer}
}

// List returns every product in store order, or an empty slice.
func (s *ProductService) List(ctx context.Context) (products []models.Product, err error) {
	const op = "ProductService.List"
	defer s.observe("list", &err)

	products, err = s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStore(err, MsgResourceNotFound))
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (product *models.Product, err error) {
	const op = "ProductService.Get"
	defer s.observe("get", &err)

	product, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStore(err, MsgResourceNotFound))
	}
	return product, nil
}

// Create inserts a sample product owned by owner. Callers fill in the real
// values with Update afterwards.
func (s *ProductService) Create(ctx context.Context, owner primitive.ObjectID) (product *models.Product, err error) {
	const op = "ProductService.Create"
	defer s.observe("create", &err)

	if owner.IsZero() {
		return nil, fmt.Errorf("%s: %w", op, apperror.InvalidArgument("owner is required"))
	}

	product = models.NewSampleProduct(owner)
	if err = s.store.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperror.StoreFailure(err))
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("user_id", owner.Hex()),
	)
	return product, nil
}

// Update overwrites the supplied business fields of an existing product. A
// missing product is reported before the input is checked. Rating, review
// count, owner and identifier are left as stored. Concurrent updates of one
// product are last-write-wins.
func (s *ProductService) Update(ctx context.Context, id string, in models.ProductUpdate) (product *models.Product, err error) {
	const op = "ProductService.Update"
	defer s.observe("update", &err)

	product, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStore(err, MsgResourceNotFound))
	}
	if err = validateUpdate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in.Apply(product)

	if err = s.store.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("%s: %w", op, fromStore(err, MsgResourceNotFound))
	}

	s.log.Info("product updated", zap.String("product_id", product.ID.Hex()))
	return product, nil
}

// Delete removes the product permanently. Deleting twice reports not found.
func (s *ProductService) Delete(ctx context.Context, id string) (err error) {
	const op = "ProductService.Delete"
	defer s.observe("delete", &err)

	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, fromStore(err, MsgProductNotFound))
	}

	if err = s.store.Delete(ctx, product.ID.Hex()); err != nil {
		return fmt.Errorf("%s: %w", op, fromStore(err, MsgProductNotFound))
	}

	s.log.Info("product deleted", zap.String("product_id", product.ID.Hex()))
	return nil
}

func validateUpdate(in models.ProductUpdate) error {
	if in.Price != nil && *in.Price < 0 {
		return apperror.InvalidArgument("price must not be negative")
	}
	if in.CountInStock != nil && *in.CountInStock < 0 {
		return apperror.InvalidArgument("countInStock must not be negative")
	}
	return nil
}

// fromStore classifies a store error. An identifier the store cannot parse
// is reported like a missing record.
func fromStore(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, repository.ErrInvalidID):
		return apperror.NotFound(MsgResourceNotFound)
	default:
		return apperror.StoreFailure(err)
	}
}

func (s *ProductService) observe(op string, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = apperror.KindOf(*err).String()
	}
	s.observer.ObserveProductOp(op, outcome)
}
