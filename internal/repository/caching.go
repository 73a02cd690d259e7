package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cache"
	"storefront/internal/models"
)

const (
	productKeyPrefix = "product:"
	listKeyPrefix    = "products:list"
)

var _ ProductStore = (*CachingRepository)(nil)

// CachingRepository is a read-through cache in front of another store. Any
// write drops the written product and every cached listing.
//
// A read that was in flight while a write invalidated the cache does not
// fill it, so a completed write is never hidden behind an older document.
type CachingRepository struct {
	next  ProductStore
	cache *cache.Cache
	ttl   time.Duration

	mu         sync.Mutex
	generation uint64
}

func NewCachingRepository(next ProductStore, c *cache.Cache, ttl time.Duration) *CachingRepository {
	return &CachingRepository{next: next, cache: c, ttl: ttl}
}

func (r *CachingRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	if cached, ok := r.cache.Get(listKeyPrefix); ok {
		return append([]models.Product(nil), cached.([]models.Product)...), nil
	}

	gen := r.currentGeneration()
	products, err := r.next.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(gen, listKeyPrefix, append([]models.Product(nil), products...))
	return products, nil
}

func (r *CachingRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key, ok := productKey(id)
	if !ok {
		return r.next.FindByID(ctx, id)
	}
	if cached, ok := r.cache.Get(key); ok {
		product := cached.(models.Product)
		return &product, nil
	}

	gen := r.currentGeneration()
	product, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(gen, key, *product)
	return product, nil
}

func (r *CachingRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.next.Create(ctx, product); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache.DeleteByPrefix(listKeyPrefix)
	return nil
}

func (r *CachingRepository) Save(ctx context.Context, product *models.Product) error {
	err := r.next.Save(ctx, product)
	r.invalidate(product.ID.Hex())
	return err
}

func (r *CachingRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(id)
	return err
}

func (r *CachingRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *CachingRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// fill stores value under key unless a write happened since gen was read.
func (r *CachingRepository) fill(gen uint64, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return
	}
	r.cache.Set(key, value, r.ttl)
}

func (r *CachingRepository) invalidate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if key, ok := productKey(id); ok {
		r.cache.Delete(key)
	}
	r.cache.DeleteByPrefix(listKeyPrefix)
}

// productKey builds the cache key from the canonical lowercase hex form, so
// every spelling of one identifier shares an entry.
func productKey(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return productKeyPrefix + oid.Hex(), true
}
