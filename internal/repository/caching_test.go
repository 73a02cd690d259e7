package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cache"
	"storefront/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockStore) Save(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestCachingRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()
	product := &models.Product{ID: id, Name: "Widget"}

	next := new(mockStore)
	next.On("FindByID", ctx, id.Hex()).Return(product, nil).Once()
	next.On("FindAll", ctx).Return([]models.Product{*product}, nil).Once()

	repo := NewCachingRepository(next, cache.New(time.Minute), time.Minute)

	for range 3 {
		found, err := repo.FindByID(ctx, id.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Widget", found.Name)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	}

	next.AssertExpectations(t)
}

func TestCachingRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()
	before := &models.Product{ID: id, Name: "Sample product"}
	after := &models.Product{ID: id, Name: "Widget"}

	next := new(mockStore)
	next.On("FindByID", ctx, id.Hex()).Return(before, nil).Once()
	next.On("Save", ctx, after).Return(nil).Once()
	next.On("FindByID", ctx, id.Hex()).Return(after, nil).Once()
	next.On("Delete", ctx, id.Hex()).Return(nil).Once()
	next.On("FindByID", ctx, id.Hex()).Return(nil, ErrNotFound).Once()

	repo := NewCachingRepository(next, cache.New(time.Minute), time.Minute)

	found, err := repo.FindByID(ctx, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Sample product", found.Name)

	require.NoError(t, repo.Save(ctx, after))
	found, err = repo.FindByID(ctx, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)

	require.NoError(t, repo.Delete(ctx, id.Hex()))
	_, err = repo.FindByID(ctx, id.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	next.AssertExpectations(t)
}

func TestCachingRepositoryCreateDropsListing(t *testing.T) {
	ctx := context.Background()
	next := NewMemoryRepository()
	repo := NewCachingRepository(next, cache.New(time.Minute), time.Minute)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Create(ctx, models.NewSampleProduct(primitive.NewObjectID())))

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCachingRepositoryMixedCaseID(t *testing.T) {
	ctx := context.Background()
	repo := NewCachingRepository(NewMemoryRepository(), cache.New(time.Minute), time.Minute)

	product := models.NewSampleProduct(primitive.NewObjectID())
	require.NoError(t, repo.Create(ctx, product))
	upper := strings.ToUpper(product.ID.Hex())

	found, err := repo.FindByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, "Sample product", found.Name)

	found.Name = "Widget"
	require.NoError(t, repo.Save(ctx, found))

	found, err = repo.FindByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)

	require.NoError(t, repo.Delete(ctx, product.ID.Hex()))
	_, err = repo.FindByID(ctx, upper)
	assert.ErrorIs(t, err, ErrNotFound)
}

// pausingStore holds the first FindByID after it has read from the
// underlying store until release is closed.
type pausingStore struct {
	*MemoryRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.MemoryRepository.FindByID(ctx, id)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return product, err
}

func TestCachingRepositoryReadRacingWrite(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepository()
	product := models.NewSampleProduct(primitive.NewObjectID())
	require.NoError(t, mem.Create(ctx, product))

	next := &pausingStore{MemoryRepository: mem, read: make(chan struct{}), release: make(chan struct{})}
	repo := NewCachingRepository(next, cache.New(time.Minute), time.Minute)

	done := make(chan string)
	go func() {
		stale, err := repo.FindByID(ctx, product.ID.Hex())
		if err != nil {
			done <- err.Error()
			return
		}
		done <- stale.Name
	}()

	<-next.read
	updated := *product
	updated.Name = "Widget"
	require.NoError(t, repo.Save(ctx, &updated))
	close(next.release)
	assert.Equal(t, "Sample product", <-done)

	found, err := repo.FindByID(ctx, product.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)
}
