package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/scandoo/scandoo/internal/database"
	"github.com/scandoo/scandoo/internal/models"
	"github.com/scandoo/scandoo/internal/repository"
	"github.com/scandoo/scandoo/internal/utils"
)

// fakeStore is an in-memory RecordStore. When failWith is set every
// operation returns it, simulating a store outage.
type fakeStore struct {
	docs     []models.Product
	failWith error
}

func (s *fakeStore) FindOne(_ context.Context, filter bson.M, out any) error {
	if s.failWith != nil {
		return s.failWith
	}
	code, _ := filter["code"].(string)
	for i := range s.docs {
		if s.docs[i].Code == code {
			*out.(*models.Product) = s.docs[i]
			return nil
		}
	}
	return database.ErrNoDocument
}

func (s *fakeStore) InsertOne(_ context.Context, doc any) (primitive.ObjectID, error) {
	if s.failWith != nil {
		return primitive.NilObjectID, s.failWith
	}
	p := *doc.(*models.Product)
	p.ID = primitive.NewObjectID()
	s.docs = append(s.docs, p)
	return p.ID, nil
}

func (s *fakeStore) FindOneAndUpdate(_ context.Context, filter bson.M, update bson.M, out any) error {
	if s.failWith != nil {
		return s.failWith
	}
	code, _ := filter["code"].(string)
	fields := update["$set"].(bson.M)
	for i := range s.docs {
		if s.docs[i].Code == code {
			s.docs[i].Title = fields["title"].(string)
			s.docs[i].Code = fields["code"].(string)
			s.docs[i].Price = fields["price"].(float64)
			*out.(*models.Product) = s.docs[i]
			return nil
		}
	}
	return database.ErrNoDocument
}

func newTestService(t *testing.T) (*ProductService, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	return NewProductService(repository.NewProductRepository(store)), store
}

func TestFetchByCode_EmptyCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FetchByCode(context.Background(), "")
	assert.ErrorIs(t, err, utils.ErrInvalidCode)
}

func TestFetchByCode_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FetchByCode(context.Background(), "no-such-code")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestFetchByCode_StoreUnavailable(t *testing.T) {
	svc, store := newTestService(t)
	store.failWith = errors.New("server selection error: context deadline exceeded")

	_, err := svc.FetchByCode(context.Background(), "X1")
	assert.ErrorIs(t, err, utils.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "MongoDB configuration")
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     ProductInput
		fields []string
	}{
		{"empty title", ProductInput{Title: "", Code: "X1", Price: 1}, []string{"title"}},
		{"whitespace title", ProductInput{Title: "   ", Code: "X1", Price: 1}, []string{"title"}},
		{"empty code", ProductInput{Title: "Pen", Code: "", Price: 1}, []string{"code"}},
		{"negative price", ProductInput{Title: "Pen", Code: "X1", Price: -0.01}, []string{"price"}},
		{"everything wrong", ProductInput{Title: "", Code: "", Price: -1}, []string{"title", "code", "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)

			_, err := svc.Create(context.Background(), &tt.in)

			var ve *utils.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields)
			assert.Empty(t, store.docs, "rejected create must not persist")
		})
	}
}

func TestCreate_FetchRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 9.99})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero(), "create must return the storage-assigned id")

	fetched, err := svc.FetchByCode(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Pen", fetched.Title)
	assert.Equal(t, "X1", fetched.Code)
	assert.Equal(t, 9.99, fetched.Price)

	// Fetch is idempotent without intervening writes.
	again, err := svc.FetchByCode(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, fetched, again)
}

func TestCreate_TrimsTitle(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), &ProductInput{Title: "  Pen  ", Code: "X1", Price: 1})
	require.NoError(t, err)
	assert.Equal(t, "Pen", created.Title)
}

func TestCreate_AllowsDuplicateCodes(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &ProductInput{Title: "Pencil", Code: "X1", Price: 2})
	require.NoError(t, err)

	// Insert is unconditional; lookup resolves to the first match.
	assert.Len(t, store.docs, 2)
	fetched, err := svc.FetchByCode(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Pen", fetched.Title)
}

func TestUpdateByCode_ChangesFieldsPreservesIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 9.99})
	require.NoError(t, err)

	updated, err := svc.UpdateByCode(ctx, "X1", &ProductInput{Title: "Pen2", Code: "X1", Price: 10.5})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Pen2", updated.Title)
	assert.Equal(t, 10.5, updated.Price)
}

func TestUpdateByCode_NotFoundPersistsNothing(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.UpdateByCode(context.Background(), "missing", &ProductInput{Title: "Pen", Code: "missing", Price: 1})
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.Empty(t, store.docs)
}

func TestUpdateByCode_CodeChangeDetachesOldCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateByCode(ctx, "X1", &ProductInput{Title: "Pen", Code: "X2", Price: 1})
	require.NoError(t, err)
	assert.Equal(t, "X2", updated.Code)

	_, err = svc.FetchByCode(ctx, "X1")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	fetched, err := svc.FetchByCode(ctx, "X2")
	require.NoError(t, err)
	assert.Equal(t, "Pen", fetched.Title)
}

func TestUpdateByCode_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 1})
	require.NoError(t, err)

	// A required field made empty on update is rejected.
	_, err = svc.UpdateByCode(ctx, "X1", &ProductInput{Title: "", Code: "X1", Price: 1})
	assert.True(t, utils.IsValidation(err))

	fetched, err := svc.FetchByCode(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Pen", fetched.Title, "rejected update must not persist")
}

// fakeCache records lookups and invalidations.
type fakeCache struct {
	entries     map[string]*models.Product
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.Product{}}
}

func (c *fakeCache) Get(_ context.Context, code string) (*models.Product, error) {
	return c.entries[code], nil
}

func (c *fakeCache) Set(_ context.Context, p *models.Product) error {
	c.entries[p.Code] = p
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, codes ...string) error {
	c.invalidated = append(c.invalidated, codes...)
	for _, code := range codes {
		delete(c.entries, code)
	}
	return nil
}

func TestFetchByCode_CacheHitBypassesStore(t *testing.T) {
	store := &fakeStore{failWith: errors.New("server selection error")}
	cache := newFakeCache()
	cache.entries["X1"] = &models.Product{Title: "Pen", Code: "X1", Price: 1}
	svc := NewProductServiceWithCache(repository.NewProductRepository(store), cache)

	fetched, err := svc.FetchByCode(context.Background(), "X1")
	require.NoError(t, err, "cache hit must not touch the store")
	assert.Equal(t, "Pen", fetched.Title)
}

func TestWritesInvalidateCache(t *testing.T) {
	store := &fakeStore{}
	cache := newFakeCache()
	svc := NewProductServiceWithCache(repository.NewProductRepository(store), cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ProductInput{Title: "Pen", Code: "X1", Price: 1})
	require.NoError(t, err)
	assert.Contains(t, cache.invalidated, "X1")

	_, err = svc.UpdateByCode(ctx, "X1", &ProductInput{Title: "Pen", Code: "X2", Price: 1})
	require.NoError(t, err)
	// Both the old and new code entries are dropped.
	assert.Equal(t, []string{"X1", "X1", "X2"}, cache.invalidated)
}
