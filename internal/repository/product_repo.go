package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/scandoo/scandoo/internal/database"
	"github.com/scandoo/scandoo/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	store database.RecordStore
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(store database.RecordStore) *ProductRepository {
	return &ProductRepository{store: store}
}

// GetByCode returns the first product whose code field equals code.
// Match is exact and case-sensitive, no normalization. Returns
// database.ErrNoDocument when nothing matches.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	var p models.Product
	if err := r.store.FindOne(ctx, bson.M{"code": code}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert persists a new product unconditionally. No uniqueness check is made
// against existing codes; lookups treat the first match as authoritative.
func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) (*models.Product, error) {
	id, err := r.store.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

// ReplaceFieldsByCode finds the record with the given code and replaces its
// field set, returning the post-update record. The code field itself may
// change; future lookups then resolve against the new code only.
func (r *ProductRepository) ReplaceFieldsByCode(ctx context.Context, code string, title, newCode string, price float64) (*models.Product, error) {
	update := bson.M{"$set": bson.M{
		"title": title,
		"code":  newCode,
		"price": price,
	}}

	var p models.Product
	if err := r.store.FindOneAndUpdate(ctx, bson.M{"code": code}, update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
