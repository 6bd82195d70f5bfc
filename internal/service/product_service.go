package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scandoo/scandoo/internal/database"
	"github.com/scandoo/scandoo/internal/models"
	"github.com/scandoo/scandoo/internal/repository"
	"github.com/scandoo/scandoo/internal/utils"
)

// ProductInput is the full replacement field set for create and update.
type ProductInput struct {
	Title string  `json:"title"`
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// LookupCache caches products by code. Implemented by cache.ProductCache;
// a nil cache disables caching entirely.
type LookupCache interface {
	Get(ctx context.Context, code string) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
	Invalidate(ctx context.Context, codes ...string) error
}

// ProductService implements the product repository operations: fetch by
// code, create, and update by code. It validates input and reclassifies
// store-layer failures so raw driver errors never reach the transport
// boundary.
type ProductService struct {
	repo  *repository.ProductRepository
	cache LookupCache
}

// NewProductService creates a ProductService without a lookup cache.
func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// NewProductServiceWithCache creates a ProductService backed by a lookup cache.
func NewProductServiceWithCache(repo *repository.ProductRepository, cache LookupCache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

// FetchByCode returns the product whose code equals code (exact,
// case-sensitive). Returns utils.ErrNotFound when no record matches and
// utils.ErrInvalidCode when code is empty.
func (s *ProductService) FetchByCode(ctx context.Context, code string) (*models.Product, error) {
	if code == "" {
		return nil, utils.ErrInvalidCode
	}

	if s.cache != nil {
		p, err := s.cache.Get(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("code", code).Msg("product cache read failed")
		} else if p != nil {
			return p, nil
		}
	}

	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, utils.ErrNotFound
		}
		return nil, classifyStoreError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("product cache write failed")
		}
	}

	return p, nil
}

// Create validates the input and inserts a new product. No check is made
// for an existing record with the same code, so duplicate codes are
// possible; callers must not rely on code uniqueness being enforced.
func (s *ProductService) Create(ctx context.Context, in *ProductInput) (*models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p, err := s.repo.Insert(ctx, &models.Product{
		Title: in.Title,
		Code:  in.Code,
		Price: in.Price,
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	s.invalidate(ctx, in.Code)
	return p, nil
}

// UpdateByCode locates the record with the given code and replaces its
// field set, returning the post-update record. The input code may differ
// from the lookup code, detaching the record from its prior code for
// future lookups. Returns utils.ErrNotFound when no record has the
// original code.
func (s *ProductService) UpdateByCode(ctx context.Context, code string, in *ProductInput) (*models.Product, error) {
	if code == "" {
		return nil, utils.ErrInvalidCode
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p, err := s.repo.ReplaceFieldsByCode(ctx, code, in.Title, in.Code, in.Price)
	if err != nil {
		if errors.Is(err, database.ErrNoDocument) {
			return nil, utils.ErrNotFound
		}
		return nil, classifyStoreError(err)
	}

	s.invalidate(ctx, code, in.Code)
	return p, nil
}

// validateInput checks the schema constraints and reports every failing
// field at once.
func validateInput(in *ProductInput) error {
	var fields []string
	if in.Title == "" {
		fields = append(fields, "title")
	}
	if in.Code == "" {
		fields = append(fields, "code")
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		fields = append(fields, "price")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

// classifyStoreError maps connectivity failures to ErrStoreUnavailable so
// callers can surface an actionable message; anything else passes through
// wrapped.
func classifyStoreError(err error) error {
	if database.IsUnavailable(err) {
		return fmt.Errorf("%w: database connection error, check your MongoDB configuration", utils.ErrStoreUnavailable)
	}
	return fmt.Errorf("store operation failed: %w", err)
}

// invalidate drops cache entries for the given codes, logging instead of
// failing the write.
func (s *ProductService) invalidate(ctx context.Context, codes ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, codes...); err != nil {
		log.Warn().Err(err).Strs("codes", codes).Msg("product cache invalidation failed")
	}
}
