package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/cache"
	"fuel-backend/internal/models"
)

// Cache is the subset of the Redis cache the product catalogue uses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	InvalidatePattern(ctx context.Context, pattern string)
}

type ProductService struct {
	Products ProductStore
	Cache    Cache
	Now      Clock
}

func NewProductService(st Stores, c Cache, now Clock) *ProductService {
	return &ProductService{Products: st.Products, Cache: c, Now: now}
}

func (s *ProductService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.Cache == nil {
		return false
	}
	data, ok := s.Cache.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *ProductService) remember(ctx context.Context, key string, v interface{}) {
	if s.Cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		s.Cache.Set(ctx, key, data, cache.ProductTTL)
	}
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.InvalidatePattern(ctx, cache.ProductPattern)
	}
}

// List returns the catalogue, newest first.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.cached(ctx, cache.ProductListKey, &products) {
		return products, nil
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	s.remember(ctx, cache.ProductListKey, products)
	return products, nil
}

// Price looks a product up by exact name, ignoring case.
func (s *ProductService) Price(ctx context.Context, name string) (*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("missing product name")
	}
	key := cache.ProductPriceKey(name)
	var p models.Product
	if s.cached(ctx, key, &p) {
		return &p, nil
	}
	found, err := s.Products.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if found == nil {
		return nil, apperr.NotFound("product %q not found", name)
	}
	s.remember(ctx, key, found)
	return found, nil
}

func parsePrices(req *models.ProductRequest) (float64, float64, error) {
	if err := checkRequest(req); err != nil {
		return 0, 0, err
	}
	pp, err := parseAmount(req.PPrice, "p_price")
	if err != nil {
		return 0, 0, err
	}
	sp, err := parseAmount(req.SPrice, "s_price")
	if err != nil {
		return 0, 0, err
	}
	return pp, sp, nil
}

func (s *ProductService) Add(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	pp, sp, err := parsePrices(req)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	existing, err := s.Products.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("product %q already exists", name)
	}
	now := s.Now()
	p := &models.Product{
		Name:   name,
		PPrice: models.Amount(pp),
		SPrice: models.Amount(sp),
	}
	p.PriceHistory = []models.PricePoint{{PPrice: p.PPrice, SPrice: p.SPrice, Date: models.NewDate(now)}}
	p.Touch(now)
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidate(ctx)
	return p, nil
}

// Update changes a product's name and prices and appends the new prices to
// its history.
func (s *ProductService) Update(ctx context.Context, id string, req *models.ProductRequest) (*models.Product, error) {
	pp, sp, err := parsePrices(req)
	if err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product %s not found", id)
	}
	now := s.Now()
	p.Name = strings.TrimSpace(req.Name)
	p.PPrice, p.SPrice = models.Amount(pp), models.Amount(sp)
	p.PriceHistory = append(p.PriceHistory, models.PricePoint{PPrice: p.PPrice, SPrice: p.SPrice, Date: models.NewDate(now)})
	p.Touch(now)
	if _, err := s.Products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	ok, err := s.Products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return apperr.NotFound("product %s not found", id)
	}
	s.invalidate(ctx)
	return nil
}
