package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

type ClientRepository struct {
	DB *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{DB: db}
}

const clientSelect = `SELECT id, doc FROM clients`

func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	return scanDocs[models.Client](ctx, r.DB, TableClients, clientSelect+` ORDER BY doc->>'name', created_at`)
}

func (r *ClientRepository) ListByStatus(ctx context.Context, status string) ([]models.Client, error) {
	return scanDocs[models.Client](ctx, r.DB, TableClients,
		clientSelect+` WHERE doc->>'status' = $1 ORDER BY doc->>'name', created_at`, status)
}

// Get finds a client by storage id
func (r *ClientRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	return getDoc[models.Client](ctx, r.DB, TableClients, clientSelect+` WHERE lower(id) = lower($1)`, id)
}

// GetByCode finds a client by its human code (TT...)
func (r *ClientRepository) GetByCode(ctx context.Context, code string) (*models.Client, error) {
	return getDoc[models.Client](ctx, r.DB, TableClients,
		clientSelect+` WHERE upper(btrim(doc->>'client_id')) = upper(btrim($1))`, code)
}

// FindByName returns the earliest client whose name contains fragment
func (r *ClientRepository) FindByName(ctx context.Context, fragment string) (*models.Client, error) {
	return getDoc[models.Client](ctx, r.DB, TableClients,
		clientSelect+` WHERE doc->>'name' ILIKE $1 ORDER BY created_at LIMIT 1`, likePattern(fragment))
}

// Search matches name or code, case-insensitive
func (r *ClientRepository) Search(ctx context.Context, q string, limit int) ([]models.Client, error) {
	return scanDocs[models.Client](ctx, r.DB, TableClients, clientSelect+`
		WHERE doc->>'name' ILIKE $1 OR doc->>'client_id' ILIKE $1
		ORDER BY doc->>'name'
		LIMIT $2`, likePattern(q), limit)
}

// CountCodePrefix counts clients whose code starts with prefix
func (r *ClientRepository) CountCodePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE doc->>'client_id' LIKE $1 || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count client codes: %w", err)
	}
	return n, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return insertDoc(ctx, r.DB, TableClients, c)
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) (bool, error) {
	return replaceDoc(ctx, r.DB, TableClients, c)
}

func (r *ClientRepository) SetStatus(ctx context.Context, id, status string) error {
	_, err := patchDoc(ctx, r.DB, TableClients, id, map[string]any{"status": status})
	return err
}
