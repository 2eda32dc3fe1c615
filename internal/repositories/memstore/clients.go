package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type ClientRepository struct{ db *DB }

func (db *DB) Clients() *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) t() *table { return r.db.tables[repositories.TableClients] }

func sortByName(cs []models.Client) []models.Client {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return cs
}

func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortByName(all[models.Client](r.t(), nil)), nil
}

func (r *ClientRepository) ListByStatus(ctx context.Context, status string) ([]models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortByName(all(r.t(), func(c *models.Client) bool { return c.Status == status })), nil
}

func (r *ClientRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.Client](r.t(), id), nil
}

func (r *ClientRepository) GetByCode(ctx context.Context, code string) (*models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.t(), func(c *models.Client) bool {
		return strings.EqualFold(strings.TrimSpace(c.ClientCode), strings.TrimSpace(code))
	}), nil
}

func (r *ClientRepository) FindByName(ctx context.Context, fragment string) (*models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.t(), func(c *models.Client) bool { return containsFold(c.Name, fragment) }), nil
}

func (r *ClientRepository) Search(ctx context.Context, q string, limit int) ([]models.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortByName(all(r.t(), func(c *models.Client) bool {
		return containsFold(c.Name, q) || containsFold(c.ClientCode, q)
	}))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ClientRepository) CountCodePrefix(ctx context.Context, prefix string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(all(r.t(), func(c *models.Client) bool { return strings.HasPrefix(c.ClientCode, prefix) })), nil
}

func (r *ClientRepository) insertLocked(c *models.Client) error {
	if c.ClientCode != "" {
		dup := first(r.t(), func(x *models.Client) bool { return strings.EqualFold(x.ClientCode, c.ClientCode) })
		if dup != nil {
			return fmt.Errorf("clients: %w", repositories.ErrDuplicate)
		}
	}
	return insert(r.t(), c)
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.insertLocked(c)
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return replace(r.t(), c)
}

func (r *ClientRepository) SetStatus(ctx context.Context, id, status string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := get[models.Client](r.t(), id)
	if c == nil {
		return nil
	}
	c.Status = status
	_, err := replace(r.t(), c)
	return err
}
