package memstore

import (
	"context"
	"sort"
	"strings"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

func sortBy[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

type BankAccountRepository struct{ db *DB }

func (db *DB) BankAccounts() *BankAccountRepository { return &BankAccountRepository{db: db} }

func (r *BankAccountRepository) t() *table { return r.db.tables[repositories.TableBankAccounts] }

func (r *BankAccountRepository) List(ctx context.Context) ([]models.BankAccount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := all[models.BankAccount](r.t(), nil)
	sortBy(out, func(a models.BankAccount) string { return strings.ToLower(a.BankName) })
	return out, nil
}

func (r *BankAccountRepository) Get(ctx context.Context, id string) (*models.BankAccount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.BankAccount](r.t(), id), nil
}

func (r *BankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return insert(r.t(), a)
}

func (r *BankAccountRepository) Update(ctx context.Context, a *models.BankAccount) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return replace(r.t(), a)
}

func (r *BankAccountRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return remove(r.t(), id), nil
}

type ProductRepository struct{ db *DB }

func (db *DB) Products() *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) t() *table { return r.db.tables[repositories.TableProducts] }

// List returns newest first
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := all[models.Product](r.t(), nil)
	reverse(out)
	return out, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.Product](r.t(), id), nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.t(), func(p *models.Product) bool {
		return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
	}), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return insert(r.t(), p)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return replace(r.t(), p)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return remove(r.t(), id), nil
}

type TaxRepository struct{ db *DB }

func (db *DB) Taxes() *TaxRepository { return &TaxRepository{db: db} }

func (r *TaxRepository) t() *table { return r.db.tables[repositories.TableTaxRecords] }

// List returns the most recent payment date first
func (r *TaxRepository) List(ctx context.Context) ([]models.TaxRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := all[models.TaxRecord](r.t(), nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate.Time) })
	return out, nil
}

func (r *TaxRepository) Create(ctx context.Context, t *models.TaxRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return insert(r.t(), t)
}
