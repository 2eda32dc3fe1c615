package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

type BankAccountRepository struct {
	DB *pgxpool.Pool
}

func NewBankAccountRepository(db *pgxpool.Pool) *BankAccountRepository {
	return &BankAccountRepository{DB: db}
}

func (r *BankAccountRepository) List(ctx context.Context) ([]models.BankAccount, error) {
	return scanDocs[models.BankAccount](ctx, r.DB, TableBankAccounts,
		`SELECT id, doc FROM bank_accounts ORDER BY lower(doc->>'bank_name'), created_at`)
}

func (r *BankAccountRepository) Get(ctx context.Context, id string) (*models.BankAccount, error) {
	return getDoc[models.BankAccount](ctx, r.DB, TableBankAccounts, `SELECT id, doc FROM bank_accounts WHERE lower(id) = lower($1)`, id)
}

func (r *BankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	return insertDoc(ctx, r.DB, TableBankAccounts, a)
}

func (r *BankAccountRepository) Update(ctx context.Context, a *models.BankAccount) (bool, error) {
	return replaceDoc(ctx, r.DB, TableBankAccounts, a)
}

func (r *BankAccountRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteDoc(ctx, r.DB, TableBankAccounts, id)
}

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	return scanDocs[models.Product](ctx, r.DB, TableProducts, `SELECT id, doc FROM products ORDER BY created_at DESC, id`)
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	return getDoc[models.Product](ctx, r.DB, TableProducts, `SELECT id, doc FROM products WHERE lower(id) = lower($1)`, id)
}

// GetByName matches the whole name, ignoring case
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	return getDoc[models.Product](ctx, r.DB, TableProducts,
		`SELECT id, doc FROM products WHERE lower(btrim(doc->>'name')) = lower(btrim($1)) LIMIT 1`, name)
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return insertDoc(ctx, r.DB, TableProducts, p)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) (bool, error) {
	return replaceDoc(ctx, r.DB, TableProducts, p)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteDoc(ctx, r.DB, TableProducts, id)
}

type TaxRepository struct {
	DB *pgxpool.Pool
}

func NewTaxRepository(db *pgxpool.Pool) *TaxRepository {
	return &TaxRepository{DB: db}
}

// List returns tax records, most recent payment first
func (r *TaxRepository) List(ctx context.Context) ([]models.TaxRecord, error) {
	return scanDocs[models.TaxRecord](ctx, r.DB, TableTaxRecords,
		`SELECT id, doc FROM tax_records ORDER BY doc->>'payment_date' DESC NULLS LAST, created_at DESC`)
}

func (r *TaxRepository) Create(ctx context.Context, t *models.TaxRecord) error {
	return insertDoc(ctx, r.DB, TableTaxRecords, t)
}
