package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// ErrDuplicate is returned when a write would break a unique key
// (client code, order short code, BDC name, truck number).
var ErrDuplicate = errors.New("duplicate document")

// Collections
const (
	TableClients         = "clients"
	TableOrders          = "orders"
	TablePayments        = "payments"
	TableTruckPayments   = "truck_payments"
	TableTrucks          = "trucks"
	TableTruckOrders     = "truck_orders"
	TableTruckExpenses   = "truck_expenses"
	TableBDCs            = "bdcs"
	TableBDCTransactions = "bdc_transactions"
	TableBankAccounts    = "bank_accounts"
	TableProducts        = "products"
	TableTaxRecords      = "tax_records"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// clientRefExpr reads a client reference stored either as a plain string
// or as {"$oid": ...}, normalized for comparison.
const clientRefExpr = `lower(btrim(COALESCE(doc->'client_id'->>'$oid', doc->>'client_id')))`

// NewID returns an id for a new document
func NewID() string {
	return uuid.NewString()
}

// likePattern escapes LIKE wildcards in user input
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// refKeys lower-cases keys for SQL matching against clientRefExpr
func refKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// scanDocs decodes every returned doc. A row that does not decode is
// logged and skipped so one bad record cannot hide the rest.
func scanDocs[T any](ctx context.Context, q querier, table, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Warn().Str("table", table).Str("id", id).Err(err).Msg("skipping undecodable document")
			continue
		}
		setID(&v, id)
		out = append(out, v)
	}
	return out, rows.Err()
}

// getDoc returns nil, nil when no row matches
func getDoc[T any](ctx context.Context, q querier, table, sql string, args ...any) (*T, error) {
	docs, err := scanDocs[T](ctx, q, table, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

func setID(v any, id string) {
	if d, ok := v.(interface{ SetID(string) }); ok {
		d.SetID(id)
	}
}

func mapWriteErr(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", table, ErrDuplicate)
	}
	return fmt.Errorf("failed to write %s: %w", table, err)
}

// insertDoc stores doc under its id, assigning one when it has none
func insertDoc(ctx context.Context, q querier, table string, doc interface {
	GetID() string
	SetID(string)
}) error {
	if doc.GetID() == "" {
		doc.SetID(NewID())
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", table, err)
	}
	sql := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, table)
	if _, err := q.Exec(ctx, sql, doc.GetID(), raw); err != nil {
		return mapWriteErr(table, err)
	}
	return nil
}

// replaceDoc overwrites the stored doc; it reports false when the id is unknown
func replaceDoc(ctx context.Context, q querier, table string, doc interface{ GetID() string }) (bool, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", table, err)
	}
	sql := fmt.Sprintf(`UPDATE %s SET doc = $2::jsonb, updated_at = NOW() WHERE id = $1`, table)
	tag, err := q.Exec(ctx, sql, doc.GetID(), raw)
	if err != nil {
		return false, mapWriteErr(table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// patchDoc merges fields into the stored doc
func patchDoc(ctx context.Context, q querier, table, id string, fields map[string]any) (bool, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s patch: %w", table, err)
	}
	sql := fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb, updated_at = NOW() WHERE id = $1`, table)
	tag, err := q.Exec(ctx, sql, id, raw)
	if err != nil {
		return false, mapWriteErr(table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// appendToArray pushes item onto the JSON array at key
func appendToArray(ctx context.Context, q querier, table, id, key string, item any) (bool, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s entry: %w", table, err)
	}
	sql := fmt.Sprintf(`
		UPDATE %s
		SET doc = jsonb_set(doc, ARRAY[$2::text], COALESCE(doc->$2::text, '[]'::jsonb) || jsonb_build_array($3::jsonb), true),
		    updated_at = NOW()
		WHERE id = $1`, table)
	tag, err := q.Exec(ctx, sql, id, key, raw)
	if err != nil {
		return false, mapWriteErr(table, err)
	}
	return tag.RowsAffected() > 0, nil
}

func deleteDoc(ctx context.Context, q querier, table, id string) (bool, error) {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClientFilter restricts a listing to documents referencing one client
// by any of its keys. Empty means every client.
type ClientFilter []string

// OrderFilter narrows order listings; zero fields match everything.
type OrderFilter struct {
	Status         string
	DeliveryStatus string
	Clients        ClientFilter
}

type PaymentFilter struct {
	Status  string
	Clients ClientFilter
}
