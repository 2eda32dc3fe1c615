// Package memstore keeps every collection in memory as encoded documents,
// the way the Postgres tables keep JSONB. It backs tests and the
// --store memory mode of the server.
package memstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type table struct {
	name  string
	ids   []string
	docs  map[string][]byte
	stamp map[string]time.Time
}

func newTable(name string) *table {
	return &table{name: name, docs: map[string][]byte{}, stamp: map[string]time.Time{}}
}

// DB is one in-memory database. A single lock covers every table, so
// multi-document writes are atomic.
type DB struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func New() *DB {
	db := &DB{tables: map[string]*table{}}
	for _, name := range []string{
		repositories.TableClients, repositories.TableOrders, repositories.TablePayments,
		repositories.TableTruckPayments, repositories.TableTrucks, repositories.TableTruckOrders,
		repositories.TableTruckExpenses, repositories.TableBDCs, repositories.TableBDCTransactions,
		repositories.TableBankAccounts, repositories.TableProducts, repositories.TableTaxRecords,
	} {
		db.tables[name] = newTable(name)
	}
	return db
}

// PutRaw stores a raw JSON document, for seeding legacy shapes in tests.
func (db *DB) PutRaw(tableName, id string, raw []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t := db.tables[tableName]
	if _, ok := t.docs[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.docs[id] = append([]byte(nil), raw...)
	t.stamp[id] = time.Now()
}

type identified interface {
	GetID() string
	SetID(string)
}

func (t *table) find(id string) (string, bool) {
	if _, ok := t.docs[id]; ok {
		return id, true
	}
	for _, k := range t.ids {
		if strings.EqualFold(k, strings.TrimSpace(id)) {
			return k, true
		}
	}
	return "", false
}

func decode[T any](t *table, id string) (*T, bool) {
	var v T
	if err := json.Unmarshal(t.docs[id], &v); err != nil {
		log.Warn().Str("table", t.name).Str("id", id).Err(err).Msg("skipping undecodable document")
		return nil, false
	}
	if d, ok := any(&v).(identified); ok {
		d.SetID(id)
	}
	return &v, true
}

// all decodes every document in insertion order that passes keep
func all[T any](t *table, keep func(*T) bool) []T {
	out := []T{}
	for _, id := range t.ids {
		v, ok := decode[T](t, id)
		if !ok {
			continue
		}
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out
}

func get[T any](t *table, id string) *T {
	key, ok := t.find(id)
	if !ok {
		return nil
	}
	v, _ := decode[T](t, key)
	return v
}

func first[T any](t *table, keep func(*T) bool) *T {
	for _, id := range t.ids {
		if v, ok := decode[T](t, id); ok && keep(v) {
			return v
		}
	}
	return nil
}

func insert(t *table, doc identified) error {
	if doc.GetID() == "" {
		doc.SetID(repositories.NewID())
	}
	if _, exists := t.docs[doc.GetID()]; exists {
		return fmt.Errorf("%s: %w", t.name, repositories.ErrDuplicate)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", t.name, err)
	}
	t.ids = append(t.ids, doc.GetID())
	t.docs[doc.GetID()] = raw
	t.stamp[doc.GetID()] = time.Now()
	return nil
}

func replace(t *table, doc identified) (bool, error) {
	key, ok := t.find(doc.GetID())
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", t.name, err)
	}
	t.docs[key] = raw
	return true, nil
}

func remove(t *table, id string) bool {
	key, ok := t.find(id)
	if !ok {
		return false
	}
	delete(t.docs, key)
	delete(t.stamp, key)
	for i, k := range t.ids {
		if k == key {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	return true
}

// matchesRef mirrors the SQL reference filter: empty matches all, else the
// normalized reference must be one of the keys, ignoring case.
func matchesRef(ref models.Ref, clients repositories.ClientFilter) bool {
	if len(clients) == 0 {
		return true
	}
	key := strings.ToLower(ref.Key())
	for _, c := range clients {
		if strings.ToLower(strings.TrimSpace(c)) == key {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
