package models

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fuel-backend/internal/timeutil"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsInternalID reports whether s looks like a storage id (legacy 24-hex
// object id or UUID) rather than a human-readable code.
func IsInternalID(s string) bool {
	s = strings.TrimSpace(s)
	return objectIDPattern.MatchString(s) || uuidPattern.MatchString(s)
}

// NormalizeRef maps any stored spelling of an identifier to the key used
// for comparisons: surrounding space trimmed and internal ids lower-cased.
// Human codes keep their case.
func NormalizeRef(s string) string {
	s = strings.TrimSpace(s)
	if IsInternalID(s) {
		return strings.ToLower(s)
	}
	return s
}

// Ref is a reference to another document. Older documents hold references
// as {"$oid": "..."} objects, newer ones as plain strings; Ref reads both
// and always writes a plain string.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(strings.TrimSpace(s))
	case '{':
		var wrapped struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*r = Ref(strings.TrimSpace(wrapped.OID))
	default:
		// numbers and other scalars are kept verbatim
		*r = Ref(strings.TrimSpace(string(data)))
	}
	return nil
}

// Key is the normalized form used when joining documents.
func (r Ref) Key() string { return NormalizeRef(string(r)) }

func (r Ref) String() string { return string(r) }

func (r Ref) IsZero() bool { return r.Key() == "" }

// Amount is a money or volume figure. Stored values may be numbers,
// numeric strings with a currency prefix or thousands separators, or junk;
// anything unreadable decodes as 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(ParseAmount(s))
		return nil
	}
	if data[0] == '{' {
		// {"$numberDecimal": "12.5"} and friends
		var wrapped map[string]interface{}
		if err := json.Unmarshal(data, &wrapped); err == nil {
			for _, v := range wrapped {
				*a = Amount(ToFloat(v))
				return nil
			}
		}
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

func (a Amount) Float() float64 { return float64(a) }

// ParseAmount reads a user-entered or stored amount such as "GHS 1,250.50".
// It returns 0 when the text is not a number.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "GHS"), "ghs")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToFloat coerces a loosely typed value to a float, 0 when it cannot.
func ToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case float32:
		return ToFloat(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return ParseAmount(n.String())
	case string:
		return ParseAmount(n)
	case Amount:
		return float64(n)
	}
	return 0
}

// Date is a timestamp read from any of the historical date shapes.
// An unreadable or missing date decodes as the zero time rather than
// failing the whole document.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		d.Time = time.Time{}
		return nil
	}
	t, ok := timeutil.AsTime(raw)
	if !ok {
		d.Time = time.Time{}
		return nil
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// Document is embedded in every stored record.
type Document struct {
	ID        string `json:"id,omitempty"`
	CreatedAt Date   `json:"created_at"`
	UpdatedAt Date   `json:"updated_at,omitempty"`
}

func (d *Document) GetID() string   { return d.ID }
func (d *Document) SetID(id string) { d.ID = id }

// Touch stamps the document as written at t.
func (d *Document) Touch(t time.Time) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = NewDate(t)
	}
	d.UpdatedAt = NewDate(t)
}
