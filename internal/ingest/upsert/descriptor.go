package upsert

import (
	"bytes"

	"gorm.io/datatypes"

	"github.com/ganesh-omneky/data-health-dashboard/internal/ingest/identity"
)

type Action string

const (
	ActionInserted  Action = "inserted"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Result reports the persisted row id and, for updates, the columns written.
type Result struct {
	ID      uint     `json:"id"`
	Action  Action   `json:"action"`
	Changed []string `json:"changed,omitempty"`
}

type Policy int

const (
	// Overwrite replaces the stored value whenever the supplied one differs.
	Overwrite Policy = iota
	// NoOverwriteOnceMigrated leaves the stored value alone once it points at
	// managed storage.
	NoOverwriteOnceMigrated
)

// Column describes one updatable column of a kind.
type Column[T any] struct {
	Name string
	// Value returns the column value of a record, or nil when the record does
	// not supply it. The same accessor reads the stored row.
	Value func(*T) any
	// Equal compares a supplied value against the stored one. Nil means ==.
	Equal  func(supplied, stored any) (bool, error)
	Policy Policy
}

// ParentRef names a row that must exist before the record is written.
type ParentRef struct {
	Table string
	ID    uint
}

// Descriptor is the per-kind schema the generic upsert routine works from.
type Descriptor[T any] struct {
	Kind string
	// Key returns the natural key as column -> value.
	Key     func(*T) map[string]any
	Columns []Column[T]
	// Derive validates the record and fills synthetic keys before lookup.
	Derive  func(*T) error
	Parents func(*T) []ParentRef
	ID      func(*T) uint
	// WriteTries is the total number of write attempts; 0 and 1 mean no retry.
	WriteTries uint
}

func opt[V comparable](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}

func nonZero(v uint) any {
	if v == 0 {
		return nil
	}
	return v
}

func jsonValue(raw datatypes.JSON) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return raw
}

// jsonEqual compares decoded values so formatting and key order never cause a write.
func jsonEqual(supplied, stored any) (bool, error) {
	a, _ := supplied.(datatypes.JSON)
	b, _ := stored.(datatypes.JSON)
	return identity.SpecEqual(a, b)
}
