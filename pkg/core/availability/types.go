// Package availability answers "which databases have content for this
// bank and period" — the authoritative gate the clarifier consults before
// accepting a bank_period_combination, and the source of the bank roster
// ETL fan-out iterates over.
//
// Grounded on spec.md §3's DataAvailability entity, backed by C6's
// data_availability table (the relational analogue of the teacher's
// monitored-institutions lookup, which the teacher loads from a static
// company list rather than a per-period availability table).
package availability

import "context"

// Institution is one monitored bank/asset manager, identified the way
// spec.md §3 describes: a stable numeric id alongside the display name
// and ticker symbol used in prose.
type Institution struct {
	ID     int64
	Name   string
	Symbol string
	Type   string
}

// Store resolves data availability. Implemented by C6's store.Gateway.
type Store interface {
	// DatabasesFor returns the set of database identifiers with content
	// for (bankID, fiscalYear, quarter), or an empty slice if the period
	// isn't in the data-availability table at all.
	DatabasesFor(ctx context.Context, bankID int64, fiscalYear, quarter int) ([]string, error)

	// ResolveInstitution looks up an institution by its stable numeric id.
	ResolveInstitution(ctx context.Context, bankID int64) (Institution, error)

	// MonitoredInstitutions lists every institution with at least one
	// data-availability row, for ETL fan-out (C11 §4.11.3).
	MonitoredInstitutions(ctx context.Context) ([]Institution, error)
}

// Contains reports whether dbName appears in databases.
func Contains(databases []string, dbName string) bool {
	for _, d := range databases {
		if d == dbName {
			return true
		}
	}
	return false
}

// Intersects reports whether any of selected appears in available.
func Intersects(available, selected []string) bool {
	for _, s := range selected {
		if Contains(available, s) {
			return true
		}
	}
	return false
}
