// Package repo reads competition records from Firestore, or from memory for tests and offline tooling.
package repo

import (
	"context"
	"errors"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
)

// DefaultCollection is the Firestore collection holding the concorsi.
const DefaultCollection = "concorsi"

// DefaultActiveStatus is the Stato value of records that are still open.
const DefaultActiveStatus = "open"

// ErrNotFound is returned when no record matches the identifier.
var ErrNotFound = errors.New("bando not found")

// Repository defines the read operations required by the bandi service.
type Repository interface {
	// Get looks the identifier up as a document ID first, then as a concorso_id.
	Get(ctx context.Context, id string) (model.CompetitionRecord, error)
	ListActive(ctx context.Context) ([]model.CompetitionRecord, error)
	ListByEnte(ctx context.Context, ente string) ([]model.CompetitionRecord, error)
	ListByEnteSlug(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error)
	// ListEnti returns the distinct, non-empty Ente values of records in any status, sorted.
	ListEnti(ctx context.Context) ([]string, error)
}
