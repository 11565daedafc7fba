package repo

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/platform/go/schema"
)

// recordSchemaName is the name the record schema is registered under.
const recordSchemaName = "competition-record"

// MemoryRepository keeps records in memory. It backs tests and the CLI's --file mode.
// Stato comparison is case-insensitive here, unlike Firestore.
type MemoryRepository struct {
	mu           sync.RWMutex
	byID         map[string]model.CompetitionRecord
	activeStatus string
}

// NewMemoryRepository seeds the repository with records. An empty activeStatus means DefaultActiveStatus.
func NewMemoryRepository(activeStatus string, records ...model.CompetitionRecord) *MemoryRepository {
	if activeStatus == "" {
		activeStatus = DefaultActiveStatus
	}
	r := &MemoryRepository{byID: make(map[string]model.CompetitionRecord, len(records)), activeStatus: activeStatus}
	for _, rec := range records {
		r.byID[rec.ID] = rec
	}
	return r
}

// Put inserts or replaces a record keyed by its document ID.
func (r *MemoryRepository) Put(rec model.CompetitionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
}

// Len reports how many records are stored.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (model.CompetitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rec, ok := r.byID[id]; ok && id != "" {
		return rec, nil
	}
	for _, rec := range r.sorted() {
		if id != "" && rec.ConcorsoID == id {
			return rec, nil
		}
	}
	return model.CompetitionRecord{}, ErrNotFound
}

func (r *MemoryRepository) ListActive(ctx context.Context) ([]model.CompetitionRecord, error) {
	return r.filter(func(rec model.CompetitionRecord) bool { return r.isActive(rec) }), nil
}

func (r *MemoryRepository) ListByEnte(ctx context.Context, ente string) ([]model.CompetitionRecord, error) {
	return r.filter(func(rec model.CompetitionRecord) bool { return rec.Ente == ente }), nil
}

func (r *MemoryRepository) ListByEnteSlug(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error) {
	return r.filter(func(rec model.CompetitionRecord) bool { return enteSlug != "" && rec.EnteSlug == enteSlug }), nil
}

func (r *MemoryRepository) ListEnti(ctx context.Context) ([]string, error) {
	all := r.filter(func(model.CompetitionRecord) bool { return true })
	return distinctEnti(all), nil
}

func (r *MemoryRepository) isActive(rec model.CompetitionRecord) bool {
	return strings.EqualFold(strings.TrimSpace(rec.Stato), r.activeStatus)
}

func (r *MemoryRepository) filter(keep func(model.CompetitionRecord) bool) []model.CompetitionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.CompetitionRecord
	for _, rec := range r.sorted() {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// sorted returns the records ordered by document ID. Callers hold the lock.
func (r *MemoryRepository) sorted() []model.CompetitionRecord {
	out := make([]model.CompetitionRecord, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b model.CompetitionRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// LoadExport reads a JSON export: either an array of records or an object keyed by document ID.
// Every record is checked against the record schema; all violations are reported together.
func LoadExport(r io.Reader) ([]model.CompetitionRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	docs, err := splitExport(raw)
	if err != nil {
		return nil, err
	}

	validator := schema.NewValidator()
	validator.Register(recordSchemaName, model.RecordSchema)

	records := make([]model.CompetitionRecord, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		if err := validator.ValidateValue(recordSchemaName, doc.data); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", doc.label, err))
			continue
		}
		records = append(records, model.FromDocument(doc.id, doc.data))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

type exportDoc struct {
	id    string
	label string
	data  map[string]any
}

func splitExport(raw []byte) ([]exportDoc, error) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		docs := make([]exportDoc, 0, len(list))
		for i, data := range list {
			docs = append(docs, exportDoc{label: fmt.Sprintf("#%d", i), data: data})
		}
		return docs, nil
	}

	var keyed map[string]map[string]any
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("decode export: expected an array or an object of records: %w", err)
	}
	ids := make([]string, 0, len(keyed))
	for id := range keyed {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	docs := make([]exportDoc, 0, len(keyed))
	for _, id := range ids {
		data := keyed[id]
		if _, ok := data[model.FieldID]; !ok {
			data[model.FieldID] = id
		}
		docs = append(docs, exportDoc{id: id, label: id, data: data})
	}
	return docs, nil
}

var _ Repository = (*MemoryRepository)(nil)
