package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ticket-admin-service/api/dto"
)

// ErrNotFound is returned when a ticket id has no stored record.
var ErrNotFound = errors.New("ticket record not found")

// Store is the durable home of ticket records and of resolved names.
// It is the system's only cross-request cache: once UpdateResolvedNames
// succeeds, later batches take the fast path for that record.
type Store interface {
	Get(ctx context.Context, id string) (*dto.TicketRecord, error)
	// GetAll returns the records that exist; ids without a record are
	// silently absent from the result.
	GetAll(ctx context.Context, ids []string) ([]*dto.TicketRecord, error)
	Save(ctx context.Context, rec *dto.TicketRecord) error
	SaveAll(ctx context.Context, recs []*dto.TicketRecord) error
	Delete(ctx context.Context, id string) error

	// UpdateResolvedNames persists both display names for one record as a
	// single value write, never one field without the other. It is
	// idempotent and safe to call concurrently for different ids.
	UpdateResolvedNames(ctx context.Context, id, franchiseName, outletName string) error

	Close() error
}

type TicketStore struct {
	provider  Provider
	keyPrefix string
}

func NewTicketStore(provider Provider, keyPrefix string) *TicketStore {
	return &TicketStore{provider: provider, keyPrefix: keyPrefix}
}

func (s *TicketStore) storageKey(id string) string {
	return s.keyPrefix + id
}

func (s *TicketStore) Get(ctx context.Context, id string) (*dto.TicketRecord, error) {
	recs, err := s.GetAll(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

func (s *TicketStore) GetAll(ctx context.Context, ids []string) ([]*dto.TicketRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.storageKey(id)
	}

	values, err := s.provider.BatchGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load ticket records: %w", err)
	}

	recs := make([]*dto.TicketRecord, 0, len(values))
	for i, id := range ids {
		raw, ok := values[keys[i]]
		if !ok {
			continue
		}
		var rec dto.TicketRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			zap.S().Errorw("corrupt ticket record, skipping", "id", id, "error", err)
			continue
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (s *TicketStore) Save(ctx context.Context, rec *dto.TicketRecord) error {
	return s.SaveAll(ctx, []*dto.TicketRecord{rec})
}

func (s *TicketStore) SaveAll(ctx context.Context, recs []*dto.TicketRecord) error {
	if len(recs) == 0 {
		return nil
	}

	items := make(map[string]string, len(recs))
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			return fmt.Errorf("ticket record without id")
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal ticket record %s: %w", rec.ID, err)
		}
		items[s.storageKey(rec.ID)] = string(raw)
	}
	if err := s.provider.BatchPut(ctx, items); err != nil {
		return fmt.Errorf("save ticket records: %w", err)
	}
	return nil
}

func (s *TicketStore) Delete(ctx context.Context, id string) error {
	if err := s.provider.BatchDelete(ctx, []string{s.storageKey(id)}); err != nil {
		return fmt.Errorf("delete ticket record %s: %w", id, err)
	}
	return nil
}

func (s *TicketStore) UpdateResolvedNames(ctx context.Context, id, franchiseName, outletName string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("backfill names for %s: %w", id, err)
	}

	// Both fields change together; the record goes back as one value write.
	rec.FranchiseName = franchiseName
	rec.OutletName = outletName
	return s.Save(ctx, rec)
}

func (s *TicketStore) Close() error {
	return s.provider.Close()
}
