package tickets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"certificados/common"
	"certificados/internal/rowcache"
	"certificados/internal/sheetstore"
	"certificados/internal/writelock"
)

const readRange = "A:B"

// Service owns the tickets sheet: CRUD plus the allocator handing tickets
// to orders. All writes run inside the tickets write lock and resolve row
// positions from a fresh read immediately before mutating, because row
// indices are invalidated by any deletion above them.
type Service struct {
	store sheetstore.RowStore
	cache *rowcache.Cache[Ticket]
	lock  *writelock.Lock
	sheet string
	log   *zap.Logger
}

// NewService creates a tickets service over the given sheet.
func NewService(store sheetstore.RowStore, sheet string, log *zap.Logger) *Service {
	s := &Service{
		store: store,
		lock:  writelock.New("tickets", writelock.DefaultTimeout, log),
		sheet: sheet,
		log:   log,
	}
	s.cache = rowcache.New(rowcache.DefaultTTL, s.fetchAll)
	return s
}

// List returns all tickets, served from the snapshot cache when fresh.
func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	return s.cache.Read(ctx)
}

// Get returns the ticket with the given value.
func (s *Service) Get(ctx context.Context, ticket string) (Ticket, error) {
	all, err := s.cache.Read(ctx)
	if err != nil {
		return Ticket{}, err
	}
	for _, t := range all {
		if t.Ticket == ticket {
			return t, nil
		}
	}
	return Ticket{}, fmt.Errorf("%w: ticket %q", common.ErrNotFound, ticket)
}

// Create appends a new available ticket. The duplicate check runs against a
// fresh read inside the lock so two racing creates cannot both pass it.
func (s *Service) Create(ctx context.Context, ticket string) (Ticket, error) {
	created := Ticket{Ticket: ticket}

	err := s.lock.Do(func() error {
		s.cache.Invalidate()

		all, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}
		for _, t := range all {
			if t.Ticket == ticket {
				return fmt.Errorf("%w: ticket %q already exists", common.ErrConflict, ticket)
			}
		}

		if err := s.store.AppendRow(ctx, s.sheet, readRange, encodeRow(created)); err != nil {
			s.cache.Invalidate()
			return err
		}

		s.cache.Invalidate()
		s.log.Info("ticket created", zap.String("ticket", ticket))
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return created, nil
}

// Rename replaces the value of an existing ticket, keeping its status.
func (s *Service) Rename(ctx context.Context, oldTicket, newTicket string) (Ticket, error) {
	var renamed Ticket

	err := s.lock.Do(func() error {
		s.cache.Invalidate()

		all, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}

		idx := rowIndexOf(all, oldTicket)
		if idx < 0 {
			return fmt.Errorf("%w: ticket %q", common.ErrNotFound, oldTicket)
		}

		renamed = all[idx]
		renamed.Ticket = newTicket
		if err := s.store.UpdateRow(ctx, s.sheet, sheetRow(idx), encodeRow(renamed)); err != nil {
			s.cache.Invalidate()
			return err
		}

		s.cache.Invalidate()
		s.log.Info("ticket renamed", zap.String("from", oldTicket), zap.String("to", newTicket))
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return renamed, nil
}

// Delete removes the ticket row.
func (s *Service) Delete(ctx context.Context, ticket string) error {
	return s.lock.Do(func() error {
		s.cache.Invalidate()

		all, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}

		idx := rowIndexOf(all, ticket)
		if idx < 0 {
			return fmt.Errorf("%w: ticket %q", common.ErrNotFound, ticket)
		}

		if err := s.store.DeleteRow(ctx, s.sheet, sheetRow(idx)); err != nil {
			s.cache.Invalidate()
			return err
		}

		s.cache.Invalidate()
		s.log.Info("ticket deleted", zap.String("ticket", ticket))
		return nil
	})
}

// AssignAvailable finds the first available ticket, marks it assigned and
// returns its value. It must be called while holding the ORDERS write lock:
// that lock serializes all order creations, so no two orders can be handed
// the same ticket. It deliberately does not take the tickets lock; a direct
// concurrent ticket update bypassing order creation is an accepted boundary.
func (s *Service) AssignAvailable(ctx context.Context) (string, error) {
	all, err := s.fetchAll(ctx)
	if err != nil {
		return "", err
	}

	for idx, t := range all {
		if t.Ticket == "" || t.Status != "" {
			continue
		}

		marked := t
		marked.Status = StatusAssigned
		if err := s.store.UpdateRow(ctx, s.sheet, sheetRow(idx), encodeRow(marked)); err != nil {
			s.cache.Invalidate()
			return "", err
		}

		s.cache.Invalidate()
		s.log.Info("ticket assigned", zap.String("ticket", t.Ticket))
		return t.Ticket, nil
	}

	return "", common.ErrNoTicketsAvailable
}

// fetchAll reads the sheet fresh, bypassing the cache.
func (s *Service) fetchAll(ctx context.Context) ([]Ticket, error) {
	rows, err := s.store.ReadRange(ctx, s.sheet, readRange)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows), nil
}

func rowIndexOf(all []Ticket, ticket string) int {
	for i, t := range all {
		if t.Ticket == ticket {
			return i
		}
	}
	return -1
}

// sheetRow converts a 0-based position among decoded tickets to the 1-based
// sheet row index (header occupies row 1).
func sheetRow(idx int) int64 {
	return int64(idx) + 2
}
