package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"certificados/common"
	"certificados/internal/rowcache"
	"certificados/internal/sheetstore"
	"certificados/internal/writelock"
)

const readRange = "A:I"

// Timestamps are stored as display strings in a fixed zone so every
// operator sees the same wall-clock time regardless of server locale.
var displayZone = time.FixedZone("-03:00", -3*60*60)

const timestampLayout = "02/01/2006 15:04:05"

// Service owns the pedidos sheet. Creation composes the ticket allocator
// under the orders write lock, which is what guarantees each available
// ticket is handed to at most one order.
type Service struct {
	store sheetstore.RowStore
	cache *rowcache.Cache[Order]
	lock  *writelock.Lock
	alloc Allocator
	sheet string
	log   *zap.Logger
}

// NewService creates an orders service over the given sheet.
func NewService(store sheetstore.RowStore, alloc Allocator, sheet string, log *zap.Logger) *Service {
	s := &Service{
		store: store,
		lock:  writelock.New("pedidos", writelock.DefaultTimeout, log),
		alloc: alloc,
		sheet: sheet,
		log:   log,
	}
	s.cache = rowcache.New(rowcache.DefaultTTL, s.fetchAll)
	return s
}

// List returns the filtered orders and the filtered total. When
// filters.Limit is positive the returned slice is the requested page.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	all, err := s.cache.Read(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]Order, 0, len(all))
	wantOAB := strings.TrimSpace(filters.NumeroOAB)
	for _, o := range all {
		if filters.Status != "" && !strings.EqualFold(o.Status, filters.Status) {
			continue
		}
		if filters.Ticket != "" && !strings.EqualFold(o.Ticket, filters.Ticket) {
			continue
		}
		if wantOAB != "" && !strings.EqualFold(strings.TrimSpace(o.NumeroOAB), wantOAB) {
			continue
		}
		filtered = append(filtered, o)
	}

	total := len(filtered)

	if filters.Offset > 0 {
		if filters.Offset >= total {
			return []Order{}, total, nil
		}
		filtered = filtered[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(filtered) {
		filtered = filtered[:filters.Limit]
	}

	return filtered, total, nil
}

// Get returns the order with the given uuid.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	all, err := s.cache.Read(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, o := range all {
		if o.UUID == id {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("%w: pedido %q", common.ErrNotFound, id)
}

// Create persists a new order. A non-empty numero_oab matching an existing
// order does not consume a ticket: the new order is still written, with
// status Recusado, and the result references the pre-existing order so the
// caller can surface the conflict. Otherwise a ticket is allocated and the
// order approved. Both paths run inside the orders write lock.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	var result CreateResult

	err := s.lock.Do(func() error {
		s.cache.Invalidate()

		now := time.Now().In(displayZone).Format(timestampLayout)
		order := Order{
			UUID:            uuid.NewString(),
			NumeroOAB:       strings.TrimSpace(req.NumeroOAB),
			NomeCompleto:    req.NomeCompleto,
			Subsecao:        req.Subsecao,
			DataSolicitacao: now,
			DataLiberacao:   now,
			Anotacoes:       req.Anotacoes,
		}

		if order.NumeroOAB != "" {
			all, err := s.fetchAll(ctx)
			if err != nil {
				return err
			}
			if existing := findByOAB(all, order.NumeroOAB); existing != nil {
				order.Status = StatusDenied
				if err := s.store.AppendRow(ctx, s.sheet, readRange, encodeRow(order)); err != nil {
					s.cache.Invalidate()
					return err
				}
				s.cache.Invalidate()

				result = CreateResult{
					Order: order,
					Existing: &ConflictRef{
						Ticket:          existing.Ticket,
						DataSolicitacao: existing.DataSolicitacao,
					},
				}
				s.log.Info("pedido denied over duplicate OAB",
					zap.String("uuid", order.UUID),
					zap.String("numeroOab", order.NumeroOAB),
				)
				return nil
			}
		}

		// Allocation happens under this lock, not the tickets lock:
		// serializing order creation is what makes scan-then-mark atomic.
		ticket, err := s.alloc.AssignAvailable(ctx)
		if err != nil {
			return err
		}

		order.Ticket = ticket
		order.Status = StatusApproved
		if err := s.store.AppendRow(ctx, s.sheet, readRange, encodeRow(order)); err != nil {
			s.cache.Invalidate()
			return err
		}
		s.cache.Invalidate()

		result = CreateResult{Order: order}
		s.log.Info("pedido created",
			zap.String("uuid", order.UUID),
			zap.String("ticket", ticket),
		)
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}
	return result, nil
}

// Update merges the fields present in the patch over the stored order and
// rewrites the full row.
func (s *Service) Update(ctx context.Context, id string, patch UpdateRequest) (Order, error) {
	var updated Order

	err := s.lock.Do(func() error {
		s.cache.Invalidate()

		all, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}

		idx := rowIndexOf(all, id)
		if idx < 0 {
			return fmt.Errorf("%w: pedido %q", common.ErrNotFound, id)
		}

		updated = merge(all[idx], patch)
		if err := s.store.UpdateRow(ctx, s.sheet, sheetRow(idx), encodeRow(updated)); err != nil {
			s.cache.Invalidate()
			return err
		}

		s.cache.Invalidate()
		s.log.Info("pedido updated", zap.String("uuid", id))
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

// Delete removes the order row.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.lock.Do(func() error {
		s.cache.Invalidate()

		all, err := s.fetchAll(ctx)
		if err != nil {
			return err
		}

		idx := rowIndexOf(all, id)
		if idx < 0 {
			return fmt.Errorf("%w: pedido %q", common.ErrNotFound, id)
		}

		if err := s.store.DeleteRow(ctx, s.sheet, sheetRow(idx)); err != nil {
			s.cache.Invalidate()
			return err
		}

		s.cache.Invalidate()
		s.log.Info("pedido deleted", zap.String("uuid", id))
		return nil
	})
}

// fetchAll reads the sheet fresh, bypassing the cache.
func (s *Service) fetchAll(ctx context.Context) ([]Order, error) {
	rows, err := s.store.ReadRange(ctx, s.sheet, readRange)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows), nil
}

// findByOAB matches on the trimmed, case-folded registration number.
// Empty numbers never match: an empty OAB is not a duplicate key.
func findByOAB(all []Order, oab string) *Order {
	for i, o := range all {
		if strings.EqualFold(strings.TrimSpace(o.NumeroOAB), oab) {
			return &all[i]
		}
	}
	return nil
}

func rowIndexOf(all []Order, id string) int {
	for i, o := range all {
		if o.UUID == id {
			return i
		}
	}
	return -1
}

// sheetRow converts a 0-based position among decoded orders to the 1-based
// sheet row index (header occupies row 1).
func sheetRow(idx int) int64 {
	return int64(idx) + 2
}
