package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"certificados/application/tickets"
	"certificados/common"
	"certificados/internal/sheetstore"
)

const (
	testTicketsSheet = "tickets"
	testPedidosSheet = "pedidos"
)

var pedidosHeader = []string{
	"uuid", "ticket", "numero_oab", "nome_completo", "subsecao",
	"data_solicitacao", "data_liberacao", "status", "anotacoes",
}

func setupTestServices(t *testing.T, ticketRows ...[]string) (*sheetstore.Memory, *Service) {
	t.Helper()

	store := sheetstore.NewMemory()
	seed := [][]string{{"ticket", "status"}}
	seed = append(seed, ticketRows...)
	store.Seed(testTicketsSheet, seed)
	store.Seed(testPedidosSheet, [][]string{pedidosHeader})

	ticketsSvc := tickets.NewService(store, testTicketsSheet, zap.NewNop())
	return store, NewService(store, ticketsSvc, testPedidosSheet, zap.NewNop())
}

func TestCreate_AssignsFirstAvailableTicket(t *testing.T) {
	_, svc := setupTestServices(t,
		[]string{"68637750800", ""},
		[]string{"68637750801", ""},
	)
	ctx := context.Background()

	result, err := svc.Create(ctx, CreateRequest{NomeCompleto: "João"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if result.Existing != nil {
		t.Fatalf("Create() reported conflict: %+v", result.Existing)
	}

	o := result.Order
	if o.Ticket != "68637750800" {
		t.Errorf("Ticket = %q, want %q", o.Ticket, "68637750800")
	}
	if o.Status != StatusApproved {
		t.Errorf("Status = %q, want %q", o.Status, StatusApproved)
	}
	if o.UUID == "" {
		t.Error("UUID not assigned")
	}
	if o.DataSolicitacao == "" || o.DataLiberacao == "" {
		t.Errorf("Timestamps not stamped: %+v", o)
	}

	// Empty OAB is never a duplicate key: the second create gets a
	// different ticket instead of a conflict.
	second, err := svc.Create(ctx, CreateRequest{NomeCompleto: "João", NumeroOAB: ""})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second.Existing != nil {
		t.Fatal("Empty OAB treated as duplicate")
	}
	if second.Order.Ticket != "68637750801" {
		t.Errorf("Second ticket = %q, want %q", second.Order.Ticket, "68637750801")
	}
	if second.Order.UUID == o.UUID {
		t.Error("UUIDs collided")
	}
}

func TestCreate_NoTicketsAvailable(t *testing.T) {
	store, svc := setupTestServices(t, []string{"100", "Atribuído"})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{NomeCompleto: "X"})
	if !errors.Is(err, common.ErrNoTicketsAvailable) {
		t.Fatalf("Create() error = %v, want ErrNoTicketsAvailable", err)
	}

	// No order row may be written on allocation failure.
	rows, _ := store.ReadRange(ctx, testPedidosSheet, "A:I")
	if len(rows) != 1 {
		t.Errorf("Pedidos sheet has %d rows, want only the header", len(rows))
	}
}

func TestCreate_DuplicateOAB(t *testing.T) {
	_, svc := setupTestServices(t, []string{"100", ""}, []string{"200", ""})
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateRequest{NomeCompleto: "A", NumeroOAB: "123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second, err := svc.Create(ctx, CreateRequest{NomeCompleto: "B", NumeroOAB: " 123 "})
	if err != nil {
		t.Fatalf("Create(duplicate) error = %v; conflict is a successful write", err)
	}
	if second.Existing == nil {
		t.Fatal("Create(duplicate) did not report the existing order")
	}
	if second.Existing.Ticket != first.Order.Ticket {
		t.Errorf("Existing.Ticket = %q, want %q", second.Existing.Ticket, first.Order.Ticket)
	}
	if second.Existing.DataSolicitacao != first.Order.DataSolicitacao {
		t.Errorf("Existing.DataSolicitacao = %q, want %q", second.Existing.DataSolicitacao, first.Order.DataSolicitacao)
	}

	denied := second.Order
	if denied.Status != StatusDenied {
		t.Errorf("Denied order status = %q, want %q", denied.Status, StatusDenied)
	}
	if denied.Ticket != "" {
		t.Errorf("Denied order consumed ticket %q", denied.Ticket)
	}

	// The denied attempt is persisted.
	if _, err := svc.Get(ctx, denied.UUID); err != nil {
		t.Errorf("Get(denied order) error = %v", err)
	}
}

func TestCreate_ConcurrentSameOAB(t *testing.T) {
	_, svc := setupTestServices(t, []string{"100", ""}, []string{"200", ""})
	ctx := context.Background()

	results := make(chan CreateResult, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			res, err := svc.Create(ctx, CreateRequest{NomeCompleto: name, NumeroOAB: "123"})
			if err != nil {
				t.Errorf("Create(%s) error = %v", name, err)
				return
			}
			results <- res
		}("writer-" + fmt.Sprint(i))
	}
	wg.Wait()
	close(results)

	var approved, denied int
	for res := range results {
		switch {
		case res.Existing == nil && res.Order.Status == StatusApproved && res.Order.Ticket != "":
			approved++
		case res.Existing != nil && res.Order.Status == StatusDenied && res.Order.Ticket == "":
			denied++
		default:
			t.Errorf("Unexpected outcome: %+v", res)
		}
	}
	if approved != 1 || denied != 1 {
		t.Errorf("approved=%d denied=%d, want exactly one of each", approved, denied)
	}
}

func TestCreate_AllocationUniqueness(t *testing.T) {
	const n = 8
	var ticketRows [][]string
	for i := 0; i < n; i++ {
		ticketRows = append(ticketRows, []string{fmt.Sprintf("%03d", i), ""})
	}
	_, svc := setupTestServices(t, ticketRows...)
	ctx := context.Background()

	assigned := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Create(ctx, CreateRequest{NomeCompleto: fmt.Sprintf("P%d", i)})
			if err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			assigned <- res.Order.Ticket
		}(i)
	}
	wg.Wait()
	close(assigned)

	seen := make(map[string]bool)
	for tk := range assigned {
		if tk == "" {
			t.Error("Approved order has no ticket")
			continue
		}
		if seen[tk] {
			t.Errorf("Ticket %q assigned twice", tk)
		}
		seen[tk] = true
	}
	if len(seen) != n {
		t.Errorf("%d distinct tickets assigned, want %d", len(seen), n)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	_, svc := setupTestServices(t, []string{"100", ""})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		NomeCompleto: "Maria",
		NumeroOAB:    "456",
		Subsecao:     "Centro",
		Anotacoes:    "first note",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before := created.Order

	updated, err := svc.Update(ctx, before.UUID, UpdateRequest{
		Status: null.StringFrom("Recusado"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Status != "Recusado" {
		t.Errorf("Status = %q after update", updated.Status)
	}

	// Every untouched field must be byte-identical.
	want := before
	want.Status = "Recusado"
	if updated != want {
		t.Errorf("Update() mutated untouched fields:\n got %+v\nwant %+v", updated, want)
	}

	// Setting a field to the empty string is not the same as omitting it.
	cleared, err := svc.Update(ctx, before.UUID, UpdateRequest{
		Anotacoes: null.StringFrom(""),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if cleared.Anotacoes != "" {
		t.Errorf("Anotacoes = %q, want cleared", cleared.Anotacoes)
	}
	if cleared.NomeCompleto != "Maria" {
		t.Errorf("NomeCompleto = %q, want untouched", cleared.NomeCompleto)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	_, svc := setupTestServices(t)

	_, err := svc.Update(context.Background(), "no-such-uuid", UpdateRequest{
		Status: null.StringFrom("Aprovado"),
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_RowReindexing(t *testing.T) {
	_, svc := setupTestServices(t,
		[]string{"100", ""},
		[]string{"200", ""},
		[]string{"300", ""},
	)
	ctx := context.Background()

	var uuids []string
	for i := 0; i < 3; i++ {
		res, err := svc.Create(ctx, CreateRequest{NomeCompleto: fmt.Sprintf("P%d", i)})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		uuids = append(uuids, res.Order.UUID)
	}

	// Deleting the first row shifts the others up; resolving by uuid after
	// the shift must still target the right record.
	if err := svc.Delete(ctx, uuids[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	updated, err := svc.Update(ctx, uuids[2], UpdateRequest{
		Anotacoes: null.StringFrom("marked"),
	})
	if err != nil {
		t.Fatalf("Update() after shift error = %v", err)
	}
	if updated.NomeCompleto != "P2" {
		t.Errorf("Update targeted %q, want P2", updated.NomeCompleto)
	}

	middle, err := svc.Get(ctx, uuids[1])
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if middle.Anotacoes != "" {
		t.Errorf("Neighbor row was mutated: %+v", middle)
	}

	if _, err := svc.Get(ctx, uuids[0]); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	_, svc := setupTestServices(t)

	if err := svc.Delete(context.Background(), "no-such-uuid"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestList_FiltersAndPagination(t *testing.T) {
	_, svc := setupTestServices(t,
		[]string{"100", ""},
		[]string{"200", ""},
		[]string{"300", ""},
	)
	ctx := context.Background()

	for i, oab := range []string{"11", "22", "33"} {
		if _, err := svc.Create(ctx, CreateRequest{NomeCompleto: fmt.Sprintf("P%d", i), NumeroOAB: oab}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	// Status filter is case-insensitive.
	page, total, err := svc.List(ctx, ListFilters{Status: "aprovado"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(page) != 3 {
		t.Errorf("List(status) = %d/%d, want 3/3", len(page), total)
	}

	// OAB filter trims.
	page, total, _ = svc.List(ctx, ListFilters{NumeroOAB: " 22 "})
	if total != 1 || len(page) != 1 || page[0].NumeroOAB != "22" {
		t.Errorf("List(oab) = %+v total=%d", page, total)
	}

	// Ticket filter.
	page, total, _ = svc.List(ctx, ListFilters{Ticket: "300"})
	if total != 1 || len(page) != 1 {
		t.Errorf("List(ticket) = %d/%d, want 1/1", len(page), total)
	}

	// Pagination over the filtered set: total reports the filtered count.
	page, total, _ = svc.List(ctx, ListFilters{Limit: 2, Offset: 1})
	if total != 3 {
		t.Errorf("Paginated total = %d, want 3", total)
	}
	if len(page) != 2 {
		t.Errorf("Page size = %d, want 2", len(page))
	}
	if len(page) > 0 && page[0].NumeroOAB != "22" {
		t.Errorf("Page starts at %+v, want the second record", page[0])
	}

	// Offset past the end yields an empty page, not an error.
	page, total, _ = svc.List(ctx, ListFilters{Offset: 10})
	if total != 3 || len(page) != 0 {
		t.Errorf("List(offset=10) = %d/%d, want 0/3", len(page), total)
	}
}

func TestGet_RoundTripAfterCreate(t *testing.T) {
	_, svc := setupTestServices(t, []string{"100", ""})
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateRequest{NomeCompleto: "João"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(ctx, res.Order.UUID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != res.Order {
		t.Errorf("Get() = %+v, want %+v", got, res.Order)
	}
}
