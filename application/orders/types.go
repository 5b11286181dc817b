package orders

import (
	"context"

	"github.com/guregu/null/v5"
)

// Canonical status values written by order creation. Update accepts any
// status string; these are conventions, not an enum.
const (
	StatusApproved = "Aprovado"
	StatusDenied   = "Recusado"
)

// Order is one row of the pedidos sheet, in column order
// [uuid, ticket, numero_oab, nome_completo, subsecao, data_solicitacao,
// data_liberacao, status, anotacoes].
type Order struct {
	UUID            string `json:"uuid"`
	Ticket          string `json:"ticket"`
	NumeroOAB       string `json:"numero_oab"`
	NomeCompleto    string `json:"nome_completo"`
	Subsecao        string `json:"subsecao"`
	DataSolicitacao string `json:"data_solicitacao"`
	DataLiberacao   string `json:"data_liberacao"`
	Status          string `json:"status"`
	Anotacoes       string `json:"anotacoes"`
}

// CreateRequest is the POST payload. The server assigns uuid, timestamps,
// status and (when approved) the ticket.
type CreateRequest struct {
	NumeroOAB    string `json:"numero_oab"`
	NomeCompleto string `json:"nome_completo" binding:"required"`
	Subsecao     string `json:"subsecao"`
	Anotacoes    string `json:"anotacoes"`
}

// UpdateRequest is the partial PATCH payload. null.String distinguishes a
// field that is absent (left untouched) from one set to the empty string.
// uuid is immutable and therefore not part of the payload.
type UpdateRequest struct {
	Ticket          null.String `json:"ticket"`
	NumeroOAB       null.String `json:"numero_oab"`
	NomeCompleto    null.String `json:"nome_completo"`
	Subsecao        null.String `json:"subsecao"`
	DataSolicitacao null.String `json:"data_solicitacao"`
	DataLiberacao   null.String `json:"data_liberacao"`
	Status          null.String `json:"status"`
	Anotacoes       null.String `json:"anotacoes"`
}

// ListFilters are the in-memory equality filters and optional pagination
// applied to the cached order list.
type ListFilters struct {
	Status    string
	Ticket    string
	NumeroOAB string
	Limit     int
	Offset    int
}

// ConflictRef points at the pre-existing order when a create hits a
// duplicate numero_oab.
type ConflictRef struct {
	Ticket          string `json:"ticket"`
	DataSolicitacao string `json:"data_solicitacao"`
}

// CreateResult carries the persisted order. Existing is non-nil when the
// order was denied over a duplicate numero_oab: the denied order was still
// written, so every attempt is on record.
type CreateResult struct {
	Order    Order
	Existing *ConflictRef
}

// Allocator hands out an available ticket. Implemented by the tickets
// service; called only from inside the orders write lock.
type Allocator interface {
	AssignAvailable(ctx context.Context) (string, error)
}
