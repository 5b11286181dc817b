package health

import (
	"context"

	"certificados/internal/sheetstore"
)

type Repository struct {
	store sheetstore.RowStore
	sheet string
}

func NewRepository(store sheetstore.RowStore, sheet string) *Repository {
	return &Repository{store: store, sheet: sheet}
}

// Ping reads the header cell of the sheet, which exercises transport and
// auth without touching any domain row.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.store.ReadRange(ctx, r.sheet, "A1:A1")
	return err
}
