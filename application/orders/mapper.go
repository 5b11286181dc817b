package orders

// decodeRows converts raw sheet rows into orders, skipping the header row.
func decodeRows(rows [][]string) []Order {
	if len(rows) <= 1 {
		return []Order{}
	}

	out := make([]Order, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, decodeRow(row))
	}
	return out
}

func decodeRow(row []string) Order {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	return Order{
		UUID:            cell(0),
		Ticket:          cell(1),
		NumeroOAB:       cell(2),
		NomeCompleto:    cell(3),
		Subsecao:        cell(4),
		DataSolicitacao: cell(5),
		DataLiberacao:   cell(6),
		Status:          cell(7),
		Anotacoes:       cell(8),
	}
}

func encodeRow(o Order) []string {
	return []string{
		o.UUID,
		o.Ticket,
		o.NumeroOAB,
		o.NomeCompleto,
		o.Subsecao,
		o.DataSolicitacao,
		o.DataLiberacao,
		o.Status,
		o.Anotacoes,
	}
}

// merge overlays the fields present in the patch onto the existing order.
// Absent fields are left untouched; uuid never changes.
func merge(existing Order, patch UpdateRequest) Order {
	if patch.Ticket.Valid {
		existing.Ticket = patch.Ticket.String
	}
	if patch.NumeroOAB.Valid {
		existing.NumeroOAB = patch.NumeroOAB.String
	}
	if patch.NomeCompleto.Valid {
		existing.NomeCompleto = patch.NomeCompleto.String
	}
	if patch.Subsecao.Valid {
		existing.Subsecao = patch.Subsecao.String
	}
	if patch.DataSolicitacao.Valid {
		existing.DataSolicitacao = patch.DataSolicitacao.String
	}
	if patch.DataLiberacao.Valid {
		existing.DataLiberacao = patch.DataLiberacao.String
	}
	if patch.Status.Valid {
		existing.Status = patch.Status.String
	}
	if patch.Anotacoes.Valid {
		existing.Anotacoes = patch.Anotacoes.String
	}
	return existing
}
