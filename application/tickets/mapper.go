package tickets

// Column order of the tickets sheet: [ticket, status].

// decodeRows converts raw sheet rows into tickets, skipping the header row.
func decodeRows(rows [][]string) []Ticket {
	if len(rows) <= 1 {
		return []Ticket{}
	}

	out := make([]Ticket, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, decodeRow(row))
	}
	return out
}

func decodeRow(row []string) Ticket {
	var t Ticket
	if len(row) > 0 {
		t.Ticket = row[0]
	}
	if len(row) > 1 {
		t.Status = row[1]
	}
	return t
}

func encodeRow(t Ticket) []string {
	return []string{t.Ticket, t.Status}
}
