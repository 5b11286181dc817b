package tickets

// Status markers written into the status column. Empty status means the
// ticket is available; any non-empty value means taken.
const StatusAssigned = "Atribuído"

// Ticket is one row of the tickets sheet.
type Ticket struct {
	Ticket string `json:"ticket"`
	Status string `json:"status"`
}

// CreateRequest is the POST payload.
type CreateRequest struct {
	Ticket string `json:"ticket" binding:"required"`
}

// RenameRequest is the PUT payload carrying the new ticket value.
type RenameRequest struct {
	Ticket string `json:"ticket" binding:"required"`
}
