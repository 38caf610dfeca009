package domain

import "time"

// Transaction status values. Pending is the sole initial state, returned the
// sole terminal state. Approved is a reachable intermediate with no effect on
// tool availability; it is reserved for future approval workflows.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusReturned = "returned"
)

// BorrowingTransaction records one borrowing event for one tool by one borrower
type BorrowingTransaction struct {
	TransactionID string     `json:"transactionId"` // UUID, immutable
	ToolID        string     `json:"toolId"`        // immutable reference
	BorrowerID    string     `json:"borrowerId"`    // immutable reference
	BorrowDate    time.Time  `json:"borrowDate"`
	ReturnDate    *time.Time `json:"returnDate"` // nil until returned
	Status        string     `json:"status"`
}

// Active reports whether the transaction still blocks deletion of the
// user and tool it references.
func (t *BorrowingTransaction) Active() bool {
	return t.Status != StatusReturned
}

// ValidStatus reports whether s is one of the known transaction statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusReturned:
		return true
	}
	return false
}
