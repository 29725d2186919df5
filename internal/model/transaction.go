package model

import "time"

// TransactionType distinguishes withdrawals from returns. Maintenance
// intake and exit reuse these two types; the sentinel actor names below
// tell them apart from teacher-initiated movements.
type TransactionType string

const (
	TypeWithdrawal TransactionType = "retirada"
	TypeReturn     TransactionType = "devolucao"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeWithdrawal || t == TypeReturn
}

// Sentinel actors for system-triggered transactions. They are fixed,
// non-human teacherName values, distinct from any real teacher name.
const (
	ActorMaintenance       = "system:maintenance"
	ActorMaintenanceReturn = "system:maintenance-return"
)

// Transaction is one immutable ledger entry. ItemName is a snapshot of
// the item's name at event time so later renames do not rewrite history.
type Transaction struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	ItemName    string          `json:"itemName"`
	TeacherName string          `json:"teacherName"`
	Type        TransactionType `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Notes       string          `json:"notes,omitempty"`
}

// Stats summarizes the catalog and recent movement for the dashboard.
type Stats struct {
	TotalItems         int           `json:"totalItems"`
	AvailableItems     int           `json:"availableItems"`
	BorrowedItems      int           `json:"borrowedItems"`
	MaintenanceItems   int           `json:"maintenanceItems"`
	RecentTransactions []Transaction `json:"recentTransactions"`
}
