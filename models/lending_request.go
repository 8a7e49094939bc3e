package models

import "time"

const LendingRequestTable = "lending_requests"

// Lending request lifecycle. Transitions are one-directional:
// Pending -> Issued -> Returned, or Pending -> Rejected. Nothing leaves a
// terminal state, and only Issued requests hold reserved inventory.
const (
	StatusPending  = "Pending"
	StatusIssued   = "Issued"
	StatusRejected = "Rejected"
	StatusReturned = "Returned"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusIssued, StatusRejected, StatusReturned:
		return true
	}
	return false
}

type LendingRequest struct {
	ID          uint `gorm:"primaryKey;column:request_id" json:"requestId"`
	EquipmentID uint `gorm:"index;not null" json:"equipmentId"`
	RequesterID uint `gorm:"index;not null" json:"requesterId"`
	Quantity    int  `gorm:"not null;check:quantity >= 1" json:"quantity"`

	RequestDate        time.Time `gorm:"index;not null" json:"requestDate"`
	ExpectedReturnDate time.Time `gorm:"index;not null" json:"expectedReturnDate"`

	Status          string     `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	ApproverID      *uint      `json:"approverId,omitempty"`
	BorrowDate      *time.Time `json:"borrowDate,omitempty"`
	ReturnDate      *time.Time `json:"returnDate,omitempty"`
	RejectionReason *string    `gorm:"size:1000" json:"rejectionReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LendingRequest) TableName() string { return LendingRequestTable }

// OverdueLoan is the reporting row for issued requests past their due date,
// joined with borrower and equipment details.
type OverdueLoan struct {
	RequestID          uint      `json:"requestId"`
	BorrowerName       string    `json:"borrowerName"`
	RequesterEmail     string    `json:"requesterEmail"`
	EquipmentName      string    `json:"equipmentName"`
	Quantity           int       `json:"quantity"`
	ExpectedReturnDate time.Time `json:"expectedReturnDate"`
}
