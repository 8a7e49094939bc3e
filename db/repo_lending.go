package db

import (
	"context"
	"time"

	"schoolgear/models"

	"gorm.io/gorm"
)

// Lending ledger. State transitions are guarded twice: the row is read first
// to produce a precise failure class, then the UPDATE itself re-asserts the
// source status so a racing transition can never apply twice.

// CreateRequest inserts a Pending request. Inventory is only pre-checked here;
// the reservation happens at approval, so concurrent creates may admit more
// pending demand than stock. That conflict surfaces when approving.
func (r *Repo) CreateRequest(ctx context.Context, req *models.LendingRequest) error {
	if req.Quantity < 1 {
		return ErrValidation
	}

	available, err := r.GetAvailable(ctx, req.EquipmentID)
	if err != nil {
		return err
	}
	if available < req.Quantity {
		return ErrInsufficientInventory
	}

	req.Status = models.StatusPending
	req.RequestDate = time.Now().UTC()
	return translate(r.DB.WithContext(ctx).Create(req).Error)
}

// ApproveRequest issues a Pending request: status flip and inventory decrement
// commit together or not at all. A zero-row decrement aborts the transaction
// with ErrInsufficientInventory and the request stays Pending.
func (r *Repo) ApproveRequest(ctx context.Context, requestID, approverID uint) (*models.LendingRequest, error) {
	var req models.LendingRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "request_id = ?", requestID).Error; err != nil {
			return translate(err)
		}
		if req.Status != models.StatusPending {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		res := tx.Model(&models.LendingRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.StatusPending).
			Updates(map[string]any{
				"status":      models.StatusIssued,
				"approver_id": approverID,
				"borrow_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		if err := r.AdjustAvailable(ctx, tx, req.EquipmentID, -req.Quantity); err != nil {
			return err
		}

		req.Status = models.StatusIssued
		req.ApproverID = &approverID
		req.BorrowDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

const rejectionReasonMax = 1000

// RejectRequest terminates a Pending request without touching inventory.
func (r *Repo) RejectRequest(ctx context.Context, requestID, approverID uint, reason string) (*models.LendingRequest, error) {
	// Truncate by runes, not bytes; a multi-byte reason must never be cut
	// mid-character.
	if runes := []rune(reason); len(runes) > rejectionReasonMax {
		reason = string(runes[:rejectionReasonMax])
	}

	var req models.LendingRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "request_id = ?", requestID).Error; err != nil {
			return translate(err)
		}
		if req.Status != models.StatusPending {
			return ErrInvalidState
		}

		updates := map[string]any{
			"status":      models.StatusRejected,
			"approver_id": approverID,
		}
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		res := tx.Model(&models.LendingRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		req.Status = models.StatusRejected
		req.ApproverID = &approverID
		if reason != "" {
			req.RejectionReason = &reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ReturnRequest closes an Issued request and releases its reserved quantity.
func (r *Repo) ReturnRequest(ctx context.Context, requestID, approverID uint) (*models.LendingRequest, error) {
	var req models.LendingRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "request_id = ?", requestID).Error; err != nil {
			return translate(err)
		}
		if req.Status != models.StatusIssued {
			return ErrInvalidState
		}

		now := time.Now().UTC()
		res := tx.Model(&models.LendingRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.StatusIssued).
			Updates(map[string]any{
				"status":      models.StatusReturned,
				"return_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		if err := r.AdjustAvailable(ctx, tx, req.EquipmentID, req.Quantity); err != nil {
			return err
		}

		req.Status = models.StatusReturned
		req.ReturnDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repo) GetRequest(ctx context.Context, id uint) (*models.LendingRequest, error) {
	var req models.LendingRequest
	if err := r.DB.WithContext(ctx).First(&req, "request_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// ListRequests returns requests newest first, optionally filtered by status.
func (r *Repo) ListRequests(ctx context.Context, status string) ([]models.LendingRequest, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, ErrValidation
	}
	tx := r.DB.WithContext(ctx).Model(&models.LendingRequest{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var reqs []models.LendingRequest
	err := tx.Order("request_date DESC").Find(&reqs).Error
	return reqs, err
}

func (r *Repo) ListRequestsByRequester(ctx context.Context, requesterID uint) ([]models.LendingRequest, error) {
	var reqs []models.LendingRequest
	err := r.DB.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("request_date DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListOverdue returns issued requests past their expected return date, joined
// with borrower and equipment details for the reporting endpoint.
func (r *Repo) ListOverdue(ctx context.Context, now time.Time) ([]models.OverdueLoan, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var rows []models.OverdueLoan
	err := r.DB.WithContext(ctx).
		Table(models.LendingRequestTable+" AS r").
		Select(`r.request_id, u.full_name AS borrower_name, u.email AS requester_email,
			e.name AS equipment_name, r.quantity, r.expected_return_date`).
		Joins("JOIN "+models.UserTable+" u ON r.requester_id = u.user_id").
		Joins("JOIN "+models.EquipmentTable+" e ON r.equipment_id = e.equipment_id").
		Where("r.status = ? AND r.expected_return_date < ?", models.StatusIssued, today).
		Order("r.expected_return_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
