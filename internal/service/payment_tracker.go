package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// PaymentTracker flips the paid flag on individual shares. Payment state is
// the only mutable part of a bill.
type PaymentTracker struct {
	store  storage.Store
	access *AccessControl
}

// NewPaymentTracker creates a new PaymentTracker.
func NewPaymentTracker(store storage.Store, access *AccessControl) *PaymentTracker {
	return &PaymentTracker{store: store, access: access}
}

// SetPaid marks a share paid or unpaid. Setting the flag to its current
// value is a no-op success.
func (t *PaymentTracker) SetPaid(ctx context.Context, userID, shareID string, paid bool) (*models.Share, error) {
	share, err := t.store.GetShare(ctx, shareID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	bill, err := t.store.GetBill(ctx, share.BillID)
	if err != nil {
		return nil, err
	}
	if err := t.access.RequireMember(ctx, bill.RoomID, userID); err != nil {
		return nil, err
	}

	if share.Paid == paid {
		return share, nil
	}

	if err := t.store.SetSharePaid(ctx, shareID, paid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	share.Paid = paid

	slog.Info("share payment updated", "share_id", shareID, "bill_id", share.BillID, "paid", paid)
	return share, nil
}
