package stock

import (
	"context"

	"gorm.io/gorm"

	"github.com/bookmandala/bookstore/internal/apperr"
	"github.com/bookmandala/bookstore/internal/models"
)

// Ledger owns every stock mutation. Reserve and Release are single
// conditional updates, so the quantity column can never be driven below
// zero even under concurrent adds.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to an open transaction so stock changes
// commit or roll back together with cart changes.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

func (l *Ledger) Reserve(ctx context.Context, bookID uint, quantity uint) error {
	if quantity < 1 {
		return apperr.Invalid("quantity must be at least 1")
	}

	res := l.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND quantity >= ?", bookID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return apperr.Internal(res.Error, "could not reserve stock")
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := l.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", bookID).Count(&n).Error; err != nil {
			return apperr.Internal(err, "could not reserve stock")
		}
		if n == 0 {
			return apperr.NotFound("book not found")
		}
		return apperr.OutOfStock("insufficient book stock")
	}
	return nil
}

func (l *Ledger) Release(ctx context.Context, bookID uint, quantity uint) error {
	if quantity < 1 {
		return apperr.Invalid("quantity must be at least 1")
	}

	res := l.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return apperr.Internal(res.Error, "could not release stock")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("book not found")
	}
	return nil
}
