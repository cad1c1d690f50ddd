package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"smartledger/internal/domain"
	"smartledger/internal/port"
)

type billRepo struct {
	db *sqlx.DB
}

// NewBillRepo creates a new PostgreSQL-backed BillRepository.
func NewBillRepo(db *sqlx.DB) port.BillRepository {
	return &billRepo{db: db}
}

// Save inserts a bill. There is no upsert: the unique constraint on bill_id
// decides races between concurrent saves, so exactly one wins and the rest
// observe domain.ErrDuplicateBillID.
func (r *billRepo) Save(ctx context.Context, bill *domain.Bill) error {
	query := `INSERT INTO bills (bill_id, user_id, category, amount, date, description, nw_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		bill.BillID, bill.UserID, bill.Category, bill.Amount,
		bill.Date, bill.Description, bill.NWType)
	if err != nil {
		if strings.Contains(err.Error(), "bills_bill_id_key") {
			return domain.ErrDuplicateBillID
		}
		return fmt.Errorf("billRepo.Save: %w", err)
	}
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, billID string) (*domain.Bill, error) {
	var bill domain.Bill
	err := r.db.GetContext(ctx, &bill,
		"SELECT * FROM bills WHERE bill_id = $1", billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("billRepo.GetByID: %w", err)
	}
	return &bill, nil
}

func (r *billRepo) Delete(ctx context.Context, billID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM bills WHERE bill_id = $1", billID)
	if err != nil {
		return fmt.Errorf("billRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *billRepo) List(ctx context.Context, userID string) ([]domain.Bill, error) {
	var bills []domain.Bill
	var err error
	if userID == "" {
		err = r.db.SelectContext(ctx, &bills, "SELECT * FROM bills ORDER BY id")
	} else {
		err = r.db.SelectContext(ctx, &bills,
			"SELECT * FROM bills WHERE user_id = $1 ORDER BY id", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("billRepo.List: %w", err)
	}
	return bills, nil
}
