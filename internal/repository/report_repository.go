package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession sums paid-job revenue per profession of the contract's
// client over [start, endExclusive) and returns the top group.
func (r *ReportRepository) BestProfession(ctx context.Context, start, endExclusive time.Time) (*model.ProfessionTotal, error) {
	var rows []model.ProfessionTotal
	if err := r.db.WithContext(ctx).Raw(`
		SELECT p.profession AS profession, SUM(j.price) AS total
		FROM jobs j
		INNER JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.profession
		ORDER BY SUM(j.price) DESC
		LIMIT 1
	`, start, endExclusive).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// BestClients returns the clients that paid the most over the window,
// total descending, at most limit rows.
func (r *ReportRepository) BestClients(ctx context.Context, start, endExclusive time.Time, limit int) ([]model.ClientTotal, error) {
	var clients []model.ClientTotal
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS id,
			p.first_name || ' ' || p.last_name AS name,
			SUM(j.price) AS total
		FROM jobs j
		INNER JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date < ?
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY SUM(j.price) DESC
		LIMIT ?
	`, start, endExclusive, limit).Scan(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}
