package repository

import (
	"context"
	"sort"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/model"
)

// RevenueRepo reads the monthly revenue reference table.
type RevenueRepo struct{ db *database.DB }

func NewRevenueRepo(db *database.DB) *RevenueRepo { return &RevenueRepo{db: db} }

// FetchRevenue returns every revenue row in calendar order.
func (r *RevenueRepo) FetchRevenue(ctx context.Context) ([]model.Revenue, error) {
	rows, err := database.Query(ctx, r.db, func(s database.Scanner) (model.Revenue, error) {
		var rv model.Revenue
		err := s.Scan(&rv.Month, &rv.Revenue)
		return rv, err
	}, "SELECT month, revenue FROM revenue")
	if err != nil {
		return nil, fetchErr("failed to fetch revenue data", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return model.MonthIndex(rows[i].Month) < model.MonthIndex(rows[j].Month)
	})
	return rows, nil
}
