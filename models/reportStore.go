package models

import (
	"context"
	"time"
)

// ReportStore adapts the package-level report queries to the interfaces the
// export engine depends on, so the engine can be tested with fakes.
type ReportStore struct{}

func (ReportStore) GetReport(ctx context.Context, id int) (*FinancialReport, error) {
	return GetFinancialReport(ctx, id)
}

func (ReportStore) ListReportsByIds(ctx context.Context, ids []int) ([]*FinancialReport, error) {
	return ListFinancialReportsByIds(ctx, ids)
}

func (ReportStore) GetApprovedReport(ctx context.Context, cooperativeId int, reportType ReportType, year int) (*FinancialReport, error) {
	return GetApprovedFinancialReport(ctx, cooperativeId, reportType, year)
}

func (ReportStore) ListApprovedReports(ctx context.Context, cooperativeId int, year int) ([]*FinancialReport, error) {
	return ListApprovedFinancialReports(ctx, cooperativeId, year)
}

func (ReportStore) ListApprovedReportsByDateRange(ctx context.Context, cooperativeId int, from, to time.Time) ([]*FinancialReport, error) {
	return ListApprovedFinancialReportsByDateRange(ctx, cooperativeId, from, to)
}
