package models

import (
	"context"
	"errors"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportType string

const (
	ReportTypeBalanceSheet      ReportType = "balance_sheet"
	ReportTypeIncomeStatement   ReportType = "income_statement"
	ReportTypeCashFlow          ReportType = "cash_flow"
	ReportTypeEquityChanges     ReportType = "equity_changes"
	ReportTypeMemberSavings     ReportType = "member_savings"
	ReportTypeMemberReceivables ReportType = "member_receivables"
	ReportTypeNplReceivables    ReportType = "npl_receivables"
	ReportTypeShuDistribution   ReportType = "shu_distribution"
	ReportTypeBudgetPlan        ReportType = "budget_plan"
)

// AllReportTypes is the closed set of supported report types. Aggregation and
// rendering strategies are registered against every member of this slice;
// reports_test asserts the registries stay complete.
var AllReportTypes = []ReportType{
	ReportTypeBalanceSheet,
	ReportTypeIncomeStatement,
	ReportTypeCashFlow,
	ReportTypeEquityChanges,
	ReportTypeMemberSavings,
	ReportTypeMemberReceivables,
	ReportTypeNplReceivables,
	ReportTypeShuDistribution,
	ReportTypeBudgetPlan,
}

func (t ReportType) Valid() bool {
	for _, rt := range AllReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// DisplayName is the printed report title (Indonesian cooperative reporting
// conventions).
func (t ReportType) DisplayName() string {
	switch t {
	case ReportTypeBalanceSheet:
		return "Neraca"
	case ReportTypeIncomeStatement:
		return "Laporan Laba Rugi"
	case ReportTypeCashFlow:
		return "Laporan Arus Kas"
	case ReportTypeEquityChanges:
		return "Laporan Perubahan Ekuitas"
	case ReportTypeMemberSavings:
		return "Laporan Simpanan Anggota"
	case ReportTypeMemberReceivables:
		return "Laporan Piutang Anggota"
	case ReportTypeNplReceivables:
		return "Laporan Piutang Bermasalah (NPL)"
	case ReportTypeShuDistribution:
		return "Laporan Pembagian SHU"
	case ReportTypeBudgetPlan:
		return "Rencana Anggaran Pendapatan dan Belanja"
	default:
		return string(t)
	}
}

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusSubmitted ReportStatus = "submitted"
	ReportStatusApproved  ReportStatus = "approved"
	ReportStatusRejected  ReportStatus = "rejected"
)

type FinancialReport struct {
	ID            int          `gorm:"primary_key" json:"id"`
	CooperativeId int          `gorm:"index;not null" json:"cooperative_id" binding:"required"`
	Cooperative   *Cooperative `gorm:"foreignKey:CooperativeId" json:"cooperative"`
	ReportType    ReportType   `gorm:"size:50;index;not null" json:"report_type" binding:"required"`
	ReportingYear int          `gorm:"index;not null" json:"reporting_year" binding:"required"`
	Status        ReportStatus `gorm:"type:enum('draft','submitted','approved','rejected');default:'draft'" json:"status"`
	// Cash flow reconciliation metadata; zero for other report types.
	BeginningCash decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"beginning_cash"`
	EndingCash    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"ending_cash"`
	Notes         string            `gorm:"type:text" json:"notes"`
	LineItems     []*ReportLineItem `gorm:"foreignKey:ReportId" json:"line_items"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj FinancialReport) GetId() int {
	return obj.ID
}

func (obj FinancialReport) CooperativeName() string {
	if obj.Cooperative != nil {
		return obj.Cooperative.Name
	}
	return ""
}

// ReportLineItem is one row of an approved financial report. Category values
// are drawn from the fixed set defined by the owning report's type; the
// grouped report types (savings, receivables, NPL, SHU) use the dedicated
// grouping columns instead of Category.
type ReportLineItem struct {
	ID          int    `gorm:"primary_key" json:"id"`
	ReportId    int    `gorm:"index;not null" json:"report_id"`
	AccountCode string `gorm:"size:50" json:"account_code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Category    string `gorm:"size:50;index" json:"category"`
	Subcategory string `gorm:"size:50" json:"subcategory"`

	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	PreviousAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"previous_amount"`
	IsSubtotal     bool            `gorm:"not null;default:false" json:"is_subtotal"`
	SortOrder      int             `gorm:"not null;default:0" json:"sort_order"`

	// member_savings
	SavingsType string          `gorm:"size:50" json:"savings_type"`
	Beginning   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"beginning"`
	Deposits    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deposits"`
	Withdrawals decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"withdrawals"`
	Interest    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"interest"`
	Ending      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"ending"`

	// member_receivables / npl_receivables
	LoanType       string          `gorm:"size:50" json:"loan_type"`
	PaymentStatus  string          `gorm:"size:50" json:"payment_status"`
	Classification string          `gorm:"size:50" json:"classification"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"interest_rate"`
	Provision      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"provision"`
	DaysPastDue    int             `gorm:"default:0" json:"days_past_due"`

	// shu_distribution
	MemberType  string `gorm:"size:50" json:"member_type"`
	MemberCount int    `gorm:"default:0" json:"member_count"`

	// budget_plan
	Priority string `gorm:"size:50" json:"priority"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func lineItemOrder(db *gorm.DB) *gorm.DB {
	// sort_order first, id second: ties resolve to stable input order.
	return db.Order("sort_order ASC, id ASC")
}

func GetFinancialReport(ctx context.Context, id int) (*FinancialReport, error) {
	db := config.GetDB()

	var report FinancialReport
	err := db.WithContext(ctx).
		Preload("Cooperative").
		Preload("LineItems", lineItemOrder).
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// ListFinancialReportsByIds loads the given reports with full line-item
// collections, preserving the order of ids. Missing ids are skipped.
func ListFinancialReportsByIds(ctx context.Context, ids []int) ([]*FinancialReport, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := config.GetDB()

	var reports []*FinancialReport
	err := db.WithContext(ctx).
		Preload("Cooperative").
		Preload("LineItems", lineItemOrder).
		Where("id IN ?", ids).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	byId := make(map[int]*FinancialReport, len(reports))
	for _, r := range reports {
		byId[r.ID] = r
	}
	ordered := make([]*FinancialReport, 0, len(reports))
	for _, id := range ids {
		if r, ok := byId[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

func GetApprovedFinancialReport(ctx context.Context, cooperativeId int, reportType ReportType, year int) (*FinancialReport, error) {
	db := config.GetDB()

	var report FinancialReport
	err := db.WithContext(ctx).
		Preload("Cooperative").
		Preload("LineItems", lineItemOrder).
		Where("cooperative_id = ? AND report_type = ? AND reporting_year = ? AND status = ?",
			cooperativeId, reportType, year, ReportStatusApproved).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func ListApprovedFinancialReports(ctx context.Context, cooperativeId int, year int) ([]*FinancialReport, error) {
	db := config.GetDB()

	var reports []*FinancialReport
	err := db.WithContext(ctx).
		Preload("Cooperative").
		Preload("LineItems", lineItemOrder).
		Where("cooperative_id = ? AND reporting_year = ? AND status = ?",
			cooperativeId, year, ReportStatusApproved).
		Order("report_type ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func ListApprovedFinancialReportsByDateRange(ctx context.Context, cooperativeId int, from, to time.Time) ([]*FinancialReport, error) {
	db := config.GetDB()

	var reports []*FinancialReport
	err := db.WithContext(ctx).
		Preload("Cooperative").
		Preload("LineItems", lineItemOrder).
		Where("cooperative_id = ? AND status = ? AND created_at >= ? AND created_at <= ?",
			cooperativeId, ReportStatusApproved, from, to).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
