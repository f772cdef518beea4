package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

// ReportRepository выполняет агрегирующие запросы для отчетности.
// Все запросы только читают и отражают состояние реестра на момент вызова.
type ReportRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewReportRepository(db *sql.DB, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

// DistrictSummaries возвращает сводку по каждому округу. При непустом
// promoterID учитываются только группы этого промотора.
func (r *ReportRepository) DistrictSummaries(ctx context.Context, promoterID *uuid.UUID) ([]model.DistrictSummary, error) {
	// Подзапросы вместо JOIN, чтобы суммы не размножались по строкам
	query := `
		SELECT
		    d.id,
		    d.name,
		    (SELECT COUNT(*)
		     FROM groups g
		     WHERE g.district_id = d.id AND g.status = 'active'
		       AND ($1::uuid IS NULL OR g.promoter_id = $1)) AS group_count,
		    (SELECT COUNT(*)
		     FROM members m
		     JOIN groups g ON m.group_id = g.id
		     WHERE g.district_id = d.id AND m.status = 'active'
		       AND ($1::uuid IS NULL OR g.promoter_id = $1)) AS active_member_count,
		    (SELECT COALESCE(SUM(s.amount + s.other_amount), 0)
		     FROM savings_entries s
		     JOIN members m ON s.member_id = m.id
		     JOIN groups g ON m.group_id = g.id
		     WHERE g.district_id = d.id
		       AND ($1::uuid IS NULL OR g.promoter_id = $1)) AS total_savings,
		    (SELECT COALESCE(SUM(l.principal), 0)
		     FROM loans l
		     JOIN members m ON l.member_id = m.id
		     JOIN groups g ON m.group_id = g.id
		     WHERE g.district_id = d.id AND l.status IN ('current', 'delinquent')
		       AND ($1::uuid IS NULL OR g.promoter_id = $1)) AS total_loaned,
		    (SELECT COALESCE(SUM(p.principal_portion), 0)
		     FROM loan_payments p
		     JOIN loans l ON p.loan_id = l.id
		     JOIN members m ON l.member_id = m.id
		     JOIN groups g ON m.group_id = g.id
		     WHERE g.district_id = d.id AND l.status IN ('current', 'delinquent')
		       AND ($1::uuid IS NULL OR g.promoter_id = $1)) AS total_repaid
		FROM districts d
		ORDER BY d.name
	`

	rows, err := r.db.QueryContext(ctx, query, promoterID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить сводку по округам: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var summaries []model.DistrictSummary
	for rows.Next() {
		var summary model.DistrictSummary
		var totalLoaned, totalRepaid decimal.Decimal
		if err := rows.Scan(
			&summary.DistrictID,
			&summary.DistrictName,
			&summary.GroupCount,
			&summary.ActiveMemberCount,
			&summary.TotalSavings,
			&totalLoaned,
			&totalRepaid,
		); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать сводку: %v", apperr.ErrStorage, err)
		}
		summary.OutstandingPrincipal = totalLoaned.Sub(totalRepaid)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return summaries, nil
}

// GroupStatistics возвращает показатели отдельной группы
func (r *ReportRepository) GroupStatistics(ctx context.Context, groupID uuid.UUID) (*model.GroupStatistics, error) {
	query := `
		SELECT
		    g.id,
		    g.name,
		    (SELECT COUNT(*)
		     FROM members m
		     WHERE m.group_id = g.id AND m.status = 'active') AS active_member_count,
		    (SELECT COALESCE(SUM(s.amount), 0)
		     FROM savings_entries s
		     JOIN members m ON s.member_id = m.id
		     WHERE m.group_id = g.id) AS total_savings,
		    (SELECT COALESCE(SUM(s.other_amount), 0)
		     FROM savings_entries s
		     JOIN members m ON s.member_id = m.id
		     WHERE m.group_id = g.id) AS total_other,
		    (SELECT COUNT(*)
		     FROM loans l
		     JOIN members m ON l.member_id = m.id
		     WHERE m.group_id = g.id) AS loan_count,
		    (SELECT COALESCE(SUM(l.principal), 0)
		     FROM loans l
		     JOIN members m ON l.member_id = m.id
		     WHERE m.group_id = g.id AND l.status IN ('current', 'delinquent')) AS active_loan_amount,
		    (SELECT COALESCE(SUM(CASE WHEN mc.kind = 'inflow' THEN mc.amount ELSE -mc.amount END), 0)
		     FROM cash_movements mc
		     JOIN meetings r ON mc.meeting_id = r.id
		     WHERE r.group_id = g.id) AS cash_balance
		FROM groups g
		WHERE g.id = $1
	`

	var stats model.GroupStatistics
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(
		&stats.GroupID,
		&stats.GroupName,
		&stats.ActiveMemberCount,
		&stats.TotalSavings,
		&stats.TotalOther,
		&stats.LoanCount,
		&stats.ActiveLoanAmount,
		&stats.CashBalance,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: группа %s", apperr.ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("%w: не удалось получить статистику группы: %v", apperr.ErrStorage, err)
	}

	return &stats, nil
}
