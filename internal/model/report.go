package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistrictSummary - сводка по округу
type DistrictSummary struct {
	DistrictID           uuid.UUID       `json:"district_id"`
	DistrictName         string          `json:"district_name"`
	GroupCount           int             `json:"group_count"`
	ActiveMemberCount    int             `json:"active_member_count"`
	TotalSavings         decimal.Decimal `json:"total_savings"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
}

// SystemSummary - сводка по всем округам
type SystemSummary struct {
	DistrictCount        int             `json:"district_count"`
	GroupCount           int             `json:"group_count"`
	ActiveMemberCount    int             `json:"active_member_count"`
	TotalSavings         decimal.Decimal `json:"total_savings"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
}

// GroupStatistics - показатели отдельной группы
type GroupStatistics struct {
	GroupID           uuid.UUID       `json:"group_id"`
	GroupName         string          `json:"group_name"`
	ActiveMemberCount int             `json:"active_member_count"`
	TotalSavings      decimal.Decimal `json:"total_savings"`
	TotalOther        decimal.Decimal `json:"total_other"`
	LoanCount         int             `json:"loan_count"`
	ActiveLoanAmount  decimal.Decimal `json:"active_loan_amount"`
	CashBalance       decimal.Decimal `json:"cash_balance"`
}
