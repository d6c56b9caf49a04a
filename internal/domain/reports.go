package domain

import "time"

type DashboardCounters struct {
	Total     int `json:"total"`
	ThisMonth int `json:"this_month"`
}

type DashboardPayments struct {
	Total           int    `json:"total"`
	TotalAmount     string `json:"total_amount"`
	ThisMonthAmount string `json:"this_month_amount"`
}

type Dashboard struct {
	Sessions       DashboardCounters `json:"sessions"`
	Payments       DashboardPayments `json:"payments"`
	Users          DashboardCounters `json:"users"`
	RecentActivity []ActivityEntry   `json:"recentActivity"`
}

type MonthlySessionStat struct {
	Month          time.Time `json:"month"`
	SessionCount   int       `json:"session_count"`
	CompletedCount int       `json:"completed_count"`
}

type MonthlyIncomeStat struct {
	Month        time.Time `json:"month"`
	TotalIncome  string    `json:"total_income"`
	PaymentCount int       `json:"payment_count"`
}

type PackageStat struct {
	Name         string `json:"name"`
	SessionCount int    `json:"session_count"`
	AvgPrice     string `json:"avg_price"`
}

type TopClient struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	SessionCount int        `json:"session_count"`
	LastSession  *time.Time `json:"last_session,omitempty"`
	TotalSpent   string     `json:"total_spent"`
}

// Stats is the advanced statistics payload. Every slice is non-nil so a
// fresh database serializes as empty arrays, not null.
type Stats struct {
	MonthlySessions []MonthlySessionStat `json:"monthlySessions"`
	MonthlyIncome   []MonthlyIncomeStat  `json:"monthlyIncome"`
	PackageStats    []PackageStat        `json:"packageStats"`
	TopClients      []TopClient          `json:"topClients"`
}

type IncomeBucket struct {
	Period        time.Time `json:"period"`
	PaymentCount  int       `json:"payment_count"`
	TotalAmount   string    `json:"total_amount"`
	AverageAmount string    `json:"average_amount"`
}

// SessionReportRow is a session row enriched for reporting.
type SessionReportRow struct {
	PhotoSession
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	PackageName   string `json:"package_name,omitempty"`
	PaymentAmount string `json:"payment_amount,omitempty"`
}
