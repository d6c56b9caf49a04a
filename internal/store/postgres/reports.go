package postgres

import (
	"context"
	"fmt"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportsStore struct {
	pool *pgxpool.Pool
}

func NewReportsStore(pool *pgxpool.Pool) *ReportsStore {
	return &ReportsStore{pool: pool}
}

func (s *ReportsStore) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	var d domain.Dashboard

	const sessionsQ = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE date >= now() - INTERVAL '30 days')
		FROM photo_sessions
	`
	if err := s.pool.QueryRow(ctx, sessionsQ).Scan(&d.Sessions.Total, &d.Sessions.ThisMonth); err != nil {
		return domain.Dashboard{}, fmt.Errorf("dashboard sessions: %w", err)
	}

	const paymentsQ = `
		SELECT COUNT(*),
		       COALESCE(SUM(amount), 0)::text,
		       COALESCE(SUM(amount) FILTER (WHERE payment_date >= now() - INTERVAL '30 days'), 0)::text
		FROM payments
		WHERE payment_status = 'completed'
	`
	if err := s.pool.QueryRow(ctx, paymentsQ).Scan(&d.Payments.Total, &d.Payments.TotalAmount, &d.Payments.ThisMonthAmount); err != nil {
		return domain.Dashboard{}, fmt.Errorf("dashboard payments: %w", err)
	}

	const usersQ = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE created_at >= now() - INTERVAL '30 days')
		FROM users
		WHERE role = 'client'
	`
	if err := s.pool.QueryRow(ctx, usersQ).Scan(&d.Users.Total, &d.Users.ThisMonth); err != nil {
		return domain.Dashboard{}, fmt.Errorf("dashboard users: %w", err)
	}

	return d, nil
}

func (s *ReportsStore) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{
		MonthlySessions: []domain.MonthlySessionStat{},
		MonthlyIncome:   []domain.MonthlyIncomeStat{},
		PackageStats:    []domain.PackageStat{},
		TopClients:      []domain.TopClient{},
	}

	const monthlySessionsQ = `
		SELECT DATE_TRUNC('month', date),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completada')
		FROM photo_sessions
		WHERE date >= now() - INTERVAL '12 months'
		GROUP BY 1
		ORDER BY 1
	`
	rows, err := s.pool.Query(ctx, monthlySessionsQ)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats monthly sessions: %w", err)
	}
	for rows.Next() {
		var m domain.MonthlySessionStat
		if err := rows.Scan(&m.Month, &m.SessionCount, &m.CompletedCount); err != nil {
			rows.Close()
			return domain.Stats{}, fmt.Errorf("scan monthly sessions: %w", err)
		}
		stats.MonthlySessions = append(stats.MonthlySessions, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("stats monthly sessions: %w", err)
	}

	const monthlyIncomeQ = `
		SELECT DATE_TRUNC('month', payment_date),
		       COALESCE(SUM(amount), 0)::text,
		       COUNT(*)
		FROM payments
		WHERE payment_status = 'completed'
		  AND payment_date >= now() - INTERVAL '12 months'
		GROUP BY 1
		ORDER BY 1
	`
	rows, err = s.pool.Query(ctx, monthlyIncomeQ)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats monthly income: %w", err)
	}
	for rows.Next() {
		var m domain.MonthlyIncomeStat
		if err := rows.Scan(&m.Month, &m.TotalIncome, &m.PaymentCount); err != nil {
			rows.Close()
			return domain.Stats{}, fmt.Errorf("scan monthly income: %w", err)
		}
		stats.MonthlyIncome = append(stats.MonthlyIncome, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("stats monthly income: %w", err)
	}

	const packageStatsQ = `
		SELECT p.name,
		       COUNT(s.id),
		       COALESCE(AVG(py.amount), 0)::text
		FROM packages p
		LEFT JOIN photo_sessions s ON p.id = s.package_id
		LEFT JOIN payments py ON s.id = py.session_id AND py.payment_status = 'completed'
		GROUP BY p.id, p.name
		ORDER BY COUNT(s.id) DESC
	`
	rows, err = s.pool.Query(ctx, packageStatsQ)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats packages: %w", err)
	}
	for rows.Next() {
		var p domain.PackageStat
		if err := rows.Scan(&p.Name, &p.SessionCount, &p.AvgPrice); err != nil {
			rows.Close()
			return domain.Stats{}, fmt.Errorf("scan package stats: %w", err)
		}
		stats.PackageStats = append(stats.PackageStats, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("stats packages: %w", err)
	}

	const topClientsQ = `
		SELECT u.name,
		       u.email,
		       COUNT(s.id),
		       MAX(s.date),
		       COALESCE(SUM(py.amount), 0)::text
		FROM users u
		LEFT JOIN photo_sessions s ON u.id = s.user_id
		LEFT JOIN payments py ON s.id = py.session_id AND py.payment_status = 'completed'
		WHERE u.role = 'client'
		GROUP BY u.id, u.name, u.email
		HAVING COUNT(s.id) > 0
		ORDER BY SUM(py.amount) DESC NULLS LAST
		LIMIT 10
	`
	rows, err = s.pool.Query(ctx, topClientsQ)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats top clients: %w", err)
	}
	for rows.Next() {
		var (
			c      domain.TopClient
			lastTS pgtype.Timestamptz
		)
		if err := rows.Scan(&c.Name, &c.Email, &c.SessionCount, &lastTS, &c.TotalSpent); err != nil {
			rows.Close()
			return domain.Stats{}, fmt.Errorf("scan top clients: %w", err)
		}
		c.LastSession = timestamptzPtr(lastTS)
		stats.TopClients = append(stats.TopClients, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("stats top clients: %w", err)
	}

	return stats, nil
}

// IncomeReport buckets completed payments by day or month.
func (s *ReportsStore) IncomeReport(ctx context.Context, startDate, endDate, groupBy string) ([]domain.IncomeBucket, error) {
	trunc := "day"
	if groupBy == "month" {
		trunc = "month"
	}

	var c condList
	c.Where("payment_status = ?", domain.PaymentCompleted)
	if startDate != "" {
		c.Where("payment_date >= ?::timestamptz", startDate)
	}
	if endDate != "" {
		c.Where("payment_date <= ?::timestamptz", endDate)
	}

	q := `
		SELECT DATE_TRUNC('` + trunc + `', payment_date) AS period,
		       COUNT(*),
		       COALESCE(SUM(amount), 0)::text,
		       COALESCE(AVG(amount), 0)::text
		FROM payments` + c.SQL() + `
		GROUP BY period
		ORDER BY period DESC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("income report: %w", err)
	}
	defer rows.Close()

	out := []domain.IncomeBucket{}
	for rows.Next() {
		var b domain.IncomeBucket
		if err := rows.Scan(&b.Period, &b.PaymentCount, &b.TotalAmount, &b.AverageAmount); err != nil {
			return nil, fmt.Errorf("scan income bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("income report: %w", err)
	}
	return out, nil
}

// SessionsReport lists sessions enriched with client, package and the
// completed payment amount, filtered by the caller's scope.
func (s *ReportsStore) SessionsReport(ctx context.Context, f SessionFilter) ([]domain.SessionReportRow, error) {
	c := f.conds()
	q := `
		SELECT ` + prefixColumns("s", sessionColumns) + `,
		       u.name, u.email, p.name, py.amount::text
		FROM photo_sessions s
		JOIN users u ON s.user_id = u.id
		LEFT JOIN packages p ON s.package_id = p.id
		LEFT JOIN payments py ON s.id = py.session_id AND py.payment_status = 'completed'` + c.SQL() + `
		ORDER BY s.date DESC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("sessions report: %w", err)
	}
	defer rows.Close()

	out := []domain.SessionReportRow{}
	for rows.Next() {
		var (
			r         domain.SessionReportRow
			idUUID    pgtype.UUID
			userUUID  pgtype.UUID
			desc      pgtype.Text
			location  pgtype.Text
			price     pgtype.Text
			pkgUUID   pgtype.UUID
			updatedTS pgtype.Timestamptz
			pkgName   pgtype.Text
			payAmount pgtype.Text
		)
		if err := rows.Scan(
			&idUUID,
			&userUUID,
			&r.Title,
			&desc,
			&r.Date,
			&r.DurationMinutes,
			&location,
			&r.Status,
			&price,
			&pkgUUID,
			&r.CreatedAt,
			&updatedTS,
			&r.ClientName,
			&r.ClientEmail,
			&pkgName,
			&payAmount,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		r.UserID = uuidOrEmpty(userUUID)
		r.Description = textOrEmpty(desc)
		r.Location = textOrEmpty(location)
		r.Price = textOrEmpty(price)
		r.PackageID = uuidPtr(pkgUUID)
		r.UpdatedAt = timestamptzPtr(updatedTS)
		r.PackageName = textOrEmpty(pkgName)
		r.PaymentAmount = textOrEmpty(payAmount)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sessions report: %w", err)
	}
	return out, nil
}
