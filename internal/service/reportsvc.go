package service

import (
	"bytes"
	"context"
	"strings"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type ReportSessionsStore interface {
	SessionsReport(ctx context.Context, f postgres.SessionFilter) ([]domain.SessionReportRow, error)
	IncomeReport(ctx context.Context, startDate, endDate, groupBy string) ([]domain.IncomeBucket, error)
}

type ReportService struct {
	Store ReportSessionsStore
}

func (s *ReportService) Sessions(ctx context.Context, f postgres.SessionFilter) ([]domain.SessionReportRow, error) {
	return s.Store.SessionsReport(ctx, f)
}

func (s *ReportService) Income(ctx context.Context, startDate, endDate, groupBy string) ([]domain.IncomeBucket, error) {
	switch groupBy {
	case "", "day", "month":
	default:
		return nil, domain.NewValidationError(map[string]string{"group_by": "must be day or month"})
	}
	return s.Store.IncomeReport(ctx, startDate, endDate, groupBy)
}

// ExportSessionsCSV renders the sessions report as CSV for download.
// The id column goes out bare; every other column is double-quoted
// whether or not it needs escaping, so the files stay byte-compatible
// with what existing export consumers already parse.
func (s *ReportService) ExportSessionsCSV(ctx context.Context, f postgres.SessionFilter) ([]byte, error) {
	rows, err := s.Store.SessionsReport(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("ID,Título,Fecha,Estado,Ubicación,Precio,Cliente,Email,Paquete\n")
	for _, row := range rows {
		buf.WriteString(row.ID)
		for _, field := range []string{
			row.Title,
			row.Date.Format("2006-01-02 15:04"),
			row.Status,
			row.Location,
			row.Price,
			row.ClientName,
			row.ClientEmail,
			row.PackageName,
		} {
			buf.WriteByte(',')
			buf.WriteString(csvQuote(field))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
