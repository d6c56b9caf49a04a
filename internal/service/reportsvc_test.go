package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type stubReportsStore struct {
	sessionsReportFunc func(context.Context, postgres.SessionFilter) ([]domain.SessionReportRow, error)
	incomeReportFunc   func(context.Context, string, string, string) ([]domain.IncomeBucket, error)
}

func (s *stubReportsStore) SessionsReport(ctx context.Context, f postgres.SessionFilter) ([]domain.SessionReportRow, error) {
	return s.sessionsReportFunc(ctx, f)
}

func (s *stubReportsStore) IncomeReport(ctx context.Context, startDate, endDate, groupBy string) ([]domain.IncomeBucket, error) {
	return s.incomeReportFunc(ctx, startDate, endDate, groupBy)
}

func TestReportServiceExportSessionsCSV(t *testing.T) {
	store := &stubReportsStore{
		sessionsReportFunc: func(_ context.Context, _ postgres.SessionFilter) ([]domain.SessionReportRow, error) {
			return []domain.SessionReportRow{
				{
					PhotoSession: domain.PhotoSession{
						ID:       "sess-1",
						Title:    "Sesión, con coma",
						Date:     time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC),
						Status:   "pendiente",
						Location: "Estudio central",
						Price:    "150.00",
					},
					ClientName:  "Ana",
					ClientEmail: "ana@example.com",
					PackageName: "Premium",
				},
			}, nil
		},
	}
	svc := &ReportService{Store: store}

	out, err := svc.ExportSessionsCSV(context.Background(), postgres.SessionFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "ID,Título,Fecha,Estado,Ubicación,Precio,Cliente,Email,Paquete" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	want := `sess-1,"Sesión, con coma","2025-07-01 10:30","pendiente","Estudio central","150.00","Ana","ana@example.com","Premium"`
	if lines[1] != want {
		t.Fatalf("row = %q, want %q", lines[1], want)
	}
}

func TestReportServiceExportSessionsCSVDoublesQuotes(t *testing.T) {
	store := &stubReportsStore{
		sessionsReportFunc: func(_ context.Context, _ postgres.SessionFilter) ([]domain.SessionReportRow, error) {
			return []domain.SessionReportRow{
				{
					PhotoSession: domain.PhotoSession{
						ID:     "sess-2",
						Title:  `Sesión "especial"`,
						Date:   time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC),
						Status: "confirmada",
						Price:  "80.00",
					},
					ClientName: "Luis",
				},
			}, nil
		},
	}
	svc := &ReportService{Store: store}

	out, err := svc.ExportSessionsCSV(context.Background(), postgres.SessionFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := strings.Split(strings.TrimRight(string(out), "\n"), "\n")[1]
	if !strings.Contains(row, `"Sesión ""especial"""`) {
		t.Fatalf("embedded quotes not doubled: %q", row)
	}
	if !strings.Contains(row, `,"",`) {
		t.Fatalf("empty text columns must still be quoted: %q", row)
	}
	if strings.HasPrefix(row, `"`) {
		t.Fatalf("id column must not be quoted: %q", row)
	}
}

func TestReportServiceIncomeRejectsBadGroupBy(t *testing.T) {
	svc := &ReportService{Store: &stubReportsStore{}}

	_, err := svc.Income(context.Background(), "", "", "week")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReportServiceIncomePassesRange(t *testing.T) {
	var gotStart, gotEnd, gotGroup string
	store := &stubReportsStore{
		incomeReportFunc: func(_ context.Context, startDate, endDate, groupBy string) ([]domain.IncomeBucket, error) {
			gotStart, gotEnd, gotGroup = startDate, endDate, groupBy
			return nil, nil
		},
	}
	svc := &ReportService{Store: store}

	if _, err := svc.Income(context.Background(), "2025-01-01", "2025-06-30", "month"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart != "2025-01-01" || gotEnd != "2025-06-30" || gotGroup != "month" {
		t.Fatalf("range mangled: %q %q %q", gotStart, gotEnd, gotGroup)
	}
}
