package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
	"lunastudios/internal/store/postgres"
)

type stubAdminReports struct {
	dashboard func(context.Context) (domain.Dashboard, error)
	stats     func(context.Context) (domain.Stats, error)
}

func (s *stubAdminReports) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	return s.dashboard(ctx)
}

func (s *stubAdminReports) Stats(ctx context.Context) (domain.Stats, error) {
	return s.stats(ctx)
}

type stubAdminUsers struct {
	list func(context.Context, string, int, int) ([]postgres.AdminUserRow, int, error)
}

func (s *stubAdminUsers) ListUsers(ctx context.Context, search string, limit, offset int) ([]postgres.AdminUserRow, int, error) {
	return s.list(ctx, search, limit, offset)
}

func (s *stubAdminUsers) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

type stubAdminActivity struct {
	entries []domain.ActivityEntry
}

func (s *stubAdminActivity) Append(_ context.Context, e domain.ActivityEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubAdminActivity) ListRecent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	out := append([]domain.ActivityEntry(nil), s.entries...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestAdminDashboardSerializesRecentActivity(t *testing.T) {
	reports := &stubAdminReports{
		dashboard: func(context.Context) (domain.Dashboard, error) {
			return domain.Dashboard{}, nil
		},
	}
	activity := &stubAdminActivity{entries: []domain.ActivityEntry{
		{ID: "act-1", UserID: "admin-1", Action: "login", EntityType: "user"},
	}}
	a := &api{adminSvc: &service.AdminService{Reports: reports, Activity: activity}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req = withActor(req, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	a.handleAdminDashboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if strings.Contains(body, `"recentActivity":null`) {
		t.Fatalf("recent activity serialized as null: %s", body)
	}
	if !strings.Contains(body, `"action":"login"`) {
		t.Fatalf("dashboard body missing the audit feed: %s", body)
	}
}

func TestAdminStatsKeysAreAlwaysArrays(t *testing.T) {
	reports := &stubAdminReports{
		stats: func(context.Context) (domain.Stats, error) {
			return domain.Stats{
				MonthlySessions: []domain.MonthlySessionStat{},
				MonthlyIncome:   []domain.MonthlyIncomeStat{},
				PackageStats:    []domain.PackageStat{},
				TopClients:      []domain.TopClient{},
			}, nil
		},
	}
	a := &api{adminSvc: &service.AdminService{Reports: reports}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req = withActor(req, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	a.handleAdminStats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, key := range []string{`"monthlySessions":[]`, `"monthlyIncome":[]`, `"packageStats":[]`, `"topClients":[]`} {
		if !strings.Contains(body, key) {
			t.Fatalf("stats body missing %s: %s", key, body)
		}
	}
}

func TestAdminUsersPageShape(t *testing.T) {
	users := &stubAdminUsers{
		list: func(_ context.Context, search string, limit, offset int) ([]postgres.AdminUserRow, int, error) {
			if limit != 10 || offset != 10 {
				t.Fatalf("unexpected paging: limit=%d offset=%d", limit, offset)
			}
			return []postgres.AdminUserRow{}, 23, nil
		},
	}
	a := &api{adminSvc: &service.AdminService{Users: users}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?page=2&limit=10", nil)
	req = withActor(req, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	a.handleAdminUsers(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rr.Code, rr.Body.String())
	}
	var page struct {
		Users      []json.RawMessage `json:"users"`
		Total      int               `json:"total"`
		Page       int               `json:"page"`
		TotalPages int               `json:"totalPages"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Users == nil {
		t.Fatal("users must be an array, not null")
	}
	if page.Total != 23 || page.Page != 2 || page.TotalPages != 3 {
		t.Fatalf("unexpected page meta: %+v", page)
	}
}

func TestAdminUserStatusRejectsSelf(t *testing.T) {
	a := &api{adminSvc: &service.AdminService{Users: &stubAdminUsers{}}}

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/admin-1/status",
		strings.NewReader(`{"is_active":false}`))
	req.SetPathValue("id", "admin-1")
	req = withActor(req, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	a.handleAdminUserStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-deactivation, got %d", rr.Code)
	}
}
