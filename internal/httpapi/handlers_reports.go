package httpapi

import (
	"net/http"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

func (a *api) reportFilter(r *http.Request, actor domain.Actor) postgres.SessionFilter {
	f := sessionFilterFromQuery(r.URL.Query())
	if actor.IsAdmin() {
		f.OwnerID = ""
	} else {
		f.OwnerID = actor.ID
		f.ClientID = ""
	}
	return f
}

func (a *api) handleReportSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	rows, err := a.reportSvc.Sessions(r.Context(), a.reportFilter(r, actor))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.SessionReportRow{}
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (a *api) handleReportExportSessions(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	filter := a.reportFilter(r, actor)

	if r.URL.Query().Get("format") != "csv" {
		rows, err := a.reportSvc.Sessions(r.Context(), filter)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		if rows == nil {
			rows = []domain.SessionReportRow{}
		}
		WriteJSON(w, http.StatusOK, rows)
		return
	}

	out, err := a.reportSvc.ExportSessionsCSV(r.Context(), filter)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sesiones.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (a *api) handleReportIncome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := a.reportSvc.Income(r.Context(), q.Get("start_date"), q.Get("end_date"), q.Get("group_by"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if buckets == nil {
		buckets = []domain.IncomeBucket{}
	}
	WriteJSON(w, http.StatusOK, buckets)
}
