package httpapi

import (
	"net/http"
	"strings"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
	"lunastudios/internal/store/postgres"
)

func (a *api) handleSessionsCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.CreateSessionInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	sess, err := a.sessionSvc.Create(r.Context(), actor, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sess)
}

func (a *api) handleSessionsGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	sess, err := a.sessionSvc.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

func (a *api) handleSessionsUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.UpdateSessionInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	sess, err := a.sessionSvc.Update(r.Context(), actor, r.PathValue("id"), in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}

func sessionFilterFromQuery(q map[string][]string) postgres.SessionFilter {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	return postgres.SessionFilter{
		Query:     get("q"),
		Status:    get("status"),
		StartDate: get("start_date"),
		EndDate:   get("end_date"),
		ClientID:  get("client_id"),
	}
}

func (a *api) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	sessions, err := a.sessionSvc.List(r.Context(), actor, sessionFilterFromQuery(r.URL.Query()))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if sessions == nil {
		sessions = []domain.PhotoSession{}
	}
	WriteJSON(w, http.StatusOK, sessions)
}

func (a *api) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	events, err := a.sessionSvc.CalendarEvents(r.Context(), actor)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if events == nil {
		events = []domain.CalendarEvent{}
	}
	WriteJSON(w, http.StatusOK, events)
}

type searchResponse struct {
	Sessions []domain.PhotoSession `json:"sessions"`
	Users    []domain.User         `json:"users,omitempty"`
}

func (a *api) handleSearch(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	kind := strings.TrimSpace(query.Get("type"))

	out := searchResponse{Sessions: []domain.PhotoSession{}}

	if kind == "" || kind == "all" || kind == "sessions" {
		sessions, err := a.sessionSvc.List(r.Context(), actor, sessionFilterFromQuery(query))
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		if sessions != nil {
			out.Sessions = sessions
		}
	}

	if actor.IsAdmin() && (kind == "all" || kind == "users") {
		page, err := a.adminSvc.ListUsers(r.Context(), query.Get("q"), 1, 20)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		out.Users = make([]domain.User, 0, len(page.Users))
		for _, row := range page.Users {
			out.Users = append(out.Users, row.User)
		}
	}

	WriteJSON(w, http.StatusOK, out)
}
