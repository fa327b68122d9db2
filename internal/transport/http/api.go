package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"

	"intellitest/internal/app"
	"intellitest/internal/domain"
	"intellitest/internal/report"
)

// API exposes the session use cases over REST.
type API struct {
	service *app.Service
}

func NewAPI(service *app.Service) *API {
	return &API{service: service}
}

// NewRouter mounts the REST API, the websocket endpoint and the health check.
func NewRouter(service *app.Service) http.Handler {
	api := NewAPI(service)
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/banks", api.ListBanks)
		r.Get("/demographics/options", api.DemographicOptions)
		r.Post("/sessions", api.Start)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", api.Snapshot)
			r.Delete("/", api.Reset)
			r.Put("/answers/{position}", api.SelectAnswer)
			r.Post("/goto/{position}", api.GoTo)
			r.Post("/next", api.Next)
			r.Post("/prev", api.Prev)
			r.Post("/submit", api.Submit)
			r.Get("/result", api.Result)
			r.Get("/result/flat", api.FlatResult)
			r.Get("/report.xlsx", api.Workbook)
			r.Post("/email", api.Email)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		glog.V(1).Infof("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func (a *API) ListBanks(w http.ResponseWriter, r *http.Request) {
	ids, err := a.service.BankIDs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, map[string]any{"banks": ids})
}

func (a *API) DemographicOptions(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, map[string]any{
		"sex":       domain.SexOptions,
		"ethnicity": domain.EthnicityOptions,
		"regions":   domain.Regions,
		"education": domain.EducationLevels,
		"countries": domain.Countries,
		"age":       map[string]int{"min": domain.MinAge, "max": domain.MaxAge},
	})
}

func (a *API) Start(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeBadRequest(w, r, "invalid profile payload")
		return
	}
	snap, err := a.service.Start(r.Context(), profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, snap)
}

func (a *API) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, snap)
}

type selectRequest struct {
	Value string `json:"value"`
}

func (a *API) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	position, ok := positionParam(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "invalid answer payload")
		return
	}
	snap, err := a.service.SelectAnswer(r.Context(), chi.URLParam(r, "id"), position, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, snap)
}

func (a *API) GoTo(w http.ResponseWriter, r *http.Request) {
	position, ok := positionParam(w, r)
	if !ok {
		return
	}
	snap, err := a.service.GoTo(r.Context(), chi.URLParam(r, "id"), position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, snap)
}

func (a *API) Next(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, snap)
}

func (a *API) Prev(w http.ResponseWriter, r *http.Request) {
	snap, err := a.service.Prev(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, snap)
}

// Submit scores the session. Repeating it returns the stored result with 200.
func (a *API) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := a.service.Submit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sub != nil {
		writeOK(w, r, http.StatusCreated, sub)
		return
	}
	stored, err := a.service.Result(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, stored)
}

func (a *API) Result(w http.ResponseWriter, r *http.Request) {
	sub, err := a.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, sub)
}

func (a *API) FlatResult(w http.ResponseWriter, r *http.Request) {
	sub, err := a.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, report.Flatten(sub.Result))
}

func (a *API) Workbook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := a.service.Result(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="iq-report-`+id+`.xlsx"`)
	if err := report.WriteWorkbook(w, sub.Result); err != nil {
		glog.Errorf("write workbook for %s: %v", id, err)
	}
}

func (a *API) Email(w http.ResponseWriter, r *http.Request) {
	if err := a.service.EmailResult(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusAccepted, map[string]bool{"sent": true})
}

func (a *API) Reset(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeBadRequest(w, r, "position must be an integer")
		return 0, false
	}
	return position, true
}
