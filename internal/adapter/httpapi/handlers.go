package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
)

// maxBodyBytes bounds an upload body. A full day of offline readings is a
// few hundred KB; 10 MB leaves generous headroom.
const maxBodyBytes = 10 << 20

// DashboardResponse is the JSON summary view: every record plus KPI figures.
type DashboardResponse struct {
	TotalCount int                  `json:"total_count"`
	Latest     *domain.Measurement  `json:"latest,omitempty"`
	DataList   []domain.Measurement `json:"data_list"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	received, err := s.ingestor.Ingest(r.Context(), body)
	if err != nil {
		if isPayloadError(err) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("batch insert failed", "error", err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"received": received,
	})
}

func isPayloadError(err error) bool {
	return errors.Is(err, domain.ErrEmptyPayload) ||
		errors.Is(err, domain.ErrInvalidPayload) ||
		errors.Is(err, domain.ErrNoValidRecords)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListAll(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "Data not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListAll(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := DashboardResponse{
		TotalCount: len(list),
		DataList:   list,
	}
	if len(list) > 0 {
		resp.Latest = &list[0]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListRecent(r.Context(), s.opts.DashboardLimit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := dashboardData{
		Rows:       toViews(list),
		TotalCount: total,
	}
	if len(data.Rows) > 0 {
		data.Latest = &data.Rows[0]
	}
	s.renderHTML(w, "dashboard.html", data)
}

func (s *Server) handleDetailPage(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Data not found")) //nolint:errcheck
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.renderHTML(w, "detail.html", measurementView{m})
}
