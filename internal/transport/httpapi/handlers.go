package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/domain/observation"
	"riskwatch/internal/errs"
	"riskwatch/internal/ports"
	"riskwatch/internal/usecase/observations"
)

// maxPhotoBytes bounds the uploaded photo payload.
const maxPhotoBytes = 16 << 20

type recordResponse struct {
	ID                int64  `json:"id"`
	Date              string `json:"date"`
	Floor             string `json:"floor"`
	Location          string `json:"location"`
	Description       string `json:"description"`
	Impact            string `json:"impact"`
	Likelihood        int    `json:"likelihood"`
	Severity          int    `json:"severity"`
	RiskRating        int    `json:"risk_rating"`
	Band              string `json:"band"`
	CorrectiveAction  string `json:"corrective_action"`
	ResponsiblePerson string `json:"responsible_person"`
	Deadline          string `json:"deadline"`
	PhotoB64          string `json:"photo_b64,omitempty"`
}

func toResponse(rec observation.Record) recordResponse {
	return recordResponse{
		ID:                rec.ID,
		Date:              rec.DateStr,
		Floor:             rec.Floor,
		Location:          rec.Location,
		Description:       rec.Description,
		Impact:            rec.Impact,
		Likelihood:        rec.Likelihood,
		Severity:          rec.Severity,
		RiskRating:        rec.RiskRating,
		Band:              rec.Band().String(),
		CorrectiveAction:  rec.CorrectiveAction,
		ResponsiblePerson: rec.ResponsiblePerson,
		Deadline:          rec.Deadline,
		PhotoB64:          rec.PhotoBase64(),
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	in := observations.SubmitInput{
		Floor:       r.FormValue("floor"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("observation"),
	}

	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "read photo upload")
			return
		}
		in.Photo = photo
	}

	res, err := s.svc.Submit(r.Context(), in)
	if err != nil {
		var verr *observation.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Floor, Location, and Observation fields are required.",
				"fields": verr.Fields,
			})
			return
		}
		logging.Error(r.Context(), "submit failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "could not store observation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": res.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	in := observations.ListInput{
		Search: r.URL.Query().Get("search"),
		Sort:   parseSortKey(r.URL.Query().Get("sort")),
	}

	records, err := s.svc.List(r.Context(), in)
	if err != nil {
		logging.Error(r.Context(), "list failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "could not list observations")
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid observation id")
		return
	}

	rec, err := s.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrObservationNotFound) {
			writeError(w, http.StatusNotFound, "observation not found")
			return
		}
		logging.Error(r.Context(), "get failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "could not read observation")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid observation id")
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrObservationNotFound) {
			writeError(w, http.StatusNotFound, "observation not found")
			return
		}
		logging.Error(r.Context(), "delete failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "could not delete observation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ExportReport(r.Context())
	if err != nil {
		logging.Error(r.Context(), "export failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "could not export report")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logging.Error(r.Context(), "write export payload failed", slog.Any("err", errs.Loggable(err)))
	}
}

func parseSortKey(raw string) ports.SortKey {
	switch raw {
	case "date_oldest":
		return ports.SortOldestFirst
	case "risk_high":
		return ports.SortHighestRiskFirst
	default:
		return ports.SortNewestFirst
	}
}
