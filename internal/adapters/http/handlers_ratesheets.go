package httpadapter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

func (rt *Router) rateSheets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadRateSheet(w, r)
	case http.MethodGet:
		rt.listRateSheets(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) uploadRateSheet(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	mode := domain.ImportMode(strings.TrimSpace(r.FormValue("mode")))

	sheet, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		mode,
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sheet)
}

func (rt *Router) listRateSheets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sheets, err := rt.sheets.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if sheets == nil {
		sheets = []domain.RateSheet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sheets": sheets})
}

func (rt *Router) rateSheetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/ratesheets/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sheet id is required"})
		return
	}

	sheet, err := rt.sheets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}
