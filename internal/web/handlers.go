package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborworks/fleetimport/internal/core"
	"github.com/harborworks/fleetimport/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleTemplate serves the downloadable import template workbook for
// an entity type.
//
// GET /api/template?type=component
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	entity, err := core.ParseEntityType(r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := core.BuildTemplateFile(entity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.TemplateFileName(entity)))
	w.Write(data)
}

// dryRunResponse is the preview returned for a dry run. Rows are
// capped for the response; the full report stays cached under the
// token for commit.
type dryRunResponse struct {
	FileToken string                 `json:"fileToken"`
	Columns   []string               `json:"columns"`
	Summary   core.ValidationSummary `json:"summary"`
	Rows      []core.RowResult       `json:"rows"`
	TotalRows int                    `json:"totalRows"`
}

// handleDryRun validates an uploaded file without touching stored
// data and returns a preview plus a single-use commit token.
//
// POST /api/dry-run (multipart: file, type, mode, archiveMissing, vesselId)
func (s *Server) handleDryRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, fmt.Errorf("%w: upload exceeds %d bytes", core.ErrFileTooLarge, s.cfg.Import.MaxFileSize))
			return
		}
		respondBadRequest(w, r, "request must be multipart/form-data with a file field")
		return
	}

	entity, err := core.ParseEntityType(r.FormValue("type"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	mode, err := core.ParseImportMode(r.FormValue("mode"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	archiveMissing := false
	if v := r.FormValue("archiveMissing"); v != "" {
		archiveMissing, err = strconv.ParseBool(v)
		if err != nil {
			respondBadRequest(w, r, "archiveMissing must be true or false")
			return
		}
	}
	vesselID := r.FormValue("vesselId")
	if vesselID == "" {
		respondBadRequest(w, r, "vesselId is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondBadRequest(w, r, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}

	result, err := s.service.DryRun(r.Context(), core.DryRunParams{
		Entity:         entity,
		Mode:           mode,
		ArchiveMissing: archiveMissing,
		VesselID:       vesselID,
		FileName:       header.Filename,
		FileData:       data,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows := result.Report.Rows
	if len(rows) > s.cfg.Import.PreviewRows {
		rows = rows[:s.cfg.Import.PreviewRows]
	}

	respondJSON(w, http.StatusOK, dryRunResponse{
		FileToken: result.Token,
		Columns:   result.Report.Columns,
		Summary:   result.Report.Summary,
		Rows:      rows,
		TotalRows: len(result.Report.Rows),
	})
}

// importResponse reports a finished commit. Status is "completed" or
// "partial"; a partial commit carries the mapped storage error so the
// failure is visible to the client, not just the history ledger.
type importResponse struct {
	Outcome   core.Outcome   `json:"outcome"`
	HistoryID string         `json:"historyId"`
	Status    string         `json:"status"`
	Error     *errorResponse `json:"error,omitempty"`
}

// handleImport commits a previously validated dry-run session.
//
// POST /api/import (form: fileToken, userId)
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondBadRequest(w, r, "malformed form body")
		return
	}

	token := r.FormValue("fileToken")
	if token == "" {
		respondBadRequest(w, r, "fileToken is required")
		return
	}

	userID := r.FormValue("userId")
	if userID == "" {
		userID = r.Header.Get("X-User-ID")
	}

	result, err := s.service.Commit(r.Context(), token, userID)
	if err != nil {
		if result == nil {
			respondError(w, r, err)
			return
		}

		// Partial commit: some rows were written, others failed. The
		// outcome is still reported, alongside the failure itself.
		msg := core.MapError(err)
		logging.FromContext(r.Context()).Error("import partially failed",
			"error", err, "history_id", result.HistoryID)
		respondJSON(w, statusForError(err), importResponse{
			Outcome:   result.Outcome,
			HistoryID: result.HistoryID,
			Status:    string(core.HistoryPartial),
			Error:     &errorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code},
		})
		return
	}

	respondJSON(w, http.StatusOK, importResponse{
		Outcome:   result.Outcome,
		HistoryID: result.HistoryID,
		Status:    string(core.HistoryCompleted),
	})
}

// handleHistory lists import history, newest first.
//
// GET /api/history?type=spare&limit=50&offset=0
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var filter core.HistoryFilter

	if v := r.URL.Query().Get("type"); v != "" {
		entity, err := core.ParseEntityType(v)
		if err != nil {
			respondError(w, r, err)
			return
		}
		filter.Entity = entity
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondBadRequest(w, r, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondBadRequest(w, r, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	records, err := s.service.History(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []core.HistorySummary{}
	}

	respondJSON(w, http.StatusOK, records)
}

// handleHistoryFile downloads a stored artifact of a past import.
//
// GET /api/history/{id}/{fileKind}
func (s *Server) handleHistoryFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind, err := core.ParseFileKind(chi.URLParam(r, "fileKind"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, name, err := s.service.HistoryFile(r.Context(), id, kind)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if data == nil {
		respondJSON(w, http.StatusNotFound, errorResponse{
			Error: "no file stored for this record",
			Code:  "REQ002",
		})
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}
