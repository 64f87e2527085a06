package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type patientUpdateRequest struct {
	Name     *string `json:"name"`
	Archived *bool   `json:"archived"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service sentinel errors to HTTP statuses. A
// partial cascade maps to 409 so clients can distinguish a retryable
// incomplete delete from a plain server failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorPartialCascade):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.logger.Info(r.Context(), "Registration request", "username", req.Username)

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", req.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := s.shifts.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Shift{"shifts": shifts})
}

func (s *Server) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	shift, err := s.shifts.Create(r.Context(), userIDFrom(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]*models.Shift{"shift": shift})
}

func (s *Server) handleRenameShift(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	shift, err := s.shifts.Rename(r.Context(), userIDFrom(r.Context()), r.PathValue("shiftID"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Shift{"shift": shift})
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := s.shifts.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("shiftID")); err != nil {
		s.logger.Error(r.Context(), err.Error(), "shiftID", r.PathValue("shiftID"))
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := s.patients.List(r.Context(), userIDFrom(r.Context()), r.PathValue("shiftID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Patient{"patients": patients})
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patient, err := s.patients.Create(r.Context(), userIDFrom(r.Context()), r.PathValue("shiftID"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]*models.Patient{"patient": patient})
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := models.PatientUpdate{Name: req.Name, Archived: req.Archived}
	patient, err := s.patients.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("patientID"), upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Patient{"patient": patient})
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := s.patients.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("patientID")); err != nil {
		s.logger.Error(r.Context(), err.Error(), "patientID", r.PathValue("patientID"))
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.notes.List(r.Context(), userIDFrom(r.Context()), r.PathValue("patientID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := s.notes.Create(r.Context(), userIDFrom(r.Context()), r.PathValue("patientID"), req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]*models.Note{"note": note})
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := s.notes.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("noteID"), req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Note{"note": note})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("noteID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
