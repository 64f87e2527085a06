// Package httpapi exposes the shift, patient and note services over an
// authenticated HTTP/JSON API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/server/services"
	"github.com/mpetrenko/shiftnotes/internal/server/users"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *users.Service
	shifts    *services.ShiftService
	patients  *services.PatientService
	notes     *services.NoteService
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us *users.Service, ss *services.ShiftService,
	ps *services.PatientService, ns *services.NoteService, secretKey string) (*Server, error) {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		shifts:    ss,
		patients:  ps,
		notes:     ns,
		jwtSecret: []byte(secretKey),
	}, nil
}

// routes wires every API endpoint. Method-qualified patterns keep the
// method dispatch in the mux; path values are read with r.PathValue.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.Handle("GET /api/shifts", s.withAuth(s.handleListShifts))
	mux.Handle("POST /api/shifts", s.withAuth(s.handleCreateShift))
	mux.Handle("PUT /api/shifts/{shiftID}", s.withAuth(s.handleRenameShift))
	mux.Handle("DELETE /api/shifts/{shiftID}", s.withAuth(s.handleDeleteShift))

	mux.Handle("GET /api/shifts/{shiftID}/patients", s.withAuth(s.handleListPatients))
	mux.Handle("POST /api/shifts/{shiftID}/patients", s.withAuth(s.handleCreatePatient))
	mux.Handle("PUT /api/patients/{patientID}", s.withAuth(s.handleUpdatePatient))
	mux.Handle("DELETE /api/patients/{patientID}", s.withAuth(s.handleDeletePatient))

	mux.Handle("GET /api/patients/{patientID}/notes", s.withAuth(s.handleListNotes))
	mux.Handle("POST /api/patients/{patientID}/notes", s.withAuth(s.handleCreateNote))
	mux.Handle("PUT /api/notes/{noteID}", s.withAuth(s.handleUpdateNote))
	mux.Handle("DELETE /api/notes/{noteID}", s.withAuth(s.handleDeleteNote))

	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
