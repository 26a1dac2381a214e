package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/service"
)

type Dependencies struct {
	Logger         *logrus.Logger
	Addr           string
	IdentityHeader string

	Workflow  *service.Workflow
	Queries   *service.QueryService
	Legacy    *service.LegacyService
	Catalog   *service.CatalogService
	Roles     *service.RoleResolver
	Directory *service.DirectoryResolver
}

type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
	mux        *http.ServeMux

	workflow  *service.Workflow
	queries   *service.QueryService
	legacy    *service.LegacyService
	catalog   *service.CatalogService
	roles     *service.RoleResolver
	directory *service.DirectoryResolver
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		workflow:  d.Workflow,
		queries:   d.Queries,
		legacy:    d.Legacy,
		catalog:   d.Catalog,
		roles:     d.Roles,
		directory: d.Directory,
	}

	mux.HandleFunc("POST /v1/requests", s.handleSubmit)
	mux.HandleFunc("GET /v1/requests/mine", s.handleMyRequests)
	mux.HandleFunc("GET /v1/tasks", s.handleTasks)
	mux.HandleFunc("POST /v1/requests/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /v1/requests/approve", s.handleBatchApprove)
	mux.HandleFunc("GET /v1/legacy/pending", s.handleLegacyPending)
	mux.HandleFunc("POST /v1/legacy/reviewed", s.handleLegacyReviewed)
	mux.HandleFunc("GET /v1/catalog", s.handleCatalog)
	mux.HandleFunc("POST /v1/admin/caches/invalidate", s.handleInvalidateCaches)

	header := d.IdentityHeader
	if header == "" {
		header = "X-Authenticated-User"
	}

	handler := requestIDMiddleware(
		loggingMiddleware(d.Logger,
			identityMiddleware(header, mux)))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type submitPayload struct {
	Requester      string `json:"requester"`
	Camera         string `json:"camera"`
	Reason         string `json:"reason"`
	ActivationDays int    `json:"activation_days"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var p submitPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	id, outcome := s.workflow.Submit(r.Context(), callerIdentity(r), service.SubmitInput{
		RequesterName:  p.Requester,
		CameraLocation: p.Camera,
		Reason:         p.Reason,
		ActivationDays: p.ActivationDays,
	})

	writeJSON(w, outcomeStatus(outcome), submitResponse{Outcome: outcome, ID: id})
}

func (s *Server) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	table, err := s.queries.MyRequests(r.Context(), callerIdentity(r))
	if err != nil {
		s.logger.WithError(err).Error("my-requests query failed")
		writeError(w, http.StatusBadGateway, "store_failure", "could not read request records")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	table, err := s.queries.TasksFor(r.Context(), callerIdentity(r))
	if err != nil {
		s.logger.WithError(err).Error("task query failed")
		writeError(w, http.StatusBadGateway, "store_failure", "could not read request records")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid_input", "record id must be a positive integer")
		return
	}

	outcome := s.workflow.Transition(r.Context(), id, callerIdentity(r))
	writeJSON(w, outcomeStatus(outcome), outcome)
}

type batchPayload struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBatchApprove(w http.ResponseWriter, r *http.Request) {
	var p batchPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	result, outcome := s.workflow.BatchTransition(r.Context(), p.IDs, callerIdentity(r))
	writeJSON(w, outcomeStatus(outcome), batchResponse{Outcome: outcome, Result: result})
}

func (s *Server) handleLegacyPending(w http.ResponseWriter, r *http.Request) {
	table, err := s.legacy.Pending(r.Context(), callerIdentity(r))
	if err != nil {
		s.logger.WithError(err).Error("legacy pending query failed")
		writeError(w, http.StatusBadGateway, "store_failure", "could not read request records")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleLegacyReviewed(w http.ResponseWriter, r *http.Request) {
	var p batchPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	outcome := s.legacy.MarkReviewed(r.Context(), p.IDs, callerIdentity(r))
	writeJSON(w, outcomeStatus(outcome), outcome)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.CamerasByRequester(r.Context()))
}

func (s *Server) handleInvalidateCaches(w http.ResponseWriter, r *http.Request) {
	actor := callerIdentity(r)
	if !s.roles.IsAnyReviewer(r.Context(), actor) {
		writeError(w, http.StatusForbidden, "permission_denied", "reviewer membership required")
		return
	}

	s.roles.Invalidate()
	s.directory.Invalidate()
	s.logger.WithField("actor", actor).Info("roster and directory caches invalidated")
	writeJSON(w, http.StatusOK, map[string]string{"status": "caches invalidated"})
}
