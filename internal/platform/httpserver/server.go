package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	pollledger "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger"
	pollerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
	pollhttp "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/The5wapnanil/Chainpoll-risein/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	polls  pollledger.Module

	httpServer *http.Server
}

func New(polls pollledger.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		polls:  polls,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/polls/v1/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/polls/v1/polls", s.handleListPolls)
	s.mux.HandleFunc("GET /api/polls/v1/polls/{poll_id}", s.handleGetPoll)
	s.mux.HandleFunc("POST /api/polls/v1/polls/{poll_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/polls/v1/polls/{poll_id}/close", s.handleClosePoll)
	s.mux.HandleFunc("GET /api/polls/v1/polls/{poll_id}/options/{option_index}", s.handleGetOption)
	s.mux.HandleFunc("GET /api/polls/v1/polls/{poll_id}/results", s.handleGetResults)
	s.mux.HandleFunc("GET /api/polls/v1/polls/{poll_id}/voters/{voter_id}", s.handleHasVoted)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req pollhttp.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.polls.Handler.CreatePollHandler(r.Context(), userID, req)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polls.Handler.ListPollsHandler(r.Context())
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	resp, err := s.polls.Handler.PollInfoHandler(r.Context(), pollID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	var req pollhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.polls.Handler.CastVoteHandler(r.Context(), userID, pollID, req); err != nil {
		writePollDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writePollError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	if err := s.polls.Handler.ClosePollHandler(r.Context(), userID, pollID); err != nil {
		writePollDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOption(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	optionIndex, err := strconv.Atoi(r.PathValue("option_index"))
	if err != nil {
		writePollError(w, http.StatusBadRequest, "invalid_option_index", "option_index must be an integer")
		return
	}

	resp, err := s.polls.Handler.OptionHandler(r.Context(), pollID, optionIndex)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	resp, err := s.polls.Handler.PollResultsHandler(r.Context(), pollID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}
	voterID := strings.TrimSpace(r.PathValue("voter_id"))

	resp, err := s.polls.Handler.HasVotedHandler(r.Context(), pollID, voterID)
	if err != nil {
		writePollDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePollID treats an unparseable id the same as an unknown one, so
// clients see a uniform not-found surface for malformed identifiers.
func parsePollID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	pollID, err := strconv.ParseUint(r.PathValue("poll_id"), 10, 64)
	if err != nil {
		writePollDomainError(w, pollerrors.ErrInvalidPollID)
		return 0, false
	}
	return pollID, true
}

func writePollDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pollerrors.ErrInvalidPollID):
		writePollError(w, http.StatusNotFound, "invalid_poll_id", err.Error())
	case errors.Is(err, pollerrors.ErrTooFewOptions):
		writePollError(w, http.StatusBadRequest, "too_few_options", err.Error())
	case errors.Is(err, pollerrors.ErrTooManyOptions):
		writePollError(w, http.StatusBadRequest, "too_many_options", err.Error())
	case errors.Is(err, pollerrors.ErrEmptyQuestion):
		writePollError(w, http.StatusBadRequest, "empty_question", err.Error())
	case errors.Is(err, pollerrors.ErrEmptyOptionName):
		writePollError(w, http.StatusBadRequest, "empty_option_name", err.Error())
	case errors.Is(err, pollerrors.ErrInvalidOptionIndex):
		writePollError(w, http.StatusBadRequest, "invalid_option_index", err.Error())
	case errors.Is(err, pollerrors.ErrPollClosed):
		writePollError(w, http.StatusConflict, "poll_closed", err.Error())
	case errors.Is(err, pollerrors.ErrAlreadyVoted):
		writePollError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, pollerrors.ErrAlreadyClosed):
		writePollError(w, http.StatusConflict, "already_closed", err.Error())
	case errors.Is(err, pollerrors.ErrNotCreator):
		writePollError(w, http.StatusForbidden, "not_creator", err.Error())
	default:
		writePollError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
