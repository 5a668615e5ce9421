package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jonathan/interview-agent/internal/intake"
	"github.com/jonathan/interview-agent/internal/intake/fetch"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/types"
)

// handleLogin exchanges the operator password for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "password is required")
		return
	}

	if !s.auth.VerifyPassword(req.Password) {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken()
	if err != nil {
		log.Printf("[SERVER] failed to generate token: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	s.jsonResponse(w, http.StatusOK, types.LoginResponse{Token: token})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.ctrl.Candidates())
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	resumeText := req.ResumeText
	if resumeText == "" && req.ResumeURL != "" {
		opts := fetch.DefaultOptions()
		opts.AllowBrowser = s.useBrowser
		opts.Verbose = s.verbose
		fetched, err := intake.FromURL(r.Context(), req.ResumeURL, opts)
		if err != nil {
			log.Printf("[SERVER] resume fetch failed for %s: %v", req.ResumeURL, err)
			verr := &ErrValidation{Message: "could not fetch resume from URL"}
			s.errorResponse(w, HTTPStatus(verr), verr.Error())
			return
		}
		resumeText = fetched
	} else {
		resumeText = intake.CleanText(resumeText)
	}

	id := s.ctrl.AddCandidate(registry.Profile{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		ResumeText: resumeText,
	})
	s.jsonResponse(w, http.StatusCreated, types.CreateCandidateResponse{ID: id})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cand, ok := s.ctrl.Candidate(id)
	if !ok {
		err := &ErrCandidateNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, cand)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ctrl.DeleteCandidate(id) {
		err := &ErrCandidateNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req types.StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	// Question generation must not die with the client connection: once
	// started, the interview belongs to the session, not the request.
	if err := s.ctrl.StartInterview(context.WithoutCancel(r.Context()), req.CandidateID, req.Resume); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleStartQuestion(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.StartQuestionTimer(); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req types.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.ctrl.SetDraft(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req types.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.ctrl.SubmitAnswer(context.WithoutCancel(r.Context()), req.Text); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleFinishEarly(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.FinishEarly(context.WithoutCancel(r.Context())); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

// handleAbandon resolves a welcome-back candidate the operator chose not to
// resume: the interview is force-completed with empty answers for whatever
// was never answered, keeping a scored record.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	var req types.AbandonInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	if err := s.ctrl.FinishAbandoned(context.WithoutCancel(r.Context()), req.CandidateID); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

// handleReset discards the running interview without scoring it. The
// candidate stays in_progress, so a later start resumes where they left
// off.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.ctrl.Reset(); err != nil {
		s.sessionError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleDismiss(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Dismiss()
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.sessionResponse())
}

// sessionResponse collapses the controller view into the API shape.
func (s *Server) sessionResponse() types.SessionResponse {
	v := s.ctrl.View()
	resp := types.SessionResponse{
		State:         string(v.State),
		CandidateID:   v.CandidateID,
		QuestionIndex: v.QuestionIndex,
		QuestionTotal: v.QuestionTotal,
		TimeRemaining: v.TimeRemaining,
		TimerRunning:  v.TimerRunning,
	}
	if v.Question != nil {
		resp.Question = &types.QuestionView{
			ID:         v.Question.ID,
			Text:       v.Question.Text,
			Difficulty: string(v.Question.Difficulty),
			TimeLimit:  v.Question.TimeLimit,
			Category:   v.Question.Category,
		}
	}
	for _, cand := range s.ctrl.WelcomeBackCandidates() {
		resp.WelcomeBack = append(resp.WelcomeBack, cand.ID)
	}
	return resp
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrConflict):
		s.errorResponse(w, http.StatusConflict, err.Error())
	default:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
