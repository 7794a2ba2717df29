package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
	"github.com/Simplici0/printquote/internal/metrics"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/session"
	"github.com/Simplici0/printquote/internal/submission"
)

type estimateView struct {
	pricing.Estimate
	DisplayDimensions geometry.Vector3 `json:"display_dimensions"`
}

type sessionView struct {
	ID            string                 `json:"id"`
	State         session.State          `json:"state"`
	Snapshot      *geometry.Snapshot     `json:"snapshot,omitempty"`
	Configuration *pricing.Configuration `json:"configuration,omitempty"`
	Estimate      *estimateView          `json:"estimate,omitempty"`
	SubmissionID  int64                  `json:"submission_id,omitempty"`
}

type catalogView struct {
	Materials      []catalog.Material     `json:"materials"`
	Qualities      []catalog.Quality      `json:"qualities"`
	DefaultQuality string                 `json:"default_quality"`
	InfillSteps    []int                  `json:"infill_steps"`
	DefaultInfill  int                    `json:"default_infill"`
	Units          []catalog.Unit         `json:"units"`
	PricingProfile catalog.PricingProfile `json:"pricing_profile"`
}

type submitResponse struct {
	SubmissionID int64       `json:"submission_id"`
	Session      sessionView `json:"session"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, catalogView{
		Materials:      s.catalog.Materials(),
		Qualities:      s.catalog.Qualities(),
		DefaultQuality: s.catalog.DefaultQuality().ID,
		InfillSteps:    s.catalog.InfillSteps(),
		DefaultInfill:  s.catalog.DefaultInfill(),
		Units:          catalog.Units(),
		PricingProfile: s.profile,
	})
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New()
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, s.viewOf(sess))
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	s.respond(w, r, http.StatusOK, s.viewOf(sess))
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAttachGeometry(w http.ResponseWriter, r *http.Request) {
	var req geometryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	snapshot, err := req.snapshot()
	if err == nil {
		err = sess.Attach(snapshot, s.catalog)
	}
	if err != nil {
		if errors.Is(err, geometry.ErrDegenerateGeometry) {
			s.metrics.RecordAttachment(metrics.ResultRejected)
		}
		s.writeError(w, r, err)
		return
	}

	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.RecordAttachment(metrics.ResultOK)
	s.recordEstimate(sess)
	s.respond(w, r, http.StatusOK, s.viewOf(sess))
}

func (s *server) handleDetachGeometry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if err := sess.Detach(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.saveSession(w, r, sess) {
		return
	}
	s.respond(w, r, http.StatusOK, s.viewOf(sess))
}

func (s *server) handlePatchConfiguration(w http.ResponseWriter, r *http.Request) {
	var patch configurationPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	err := sess.Edit(func(_ geometry.Snapshot, cfg pricing.Configuration) (pricing.Configuration, error) {
		return patch.apply(s.catalog, cfg)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if !s.saveSession(w, r, sess) {
		return
	}
	s.recordEstimate(sess)
	s.respond(w, r, http.StatusOK, s.viewOf(sess))
}

func (s *server) handleTargetDimension(w http.ResponseWriter, r *http.Request) {
	var req targetDimensionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	axis, err := geometry.ParseAxis(req.Axis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	err = sess.Edit(func(snapshot geometry.Snapshot, cfg pricing.Configuration) (pricing.Configuration, error) {
		return pricing.SetTargetDimension(snapshot, cfg, axis, req.Value)
	})
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDimension) || errors.Is(err, geometry.ErrDegenerateGeometry) {
			s.metrics.RecordTargetSolve(string(axis), metrics.ResultRejected)
		}
		s.writeError(w, r, err)
		return
	}

	if !s.saveSession(w, r, sess) {
		return
	}
	s.metrics.RecordTargetSolve(string(axis), metrics.ResultOK)
	s.recordEstimate(sess)
	s.respond(w, r, http.StatusOK, s.viewOf(sess))
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var contact submission.Contact
	if err := decodeJSON(w, r, &contact); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	est, err := sess.Estimate(s.profile)
	if err == nil && sess.State == session.StateSubmitted {
		err = session.ErrSubmitted
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.submissions.Create(r.Context(), submission.Submission{
		SessionID: sess.ID,
		Contact:   contact,
		Price:     est.Price,
		Payload:   pricing.Payload(*sess.Snapshot, sess.Configuration, est),
	})
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrDuplicate):
			s.metrics.RecordSubmission(metrics.ResultRejected)
		case !errors.Is(err, submission.ErrInvalidContact):
			s.metrics.RecordSubmission(metrics.ResultError)
		}
		s.writeError(w, r, err)
		return
	}

	if err := sess.MarkSubmitted(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.saveSession(w, r, sess) {
		return
	}

	s.metrics.RecordSubmission(metrics.ResultOK)
	s.logger.Info("quote submitted",
		zap.String("session_id", sess.ID),
		zap.Int64("submission_id", id),
		zap.Int64("price", est.Price),
	)
	s.respond(w, r, http.StatusCreated, submitResponse{SubmissionID: id, Session: s.viewOf(sess)})
}

func (s *server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *server) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

func (s *server) viewOf(sess *session.Session) sessionView {
	view := sessionView{
		ID:           sess.ID,
		State:        sess.State,
		Snapshot:     sess.Snapshot,
		SubmissionID: sess.SubmissionID,
	}
	if sess.Snapshot == nil {
		return view
	}

	cfg := sess.Configuration
	view.Configuration = &cfg
	if est, err := sess.Estimate(s.profile); err == nil {
		view.Estimate = &estimateView{Estimate: est, DisplayDimensions: est.RoundedDimensions()}
	}
	return view
}

// recordEstimate counts a freshly computed quote. Plain reads are not counted.
func (s *server) recordEstimate(sess *session.Session) {
	if est, err := sess.Estimate(s.profile); err == nil {
		s.metrics.RecordEstimate(est.Price)
	}
}
