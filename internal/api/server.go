// Package api exposes the physics engine to rendering/UI collaborators over
// HTTP JSON plus a websocket snapshot stream. It owns no physics: every
// handler translates a request into one engine operation and maps the
// engine's errors onto HTTP statuses.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/orbital-simulator/core"
	"github.com/signalsfoundry/orbital-simulator/internal/logging"
	"github.com/signalsfoundry/orbital-simulator/model"
)

// Server bundles the handlers around one engine instance.
type Server struct {
	engine *core.PhysicsEngine
	log    logging.Logger
	tracer trace.Tracer

	// streamInterval paces the websocket snapshot stream.
	streamInterval time.Duration
}

// ServerOption customises a Server.
type ServerOption func(*Server)

// WithStreamInterval overrides the websocket frame pacing (default 100 ms).
func WithStreamInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.streamInterval = d
		}
	}
}

// NewServer wires the handler set. A nil logger falls back to the noop
// logger.
func NewServer(engine *core.PhysicsEngine, log logging.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{
		engine:         engine,
		log:            log,
		tracer:         otel.Tracer("orbital-simulator/api"),
		streamInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the full handler tree, with a span around every request.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/bodies", s.handleAddBody)
	mux.HandleFunc("GET /api/v1/bodies", s.handleListBodies)
	mux.HandleFunc("GET /api/v1/bodies/{id}", s.handleGetBody)
	mux.HandleFunc("DELETE /api/v1/bodies/{id}", s.handleRemoveBody)
	mux.HandleFunc("PUT /api/v1/bodies/{id}/active", s.handleSetActive)
	mux.HandleFunc("POST /api/v1/bodies/{id}/impulse", s.handleImpulse)
	mux.HandleFunc("GET /api/v1/bodies/{id}/elements", s.handleElements)
	mux.HandleFunc("GET /api/v1/bodies/{id}/trajectory", s.handleTrajectory)

	mux.HandleFunc("GET /api/v1/clock", s.handleClock)
	mux.HandleFunc("POST /api/v1/clock/play", s.handlePlay)
	mux.HandleFunc("POST /api/v1/clock/pause", s.handlePause)
	mux.HandleFunc("PUT /api/v1/clock/timescale", s.handleTimeScale)
	mux.HandleFunc("POST /api/v1/reset", s.handleReset)

	mux.HandleFunc("GET /ws", s.handleStream)

	return s.traced(mux)
}

// traced opens one span per request. The websocket endpoint is excluded:
// a span spanning a long-lived stream is noise, not signal.
func (s *Server) traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---- wire types ----

type vecPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v *vecPayload) toVec() *model.Vec3 {
	if v == nil {
		return nil
	}
	return &model.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func fromVec(v model.Vec3) vecPayload {
	return vecPayload{X: v.X, Y: v.Y, Z: v.Z}
}

type addBodyRequest struct {
	Name      string      `json:"name"`
	Mass      float64     `json:"mass"`
	Radius    float64     `json:"radius"`
	Position  *vecPayload `json:"position"`
	Velocity  *vecPayload `json:"velocity"`
	Altitude  float64     `json:"altitude"`
	Direction *vecPayload `json:"direction"`
	Inactive  bool        `json:"inactive"`
}

type bodyResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Position vecPayload     `json:"position"`
	Velocity vecPayload     `json:"velocity"`
	Altitude float64        `json:"altitude"`
	Speed    float64        `json:"speed"`
	Active   bool           `json:"active"`
	Elements *core.Elements `json:"elements,omitempty"`
	// Degenerate is set when the body is on an escape trajectory and no
	// finite elements exist. Displays show "N/A" instead of numbers.
	Degenerate bool `json:"degenerate,omitempty"`
}

type clockResponse struct {
	SimTime   float64 `json:"sim_time"`
	Running   bool    `json:"running"`
	TimeScale float64 `json:"time_scale"`
}

// ---- body handlers ----

func (s *Server) handleAddBody(w http.ResponseWriter, r *http.Request) {
	var req addBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", core.ErrInvalidParameter))
		return
	}

	id, err := s.engine.AddBody(core.BodySpec{
		Name:      req.Name,
		Mass:      req.Mass,
		Radius:    req.Radius,
		Position:  req.Position.toVec(),
		Velocity:  req.Velocity.toVec(),
		Altitude:  req.Altitude,
		Direction: req.Direction.toVec(),
		Inactive:  req.Inactive,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.log.Info(r.Context(), "body created over API",
		logging.String("id", id), logging.String("name", req.Name))
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// bodyView assembles the lenient representation used by list, get, and the
// websocket stream: kinematics always, elements when the orbit is bound.
func (s *Server) bodyView(id string) (bodyResponse, error) {
	snap, err := s.engine.Snapshot(id)
	if err == nil {
		resp := toBodyResponse(snap)
		resp.Elements = &snap.Elements
		return resp, nil
	}
	if !errors.Is(err, core.ErrDegenerateOrbit) {
		return bodyResponse{}, err
	}

	st, err := s.engine.State(id)
	if err != nil {
		return bodyResponse{}, err
	}
	resp := toBodyResponse(st)
	resp.Degenerate = true
	return resp, nil
}

func toBodyResponse(snap core.Snapshot) bodyResponse {
	return bodyResponse{
		ID:       snap.ID,
		Name:     snap.Name,
		Position: fromVec(snap.Position),
		Velocity: fromVec(snap.Velocity),
		Altitude: snap.Altitude,
		Speed:    snap.Speed,
		Active:   snap.Active,
	}
}

func (s *Server) handleListBodies(w http.ResponseWriter, r *http.Request) {
	ids := s.engine.BodyIDs()
	out := make([]bodyResponse, 0, len(ids))
	for _, id := range ids {
		view, err := s.bodyView(id)
		if err != nil {
			// Removed between listing and reading; skip rather than fail the
			// whole listing.
			continue
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBody(w http.ResponseWriter, r *http.Request) {
	view, err := s.bodyView(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRemoveBody(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RemoveBody(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", core.ErrInvalidParameter))
		return
	}
	if err := s.engine.SetActive(r.PathValue("id"), req.Active); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImpulse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dv vecPayload `json:"dv"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", core.ErrInvalidParameter))
		return
	}
	if err := s.engine.ApplyImpulse(r.PathValue("id"), *req.Dv.toVec()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleElements is the strict variant of handleGetBody: an escape
// trajectory is a 409, not a flag. Readout panels that can only render
// numbers use this and surface the error state themselves.
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Snapshot(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Elements)
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	points, err := s.engine.Trajectory(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]vecPayload, len(points))
	for i, p := range points {
		out[i] = fromVec(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": out})
}

// ---- clock handlers ----

func (s *Server) clockView() clockResponse {
	return clockResponse{
		SimTime:   s.engine.SimTime(),
		Running:   s.engine.Running(),
		TimeScale: s.engine.TimeScale(),
	}
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.clockView())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.engine.Play()
	writeJSON(w, http.StatusOK, s.clockView())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	writeJSON(w, http.StatusOK, s.clockView())
}

func (s *Server) handleTimeScale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeScale float64 `json:"time_scale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w", core.ErrInvalidParameter))
		return
	}
	if err := s.engine.SetTimeScale(req.TimeScale); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.clockView())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Reset()
	writeJSON(w, http.StatusOK, s.clockView())
}
