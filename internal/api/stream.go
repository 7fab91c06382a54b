package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/orbital-simulator/internal/logging"
)

// upgrader accepts cross-origin requests: the rendering frontend is served
// from wherever the UI developer parked it.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamFrame is one websocket message: everything a renderer needs to draw
// a frame without further requests.
type streamFrame struct {
	SimTime   float64        `json:"sim_time"`
	Running   bool           `json:"running"`
	TimeScale float64        `json:"time_scale"`
	Bodies    []bodyResponse `json:"bodies"`
}

// handleStream upgrades to a websocket and pushes snapshot frames at the
// configured interval until the client goes away. Snapshots are taken
// through the engine's own locking, so a frame is never torn across a Step.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed",
			logging.String("error", err.Error()))
		return
	}
	defer conn.Close()

	s.log.Info(r.Context(), "snapshot stream opened",
		logging.String("remote", conn.RemoteAddr().String()))

	// Drain control frames so pings and the close handshake are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.buildFrame()); err != nil {
				s.log.Info(r.Context(), "snapshot stream closed",
					logging.String("remote", conn.RemoteAddr().String()),
					logging.String("reason", err.Error()))
				return
			}
		}
	}
}

func (s *Server) buildFrame() streamFrame {
	ids := s.engine.BodyIDs()
	bodies := make([]bodyResponse, 0, len(ids))
	for _, id := range ids {
		view, err := s.bodyView(id)
		if err != nil {
			continue
		}
		bodies = append(bodies, view)
	}
	return streamFrame{
		SimTime:   s.engine.SimTime(),
		Running:   s.engine.Running(),
		TimeScale: s.engine.TimeScale(),
		Bodies:    bodies,
	}
}
