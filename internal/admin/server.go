package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"navwatch/internal/navdata"
	"navwatch/internal/sim"
	"navwatch/internal/spoofing"
)

// Simulator is the subset of the simulator the admin API needs.
type Simulator interface {
	Latest() *navdata.Output
	Status() map[string]string
	Metrics() map[string]float64
	SpoofingHistory() []spoofing.Incident
	Scenario() string
	SetScenario(name string) error
}

// Server exposes the running simulation over a small JSON API.
type Server struct {
	Sim Simulator
	log *slog.Logger
}

func NewServer(s Simulator, log *slog.Logger) *Server {
	return &Server{Sim: s, log: log}
}

// Handler returns the admin API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/assessment", s.handleAssessment)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/spoofing", s.handleSpoofing)
	mux.HandleFunc("/scenario", s.handleScenario)
	return mux
}

func (s *Server) Start(addr string) error {
	s.log.Info("admin API listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	latest := s.Sim.Latest()
	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no assessment yet"})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Metrics())
}

func (s *Server) handleSpoofing(w http.ResponseWriter, r *http.Request) {
	history := s.Sim.SpoofingHistory()
	if history == nil {
		history = []spoofing.Incident{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"scenario":  s.Sim.Scenario(),
			"available": sim.Scenarios,
		})
	case http.MethodPost:
		var req struct {
			Scenario string `json:"scenario"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := s.Sim.SetScenario(req.Scenario); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Info("scenario switched", "scenario", req.Scenario)
		writeJSON(w, http.StatusOK, map[string]string{"scenario": req.Scenario})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
