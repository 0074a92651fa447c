// Package kujo publishes the interlocking over HTTP: a server-sent event stream of changes, the
// current overview, and metrics.
package kujo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"nyiyui.ca/hato/shingo/tal/interlock"
)

const (
	// StreamEvents carries one JSON interlock.Event per change.
	StreamEvents = "events"
	// StreamOverview carries a JSON interlock.Overview after each batch of changes.
	StreamOverview = "overview"
)

type Conf struct {
	AllowedOrigins []string
}

type Server struct {
	loop *interlock.Loop
	s    *sse.Server
	conf Conf
}

func NewServer(loop *interlock.Loop, conf Conf) *Server {
	s := &Server{
		loop: loop,
		s:    sse.New(),
		conf: conf,
	}
	s.s.AutoReplay = false
	s.s.CreateStream(StreamEvents)
	s.s.CreateStream(StreamOverview)
	return s
}

// Run forwards interlocking events to the streams until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ch := make(chan interlock.Event, 64)
	s.loop.Events().Subscribe("kujo", ch)
	defer s.loop.Events().Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-ch:
			s.publish(StreamEvents, e)
		drain:
			for {
				select {
				case e := <-ch:
					s.publish(StreamEvents, e)
				default:
					break drain
				}
			}
			ov, err := s.overview(ctx)
			if err != nil {
				return err
			}
			s.publish(StreamOverview, ov)
		}
	}
}

func (s *Server) publish(stream string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorf("kujo: marshal json: %s", err)
		return
	}
	s.s.TryPublish(stream, &sse.Event{
		Data: data,
	})
}

func (s *Server) overview(ctx context.Context) (interlock.Overview, error) {
	var ov interlock.Overview
	err := s.loop.Do(ctx, func(il *interlock.Interlocking) error {
		ov = il.Overview()
		return nil
	})
	return ov, err
}

func (s *Server) serveOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ov, err := s.overview(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ov); err != nil {
		zap.S().Debugf("kujo: write overview: %s", err)
	}
}

// Handler serves /events (use ?stream=events or ?stream=overview), /overview and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.s)
	mux.HandleFunc("/overview", s.serveOverview)
	mux.Handle("/metrics", promhttp.Handler())
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.conf.AllowedOrigins,
	})
	return corsHandler.Handler(mux)
}

func (s *Server) Close() {
	s.s.Close()
}
