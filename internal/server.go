package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the latest resolution of a project to running dev builds.
type Server struct {
	fsys       fs.FS
	port       int
	resolution *Resolution
	senders    map[int]chan interface{}
	nextID     int
	lock       sync.Mutex
}

func NewServer(fsys fs.FS, port int) (*Server, error) {
	return &Server{
		fsys:    fsys,
		port:    port,
		senders: map[int]chan interface{}{},
	}, nil
}

type reloadEvent struct {
	Type    string `json:"type"`
	Project string `json:"project"`
	Hash    string `json:"assetsHash,omitempty"`
}

type buildErrorEvent struct {
	Type string `json:"type"`
	Err  string `json:"err"`
}

type pingEvent struct {
	Type string `json:"type"`
}

// Update replaces the served resolution and tells every listener to reload.
func (s *Server) Update(res *Resolution) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.resolution = res
	s.broadcast(&reloadEvent{
		Type:    "reload",
		Project: res.Project.Name,
		Hash:    res.AssetsHash,
	})
}

func (s *Server) BuildError(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.broadcast(&buildErrorEvent{
		Type: "buildError",
		Err:  err.Error(),
	})
}

// broadcast must be called with the lock held. Slow listeners miss events.
func (s *Server) broadcast(e interface{}) {
	for _, sender := range s.senders {
		select {
		case sender <- e:
		default:
		}
	}
}

func (s *Server) current() *Resolution {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.resolution
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
			return
		}

		s.lock.Lock()
		currentID := s.nextID
		c := make(chan interface{}, 10)
		s.senders[currentID] = c
		s.nextID++
		s.lock.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		flusher.Flush()

		encoder := json.NewEncoder(w)
		defer func() {
			s.lock.Lock()
			defer s.lock.Unlock()
			delete(s.senders, currentID)
		}()

		for {
			select {
			case <-r.Context().Done():
				return
			case e := <-c:
				if _, err := w.Write([]byte("data: ")); err != nil {
					fmt.Printf("err: %#v\n", err)
					return
				}
				if err := encoder.Encode(e); err != nil {
					fmt.Printf("err: %#v\n", err)
					return
				}
				if _, err := w.Write([]byte("\n")); err != nil {
					fmt.Printf("err: %#v\n", err)
					return
				}
				flusher.Flush()
			}
		}
	})

	r.Get("/project.json", func(w http.ResponseWriter, r *http.Request) {
		res := s.current()
		if res == nil {
			http.Error(w, "project not resolved yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Add("Content-type", "application/json")
		w.Header().Add("Cache-control", "no-store")
		if err := res.Encode(w, JSON); err != nil {
			fmt.Printf("error: %#v\n", err)
		}
	})

	r.Get("/assets/*", func(w http.ResponseWriter, r *http.Request) {
		res := s.current()
		if res == nil {
			http.Error(w, "project not resolved yet", http.StatusServiceUnavailable)
			return
		}
		name := chi.URLParam(r, "*")
		for _, a := range res.Assets {
			if a.Name != name {
				continue
			}
			f, err := fs.ReadFile(s.fsys, a.File)
			if err != nil {
				fmt.Printf("error: %#v\n", err)
				w.WriteHeader(500)
				return
			}
			w.Header().Add("Content-type", mime.TypeByExtension(path.Ext(a.File)))
			w.Header().Add("Cache-control", "no-store")
			if _, err := w.Write(f); err != nil {
				fmt.Printf("error: %#v\n", err)
			}
			return
		}
		http.NotFound(w, r)
	})

	return r
}

// Serve listens until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.lock.Lock()
				s.broadcast(pingEvent{Type: "ping"})
				s.lock.Unlock()
			}
		}
	}()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 200 * time.Millisecond,
		Addr:              fmt.Sprintf(":%d", s.port),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("error: %#v\n", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
