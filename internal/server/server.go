package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/nibzard/todoapp-go/internal/logging"
	"github.com/nibzard/todoapp-go/internal/todo"
)

const (
	// maxBodyBytes limits JSON request bodies.
	maxBodyBytes = 100 << 10

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Tasks is the task service the server exposes.
type Tasks interface {
	List(ctx context.Context) ([]todo.Task, error)
	ListFiltered(ctx context.Context, f todo.Filter) ([]todo.Task, error)
	Create(ctx context.Context, text *string) (todo.Task, error)
	Update(ctx context.Context, id string, patch todo.Patch) (todo.Task, error)
	Delete(ctx context.Context, id string) (todo.Task, error)
	ClearCompleted(ctx context.Context) (todo.ClearResult, error)
	ToggleAll(ctx context.Context, completed *bool) ([]todo.Task, error)
}

// Options configures a Server.
type Options struct {
	// StaticDir is served at / when it names an existing directory.
	StaticDir string
	// RequestLog logs one line per request at info level, including 404s
	// and 405s.
	RequestLog bool
	Logger     *log.Logger
}

// Server serves the task API and the static client.
type Server struct {
	tasks   Tasks
	opts    Options
	logger  *log.Logger
	router  *mux.Router
	handler http.Handler
}

// New builds a server and its routes.
func New(tasks Tasks, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		tasks:  tasks,
		opts:   opts,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	s.handler = s.router
	if opts.RequestLog {
		s.handler = requestLogger(logger)(s.router)
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Methods(http.MethodGet).Path("/api/todos").HandlerFunc(s.listTodos)
	r.Methods(http.MethodPost).Path("/api/todos").HandlerFunc(s.createTodo)
	r.Methods(http.MethodPost).Path("/api/todos/clear-completed").HandlerFunc(s.clearCompleted)
	r.Methods(http.MethodPost).Path("/api/todos/toggle-all").HandlerFunc(s.toggleAll)
	r.Methods(http.MethodPatch).Path("/api/todos/{id}").HandlerFunc(s.updateTodo)
	r.Methods(http.MethodDelete).Path("/api/todos/{id}").HandlerFunc(s.deleteTodo)

	if dir := s.opts.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.MatcherFunc(isStaticRequest).Handler(http.FileServer(http.Dir(dir)))
		} else {
			s.logger.Debug("static dir not found, not serving static files", "dir", dir)
		}
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// isStaticRequest matches reads outside /api. Anything else falls through
// to the JSON not-found handler.
func isStaticRequest(r *http.Request, _ *mux.RouteMatch) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on addr and serves until ctx is done, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. In-flight requests get up to five
// seconds to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("todo app listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
