package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nibzard/todoapp-go/internal/todo"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

// bodyError is reported when the request body cannot be read as a JSON object.
type bodyError struct {
	status  int
	message string
}

func (e *bodyError) Error() string { return e.message }

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	filter, err := todo.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	tasks, err := s.tasks.ListFiltered(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readObject(w, r)
	if !ok {
		return
	}
	task, err := s.tasks.Create(r.Context(), stringField(fields, "text"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readObject(w, r)
	if !ok {
		return
	}
	patch := todo.Patch{
		Text:      stringField(fields, "text"),
		Completed: boolField(fields, "completed"),
	}
	task, err := s.tasks.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) clearCompleted(w http.ResponseWriter, r *http.Request) {
	result, err := s.tasks.ClearCompleted(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) toggleAll(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readObject(w, r)
	if !ok {
		return
	}
	tasks, err := s.tasks.ToggleAll(r.Context(), boolField(fields, "completed"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// readObject reads the request body as a JSON object. An empty body is an
// empty object. On failure the error response has been written.
func (s *Server) readObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	fields, err := decodeObject(w, r)
	if err != nil {
		var bad *bodyError
		if errors.As(err, &bad) {
			writeError(w, bad.status, bad.message)
		} else {
			s.writeServiceError(w, r, err)
		}
		return nil, false
	}
	return fields, true
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &bodyError{status: http.StatusRequestEntityTooLarge, message: "Request body too large"}
		}
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &bodyError{status: http.StatusBadRequest, message: "Invalid JSON body"}
	}
	return fields, nil
}

// stringField returns the named field when it holds a JSON string.
func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// boolField returns the named field when it holds a JSON boolean.
func boolField(fields map[string]json.RawMessage, key string) *bool {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// writeServiceError maps domain error kinds to status codes. Anything else
// is logged and reported as a 500 without details.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, todo.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, messageOf(err))
	case errors.Is(err, todo.ErrNotFound):
		writeError(w, http.StatusNotFound, messageOf(err))
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func messageOf(err error) string {
	var domainErr *todo.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
