// Package gradiotest runs a fake Gradio app that mimics the repository Q&A
// Space: /on_analyze stores state per session hash and /on_generate reads it.
package gradiotest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// APIPrefix is the prefix reported by the fake app's config.
const APIPrefix = "/gradio_api"

// Call records one request to a call endpoint.
type Call struct {
	Endpoint    string
	Data        []any
	SessionHash string
}

// Server is a fake Gradio app.
type Server struct {
	*httptest.Server

	ConfigHits atomic.Int32

	mu           sync.Mutex
	generate     func(url string, n int) string
	failEndpoint string
	failMessage  string
	calls        []Call
	state        map[string]string
	events       map[string]Call
	nextID       int
}

// NewServer starts a fake app. Close it when done.
func NewServer() *Server {
	s := &Server{
		state:  make(map[string]string),
		events: make(map[string]Call),
	}
	s.generate = DefaultGenerate

	mux := http.NewServeMux()
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("GET "+APIPrefix+"/info", s.handleInfo)
	mux.HandleFunc("POST "+APIPrefix+"/call/{name}", s.handleCall)
	mux.HandleFunc("GET "+APIPrefix+"/call/{name}/{event}", s.handleResult)
	s.Server = httptest.NewServer(mux)
	return s
}

// DefaultGenerate returns a preamble, the Q&A marker and n pairs.
func DefaultGenerate(url string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview questions for %s\nQ&A:\n", url)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Q%d: Question %d?\nA%d: Answer %d.\n", i, i, i, i)
	}
	return b.String()
}

// SetGenerate replaces the /on_generate output builder.
func (s *Server) SetGenerate(fn func(url string, n int) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generate = fn
}

// Fail makes endpoint ("/on_analyze" or "/on_generate") emit an error event
// carrying msg. An empty endpoint turns failures off.
func (s *Server) Fail(endpoint, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEndpoint, s.failMessage = endpoint, msg
}

// Calls returns the recorded calls in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.ConfigHits.Add(1)
	writeJSON(w, map[string]any{"version": "5.0.0", "api_prefix": APIPrefix})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	param := func(name string) map[string]any {
		return map[string]any{"parameter_name": name, "component": "Textbox"}
	}
	writeJSON(w, map[string]any{
		"named_endpoints": map[string]any{
			"/on_analyze":  map[string]any{"parameters": []any{param("url")}},
			"/on_generate": map[string]any{"parameters": []any{param("n")}},
		},
		"unnamed_endpoints": map[string]any{},
	})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data        []any  `json:"data"`
		SessionHash string `json:"session_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	call := Call{Endpoint: "/" + r.PathValue("name"), Data: body.Data, SessionHash: body.SessionHash}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.nextID++
	id := fmt.Sprintf("evt-%d", s.nextID)
	s.events[id] = call
	s.mu.Unlock()

	writeJSON(w, map[string]string{"event_id": id})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	call, ok := s.events[r.PathValue("event")]
	delete(s.events, r.PathValue("event"))
	failEndpoint, failMessage, generate := s.failEndpoint, s.failMessage, s.generate
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprint(w, "event: heartbeat\ndata: null\n\n")

	if failEndpoint != "" && call.Endpoint == failEndpoint {
		msg, _ := json.Marshal(failMessage)
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", msg)
		return
	}

	var out []any
	switch call.Endpoint {
	case "/on_analyze":
		url, _ := first(call.Data).(string)
		s.mu.Lock()
		s.state[call.SessionHash] = url
		s.mu.Unlock()
		out = []any{"Ready. Repo text loaded."}
	case "/on_generate":
		s.mu.Lock()
		url, analyzed := s.state[call.SessionHash]
		s.mu.Unlock()
		if !analyzed {
			out = []any{"Please analyze a repo first."}
			break
		}
		n, _ := first(call.Data).(float64)
		out = []any{generate(url, int(n))}
	default:
		fmt.Fprint(w, "event: error\ndata: null\n\n")
		return
	}

	data, _ := json.Marshal(out)
	fmt.Fprintf(w, "event: complete\ndata: %s\n\n", data)
}

func first(data []any) any {
	if len(data) == 0 {
		return nil
	}
	return data[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
