package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Server is an httptest server that serves fixed bodies by path and counts
// requests.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

// NewServer starts a server for routes (path -> body). Unknown paths answer
// 404. The server is closed when the test ends.
func NewServer(t *testing.T, routes map[string]string) *Server {
	t.Helper()
	s := &Server{
		routes: make(map[string]string, len(routes)),
		hits:   map[string]int{},
	}
	for k, v := range routes {
		s.routes[k] = v
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetRoute replaces or adds the body served at path.
func (s *Server) SetRoute(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = body
}

// Hits reports how many requests path has received.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}
