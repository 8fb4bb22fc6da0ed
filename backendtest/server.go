// Package backendtest runs an in-process fake of the IoT Tower backend for
// client tests.
package backendtest

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Recorded is a request seen by the fake backend
type Recorded struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

// Server is a fake backend. Routes are matched on exact method and path;
// unknown routes answer a NOTFOUND ActionResult.
type Server struct {
	URL    string
	Secret []byte

	app      *fiber.App
	mu       sync.Mutex
	routes   map[string]fiber.Handler
	requests []Recorded
}

// New starts a fake backend on a loopback port. It is stopped when the test
// ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Secret: []byte("backendtest-signing-key"),
		routes: make(map[string]fiber.Handler),
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})
	s.app.Use(s.dispatch)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("backendtest: listen: %v", err)
	}
	s.URL = "http://" + ln.Addr().String()

	go func() {
		_ = s.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = s.app.ShutdownWithTimeout(2 * time.Second)
	})
	return s
}

// Handle registers h for method and path, replacing any previous handler
func (s *Server) Handle(method, path string, h fiber.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// Hits counts the requests received for method and path
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Requests returns every request received so far
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent request
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) dispatch(c *fiber.Ctx) error {
	rec := Recorded{
		Method:        c.Method(),
		Path:          c.Path(),
		Query:         string(c.Request().URI().QueryString()),
		Authorization: c.Get(fiber.HeaderAuthorization),
		ContentType:   c.Get(fiber.HeaderContentType),
		RequestID:     c.Get(fiber.HeaderXRequestID),
		Body:          append([]byte(nil), c.Body()...),
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	h := s.routes[rec.Method+" "+rec.Path]
	s.mu.Unlock()

	if h == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":      "NOTFOUND",
			"status_code": fiber.StatusNotFound,
			"message":     "route not found",
		})
	}
	return h(c)
}
