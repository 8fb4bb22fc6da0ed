package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every backend call
const DefaultTimeout = 5 * time.Second

// Session is the part of the session state the gateway depends on: the
// tokens it attaches and the backend health flag it maintains.
type Session interface {
	BackendJWT() string
	RefreshJWT() string
	SetBackendUp(up bool)
}

// Options configures a Gateway
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Gateway is the single transport shared by all domain clients. It is the
// only component that judges backend reachability.
type Gateway struct {
	baseURL   string
	timeout   time.Duration
	client    *http.Client
	session   Session
	validate  *validator.Validate
	log       *slog.Logger
	userAgent string
}

// NewGateway creates a gateway bound to a session
func NewGateway(session Session, opts Options) (*Gateway, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q: scheme and host required", opts.BaseURL)
	}

	g := &Gateway{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		client:    opts.HTTPClient,
		session:   session,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       opts.Logger,
		userAgent: opts.UserAgent,
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.client == nil {
		g.client = &http.Client{}
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	return g, nil
}

// BaseURL returns the backend base URL without trailing slash
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do sends req and decodes a 2xx payload into out. Any failure is returned
// as an *ActionResult:
//   - deadline exceeded: backend marked down, backendTimeout;
//   - error body with a status field: returned as is, health untouched;
//   - anything else: backend marked down, unknownError.
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	if err := g.validateBody(req.Body); err != nil {
		g.log.Debug("backend_call_rejected",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.String("err", err.Error()),
		)
		return errInvalidRequest()
	}

	rid := uuid.NewString()
	l := g.log.With(
		slog.String("request_id", rid),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.String("access", req.Access.String()),
	)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	code, err := g.roundTrip(ctx, rid, req, out)

	attrs := []any{slog.Int("code", code), slog.Duration("dur", time.Since(start))}
	if err == nil {
		l.Debug("backend_call", attrs...)
		return nil
	}
	ar := AsActionResult(err)
	attrs = append(attrs, slog.String("status", string(ar.Status)), slog.String("message", ar.Message))
	if ar.Local() {
		l.Warn("backend_call", attrs...)
	} else {
		l.Debug("backend_call", attrs...)
	}
	return ar
}

func (g *Gateway) roundTrip(ctx context.Context, rid string, req Request, out any) (int, error) {
	httpReq, err := g.newRequest(ctx, rid, req)
	if err != nil {
		g.log.Error("backend_request_build_failed", slog.String("err", err.Error()))
		return 0, errUnknown()
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return 0, g.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, g.transportFailure(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, g.backendError(data)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		g.session.SetBackendUp(false)
		return resp.StatusCode, errUnknown()
	}
	if out != nil {
		if err := json.Unmarshal(trimmed, out); err != nil {
			g.session.SetBackendUp(false)
			return resp.StatusCode, errUnknown()
		}
	}

	g.session.SetBackendUp(true)
	return resp.StatusCode, nil
}

func (g *Gateway) newRequest(ctx context.Context, rid string, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", rid)
	if g.userAgent != "" {
		httpReq.Header.Set("User-Agent", g.userAgent)
	}

	// tokens are read here, at call time, never bound earlier
	var token string
	switch req.Access {
	case Authenticated:
		token = g.session.BackendJWT()
	case Renewal:
		token = g.session.RefreshJWT()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// transportFailure classifies errors raised before a complete response body
// was read.
func (g *Gateway) transportFailure(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		g.session.SetBackendUp(false)
		return errBackendTimeout()
	case errors.Is(ctx.Err(), context.Canceled):
		return errCanceled()
	default:
		g.session.SetBackendUp(false)
		return errUnknown()
	}
}

// backendError handles a non-2xx response. A body carrying a status field is
// an application-level answer and passes through verbatim.
func (g *Gateway) backendError(data []byte) error {
	var probe struct {
		Status     *Status `json:"status"`
		StatusCode int     `json:"status_code"`
		Message    string  `json:"message"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Status != nil && *probe.Status != "" {
		return &ActionResult{Status: *probe.Status, StatusCode: probe.StatusCode, Message: probe.Message}
	}
	g.session.SetBackendUp(false)
	return errUnknown()
}

func (g *Gateway) validateBody(body any) error {
	if body == nil {
		return nil
	}
	v := reflect.ValueOf(body)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return g.validate.Struct(body)
}
