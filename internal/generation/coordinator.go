package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"subgen/internal/logging"
	"subgen/internal/services"
	"subgen/internal/subtitleapi"
)

const stageName = "generation"

// Transport performs one generation call against baseURL.
//
// A nil response with a nil error means the server sent no body. Non-2xx
// responses are reported as *subtitleapi.StatusError.
type Transport interface {
	GenerateSubtitles(ctx context.Context, baseURL string, req subtitleapi.VideoRequest) (*subtitleapi.SubtitleResponse, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for transition logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides how request identifiers are minted.
func WithIDGenerator(next func() string) Option {
	return func(c *Coordinator) {
		if next != nil {
			c.newID = next
		}
	}
}

// Coordinator drives the request lifecycle and publishes states.
type Coordinator struct {
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	state atomic.Pointer[State]

	obsMu     sync.Mutex
	observers []*Subscription

	// publishMu serializes store+deliver so every observer sees states in
	// the same order they were stored.
	publishMu sync.Mutex
}

// NewCoordinator constructs a Coordinator in the idle state.
func NewCoordinator(transport Transport, opts ...Option) *Coordinator {
	c := &Coordinator{
		transport: transport,
		logger:    logging.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, stageName)
	idle := Idle()
	c.state.Store(&idle)
	return c
}

// CurrentState returns the most recently published state.
func (c *Coordinator) CurrentState() State {
	return *c.state.Load()
}

// Subscribe registers o for every subsequent state. The current state is not
// replayed.
func (c *Coordinator) Subscribe(o Observer) *Subscription {
	sub := &Subscription{coordinator: c, observer: o}
	if o == nil {
		return sub
	}
	sub.active.Store(true)
	c.obsMu.Lock()
	c.observers = append(c.observers, sub)
	c.obsMu.Unlock()
	return sub
}

func (c *Coordinator) remove(target *Subscription) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	for i, sub := range c.observers {
		if sub == target {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			return
		}
	}
}

// Generate runs one request to completion and returns the terminal state it
// published. Loading is published before any validation or I/O.
func (c *Coordinator) Generate(ctx context.Context, apiURL, videoURL string) State {
	if ctx == nil {
		ctx = context.Background()
	}
	req := Request{APIURL: apiURL, VideoURL: videoURL}
	requestID := c.newID()
	ctx = services.WithStage(services.WithRequestID(ctx, requestID), stageName)
	logger := logging.WithContext(ctx, c.logger)

	c.publish(c.stamp(loading(req), req, requestID))
	logger.Debug("subtitle request started",
		logging.String(logging.FieldAPIURL, apiURL),
		logging.String(logging.FieldVideoURL, videoURL),
	)

	started := time.Now()
	final := c.stamp(c.run(ctx, logger, req), req, requestID)
	c.publish(final)

	switch final.Status {
	case StatusSuccess:
		logger.Info("subtitle request succeeded",
			logging.String(logging.FieldStatus, string(final.Status)),
			logging.Int("content_bytes", len(final.Content)),
			logging.Duration("elapsed", time.Since(started)),
		)
	default:
		logging.WarnWithContext(logger, "subtitle request failed", "subtitle_request_failed",
			logging.String(logging.FieldStatus, string(final.Status)),
			logging.String(logging.FieldFailureKind, string(final.Kind)),
			logging.String("message", final.Message),
			logging.String(logging.FieldErrorHint, hintFor(final.Kind)),
			logging.String(logging.FieldImpact, "no subtitles were generated"),
			logging.Duration("elapsed", time.Since(started)),
		)
	}
	return final
}

func (c *Coordinator) stamp(s State, req Request, requestID string) State {
	s.Request = req
	s.RequestID = requestID
	s.At = c.now()
	return s
}

func (c *Coordinator) run(ctx context.Context, logger *slog.Logger, req Request) State {
	if !hasHTTPScheme(req.APIURL) {
		return failure(FailureValidation, MessageInvalidAPIURL)
	}
	if !hasHTTPScheme(req.VideoURL) {
		return failure(FailureValidation, MessageInvalidVideoURL)
	}
	base := NormalizeBaseURL(req.APIURL)
	if endpoint, err := subtitleapi.Endpoint(base); err == nil {
		logger.Debug("calling subtitle api", logging.String(logging.FieldEndpoint, endpoint.String()))
	}

	resp, err := c.call(ctx, base, subtitleapi.VideoRequest{URL: req.VideoURL})
	return interpret(resp, err, logger)
}

// call shields the lifecycle from misbehaving transports.
func (c *Coordinator) call(ctx context.Context, base string, body subtitleapi.VideoRequest) (resp *subtitleapi.SubtitleResponse, err error) {
	if c.transport == nil {
		return nil, errors.New("subtitle transport is not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("subtitle transport panic: %v", r)
		}
	}()
	return c.transport.GenerateSubtitles(ctx, base, body)
}

func interpret(resp *subtitleapi.SubtitleResponse, err error, logger *slog.Logger) State {
	if err == nil {
		if resp == nil || resp.SRTContent == nil {
			return failure(FailureApplication, MessageEmptyBody)
		}
		return success(*resp.SRTContent)
	}
	var statusErr *subtitleapi.StatusError
	if errors.As(err, &statusErr) {
		logger.Debug("subtitle api rejected request", logging.Int(logging.FieldHTTPStatus, statusErr.Code))
		return failure(FailureApplication, FormatStatusError(statusErr))
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = MessageUnexpected
	}
	return failure(FailureTransport, message)
}

// FormatStatusError renders a non-2xx response as shown to users.
func FormatStatusError(err *subtitleapi.StatusError) string {
	detail := MessageNoErrorDetails
	if err.HasBody() {
		detail = err.Body
	}
	return fmt.Sprintf("API Error: %d %s - %s", err.Code, err.Message, detail)
}

// NormalizeBaseURL appends a trailing slash when absent.
func NormalizeBaseURL(apiURL string) string {
	if strings.HasSuffix(apiURL, "/") {
		return apiURL
	}
	return apiURL + "/"
}

func hasHTTPScheme(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func hintFor(kind FailureKind) string {
	switch kind {
	case FailureValidation:
		return "use URLs starting with http:// or https://"
	case FailureApplication:
		return "check the subtitle API server logs"
	case FailureTransport:
		return "check network connectivity and the API URL"
	default:
		return "check logs for details"
	}
}

func (c *Coordinator) publish(s State) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.state.Store(&s)

	c.obsMu.Lock()
	subs := append([]*Subscription(nil), c.observers...)
	c.obsMu.Unlock()

	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		c.deliver(sub.observer, s)
	}
}

func (c *Coordinator) deliver(o Observer, s State) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(c.logger, "state observer panicked", "observer_panic",
				logging.String(logging.FieldStatus, string(s.Status)),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldCorrelationID, s.RequestID),
				logging.String(logging.FieldImpact, "observer missed this state"),
			)
		}
	}()
	o.OnState(s)
}
