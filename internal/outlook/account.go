package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/oauth2"

	"github.com/teemow/outlookmail/internal/instrumentation"
	"github.com/teemow/outlookmail/internal/logging"
)

// DefaultBaseURL is the remote mail API root used unless overridden
// with WithBaseURL.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const requestTimeout = 30 * time.Second

// HTTPDoer is the transport collaborator: it executes one HTTP round
// trip and fails only for network-level faults. Status interpretation,
// retries and error mapping are this package's job, not the
// transport's.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Account holds the bearer token for a mailbox and exposes the message,
// folder and contact services. One Account is typically shared across
// all calls in a program, but nothing here is process-global: it is an
// explicit handle.
//
// The token may be swapped at any time with SetToken. A swap racing
// with in-flight requests is last-write-wins for subsequent calls; it
// is not retroactive on requests already on the wire.
type Account struct {
	baseURL     string
	httpClient  HTTPDoer
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	tracer      trace.Tracer
	tokenSource oauth2.TokenSource

	mu    sync.RWMutex
	token string

	messages *MessageService
	folders  *FolderService
	contacts *ContactService
}

// Option configures an Account.
type Option func(*Account)

// WithHTTPClient replaces the transport collaborator. Timeout and retry
// policy live in the supplied client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(a *Account) { a.httpClient = client }
}

// WithBaseURL points the account at a different API root, e.g. a test
// server.
func WithBaseURL(baseURL string) Option {
	return func(a *Account) { a.baseURL = baseURL }
}

// WithLogger sets the structured logger for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Account) { a.logger = logger }
}

// WithMetrics records request metrics through the given recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(a *Account) { a.metrics = metrics }
}

// WithTracer creates a client span per request on the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Account) { a.tracer = tracer }
}

// NewAccount creates an account facade around a bearer token. The token
// contents are not validated; an empty or invalid token is accepted
// here and surfaces as ErrAuthentication on the first call the remote
// store rejects.
func NewAccount(token string, opts ...Option) *Account {
	a := &Account{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("outlook"),
		token:      token,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("account configured",
		slog.String("base_url", a.baseURL),
		slog.String("token", logging.SanitizeToken(token)),
	)
	a.messages = &MessageService{account: a}
	a.folders = &FolderService{account: a}
	a.contacts = &ContactService{account: a}
	return a
}

// NewAccountFromTokenSource creates an account that refreshes its
// bearer token from the given source before each request. Token
// acquisition itself stays outside this package; the source is only
// asked for the current token.
func NewAccountFromTokenSource(source oauth2.TokenSource, opts ...Option) *Account {
	a := NewAccount("", opts...)
	a.tokenSource = source
	return a
}

// SetToken replaces the bearer token used by all subsequent requests.
// It is not retroactive on in-flight requests.
func (a *Account) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// Messages returns the message service for this account.
func (a *Account) Messages() *MessageService { return a.messages }

// Folders returns the folder service for this account.
func (a *Account) Folders() *FolderService { return a.folders }

// Contacts returns the contact service for this account.
func (a *Account) Contacts() *ContactService { return a.contacts }

// NewMessage starts composing a message against this account.
func (a *Account) NewMessage() *MessageBuilder {
	return &MessageBuilder{svc: a.messages}
}

func (a *Account) bearerToken() string {
	if a.tokenSource != nil {
		if tok, err := a.tokenSource.Token(); err == nil && tok.AccessToken != "" {
			a.SetToken(tok.AccessToken)
		}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// do is the single request path for every service call: it attaches the
// bearer token, serializes the JSON body, executes one round trip
// through the transport collaborator and maps the response status into
// the error taxonomy. result may be nil for operations with no response
// body (delete, send).
func (a *Account) do(ctx context.Context, op, method, path string, body, result any) error {
	ctx, span := a.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return a.fail(ctx, span, op, &Error{Op: op, Kind: ErrValidation, Err: err})
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return a.fail(ctx, span, op, &Error{Op: op, Kind: ErrValidation, Err: err})
	}
	req.Header.Set("Authorization", "Bearer "+a.bearerToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.metrics.RecordRequest(ctx, op, method, 0, time.Since(start))
		return a.fail(ctx, span, op, networkError(op, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	a.metrics.RecordRequest(ctx, op, method, resp.StatusCode, duration)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		return a.fail(ctx, span, op, networkError(op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return a.fail(ctx, span, op, statusError(op, resp, data))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return a.fail(ctx, span, op, &Error{
				Op:      op,
				Kind:    ErrServer,
				Status:  resp.StatusCode,
				Message: "malformed response body",
				Err:     err,
			})
		}
	}

	a.logger.DebugContext(ctx, "request completed",
		logging.Operation(op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	instrumentation.RecordOutcome(span, nil)
	return nil
}

func (a *Account) fail(ctx context.Context, span trace.Span, op string, err *Error) error {
	instrumentation.RecordOutcome(span, err)
	a.metrics.RecordError(ctx, op, err.Kind.Error())
	a.logger.DebugContext(ctx, "request failed",
		logging.Operation(op),
		logging.Err(err),
	)
	return err
}

// AutoReplyStatus controls whether automatic replies are sent.
type AutoReplyStatus string

const (
	AutoReplyDisabled  AutoReplyStatus = "disabled"
	AutoReplyEnabled   AutoReplyStatus = "alwaysEnabled"
	AutoReplyScheduled AutoReplyStatus = "scheduled"
)

// AutoReplyAudience controls who receives automatic replies.
type AutoReplyAudience string

const (
	AudienceNone         AutoReplyAudience = "none"
	AudienceContactsOnly AutoReplyAudience = "contactsOnly"
	AudienceAll          AutoReplyAudience = "all"
)

// AutoReplySettings is the input for SetAutoReply. ExternalMessage
// defaults to Message when empty, since the remote store requires both.
type AutoReplySettings struct {
	Message         string
	ExternalMessage string
	Status          AutoReplyStatus
	Audience        AutoReplyAudience

	// ScheduledStart and ScheduledEnd bound the reply window when
	// Status is AutoReplyScheduled. Both must be set or both nil.
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
}

type dateTimeTimeZoneResource struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type autoReplyResource struct {
	Status               string                    `json:"status,omitempty"`
	ExternalAudience     string                    `json:"externalAudience,omitempty"`
	InternalReplyMessage string                    `json:"internalReplyMessage,omitempty"`
	ExternalReplyMessage string                    `json:"externalReplyMessage,omitempty"`
	ScheduledStart       *dateTimeTimeZoneResource `json:"scheduledStartDateTime,omitempty"`
	ScheduledEnd         *dateTimeTimeZoneResource `json:"scheduledEndDateTime,omitempty"`
}

// AutoReplyMessage returns the account's internal automatic reply
// message, empty when automatic replies carry no message.
func (a *Account) AutoReplyMessage(ctx context.Context) (string, error) {
	var r autoReplyResource
	err := a.do(ctx, "account.autoreply", http.MethodGet, "/me/mailboxSettings/automaticRepliesSetting", nil, &r)
	if err != nil {
		return "", err
	}
	return r.InternalReplyMessage, nil
}

// SetAutoReply updates the account's automatic reply configuration.
func (a *Account) SetAutoReply(ctx context.Context, settings AutoReplySettings) error {
	const op = "account.setautoreply"

	if (settings.ScheduledStart == nil) != (settings.ScheduledEnd == nil) {
		return validationError(op, "scheduled start and end must both be set or both be nil")
	}
	if settings.Status == AutoReplyScheduled && settings.ScheduledStart == nil {
		return validationError(op, "scheduled status requires a start and end time")
	}

	status := settings.Status
	if status == "" {
		status = AutoReplyEnabled
	}
	audience := settings.Audience
	if audience == "" {
		audience = AudienceAll
	}
	external := settings.ExternalMessage
	if external == "" {
		external = settings.Message
	}

	reply := autoReplyResource{
		Status:               string(status),
		ExternalAudience:     string(audience),
		InternalReplyMessage: settings.Message,
		ExternalReplyMessage: external,
	}
	if settings.ScheduledStart != nil {
		reply.ScheduledStart = &dateTimeTimeZoneResource{
			DateTime: settings.ScheduledStart.UTC().Format("2006-01-02T15:04:05"),
			TimeZone: "UTC",
		}
		reply.ScheduledEnd = &dateTimeTimeZoneResource{
			DateTime: settings.ScheduledEnd.UTC().Format("2006-01-02T15:04:05"),
			TimeZone: "UTC",
		}
	}

	payload := struct {
		AutomaticRepliesSetting autoReplyResource `json:"automaticRepliesSetting"`
	}{AutomaticRepliesSetting: reply}

	return a.do(ctx, op, http.MethodPatch, "/me/mailboxSettings", payload, nil)
}
