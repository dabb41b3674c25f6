// Package chat drives a single send: it records the user turn, streams the
// answer from the gateway and materializes the assistant message.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/metrics"
	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/session"
)

// State of the orchestrator
type State int

const (
	Idle State = iota
	Sending
	Streaming
	Completed
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Notification is shown to the user when a send fails
type Notification struct {
	Title       string
	Description string
	Err         error
}

// Notifier delivers failure notifications
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

// TemperatureRules decide when the temperature field is sent and when a
// rejection of it triggers a retry.
type TemperatureRules struct {
	ProviderDefault float64
	OmitForModels   []string
	Rejection       apierrors.TemperaturePolicy
}

// DefaultTemperatureRules omits 1.0 and retries on OpenAI-style rejections
func DefaultTemperatureRules() TemperatureRules {
	return TemperatureRules{
		ProviderDefault: models.ProviderDefaultTemperature,
		Rejection:       apierrors.DefaultTemperaturePolicy(),
	}
}

// Temperature returns the temperature to send for sel, or nil to omit it
func (r TemperatureRules) Temperature(sel models.Selection) *float64 {
	if math.Abs(sel.Temperature-r.ProviderDefault) < 1e-9 {
		return nil
	}
	for _, m := range r.OmitForModels {
		if strings.EqualFold(m, sel.Model) {
			return nil
		}
	}
	t := sel.Temperature
	return &t
}

// Result describes how a send ended
type Result struct {
	State   State // Completed, Aborted or Failed
	Content string
	Retried bool
	Err     error
}

// Orchestrator runs sends for one conversation session
type Orchestrator struct {
	client   gateway.Client
	session  *session.Session
	notifier Notifier
	rules    TemperatureRules
	log      *zap.Logger

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	onUpdate func(content string)
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithNotifier sets where failure notifications go
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTemperatureRules overrides the temperature handling
func WithTemperatureRules(r TemperatureRules) Option {
	return func(o *Orchestrator) { o.rules = r }
}

// WithUpdateHandler sets the callback that receives the running buffer
func WithUpdateHandler(fn func(content string)) Option {
	return func(o *Orchestrator) { o.onUpdate = fn }
}

// New creates an orchestrator bound to sess
func New(client gateway.Client, sess *session.Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		session:  sess,
		notifier: NotifierFunc(func(Notification) {}),
		rules:    DefaultTemperatureRules(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the session this orchestrator writes to
func (o *Orchestrator) Session() *session.Session {
	return o.session
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

type updateKey struct{}

// WithUpdates returns a context whose send reports its running buffer to fn
// instead of the orchestrator's handler.
func WithUpdates(ctx context.Context, fn func(content string)) context.Context {
	return context.WithValue(ctx, updateKey{}, fn)
}

// OnUpdate replaces the running-buffer callback. A send already in flight
// keeps the handler it started with.
func (o *Orchestrator) OnUpdate(fn func(content string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onUpdate = fn
}

// Stop cancels the in-flight send. Partial output is discarded. Calling it
// while idle, or more than once, does nothing.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel == nil {
		return
	}
	o.log.Debug("stop requested", zap.Stringer("state", o.state))
	o.cancel()
	o.cancel = nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()
	o.log.Debug("state change", zap.Stringer("from", prev), zap.Stringer("to", s))
}

// Send appends text as a user turn, streams the answer and appends the
// assistant turn. It returns ErrEmptyMessage or ErrBusy without side
// effects; every other failure is reported in Result and to the notifier.
func (o *Orchestrator) Send(ctx context.Context, text string, sel models.Selection) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, apierrors.ErrEmptyMessage
	}

	o.mu.Lock()
	if o.state != Idle {
		o.mu.Unlock()
		return Result{}, apierrors.ErrBusy
	}
	streamCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state = Sending
	publish := o.onUpdate
	o.mu.Unlock()
	if fn, ok := ctx.Value(updateKey{}).(func(string)); ok {
		publish = fn
	}

	start := time.Now()
	log := o.log.With(zap.String("conversation", o.session.ID()), zap.String("model", sel.Model))
	log.Debug("state change", zap.Stringer("from", Idle), zap.Stringer("to", Sending))

	defer func() {
		cancel()
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
		o.setState(Idle)
	}()

	o.session.Configure(session.Params{
		Model:        sel.Model,
		Temperature:  sel.Temperature,
		SystemPrompt: sel.SystemPrompt,
		PresetID:     sel.PresetID,
	})
	o.session.AppendUserMessage(text)
	o.session.Flush()

	history := o.buildHistory(sel.SystemPrompt)
	opts := gateway.ChatOptions{
		Model:       sel.Model,
		Temperature: o.rules.Temperature(sel),
		Stream:      true,
	}

	stream, retried, err := o.open(streamCtx, log, history, opts)
	if err != nil {
		return o.finish(streamCtx, log, sel, start, Result{Retried: retried}, err), nil
	}
	defer stream.Close()

	o.setState(Streaming)
	content, err := o.consume(streamCtx, sel.Model, stream, publish)
	if err != nil {
		return o.finish(streamCtx, log, sel, start, Result{Retried: retried}, err), nil
	}

	// last checkpoint before the answer becomes durable
	if streamCtx.Err() != nil {
		return o.finish(streamCtx, log, sel, start, Result{Retried: retried}, streamCtx.Err()), nil
	}

	o.setState(Completed)
	outcome := metrics.OutcomeCompleted
	if _, ok := o.session.AppendAssistantMessage(content, models.DisplayName(sel.Model)); ok {
		o.session.Flush()
	} else {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveSend(sel.Model, outcome, time.Since(start))
	log.Info("send completed", zap.Int("chars", len(content)), zap.Bool("retried", retried))

	return Result{State: Completed, Content: content, Retried: retried}, nil
}

// open starts the stream, retrying once without temperature when the
// provider rejects that parameter.
func (o *Orchestrator) open(ctx context.Context, log *zap.Logger, history []models.ChatMessage, opts gateway.ChatOptions) (gateway.Stream, bool, error) {
	stream, err := o.client.Chat(ctx, history, opts)
	if err == nil {
		return stream, false, nil
	}
	if opts.Temperature == nil || ctx.Err() != nil || !apierrors.IsTemperatureRejection(err, o.rules.Rejection) {
		return nil, false, err
	}

	log.Warn("temperature rejected, retrying without it",
		zap.Float64("temperature", *opts.Temperature), zap.Error(err))
	metrics.ObserveTemperatureRetry(opts.Model)

	opts.Temperature = nil
	stream, err = o.client.Chat(ctx, history, opts)
	if err != nil {
		return nil, true, fmt.Errorf("retry without temperature: %w", err)
	}
	return stream, true, nil
}

// consume reads fragments until the stream ends. The cancellation token is
// checked before each fragment is applied.
func (o *Orchestrator) consume(ctx context.Context, model string, stream gateway.Stream, publish func(string)) (string, error) {
	var buf strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return buf.String(), nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		metrics.ObserveFragment(model)
		text := gateway.FragmentText(frag)
		if text == "" {
			continue
		}
		buf.WriteString(text)
		if publish != nil {
			publish(buf.String())
		}
	}
}

// finish classifies a send that did not complete
func (o *Orchestrator) finish(ctx context.Context, log *zap.Logger, sel models.Selection, start time.Time, res Result, err error) Result {
	if errors.Is(ctx.Err(), context.Canceled) {
		o.setState(Aborted)
		metrics.ObserveSend(sel.Model, metrics.OutcomeAborted, time.Since(start))
		log.Info("send aborted")
		res.State = Aborted
		return res
	}

	o.setState(Failed)
	metrics.ObserveSend(sel.Model, metrics.OutcomeFailed, time.Since(start))
	log.Error("send failed", zap.Error(err), zap.Bool("retried", res.Retried))

	title, desc := apierrors.UserMessage(err)
	o.notifier.Notify(Notification{Title: title, Description: desc, Err: err})

	res.State = Failed
	res.Err = err
	return res
}

// buildHistory returns the system prompt, when set, followed by the full
// working log.
func (o *Orchestrator) buildHistory(systemPrompt string) []models.ChatMessage {
	msgs := o.session.Messages()
	out := make([]models.ChatMessage, 0, len(msgs)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		out = append(out, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	}
	for _, m := range msgs {
		out = append(out, models.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
