package vex

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"

	"github.com/vexhq/vex/broker"
	"github.com/vexhq/vex/credentials"
	"github.com/vexhq/vex/internal/endpoint"
	"github.com/vexhq/vex/internal/payload"
	"github.com/vexhq/vex/internal/streamparse"
	"github.com/vexhq/vex/internal/transport"
	"github.com/vexhq/vex/pkg/slogx"
	"github.com/vexhq/vex/pkg/uuidx"
	"github.com/vexhq/vex/provider"
)

// DefaultTopic is the broker subject call events publish to unless
// overridden with WithTopic.
const DefaultTopic = "vex.calls"

// Adapter executes calls against hosted models. It is safe for concurrent
// use; every Execute spawns an independent worker with its own request
// spec, connection, and parser state.
type Adapter struct {
	client *http.Client
	creds  credentials.Source
	events broker.Broker
	topic  string

	// resolve is swappable so tests can route a spec at a local server.
	resolve func(provider.RequestSpec, string) (string, map[string]string, error)
}

var (
	// WithHTTPClient replaces the default 120s-timeout client.
	WithHTTPClient = opts.ForName[Adapter, *http.Client]("client")
	// WithCredentials installs the bearer-token source for managed mode.
	WithCredentials = opts.ForName[Adapter, credentials.Source]("creds")
	// WithBroker fans call events out to subscribers.
	WithBroker = opts.ForName[Adapter, broker.Broker]("events")
	// WithTopic overrides the broker subject.
	WithTopic = opts.ForName[Adapter, string]("topic")
)

// New constructs an Adapter.
func New(options ...opts.Option[Adapter]) (*Adapter, error) {
	adapter := &Adapter{topic: DefaultTopic}
	if err := opts.Apply(adapter, options); err != nil {
		return nil, err
	}
	if adapter.client == nil {
		adapter.client = &http.Client{Timeout: transport.DefaultTimeout}
	}
	if adapter.resolve == nil {
		adapter.resolve = endpoint.Resolve
	}
	return adapter, nil
}

// Execute starts one call on its own worker and returns immediately. The
// returned Call is the future for the terminal value and the handle for
// cancellation. hook may be nil.
func (a *Adapter) Execute(ctx context.Context, spec provider.RequestSpec, hook provider.Hook) *Call {
	if hook == nil {
		hook = provider.NoopHook{}
	}

	ctx, cancel := context.WithCancel(ctx)
	call := &Call{
		id:        uuidx.New(),
		cancelCtx: cancel,
		done:      make(chan struct{}),
	}

	go func() {
		defer cancel()
		a.run(ctx, spec, hook, call)
	}()
	return call
}

// stagePercents mirrors the coarse progress the desktop front-end shows.
var stagePercents = map[provider.Stage]int{
	provider.StageAuthenticating:  20,
	provider.StageBuildingRequest: 35,
	provider.StageSending:         50,
	provider.StageStreaming:       80,
	provider.StageParsing:         90,
}

// run walks the call through authenticating, building_request, sending,
// streaming, and parsing. The cancellation flag is consulted at every
// transition and immediately before and after every suspension point;
// once observed, no further work happens and the call terminates with a
// cancelled error, discarding any partially read stream.
func (a *Adapter) run(ctx context.Context, spec provider.RequestSpec, hook provider.Hook, call *Call) {
	slog.Debug("executing call",
		slog.String("call_id", call.id.String()),
		slogx.Model(spec.Config.Key),
		slog.String("mode", string(spec.Mode)),
	)

	fail := func(stage provider.Stage, kind error, message string, cause error) {
		a.finish(ctx, hook, call, stage, nil, provider.NewCallError(stage, kind, message, cause))
	}
	cancelledAt := func(stage provider.Stage) {
		a.finish(ctx, hook, call, stage, nil, provider.Cancelled(stage))
	}

	// Pre-flight checks run before any network traffic. A model reached
	// through an access mode its config does not list fails here with
	// zero calls performed.
	if err := spec.Config.Validate(); err != nil {
		fail(provider.StageBuildingRequest, provider.ErrCapabilityMismatch, "invalid model config", err)
		return
	}
	if !spec.Config.SupportsAccessMode(spec.Mode) {
		fail(provider.StageBuildingRequest, provider.ErrCapabilityMismatch,
			"model "+spec.Config.Key+" does not support "+string(spec.Mode)+" access", nil)
		return
	}
	if err := spec.Validate(); err != nil {
		kind := provider.ErrCapabilityMismatch
		if spec.Mode == provider.AccessDirect && spec.APIKey == "" {
			kind = provider.ErrAuth
		}
		fail(provider.StageBuildingRequest, kind, "invalid request", err)
		return
	}

	if call.abortRequested() {
		cancelledAt(provider.StageAuthenticating)
		return
	}
	a.progress(ctx, hook, call, provider.StageAuthenticating, "Authenticating")

	var token string
	if spec.Mode == provider.AccessManaged {
		if a.creds == nil {
			fail(provider.StageAuthenticating, provider.ErrAuth, "no credential source configured", nil)
			return
		}
		var err error
		token, err = a.creds.BearerToken(ctx)
		if call.abortRequested() {
			cancelledAt(provider.StageAuthenticating)
			return
		}
		if err != nil {
			fail(provider.StageAuthenticating, provider.ErrAuth, "failed to refresh access token", err)
			return
		}
	}

	if call.abortRequested() {
		cancelledAt(provider.StageBuildingRequest)
		return
	}
	a.progress(ctx, hook, call, provider.StageBuildingRequest, "Building request")

	body, err := payload.Build(spec)
	if err != nil {
		fail(provider.StageBuildingRequest, provider.ErrCapabilityMismatch, "failed to build payload", err)
		return
	}
	url, headers, err := a.resolve(spec, token)
	if err != nil {
		fail(provider.StageBuildingRequest, provider.ErrCapabilityMismatch, "failed to resolve endpoint", err)
		return
	}

	if call.abortRequested() {
		cancelledAt(provider.StageSending)
		return
	}
	a.progress(ctx, hook, call, provider.StageSending, "Sending request")

	stream, err := a.transportClient().Stream(ctx, url, headers, body)
	if call.abortRequested() {
		if stream != nil {
			stream.Close()
		}
		cancelledAt(provider.StageSending)
		return
	}
	if err != nil {
		fail(provider.StageSending, provider.ErrTransport, "api call failed", err)
		return
	}

	a.progress(ctx, hook, call, provider.StageStreaming, "Receiving response")

	raw, err := transport.Collect(ctx, stream, call.abortRequested)
	stream.Close()
	if err != nil && (errors.Is(err, transport.ErrAborted) || errors.Is(err, context.Canceled) || call.abortRequested()) {
		// Partial bytes are discarded, never surfaced as a degraded
		// success.
		cancelledAt(provider.StageStreaming)
		return
	}
	if err != nil {
		fail(provider.StageStreaming, provider.ErrTransport, "failed to read response stream", err)
		return
	}

	if call.abortRequested() {
		cancelledAt(provider.StageParsing)
		return
	}
	a.progress(ctx, hook, call, provider.StageParsing, "Processing response")

	pub := spec.Config.Publisher
	if spec.Mode == provider.AccessCustom {
		pub = provider.PublisherGeneric
	}
	parsed := streamparse.Parse(pub, raw)

	visible := parsed.Render(spec.IncludeThoughts)
	if parsed.Empty() {
		// Structured parsing recovered nothing; fall back to the raw
		// body. Only a body with no text at all is unparseable.
		if len(raw) == 0 {
			fail(provider.StageParsing, provider.ErrParse, "empty response body", nil)
			return
		}
		visible = raw
	}

	result := &provider.ParsedResult{
		VisibleText:         visible,
		RawText:             raw,
		InputTokenEstimate:  spec.InputTokenEstimate(),
		OutputTokenEstimate: provider.TokenEstimate(visible),
	}
	a.finish(ctx, hook, call, provider.StageParsing, result, nil)
}

func (a *Adapter) transportClient() *transport.Client {
	return transport.New(a.client)
}

func (a *Adapter) progress(ctx context.Context, hook provider.Hook, call *Call, stage provider.Stage, message string) {
	event := provider.Progress{
		CallID:    call.id,
		Stage:     stage,
		Message:   message,
		Percent:   stagePercents[stage],
		Timestamp: strfmt.DateTime(time.Now()),
	}
	hook.OnProgress(ctx, event)
	a.publish(ctx, event)
}

// finish records the terminal value and emits it exactly once through the
// hook and broker.
func (a *Adapter) finish(ctx context.Context, hook provider.Hook, call *Call, stage provider.Stage, result *provider.ParsedResult, callErr *provider.CallError) {
	call.complete(stage, result, callErr)

	now := strfmt.DateTime(time.Now())
	if call.err != nil {
		if !errors.Is(call.err, provider.ErrCancelled) {
			slog.Warn("call failed", slog.String("call_id", call.id.String()), slogx.Stage(call.err.Stage), slogx.Error(call.err))
		}
		event := provider.Failed{CallID: call.id, Err: call.err, Timestamp: now}
		hook.OnError(ctx, event)
		a.publish(ctx, event)
		return
	}

	completed := provider.Progress{
		CallID:    call.id,
		Stage:     provider.StageParsing,
		Message:   "Complete",
		Percent:   100,
		Timestamp: now,
	}
	hook.OnProgress(ctx, completed)
	a.publish(ctx, completed)

	event := provider.Completed{CallID: call.id, Result: *call.result, Timestamp: now}
	hook.OnResult(ctx, event)
	a.publish(ctx, event)
}

func (a *Adapter) publish(ctx context.Context, event provider.Event) {
	if a.events == nil {
		return
	}
	if err := a.events.Topic(ctx, a.topic).Publish(ctx, event); err != nil {
		slog.Error("failed to publish call event", slogx.Error(err))
	}
}
