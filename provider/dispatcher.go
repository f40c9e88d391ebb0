package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"abapai/config"
	"abapai/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds each dispatched request.
const DefaultTimeout = 120 * time.Second

// Dispatcher selects a gateway from a ClientConfig, enforces preconditions and
// normalizes every outcome. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	timeout     time.Duration
	factory     GatewayFactory
	gatewayOpts []GatewayOption
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the per-request timeout. Non-positive values disable it.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.timeout = d
	}
}

// WithGatewayFactory replaces NewGateway.
func WithGatewayFactory(f GatewayFactory) DispatcherOption {
	return func(disp *Dispatcher) {
		if f != nil {
			disp.factory = f
		}
	}
}

// WithGatewayOptions passes opts to every gateway the dispatcher creates.
func WithGatewayOptions(opts ...GatewayOption) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.gatewayOpts = append(disp.gatewayOpts, opts...)
	}
}

// NewDispatcher creates a dispatcher using NewGateway and DefaultTimeout.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		timeout: DefaultTimeout,
		factory: NewGateway,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Timeout returns the per-request timeout.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// CreateGateway selects the gateway for cfg. Errors are always *model.ProviderError.
func (d *Dispatcher) CreateGateway(cfg model.ClientConfig) (model.Gateway, error) {
	gw, err := d.factory(cfg, d.gatewayOpts...)
	if err != nil {
		return nil, model.AsProviderError(cfg.Provider, err)
	}
	if gw == nil {
		return nil, model.NewProviderError(cfg.Provider, model.ErrorKindUnsupported,
			fmt.Sprintf("Unsupported provider: %s", cfg.Provider), model.ErrUnsupported)
	}
	return gw, nil
}

// DispatchCompletion runs one completion and returns a uniform result.
//
// A missing required API key or a blank prompt fail immediately without
// touching the network. Gateway errors become Failure values carrying the
// provider-prefixed message; a successful non-blank completion becomes Success.
func (d *Dispatcher) DispatchCompletion(ctx context.Context, cfg model.ClientConfig, prompt string) model.AnalysisResult {
	log := requestLogger(cfg, "completion")

	if err := checkAPIKey(cfg); err != nil {
		log.Debug().Msg("API key missing; request not sent")
		return model.FailureFromError(err)
	}
	if err := checkPrompt(cfg.Provider, prompt); err != nil {
		log.Debug().Msg("blank prompt; request not sent")
		return model.FailureFromError(err)
	}

	gw, err := d.CreateGateway(cfg)
	if err != nil {
		log.Warn().Err(unwrapCause(err)).Msg("gateway creation failed")
		return model.FailureFromError(err)
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	log.Debug().Int("prompt_chars", len(prompt)).Msg("sending completion request")

	text, err := gw.Complete(ctx, prompt)
	if err != nil {
		pe := model.AsProviderError(cfg.Provider, err)
		log.Warn().Err(unwrapCause(pe)).Str("kind", string(pe.Kind)).Dur("elapsed", time.Since(start)).Msg("completion failed")
		return model.Failure(pe.Error())
	}
	if strings.TrimSpace(text) == "" {
		return model.FailureFromError(emptyResponseError(cfg.Provider))
	}

	log.Debug().Int("response_chars", len(text)).Dur("elapsed", time.Since(start)).Msg("completion finished")
	return model.Success(text)
}

// DispatchListModels returns the model ids available for cfg's provider.
// The same API key precondition as DispatchCompletion applies. A gateway
// without a listing strategy yields an ErrorKindUnsupported error.
func (d *Dispatcher) DispatchListModels(ctx context.Context, cfg model.ClientConfig) ([]string, error) {
	log := requestLogger(cfg, "list_models")

	if err := checkAPIKey(cfg); err != nil {
		log.Debug().Msg("API key missing; request not sent")
		return nil, err
	}

	gw, err := d.CreateGateway(cfg)
	if err != nil {
		return nil, err
	}

	lister, ok := gw.(model.ModelLister)
	if !ok {
		return nil, model.NewProviderError(cfg.Provider, model.ErrorKindUnsupported,
			fmt.Sprintf("Fetching models not supported for: %s", cfg.Provider.DisplayName()), model.ErrUnsupported)
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	models, err := lister.ListModels(ctx)
	if err != nil {
		pe := model.AsProviderError(cfg.Provider, err)
		log.Warn().Err(unwrapCause(pe)).Msg("model listing failed")
		return nil, pe
	}
	if models == nil {
		models = []string{}
	}

	log.Debug().Int("count", len(models)).Msg("models fetched")
	return models, nil
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

func requestLogger(cfg model.ClientConfig, op string) zerolog.Logger {
	return config.Logger.With().
		Str("request_id", uuid.NewString()).
		Str("op", op).
		Str("provider", cfg.Provider.String()).
		Str("model", cfg.Model).
		Logger()
}

// unwrapCause returns the underlying error for logging, or err itself.
func unwrapCause(err error) error {
	if pe, ok := err.(*model.ProviderError); ok && pe.Cause != nil {
		return pe.Cause
	}
	return err
}
