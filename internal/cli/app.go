package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ledgerchat/pkg/api"
	"github.com/dmitrymomot/ledgerchat/pkg/config"
	"github.com/dmitrymomot/ledgerchat/pkg/environment"
	"github.com/dmitrymomot/ledgerchat/pkg/fetch"
	"github.com/dmitrymomot/ledgerchat/pkg/logger"
	"github.com/dmitrymomot/ledgerchat/pkg/mirror"
	"github.com/dmitrymomot/ledgerchat/pkg/query"
	"github.com/dmitrymomot/ledgerchat/pkg/redis"
	"github.com/dmitrymomot/ledgerchat/pkg/requestid"
	"github.com/dmitrymomot/ledgerchat/pkg/secrets"
	"github.com/dmitrymomot/ledgerchat/pkg/store"
)

// flagsConfig holds the optional master key that seals the auth_token flag,
// base64 encoded.
type flagsConfig struct {
	Secret string `env:"FLAGS_SECRET"`
}

// flagBackend is the durable flag store of one run plus its cleanup.
type flagBackend struct {
	mirror.FlagStore
	sealed bool
	close  func() error
}

// app is one session: store, mirror, query client and API service.
type app struct {
	logger  *slog.Logger
	flags   flagBackend
	mirror  *mirror.Mirror
	store   *store.Store
	queries *query.Client
	svc     *api.Service
}

// begin prepares what every command shares: a context carrying the
// environment and a request id, and a logger writing to stderr.
func begin(cmd *cobra.Command) (context.Context, *slog.Logger, error) {
	var cfg logger.Config
	if err := config.Load(&cfg); err != nil {
		return nil, nil, err
	}
	ctx := environment.WithContext(cmd.Context(), environment.Parse(cfg.Env))
	ctx, _ = requestid.Ensure(ctx)

	log := logger.NewFromConfig(cfg,
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(requestid.LoggerExtractor(), environment.LoggerExtractor()),
	)
	return ctx, log, nil
}

// openFlags connects the durable flag backend: the injected one, Redis when
// configured, or a process-local map. With FLAGS_SECRET set the token value
// is sealed before it is stored.
func openFlags(ctx context.Context, s *settings, log *slog.Logger) (flagBackend, error) {
	backend, err := openBackend(ctx, s, log)
	if err != nil {
		return flagBackend{}, err
	}

	var cfg flagsConfig
	if err := config.Load(&cfg); err != nil {
		return flagBackend{}, errors.Join(err, backend.close())
	}
	if cfg.Secret == "" {
		if environment.IsProduction(ctx) {
			log.WarnContext(ctx, "FLAGS_SECRET is not set, auth_token is stored in plain text", logger.Component("cli"))
		}
		return backend, nil
	}
	sealer, err := newSealer(cfg.Secret, s.namespace)
	if err != nil {
		return flagBackend{}, errors.Join(err, backend.close())
	}
	backend.FlagStore = mirror.NewSealedFlags(backend.FlagStore, sealer)
	backend.sealed = true
	return backend, nil
}

func newSealer(secret, namespace string) (*secrets.Sealer, error) {
	key, err := secrets.ParseKey(secret)
	if err != nil {
		return nil, fmt.Errorf("FLAGS_SECRET: %w", err)
	}
	return secrets.NewSealer(key, namespace)
}

func openBackend(ctx context.Context, s *settings, log *slog.Logger) (flagBackend, error) {
	noop := func() error { return nil }
	if s.flags != nil {
		return flagBackend{FlagStore: s.flags, close: noop}, nil
	}

	var cfg redis.Config
	if err := config.Load(&cfg); err != nil {
		return flagBackend{}, err
	}
	if !cfg.Enabled() {
		log.DebugContext(ctx, "using in-memory durable flags", logger.Component("cli"))
		return flagBackend{FlagStore: mirror.NewMemoryFlags(), close: noop}, nil
	}

	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return flagBackend{}, err
	}
	log.DebugContext(ctx, "using redis durable flags", logger.Component("cli"), slog.String("namespace", s.namespace))
	return flagBackend{
		FlagStore: mirror.NewRedisFlags(client, cfg.KeyPrefix, s.namespace),
		close:     client.Close,
	}, nil
}

func newApp(ctx context.Context, log *slog.Logger, s *settings) (*app, error) {
	fetchCfg, err := fetch.LoadConfig()
	if err != nil {
		return nil, err
	}
	apiCfg, err := api.LoadConfig()
	if err != nil {
		return nil, err
	}
	flags, err := openFlags(ctx, s, log)
	if err != nil {
		return nil, err
	}

	a := &app{logger: log, flags: flags}
	a.mirror = mirror.New(flags, mirror.WithLogger(log))
	a.store = store.New(store.WithLogger(log), store.WithHook(a.mirror.Hook()))

	// a new run starts without a session; drop whatever an earlier run left
	if err := a.mirror.Sync(ctx, a.store.State()); err != nil {
		return nil, errors.Join(err, a.close())
	}

	a.queries = query.NewClient(query.WithLogger(log))
	a.queries.ResetOnLogout(a.store)

	fetchOpts := []fetch.Option{fetch.WithLogger(log)}
	if s.transport != nil {
		fetchOpts = append(fetchOpts, fetch.WithTransport(s.transport))
	}
	a.svc = api.New(apiCfg, a.store, a.queries, api.NewExecutor(fetchCfg, a.store, fetchOpts...))
	return a, nil
}

func (a *app) close() error {
	var errs []error
	if a.queries != nil {
		errs = append(errs, a.queries.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.flags.close())
	return errors.Join(errs...)
}

// settle waits for the observer's fetch and turns a disabled or failed
// result into an error.
func settle[P, T any](ctx context.Context, obs *query.Observer[P, T]) (T, error) {
	var zero T
	res, err := obs.Wait(ctx)
	switch {
	case err != nil:
		return zero, err
	case !res.Enabled:
		return zero, res.Disabled
	case res.Status == query.StatusError:
		return zero, fmt.Errorf("%s: %w", res.Key.Operation, res.Err)
	}
	return res.Data, nil
}
