package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/cosmetics-storefront/api"
	"github.com/aluiziolira/cosmetics-storefront/config"
	"github.com/aluiziolira/cosmetics-storefront/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries everything the commands share. It is populated by the root
// command's pre-run hook.
type app struct {
	envFile string
	cfg     *config.Config

	metrics *api.Metrics
	client  *api.Client
	admin   *api.Client

	session      *session.Session
	adminSession *session.Session

	// transport replaces the HTTP transport when set.
	transport http.RoundTripper
	// store replaces the configured session backend when set.
	store session.Store

	closers       []func() error
	metricsServer *http.Server
}

func (a *app) rootCommand() *cobra.Command {
	defaults := config.DefaultConfig()
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse and manage the wholesale cosmetics catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Dotenv file to load before reading STOREFRONT_* variables")
	flags.String("base-url", defaults.BaseURL, "API base URL including /api/v1")
	flags.Duration("timeout", defaults.Timeout, "Per-request timeout")
	flags.Int("max-retries", defaults.MaxRetries, "Retries for failed reads")
	flags.Duration("retry-delay", defaults.RetryDelay, "Pause between retries")
	flags.String("session", defaults.SessionBackend, "Session backend: file, memory, or redis")
	flags.String("session-file", defaults.SessionFile, "Session file for the file backend")
	flags.String("redis-addr", defaults.RedisAddr, "Redis address for the redis backend")
	flags.Int("redis-db", defaults.RedisDB, "Redis database for the redis backend")
	flags.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		a.catalogCommand(),
		a.productCommand(),
		a.featuredCommand(),
		a.categoriesCommand(),
		a.brandsCommand(),
		a.loginCommand(),
		a.signupCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.enquiryCommand(),
		a.exportCommand(),
		a.adminCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fail("invalid configuration", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return fail("invalid flags", err)
	}

	logger, level := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		return fail("invalid configuration", err)
	}
	a.cfg = cfg

	store, err := a.openStore(cmd.Context())
	if err != nil {
		return fail("opening session store", err)
	}
	a.session = session.New(store)
	a.adminSession = session.NewAdmin(store)
	if err := a.session.Init(cmd.Context()); err != nil {
		return fail("loading session", err)
	}
	if err := a.adminSession.Init(cmd.Context()); err != nil {
		return fail("loading admin session", err)
	}

	a.metrics = api.NewMetrics()
	opts := []api.Option{api.WithMetrics(a.metrics)}
	if a.transport != nil {
		opts = append(opts, api.WithTransport(a.transport))
	}
	if a.client, err = api.NewClient(cfg, append(opts, api.WithTokenSource(a.session))...); err != nil {
		return fail("initialising client", err)
	}
	if a.admin, err = api.NewClient(cfg, append(opts, api.WithTokenSource(a.adminSession))...); err != nil {
		return fail("initialising admin client", err)
	}

	a.startMetricsServer()
	return nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.cfg.SessionBackend {
	case config.SessionMemory:
		return session.NewMemoryStore(), nil
	case config.SessionRedis:
		pingCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		store, err := session.NewRedisStore(pingCtx, &redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		}, a.cfg.SessionPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return session.NewFileStore(a.cfg.SessionFile), nil
	}
}

func (a *app) startMetricsServer() {
	if a.cfg.MetricsAddr == "" {
		return
	}
	a.metricsServer = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", a.cfg.MetricsAddr))
}

func (a *app) teardown() error {
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer())
	}
	return errors.Join(errs...)
}

// fail logs err and returns it so cobra exits non-zero.
func fail(msg string, err error) error {
	slog.Error(msg, slog.Any("error", err))
	return err
}

// applyFlags layers explicitly set flags over cfg, so flags win over the
// environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("base-url", func() (e error) { cfg.BaseURL, e = flags.GetString("base-url"); return })
	set("timeout", func() (e error) { cfg.Timeout, e = flags.GetDuration("timeout"); return })
	set("max-retries", func() (e error) { cfg.MaxRetries, e = flags.GetInt("max-retries"); return })
	set("retry-delay", func() (e error) { cfg.RetryDelay, e = flags.GetDuration("retry-delay"); return })
	set("session", func() (e error) {
		var v string
		v, e = flags.GetString("session")
		cfg.SessionBackend = strings.ToLower(v)
		return
	})
	set("session-file", func() (e error) { cfg.SessionFile, e = flags.GetString("session-file"); return })
	set("redis-addr", func() (e error) { cfg.RedisAddr, e = flags.GetString("redis-addr"); return })
	set("redis-db", func() (e error) { cfg.RedisDB, e = flags.GetInt("redis-db"); return })
	set("metrics-addr", func() (e error) { cfg.MetricsAddr, e = flags.GetString("metrics-addr"); return })
	set("verbose", func() (e error) { cfg.Verbose, e = flags.GetBool("verbose"); return })
	return err
}

func newLogger(w io.Writer, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// report prints the outcome of a failed view: a login prompt for auth
// errors, otherwise the error with a retry hint.
func report(cmd *cobra.Command, what string, err error) error {
	out := cmd.OutOrStdout()
	switch {
	case api.IsAuth(err):
		fmt.Fprintln(out, "Please log in to continue: storefront login --email <email>")
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%s cancelled\n", what)
	default:
		var verr api.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "%s\n", verr.Error())
			break
		}
		fmt.Fprintf(out, "Failed to load %s: %v\n", what, err)
		fmt.Fprintln(out, "Run the command again to retry.")
	}
	slog.Debug("command failed", slog.String("view", what), slog.Any("error", err))
	return err
}
