// Command cmsfetch fetches one dotCMS page through the request-deduplicating
// cache and prints the raw payload to stdout.
//
// Usage:
//
//	cmsfetch -config cmsfetch.yaml -path /about-us/ -mode LIVE
//	cmsfetch -transport graphql -path /news/ -persona p1 -repeat 20
//
// With -repeat N the same request is issued N times concurrently; the logs
// show a single upstream exchange. Logs and telemetry go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/cmsfetch/auth"
	"github.com/jonwraymond/cmsfetch/cache"
	"github.com/jonwraymond/cmsfetch/config"
	"github.com/jonwraymond/cmsfetch/dotcms"
	"github.com/jonwraymond/cmsfetch/observe"
	"github.com/jonwraymond/cmsfetch/page"
	"github.com/jonwraymond/cmsfetch/resilience"
)

// tokenExpiryWarning is how early an expiring API token is reported.
const tokenExpiryWarning = 72 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "cmsfetch: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	path       string
	mode       string
	site       string
	lang       string
	persona    string
	fireRules  bool
	depth      int
	transport  string
	repeat     int
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("cmsfetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", os.Getenv("CMSFETCH_CONFIG"), "path to cmsfetch.yaml (optional)")
	fs.StringVar(&o.path, "path", "/", "page path")
	fs.StringVar(&o.mode, "mode", "LIVE", "rendering mode: LIVE, PREVIEW or EDIT")
	fs.StringVar(&o.site, "site", "", "site id")
	fs.StringVar(&o.lang, "lang", "", "language id")
	fs.StringVar(&o.persona, "persona", "", "persona")
	fs.BoolVar(&o.fireRules, "fire-rules", false, "fire page rules")
	fs.IntVar(&o.depth, "depth", 1, "relationship depth (rest only)")
	fs.StringVar(&o.transport, "transport", dotcms.TransportREST, "rest or graphql")
	fs.IntVar(&o.repeat, "repeat", 1, "issue the request this many times concurrently")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.transport != dotcms.TransportREST && o.transport != dotcms.TransportGraphQL {
		return o, fmt.Errorf("unknown transport %q", o.transport)
	}
	if o.repeat < 1 {
		return o, fmt.Errorf("repeat must be at least 1, got %d", o.repeat)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	mode, err := page.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return err
	}

	obsCfg := cfg.ObserveConfig()
	obsCfg.Output = stderr
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := obs.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return err
	}

	cred, err := credential(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	loader, err := cache.NewLoader(store, cache.WithPolicy(cache.Policy{MaxTTL: cfg.Cache.MaxTTL.Duration()}))
	if err != nil {
		return err
	}

	fetcherOpts := []dotcms.FetcherOption{
		dotcms.WithCredential(cred),
		dotcms.WithTimeout(cfg.DotCMS.Timeout.Duration()),
		dotcms.WithMiddleware(mw),
	}
	if cfg.Breaker.Enabled {
		cb := dotcms.NewCircuitBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.ResetTimeout.Duration(),
			func(from, to resilience.State) {
				logger.Warn(context.Background(), "circuit breaker state changed",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			})
		fetcherOpts = append(fetcherOpts, dotcms.WithCircuitBreaker(cb))
	}
	fetcher, err := dotcms.NewHTTPFetcher(cfg.DotCMS.Host, fetcherOpts...)
	if err != nil {
		_ = loader.Close()
		return err
	}

	client, err := dotcms.NewClient(fetcher, loader,
		dotcms.WithTTLPolicy(page.TTLPolicy{Live: cfg.Cache.LiveTTL.Duration()}),
		dotcms.WithMetrics(mw.Metrics()),
		dotcms.WithLogger(logger),
	)
	if err != nil {
		_ = loader.Close()
		return err
	}
	defer client.Close()

	d := page.NewDescriptor(opts.path,
		page.WithMode(mode),
		page.WithSite(opts.site),
		page.WithLanguage(opts.lang),
		page.WithPersona(opts.persona),
		page.WithFireRules(opts.fireRules),
		page.WithDepth(opts.depth),
	)

	payloads := make([][]byte, opts.repeat)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.repeat; i++ {
		g.Go(func() error {
			var err error
			if opts.transport == dotcms.TransportGraphQL {
				payloads[i], err = client.PageGraphQL(gctx, d)
			} else {
				payloads[i], err = client.Page(gctx, d)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error(ctx, "page fetch failed",
			observe.Field{Key: "kind", Value: dotcms.KindOf(err).String()},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return err
	}

	stats := client.Stats()
	logger.Info(ctx, "page fetched",
		observe.Field{Key: "requests", Value: opts.repeat},
		observe.Field{Key: "upstream_fetches", Value: stats.Productions},
		observe.Field{Key: "cache_hits", Value: stats.Hits},
		observe.Field{Key: "shared", Value: stats.Shared},
		observe.Field{Key: "store_errors", Value: stats.StoreErrors},
	)

	if _, err := stdout.Write(payloads[0]); err != nil {
		return err
	}
	_, err = io.WriteString(stdout, "\n")
	return err
}

// credential builds the upstream credential. Running without one is allowed
// since LIVE pages are often public.
func credential(ctx context.Context, cfg *config.Config, logger observe.Logger) (auth.Credential, error) {
	cred, err := cfg.Credential()
	if errors.Is(err, auth.ErrMissingCredentials) {
		logger.Warn(ctx, "no dotcms credentials configured, requests are anonymous")
		return auth.Credential{}, nil
	}
	if err != nil {
		return auth.Credential{}, err
	}

	if cred.Scheme() == auth.SchemeBearer {
		now := time.Now()
		info, err := auth.CheckToken(cfg.DotCMS.Token, now)
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			logger.Warn(ctx, "dotcms api token has expired", observe.Field{Key: "expires_at", Value: info.ExpiresAt})
		case err != nil:
			logger.Debug(ctx, "dotcms api token is not a jwt, skipping expiry check")
		case info.ExpiresWithin(now, tokenExpiryWarning):
			logger.Warn(ctx, "dotcms api token expires soon", observe.Field{Key: "expires_at", Value: info.ExpiresAt})
		}
	}
	return cred, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger observe.Logger) (cache.Cache, error) {
	if cfg.Cache.Backend != config.BackendRedis {
		return cache.NewMemoryCache(), nil
	}
	return cache.OpenRedisCache(ctx, cfg.Cache.RedisURL,
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		cache.WithErrorHandler(func(op, key string, err error) {
			logger.Warn(context.Background(), "redis cache error",
				observe.Field{Key: "op", Value: op},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}),
	)
}
