package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tonari-app/tonari/internal/cache/redisstore"
	"github.com/tonari-app/tonari/internal/cache/searchcache"
	"github.com/tonari-app/tonari/internal/core/config"
	"github.com/tonari-app/tonari/internal/core/health"
	"github.com/tonari-app/tonari/internal/core/httpclient"
	"github.com/tonari-app/tonari/internal/core/observability"
	"github.com/tonari-app/tonari/internal/core/router"
	"github.com/tonari-app/tonari/internal/core/server"
	"github.com/tonari-app/tonari/internal/feeds/accessibility"
	"github.com/tonari-app/tonari/internal/feeds/backend"
	"github.com/tonari-app/tonari/internal/feeds/geocode"
	"github.com/tonari-app/tonari/internal/feeds/wheelmap"
	"github.com/tonari-app/tonari/internal/gallery"
	"github.com/tonari-app/tonari/internal/invalidation"
	"github.com/tonari-app/tonari/internal/invalidation/kafkaconsumer"
	"github.com/tonari-app/tonari/internal/logger"
	h3mapper "github.com/tonari-app/tonari/internal/mapper/h3"
	"github.com/tonari-app/tonari/internal/merge"
	"github.com/tonari-app/tonari/internal/metrics"
	"github.com/tonari-app/tonari/internal/session"
	"github.com/tonari-app/tonari/internal/visitevents"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "tonari-gateway",
		Component: "gateway",
	}, os.Stdout)

	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting gateway",
		"addr", cfg.Addr,
		"version", Version,
		"backend", cfg.BackendURL,
		"redis", cfg.RedisEnabled,
		"override", cfg.OverwriteSearchLocation)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hc := httpclient.NewOutbound(cfg.UpstreamTimeout)
	places := accessibility.New(cfg.AccessibilityCloudURL, cfg.AccessibilityCloudToken, hc, appLog)
	nodes := wheelmap.New(cfg.WheelmapURL, cfg.WheelmapToken, hc, appLog)
	be := backend.New(cfg.BackendURL, hc, appLog)
	langs, err := geocode.ParseLanguages(cfg.GeocoderLanguages)
	if err != nil {
		appLog.Error("invalid geocoder languages", "err", err)
		return 1
	}
	geo := geocode.New(cfg.GeocoderURL, cfg.MapquestToken, langs, hc, appLog)

	var searcher merge.Interface = merge.NewSearcher(places, be, appLog)
	var checks []health.Check
	var changes session.ChangeSink

	if cfg.RedisEnabled {
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis unavailable", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()

		sc := searchcache.New(searcher, rc, h3mapper.New(), searchcache.Config{
			Res:         cfg.H3Res,
			TTL:         cfg.SearchCacheTTL,
			OpTimeout:   cfg.CacheOpTimeout,
			MinHotness:  cfg.SearchCacheMinHotness,
			HotHalfLife: cfg.SearchCacheHalfLife,
		}, appLog)
		searcher = sc
		changes = invalidation.NewLocal(sc, appLog)
		checks = append(checks, health.Check{Name: "redis", Fn: rc.Ping})

		if cfg.Kafka.InvalidationEnabled {
			cons := kafkaconsumer.New(kafkaconsumer.FromConfig(cfg.Kafka), appLog, &zl, sc)
			go func() {
				if err := cons.Start(ctx); err != nil {
					appLog.Error("invalidation consumer stopped", "err", err)
				}
			}()
		}
	} else if cfg.Kafka.InvalidationEnabled {
		appLog.Warn("invalidation events ignored: search cache disabled")
	}

	deps := session.Deps{
		Searcher:                searcher,
		Backend:                 be,
		Images:                  gallery.New(places, nodes, be),
		Geocoder:                geo,
		Changes:                 changes,
		Logger:                  appLog,
		ResetSideCachesOnSearch: cfg.SideCacheResetOnSearch,
	}
	if cfg.Kafka.VisitEventsEnabled {
		pub, err := visitevents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.VisitTopic, cfg.Kafka.VisitQueue, appLog)
		if err != nil {
			appLog.Error("visit events unavailable", "err", err)
			return 1
		}
		defer func() { _ = pub.Close() }()
		deps.Visits = pub
	}

	api := router.New(router.Config{
		OverrideLocation: cfg.OverwriteSearchLocation,
		SessionTTL:       cfg.SessionTTL,
	}, session.NewRegistry(cfg.SessionMax, cfg.SessionTTL, deps), appLog)

	opts := server.Options{Checks: checks}
	if cfg.Metrics.Enabled {
		p := metrics.Init(metrics.Config{
			Addr: cfg.Metrics.Addr,
			Path: cfg.Metrics.Path,
			Build: metrics.BuildInfo{
				Version:   Version,
				Revision:  os.Getenv("BUILD_REVISION"),
				Branch:    os.Getenv("BUILD_BRANCH"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
		})
		opts.Metrics = p.Handler()
		p.Serve(ctx, appLog.With("component", "metrics"))
	}

	if err := server.Run(ctx, cfg, appLog, api, opts); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
