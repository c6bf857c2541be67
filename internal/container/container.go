package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jreis/shortener/internal/analytics"
	analyticsstore "github.com/jreis/shortener/internal/analytics/store"
	"github.com/jreis/shortener/internal/handlers"
	"github.com/jreis/shortener/internal/health"
	"github.com/jreis/shortener/internal/messaging"
	"github.com/jreis/shortener/internal/middleware"
	"github.com/jreis/shortener/internal/ratelimit"
	"github.com/jreis/shortener/internal/shortener"
	"github.com/jreis/shortener/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options holds the service configuration, parsed from flags and
// environment by humacli.
type Options struct {
	Port          int    `default:"8080"              help:"Port to listen on"                                     short:"p"`
	BaseURL       string `default:""                  help:"Base URL for generated short links (defaults to http://localhost:<port>)"`
	PostgresURL   string `default:""                  help:"PostgreSQL connection string (empty runs on the in-memory store)"`
	RedisAddr     string `default:"localhost:6379"    help:"Redis server address"                                  short:"r"`
	AccessLogPath string `default:"access_logs.jsonl" help:"Append-only access log written by the consumer"`
	LogFormat     string `default:"console"           enum:"console,json"                                          help:"Log output format"`
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the pgx pool and the migrated Postgres store.
// Neither is invoked unless a Postgres URL is configured.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.PostgresURL)
	})

	do.Provide(injector, func(i *do.Injector) (*store.PostgresStore, error) {
		pool := do.MustInvoke[*pgxpool.Pool](i)

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}

		return pg, nil
	})
}

// RepositoryPackage provides the link repository, click store, and the
// short link service. With Postgres configured the repository is wrapped
// in the Redis read cache; otherwise everything runs on the memory store.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)
		if options.PostgresURL == "" {
			return do.MustInvoke[*store.MemoryStore](i), nil
		}

		pg := do.MustInvoke[*store.PostgresStore](i)
		client := do.MustInvoke[*redis.Client](i)

		return store.NewRedisCacheRepository(pg, client), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.ClickStore, error) {
		options := do.MustInvoke[*Options](i)
		if options.PostgresURL == "" {
			return do.MustInvoke[*store.MemoryStore](i), nil
		}

		return do.MustInvoke[*store.PostgresStore](i), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		links := do.MustInvoke[shortener.Repository](i)
		clicks := do.MustInvoke[shortener.ClickStore](i)
		logger := do.MustInvoke[*zap.Logger](i)

		alloc := shortener.NewAllocator(links, shortener.NewGenerator())

		return shortener.NewService(links, clicks, alloc, logger), nil
	})
}

// RateLimitPackage provides the Redis-backed rate limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		client := do.MustInvoke[*redis.Client](i)

		return store.NewRateLimitRedisStore(client), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		return ratelimit.NewLimiter(do.MustInvoke[ratelimit.Store](i)), nil
	})
}

// PublisherGroupPackage provides the analytics event publishers on the
// Redis stream transport.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](
			group.Publisher(), analytics.TopicLinkCreated,
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkVisitedEvent](
			group.Publisher(), analytics.TopicLinkVisited,
		), nil
	})
}

// ConsumerGroupPackage provides the consumer group that drains analytics
// events into the append-only access log.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*analyticsstore.JSONL, error) {
		options := do.MustInvoke[*Options](i)

		return analyticsstore.NewJSONL(options.AccessLogPath)
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[*analyticsstore.JSONL](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "analytics",
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumer(subscriber, sink, logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the fully wired API.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.NotFound(jsonError(http.StatusNotFound, "Not found"))
		router.MethodNotAllowed(jsonError(http.StatusMethodNotAllowed, "Method not allowed"))

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (*handlers.URLHandler, error) {
		options := do.MustInvoke[*Options](i)
		service := do.MustInvoke[*shortener.Service](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return handlers.NewURLHandler(
			service,
			options.baseURL(),
			do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkVisitedEvent]](i),
			logger,
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*health.Handler, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)

		var postgres health.Checker
		if options.PostgresURL != "" {
			postgres = health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i))
		}

		return health.NewHandler(health.NewRedisChecker(client), postgres), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		limiter := do.MustInvoke[*ratelimit.Limiter](i)
		urlHandler := do.MustInvoke[*handlers.URLHandler](i)
		healthHandler := do.MustInvoke[*health.Handler](i)

		handlers.UseErrorModel()

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(
			middleware.AccessLog(logger),
			middleware.RequestMeta(api),
			middleware.RateLimiter(api, limiter, logger),
		)

		health.RegisterRoutes(api, healthHandler)
		handlers.RegisterRoutes(api, urlHandler)

		return api, nil
	})
}

func jsonError(status int, msg string) http.HandlerFunc {
	body := []byte(fmt.Sprintf("{\"error\":%q}", msg))

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}
