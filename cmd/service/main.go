package main

import (
	"context"
	"errors"
	"flag"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/placebook/internal/app"
	"github.com/dropDatabas3/placebook/internal/cache"
	"github.com/dropDatabas3/placebook/internal/config"
	"github.com/dropDatabas3/placebook/internal/files"
	httpserver "github.com/dropDatabas3/placebook/internal/http"
	authctl "github.com/dropDatabas3/placebook/internal/http/controllers/auth"
	healthctl "github.com/dropDatabas3/placebook/internal/http/controllers/health"
	placesctl "github.com/dropDatabas3/placebook/internal/http/controllers/places"
	usersctl "github.com/dropDatabas3/placebook/internal/http/controllers/users"
	jwtx "github.com/dropDatabas3/placebook/internal/jwt"
	"github.com/dropDatabas3/placebook/internal/oauth"
	"github.com/dropDatabas3/placebook/internal/rate"
	pgdriver "github.com/dropDatabas3/placebook/internal/store/pg"
	migrations "github.com/dropDatabas3/placebook/migrations/postgres"
)

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// buildLimiter usa redis si el cache corre sobre redis; si no, fixed window
// en memoria (un solo nodo).
func buildLimiter(c cache.Client, cfg *config.Config) rate.Limiter {
	if r, ok := c.(interface{ Raw() *rdb.Client }); ok {
		return rate.NewRedisLimiter(r.Raw(), "rl:", cfg.Rate.MaxRequests, cfg.RateWindowDuration())
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindowDuration())
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		if fileExists("configs/config.yaml") {
			cfgPath = "configs/config.yaml"
		} else {
			cfgPath = "configs/config.example.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	// ───── Storage ─────
	store, err := pgdriver.New(ctx, cfg.Storage.DSN, pgdriver.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("store open: %v", err)
	}
	defer store.Close()

	if cfg.Flags.Migrate {
		if err := store.RunMigrations(ctx, migrations.FS); err != nil {
			log.Fatalf("migrations: %v", err)
		}
	}

	// ───── Cache ─────
	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Host:     cfg.Cache.Redis.Host,
		Port:     cfg.Cache.Redis.Port,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer cacheClient.Close()

	// ───── Archivos ─────
	fileStore, err := files.New(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("files: %v", err)
	}

	// ───── OAuth ─────
	providers := make([]oauth.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, oauth.Provider{
			Name:         p.Name,
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  p.RedirectURL,
			TokenURL:     p.TokenURL,
			UserinfoURL:  p.UserinfoURL,
		})
	}
	registry, err := oauth.NewRegistry(providers)
	if err != nil {
		log.Fatalf("oauth: %v", err)
	}
	log.Printf(`{"level":"info","msg":"oauth_providers","providers":%d}`, len(registry.Names()))

	// ───── JWT ─────
	issuer := jwtx.NewIssuer(cfg.JWT.Secret, cfg.AccessTTLDuration())

	// ───── Rate limit ─────
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = buildLimiter(cacheClient, cfg)
	}

	// ───── Contenedor + controllers ─────
	container := &app.Container{
		Cfg:      cfg,
		Accounts: store,
		Places:   store,
		Cache:    cacheClient,
		Files:    fileStore,
		Issuer:   issuer,
		OAuth:    oauth.NewClient(registry),
	}

	callback := authctl.NewCallbackController(container)
	me := usersctl.NewMeController(container)
	placeLimits := placesctl.Limits{
		MaxBodyMB:   cfg.Uploads.MaxBodyMB,
		MaxImageMB:  cfg.Uploads.MaxImageMB,
		MaxPerPlace: cfg.Uploads.MaxPerPlace,
	}
	placesController := placesctl.NewController(container, store, placeLimits)
	imagesController := placesctl.NewImagesController(store, fileStore)
	readyz := healthctl.NewReadyzController(store, cacheClient)

	metricsHandler, err := httpserver.RegisterMetrics(httpserver.MetricsConfig{
		Pool: store.Pool,
	})
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	handler := httpserver.NewRouter(httpserver.Routes{
		AuthCallback: callback.Callback,
		MeGet:        me.Get,
		MeDelete:     me.Delete,
		PlacesList:   placesController.List,
		PlacesCreate: placesController.Create,
		PlaceGet:     placesController.Get,
		PlaceUpdate:  placesController.Update,
		PlaceDelete:  placesController.Delete,
		ImageGet:     imagesController.Get,
		Readyz:       readyz.Readyz,
		Metrics:      metricsHandler,
	}, httpserver.RouterConfig{
		Issuer:      issuer,
		Limiter:     limiter,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	// ───── Arranque + shutdown ─────
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Printf(`{"level":"info","msg":"http_listen","addr":"%s"}`, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf(`{"level":"info","msg":"shutdown_started"}`)
		return httpserver.Shutdown(srv, 15*time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("http: %v", err)
	}
	log.Printf(`{"level":"info","msg":"shutdown_complete"}`)
}
