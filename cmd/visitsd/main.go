package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visits/internal/api"
	"visits/internal/app"
	"visits/internal/backend"
	"visits/internal/config"
	"visits/internal/geo"
	"visits/internal/metrics"
	"visits/internal/request"
	"visits/internal/runtime"
	"visits/internal/sdk"
	"visits/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st, err := store.FromEnv()
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer func() { _ = st.Close() }()

	var geocoder geo.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		g, err := geo.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
		if err != nil {
			log.Fatalf("failed to init geocoder: %v", err)
		}
		geocoder = g
	}

	rt := runtime.New(
		st,
		sdk.NewSimulator(),
		backend.New(cfg.AuthURL, cfg.ClientURL, geocoder),
		backend.NewAccountClient(cfg.AccountURL),
		cfg.DeepLinkTimeout(),
	)
	srv := api.NewServer(rt, st)
	rt.OnChange = func(s app.State) {
		srv.Broker.Publish(api.ScreenEvent{Type: "screen", Screen: app.ToScreen(s)})
	}

	metrics.RegisterDefault()

	ctx := context.Background()
	go rt.Run(ctx)
	go request.NewScheduler(rt.State, rt.Dispatch, cfg.RefreshInterval()).Run(ctx)

	mux := http.NewServeMux()

	// Screen and actions
	mux.HandleFunc("/v1/screen", srv.ScreenHandler)
	mux.HandleFunc("/v1/screen/stream", srv.ScreenStreamHandler)
	mux.HandleFunc("/v1/actions", srv.ActionsHandler)
	mux.HandleFunc("/v1/deeplink", srv.DeepLinkHandler)

	// Debug
	mux.HandleFunc("/v1/state", srv.StateHandler)

	// Health
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":" + cfg.Port

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("visitsd listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
