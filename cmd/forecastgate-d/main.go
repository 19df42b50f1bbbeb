package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mleray/forecastgate/pkg/api"
	"github.com/mleray/forecastgate/pkg/cache"
	"github.com/mleray/forecastgate/pkg/orchestrator"
	"github.com/mleray/forecastgate/pkg/ratelimit"
	"github.com/mleray/forecastgate/pkg/store"
	"github.com/mleray/forecastgate/pkg/upstream"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"forecastgate-d"}`)

	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf(`{"level":"fatal","msg":"failed_to_load_config","error":"%v"}`+"\n", err)
		os.Exit(1)
	}

	st, err := store.NewStore(config.DBPath)
	if err != nil {
		fmt.Printf(`{"level":"fatal","msg":"failed_to_init_store","error":"%v"}`+"\n", err)
		os.Exit(1)
	}
	fmt.Printf(`{"level":"info","msg":"store_initialized","path":"%s"}`+"\n", config.DBPath)

	var resultCache cache.ResultCache
	switch config.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		resultCache = cache.NewRedisCache(client, config.CacheTTL)
		fmt.Printf(`{"level":"info","msg":"cache_initialized","backend":"redis","addr":"%s"}`+"\n", config.RedisAddr)
	default:
		resultCache = cache.NewMemoryCache(config.CacheTTL)
		fmt.Println(`{"level":"info","msg":"cache_initialized","backend":"memory"}`)
	}

	limiter := ratelimit.NewLimiter(config.Cooldown, config.SessionMax)

	// Without an upstream URL the daemon runs against the built-in
	// mock generator, which is what local dashboard development uses.
	var generator upstream.Generator
	var resetter upstream.Resetter
	if config.UpstreamURL != "" {
		httpGen := upstream.NewHTTPGenerator(config.UpstreamURL, config.UpstreamToken)
		generator = httpGen
		resetter = httpGen
		fmt.Printf(`{"level":"info","msg":"upstream_configured","url":"%s"}`+"\n", config.UpstreamURL)
	} else {
		mockGen := upstream.NewMockGenerator()
		generator = mockGen
		resetter = mockGen
		fmt.Println(`{"level":"info","msg":"upstream_mock_enabled"}`)
	}

	orc := orchestrator.New(resultCache, limiter, generator, st)
	coordinator := orchestrator.NewQuotaResetCoordinator(resetter, limiter)
	server := api.NewServer(orc, coordinator, st, config.Addr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)
	case err := <-serverErr:
		if err != nil {
			fmt.Printf(`{"level":"fatal","msg":"server_failed","error":"%v"}`+"\n", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stop_server","error":"%v"}`+"\n", err)
	}

	if err := st.Close(); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_close_store","error":"%v"}`+"\n", err)
	} else {
		fmt.Println(`{"level":"info","msg":"store_closed"}`)
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
}
