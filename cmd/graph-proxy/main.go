// Command graph-proxy exposes the Graph API client over HTTP, with
// health, readiness and Prometheus metrics endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/socialgraph/graph-api-client/pkg/graph"
	"github.com/socialgraph/graph-api-client/pkg/logging"
)

func main() {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")
	graphURL := getEnv("GRAPH_URL", graph.DefaultURL)
	accessToken := os.Getenv("ACCESS_TOKEN")
	redisURL := os.Getenv("REDIS_URL")

	cfg := graph.DefaultConfig(accessToken)
	cfg.URL = graphURL

	// Redis is optional; without it the proxy runs uncached.
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cfg.Redis = redisClient
		log.Info().Str("redis_url", redisURL).Msg("Connected to Redis")
	}

	client, err := graph.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Graph client")
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/graph/", graphHandler(client))

	addr := ":" + port
	log.Info().Str("addr", addr).Str("graph_url", graphURL).Msg("Starting graph proxy")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness; with redis configured it requires a
// successful ping.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// graphHandler proxies GET requests to the Graph API.
// Example: /graph/me/feed?limit=25 -> GET me/feed with limit=25.
func graphHandler(client *graph.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/graph/")

		params := graph.Params{}
		for key, values := range r.URL.Query() {
			if len(values) == 1 {
				params[key] = values[0]
			} else {
				params[key] = values
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := client.Get(ctx, path, params)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		switch res := result.(type) {
		case graph.Data:
			json.NewEncoder(w).Encode(res.Value)
		case graph.Raw:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, res.Text)
		default:
			http.Error(w, "unexpected result", http.StatusBadGateway)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	var transportErr *graph.TransportError
	if errors.As(err, &transportErr) {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	var oauthErr *graph.OAuthError
	if errors.As(err, &oauthErr) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var svcErr *graph.ServiceError
	if errors.As(err, &svcErr) {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
