// Command matchd runs the matching engine behind the HTTP embedding
// layer in internal/api: construct the engine, then start the server.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/lobmatch/lobmatch/internal/api"
	"github.com/lobmatch/lobmatch/internal/engine"
)

func main() {
	logLevel := envOrDefault("MATCHD_LOG_LEVEL", "info")
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid MATCHD_LOG_LEVEL %q: %v\n", logLevel, err)
		os.Exit(1)
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).With().Timestamp().Logger()

	log.Info().Msg("initializing the matching engine")
	eng := engine.New()

	srv := api.NewServer(eng, log)

	addr := envOrDefault("MATCHD_ADDR", ":8080")
	log.Info().Str("addr", addr).Msg("starting api server")
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
