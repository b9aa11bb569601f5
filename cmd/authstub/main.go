// Command authstub serves a local stand-in for the authentication endpoint so
// the login front can be run without the hosted backend.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"pokedoro/internal/authstub"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = ":8090"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable not set")
	}

	stub := authstub.New([]byte(secret))
	if err := stub.AddUsers(os.Getenv("STUB_USERS")); err != nil {
		log.Fatal().Err(err).Msg("Invalid STUB_USERS")
	}

	mux := http.NewServeMux()
	mux.Handle("/user/login", stub)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("Auth stub listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Auth stub stopped")
	}
}
