package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"gatherly/internal/devserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	accessTTL := flag.Duration("access-ttl", 15*time.Minute, "access token lifetime")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	srv := devserver.New(log, devserver.WithAccessTTL(*accessTTL))
	log.Info().Str("addr", *addr).Msg("dev API listening")
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
