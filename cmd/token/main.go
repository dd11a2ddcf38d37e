package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"tikaparse/internal/auth"
	"tikaparse/internal/config"
)

func main() {
	client := pflag.StringP("client", "c", "", "client name recorded as the document uploader (required)")
	ttl := pflag.Duration("ttl", 0, "token lifetime; defaults to TIKAPARSE_JWT_TOKEN_EXPIRY")
	pflag.Parse()

	if *client == "" {
		fmt.Fprintln(os.Stderr, "Usage: token --client NAME [--ttl DURATION]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	token, expiresAt, err := auth.NewTokenManager(&cfg.JWT).Issue(*client, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
