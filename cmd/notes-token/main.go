// Package main выпускает bearer токены для службы заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"securenotes/internal/notes/adapters/services"
	"securenotes/internal/notes/config"
	"securenotes/pkg/logger"
)

func main() {
	var (
		subject string
		ttl     time.Duration
		envFile string
	)
	pflag.StringVarP(&subject, "subject", "s", "", "principal identifier placed into the sub claim (required)")
	pflag.DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to NOTES_JWT_TOKEN_TTL")
	pflag.StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment")
	pflag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "--subject is required")
		pflag.Usage()
		os.Exit(2)
	}

	ctx := logger.NewContext(context.Background(), logger.NewNop())

	cfg, err := config.LoadJWT(ctx, envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}

	issuer := services.NewJWT(cfg.Secret, services.JWTOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	})
	token, err := issuer.GenerateAccessToken(ctx, subject, ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
