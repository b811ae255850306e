package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/dinebook/dinebook/internal/app"
	"github.com/dinebook/dinebook/internal/config"
	"github.com/dinebook/dinebook/internal/logger"
)

func main() {
	_ = godotenv.Load()

	conf := config.MustLoadConfig()
	l := logger.New(os.Stdout)

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		panic(err)
	}
}
