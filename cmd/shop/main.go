package main

import (
	"context"
	"time"

	"github.com/Roberto031094/Backend1-Entrega/config"
	"github.com/Roberto031094/Backend1-Entrega/internal/app"
	"github.com/Roberto031094/Backend1-Entrega/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	shop := app.New(sigCtx, cfg)

	shop.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	shop.Close(ctx)
}
