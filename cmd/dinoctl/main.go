package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yeremiapane/dino-reserve/cli"
	"github.com/yeremiapane/dino-reserve/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(&cli.Env{}).ExecuteContext(ctx); err != nil {
		utils.ErrorLogger.Error(err)
		stop()
		os.Exit(1)
	}
}
