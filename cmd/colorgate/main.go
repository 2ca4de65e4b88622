// Command colorgate runs the two-color admission demonstration.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/knzm/go-colorgate/cmd/colorgate/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
