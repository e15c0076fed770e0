// Command streakline tracks reflection streaks over a journal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/streakline/cmd"
	"github.com/huangsam/streakline/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetRootContext(ctx)
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	stop()
	if perr := cmd.StopProfiling(); perr != nil {
		_, _ = fmt.Fprintln(os.Stderr, "⚠️ ", perr)
	}
	iocache.CloseStores()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
