// Command journal-export writes a gzip-compressed JSON archive of the order
// journal for offline bookkeeping, optionally filtered to a single month.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/domain/order"
	"github.com/xenking/karak-pos/internal/export"
	"github.com/xenking/karak-pos/internal/storage/file"
)

func main() {
	var (
		dataDir string
		month   string
		outDir  string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing the terminal snapshots")
	flag.StringVar(&month, "month", "", "restrict to a month (YYYY-MM); empty exports everything")
	flag.StringVar(&outDir, "out", ".", "directory to write the archive into")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, month, outDir); err != nil {
		slog.Error("journal export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, dataDir, month, outDir string) error {
	store, err := file.New(dataDir, zap.NewNop())
	if err != nil {
		return errors.Wrap(err, "open snapshot store")
	}
	state, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load snapshots")
	}

	journal := order.NewJournal(store, state.Orders, zap.NewNop())
	orders := journal.List(order.Filter{Month: month})
	if len(orders) == 0 {
		slog.Info("no orders matched", slog.String("month", month))
		return nil
	}

	path := filepath.Join(outDir, export.Filename(month))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := export.Write(f, orders); err != nil {
		return errors.Wrap(err, "write archive")
	}

	slog.Info("archive written",
		slog.String("path", path),
		slog.Int("orders", len(orders)),
	)
	return nil
}
