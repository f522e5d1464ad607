package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sif/progressive/cluster"
	"github.com/spf13/cobra"
)

func runWorkerCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ds, err := openDataset(cfg)
	if err != nil {
		return err
	}
	w, err := cluster.CreateWorker(ds, &cluster.WorkerOptions{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Logger: cfg.Logger("worker"),
	})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		w.GracefulStop()
	}()
	return w.Start()
}
