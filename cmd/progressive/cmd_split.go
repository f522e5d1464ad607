package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sif/progressive/split"
	"github.com/spf13/cobra"
)

func runSplitCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	opts := &split.Options{
		Inputs:    args[1:],
		OutputDir: args[0],
		Logger:    cfg.Logger("split"),
	}
	if opts.NumRows, err = flags.GetInt("num-rows"); err != nil {
		return err
	}
	if opts.NumBatches, err = flags.GetInt("num-batches"); err != nil {
		return err
	}
	if opts.Fields, err = flags.GetStringSlice("fields"); err != nil {
		return err
	}
	if opts.Shuffle, err = flags.GetBool("shuffle"); err != nil {
		return err
	}
	if opts.Compress, err = flags.GetBool("compress"); err != nil {
		return err
	}
	if opts.InferTypes, err = flags.GetBool("infer-types"); err != nil {
		return err
	}
	seed, err := flags.GetInt64("seed")
	if err != nil {
		return err
	}
	if seed != 0 {
		opts.Seed = &seed
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = split.Split(ctx, opts)
	return err
}
