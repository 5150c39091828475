package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/logs"
	"github.com/iliyamo/salon-booking/internal/queue"
)

func newConsumeCommand() *cobra.Command {
	var eventLog string

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Write booking events from RabbitMQ to the event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadLogConfig()
			log := logs.New(cfg, os.Getenv("APP_ENV"))
			sink, closer := logs.NewFile(eventLog, cfg)
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("booking-consumer: starting", "event_log", eventLog)
			err := queue.NewConsumer(config.BrokerURL(), sink, log).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&eventLog, "event-log", "logs/booking.log", "rotating file the events are written to")
	return cmd
}
