package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"voice-assistant-be/internal/config"
	"voice-assistant-be/pkg/events"
	pktNats "voice-assistant-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream turn events published by running servers over NATS",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set; servers only publish events when it is")
	}
	log := newCLILogger()
	defer log.Sync()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, log)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	err = sub.Subscribe(ctx, "events.>", "", func(_ context.Context, e events.Event) error {
		p := e.Payload()
		color.New(color.FgHiBlack).Fprintf(out, "%s ", e.Timestamp().Format("15:04:05"))
		switch e.EventType() {
		case events.TypeTurnRecorded:
			color.New(color.FgGreen).Fprintf(out, "%-16s", e.EventType())
			fmt.Fprintf(out, " session=%v intent=%v stage=%v refined=%v\n", p["session_id"], p["intent"], p["stage"], p["refined"])
		default:
			color.New(color.FgYellow).Fprintf(out, "%-16s", e.EventType())
			fmt.Fprintf(out, " session=%v\n", p["session_id"])
		}
		return nil
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
