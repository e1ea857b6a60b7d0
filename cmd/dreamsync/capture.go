package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/dreamjournal/internal/app"
	"github.com/heartmarshall/dreamjournal/internal/domain"
	"github.com/heartmarshall/dreamjournal/internal/service/capture"
)

func (c *cli) processCmd() *cobra.Command {
	var (
		userContext string
		recordedAt  string
		duration    int
	)

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Capture a recording and analyze it",
		Long: `Copies the recording into the audio directory, queues it and runs the
analysis. While offline, or when analysis fails, the capture stays queued
and can be retried with "dreamsync sync".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseRecordedAt(recordedAt, time.Now())
			if err != nil {
				return err
			}
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				location, err := client.ImportAudio(args[0])
				if err != nil {
					return err
				}

				input := capture.ProcessDreamInput{
					AudioLocation:   location,
					DurationSeconds: duration,
					RecordedAt:      at,
				}
				if userContext != "" {
					input.UserContext = &userContext
				}

				rec, err := client.ProcessDream(ctx, input)
				switch {
				case errors.Is(err, domain.ErrOffline):
					fmt.Fprintln(cmd.OutOrStdout(), "offline: capture queued, run \"dreamsync sync\" when back online")
					return nil
				case errors.Is(err, domain.ErrCaptureInProgress):
					fmt.Fprintln(cmd.OutOrStdout(), "another capture is being analyzed: capture queued")
					return nil
				case err != nil:
					return fmt.Errorf("capture kept in queue: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), rec)
			})
		},
	}

	cmd.Flags().StringVar(&userContext, "context", "", "what was going on in your life (optional)")
	cmd.Flags().StringVar(&recordedAt, "recorded-at", "", "recording time, RFC 3339 (default now)")
	cmd.Flags().IntVar(&duration, "duration", 0, "recording length in seconds")
	return cmd
}

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued remote writes and retry pending captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				if !client.Online() {
					return domain.ErrOffline
				}

				ops := client.SyncQueue(ctx)
				captures, syncErr := client.SyncPendingDreams(ctx)

				report := syncReport{
					Operations: operationSummary{Applied: ops.Applied, Failed: ops.Failed, Evicted: ops.Evicted},
					Captures: captureSummary{
						Persisted: captures.Persisted,
						Recovered: captures.Recovered,
						Failed:    captures.Failed,
						Remaining: captures.Remaining,
					},
				}
				for _, err := range captures.Errors {
					report.Captures.Errors = append(report.Captures.Errors, err.Error())
				}
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}

				if syncErr != nil {
					return syncErr
				}
				if captures.Failed > 0 {
					return fmt.Errorf("%d capture(s) still pending", captures.Failed)
				}
				return nil
			})
		},
	}
}

type syncReport struct {
	Operations operationSummary `json:"operations"`
	Captures   captureSummary   `json:"captures"`
}

type operationSummary struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Evicted int `json:"evicted"`
}

type captureSummary struct {
	Persisted int      `json:"persisted"`
	Recovered int      `json:"recovered"`
	Failed    int      `json:"failed"`
	Remaining int      `json:"remaining"`
	Errors    []string `json:"errors,omitempty"`
}

func (c *cli) queueCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the device-local queues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				lengths, err := client.GetQueueLength(ctx)
				if err != nil {
					return err
				}
				if !list {
					return printJSON(cmd.OutOrStdout(), lengths)
				}

				pending, err := client.ListPending(ctx)
				if err != nil {
					return err
				}
				ops, err := client.ListOperations(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), struct {
					Captures   []domain.QueuedCapture   `json:"pending_captures"`
					Operations []domain.QueuedOperation `json:"offline_operations"`
				}{pending, ops})
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list queued items instead of counts")
	return cmd
}

func (c *cli) discardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <capture-id>",
		Short: "Drop a pending capture and delete its audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				if err := client.Discard(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "discarded %s\n", args[0])
				return nil
			})
		},
	}
}

// parseRecordedAt reads an RFC 3339 time; empty means now.
func parseRecordedAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --recorded-at %q: %w", raw, err)
	}
	return t, nil
}
