package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/dreamjournal/internal/app"
	"github.com/heartmarshall/dreamjournal/internal/config"
	"github.com/heartmarshall/dreamjournal/pkg/ctxutil"
)

// userEnv names the environment variable holding the default user id.
const userEnv = "DREAMSYNC_USER_ID"

var errNoUser = errors.New("user id required: pass --user or set " + userEnv)

type cli struct {
	userID string
	cfg    *config.Config
	log    *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "dreamsync",
		Short:         "Capture, analyze and summarize dreams, online or offline",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = app.NewLogger(cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.userID, "user", os.Getenv(userEnv), "user id the client acts for (env "+userEnv+")")

	root.AddCommand(
		c.processCmd(),
		c.syncCmd(),
		c.queueCmd(),
		c.discardCmd(),
		c.reportCmd(),
		c.dreamsCmd(),
		c.enrichCmd(),
		c.serveCmd(),
		c.migrateCmd(),
	)
	return root
}

// run opens a Client for the duration of fn. The context handed to fn
// carries the user id.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, client *app.Client) error) error {
	userID, err := parseUser(c.userID)
	if err != nil {
		return err
	}
	ctx := ctxutil.NewTrace(ctxutil.WithUserID(cmd.Context(), userID))
	return c.runWithContext(ctx, fn)
}

func (c *cli) runWithContext(ctx context.Context, fn func(ctx context.Context, client *app.Client) error) error {
	client, err := app.New(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			c.log.Error("close client", slog.String("error", err.Error()))
		}
	}()
	return fn(ctx, client)
}

func parseUser(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, errNoUser
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, errNoUser
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
