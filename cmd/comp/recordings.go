package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vango-dev/comp/internal/config"
	"github.com/vango-dev/comp/pkg/recorder"
)

func recordingsCmd(load func() (*config.Config, error)) *cobra.Command {
	var dbPath string

	open := func() (*recorder.BoltStore, error) {
		path := dbPath
		if path == "" {
			cfg, err := load()
			if err != nil {
				return nil, err
			}
			path = cfg.DBPath()
		}
		return recorder.OpenBoltStore(path)
	}

	cmd := &cobra.Command{
		Use:     "recordings",
		Aliases: []string{"rec"},
		Short:   "Manage saved recordings",
		Long: `List, show and delete recordings saved by the session recorder.

Examples:
  comp recordings list
  comp recordings show shop-050324140709 --db recordings.db
  comp recordings delete shop-050324140709`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Recordings database (default from config)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved recordings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				return listRecordings(cmd.Context(), store, cmd.OutOrStdout(), time.Now())
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show the steps of a recording",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				return showRecording(cmd.Context(), store, args[0], cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a recording",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				success("Deleted %s", args[0])
				return nil
			},
		},
	)

	return cmd
}

func listRecordings(ctx context.Context, store recorder.Store, w io.Writer, now time.Time) error {
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		info("No recordings")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "session", "steps", "components", "size", "last step"})
	for _, e := range entries {
		data, err := store.Load(ctx, e.ID)
		if err != nil {
			return err
		}
		session, err := recorder.Decode(data)
		if err != nil {
			warn("%s is not a valid recording: %v", e.ID, err)
			continue
		}
		last := "-"
		if n := len(session.Steps); n > 0 {
			last = humanize.RelTime(session.Steps[n-1].Timestamp, now, "ago", "from now")
		}
		table.Append([]string{
			e.ID,
			session.Name,
			humanize.Comma(int64(len(session.Steps))),
			strconv.Itoa(len(session.Components)),
			humanize.Bytes(uint64(e.Size)),
			last,
		})
	}
	table.Render()
	return nil
}

func showRecording(ctx context.Context, store recorder.Store, id string, w io.Writer) error {
	data, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("no recording %q", id)
	}
	session, err := recorder.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Session %s, %d steps\n", session.Name, len(session.Steps))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "time", "component", "action", "args"})
	for i, step := range session.Steps {
		args, err := json.Marshal(step.Args)
		if err != nil {
			return err
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			step.Timestamp.Format(time.RFC3339),
			step.Component,
			step.Action,
			string(args),
		})
	}
	table.Render()
	return nil
}
