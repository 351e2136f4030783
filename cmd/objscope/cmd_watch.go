package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odvcencio/objscope/pkg/object"
	"github.com/odvcencio/objscope/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Decode objects and re-read HEAD history as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.Debounce.Duration
			}

			w, err := watch.New(r, watch.WithDebounce(debounce))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- w.Run(ctx) }()

			out := cmd.OutOrStdout()
			for ev := range w.Events() {
				if err := printWatchEvent(out, ev, asJSON); err != nil {
					stop()
					<-errc
					return err
				}
			}
			return <-errc
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-reading a changed path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON document per event")
	return cmd
}

type watchRecord struct {
	Event  string         `json:"event"`
	OID    object.OID     `json:"oid,omitempty"`
	Object *object.Object `json:"object,omitempty"`
	Ghosts any            `json:"ghosts,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func printWatchEvent(out io.Writer, ev watch.Event, asJSON bool) error {
	if asJSON {
		rec := watchRecord{Event: ev.Kind.String(), OID: ev.OID, Object: ev.Object}
		if ev.Kind == watch.EventReflog {
			rec.Ghosts = ev.Ghosts
		}
		if ev.Err != nil {
			rec.Error = ev.Err.Error()
		}
		return json.NewEncoder(out).Encode(rec)
	}

	switch ev.Kind {
	case watch.EventObject:
		switch {
		case errors.Is(ev.Err, object.ErrNotFound):
			fmt.Fprintf(out, "%s gone\n", ev.OID)
		case ev.Err != nil:
			fmt.Fprintf(out, "%s could not decode: %v\n", ev.OID, ev.Err)
		default:
			fmt.Fprintf(out, "%s %s %d\n", ev.OID, ev.Object.Kind, ev.Object.Size)
		}
	case watch.EventReflog:
		if ev.Err != nil {
			fmt.Fprintf(out, "reflog could not be read: %v\n", ev.Err)
			return nil
		}
		fmt.Fprintf(out, "reflog %d entries, %d ghost candidates\n", len(ev.Reflog), len(ev.Ghosts))
		if len(ev.Reflog) > 0 {
			fmt.Fprintf(out, "  %s\n", formatReflogEntry(ev.Reflog[0]))
		}
	}
	return nil
}
