package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AnimationBenoit/mygrowverse/internal/config"
	"github.com/AnimationBenoit/mygrowverse/internal/daymarker"
	"github.com/AnimationBenoit/mygrowverse/internal/progress"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

func newProgressCmd(open repoOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or reset a player's stored progress",
	}

	show := &cobra.Command{
		Use:   "show <uid>",
		Short: "Print a player's progress document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			repo, closeRepo, err := open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			doc, err := repo.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return printDocument(cmd, doc, format)
		},
	}
	show.Flags().StringP("output", "o", "yaml", "output format: yaml or json")

	reset := &cobra.Command{
		Use:   "reset <uid>",
		Short: "Overwrite a player's progress with a fresh start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("refusing to reset %s without --yes", args[0])
			}
			game, err := config.LoadGame()
			if err != nil {
				return err
			}
			loc, err := game.Location()
			if err != nil {
				return err
			}
			bank, err := quizbank.Open(game.QuizBankPath)
			if err != nil {
				return err
			}
			markers, closeMarkers, err := openMarkers(game.DayMarkerPath)
			if err != nil {
				return err
			}
			defer closeMarkers()
			repo, closeRepo, err := open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeRepo()

			today := progression.DateOf(time.Now().In(loc))
			snap, err := progress.NewSyncAdapter(repo, markers, bank, nil).Reset(cmd.Context(), args[0], today)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s to level %d on %s\n", args[0], snap.Level, snap.LastTaskDate)
			return nil
		},
	}
	reset.Flags().Bool("yes", false, "confirm the reset")

	cmd.AddCommand(show, reset)
	return cmd
}

// openMarkers opens the server's day marker file so a reset also replaces the
// player's local marker. A missing file means there is nothing to replace.
func openMarkers(path string) (progress.DayMarkers, func() error, error) {
	noop := func() error { return nil }
	if path == "" {
		return nil, noop, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, noop, nil
	}
	store, err := daymarker.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open day markers: %w", err)
	}
	return store, store.Close, nil
}

func printDocument(cmd *cobra.Command, doc progress.Document, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
