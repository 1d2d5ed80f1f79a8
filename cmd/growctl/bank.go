package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

func newBankCmd() *cobra.Command {
	bank := &cobra.Command{
		Use:   "bank",
		Short: "Inspect quiz bank files",
	}
	bank.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a quiz bank file against the schema and its own references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := quizbank.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d levels defined, %d plants\n", len(b.Levels()), len(b.Plants()))
			return nil
		},
	})
	bank.AddCommand(&cobra.Command{
		Use:   "levels [file]",
		Short: "List the levels of a quiz bank (the built-in bank by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				b   *quizbank.Bank
				err error
			)
			if len(args) == 1 {
				b, err = quizbank.Load(args[0])
			} else {
				b, err = quizbank.Default()
			}
			if err != nil {
				return err
			}
			return printLevels(cmd, b)
		},
	})
	return bank
}

func printLevels(cmd *cobra.Command, b *quizbank.Bank) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tQUESTIONS\tTASKS\tTITLE")
	for l := 1; l <= b.LevelCount(); l++ {
		def, _ := b.Level(l)
		title := def.Title
		if def.Featured {
			title += " (featured)"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", l, len(b.QuestionsFor(l)), len(b.TasksFor(l)), title)
	}
	return w.Flush()
}
