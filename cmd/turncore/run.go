package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/turncore/cli"
	"github.com/nathoo/turncore/tui"
)

var (
	plain      bool
	scriptFile string
)

var runCmd = &cobra.Command{
	Use:   "run [module_dir...]",
	Short: "Play modules in the terminal viewer",
	Long: `Starts the campaign and opens the terminal viewer, which advances the
engine on a fixed frame tick. Falls back to the line console when stdout
is not a terminal or --plain is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := startGame(args)
		if err != nil {
			return err
		}
		defer g.Close()

		ctx := commandContext(cmd)
		if plain || !isTerminal() {
			c := cli.New(g.session)
			c.Out = cmd.OutOrStdout()
			c.Color = !plain
			c.Run(ctx)
			return nil
		}
		return tui.Run(ctx, g.session)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console [module_dir...]",
	Short: "Play modules through the line console",
	Long: `Reads commands and console script line by line. Each command runs the
engine until it waits for the party again. With --script the lines are
read from a file and echoed, which makes sessions reproducible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := startGame(args)
		if err != nil {
			return err
		}
		defer g.Close()

		c := cli.New(g.session)
		c.Out = cmd.OutOrStdout()
		c.Color = isTerminal()
		if scriptFile != "" {
			f, err := os.Open(scriptFile)
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			c.In = f
			c.EchoInput = true
			c.Color = false
		}
		c.Run(commandContext(cmd))
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [module_dir...]",
	Short: "Load and validate modules without playing",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loadDefs(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d areas, %d actors, %d abilities, %d items, %d scripts\n",
			defs.Game.Title, len(defs.Areas), len(defs.Actors), len(defs.Abilities), len(defs.Items), len(defs.Scripts))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&plain, "plain", false, "use the line console without color")
	consoleCmd.Flags().StringVar(&scriptFile, "script", "", "read input lines from a file")
	rootCmd.AddCommand(runCmd, consoleCmd, checkCmd)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
