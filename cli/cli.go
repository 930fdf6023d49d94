// Package cli provides the line-oriented console driver: it reads commands
// and console script from a reader, advances the engine until it needs
// input again, and prints feedback.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session *Session
	In      io.Reader
	Out     io.Writer
	// Color enables lipgloss styling of output lines.
	Color     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI on stdin and stdout for session.
func New(session *Session) *CLI {
	return &CLI{
		Session: session,
		In:      os.Stdin,
		Out:     os.Stdout,
		Color:   true,
	}
}

// Run shows the intro then loops: prompt, input, dispatch, output. It
// returns when input ends, /quit is given or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) {
	game := c.Session.Engine.Defs.Game
	if game.Intro != "" {
		c.printLine(Line{Text: game.Intro})
		c.printLine(Line{})
	}
	c.printLines(c.Session.Settle())

	scanner := bufio.NewScanner(c.In)
	for ctx.Err() == nil {
		c.prompt()
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()
		if c.EchoInput {
			fmt.Fprintln(c.Out, input)
		}
		out, quit := c.Session.Exec(ctx, input)
		c.printLines(out)
		if quit {
			return
		}
	}
}

func (c *CLI) prompt() {
	p := "> "
	if c.Session.Engine.InCombat() {
		if cur := c.Session.Engine.Current(); cur != nil {
			p = cur.Name() + "> "
		}
	}
	if c.Color {
		p = stylePrompt.Render(p)
	}
	fmt.Fprint(c.Out, p)
}

func (c *CLI) printLines(lines []Line) {
	for _, l := range lines {
		c.printLine(l)
	}
}

func (c *CLI) printLine(l Line) {
	if c.Color {
		fmt.Fprintln(c.Out, Render(l))
		return
	}
	fmt.Fprintln(c.Out, Plain(l))
}
