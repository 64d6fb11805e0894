// Package cli provides plain terminal I/O and meta-command dispatch for the
// Elysium engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/elysium/engine/energy"
	"github.com/nathoo/elysium/types"
)

// CLI handles line-oriented interaction with the player.
type CLI struct {
	Session   *Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given session.
func New(sess *Session) *CLI {
	return &CLI{
		Session: sess,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run shows the table, then loops: prompt → input → dispatch → output,
// until input ends or the player quits. The prompt carries the energy pool.
func (c *CLI) Run(ctx context.Context) {
	c.printResult(c.Session.Engine.Step("look"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.printNotices()
		if ctx.Err() != nil {
			return
		}
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			r := c.Session.Meta(ctx, input)
			for _, line := range r.Notices {
				c.printSystem(line)
			}
			for _, line := range r.Output {
				c.printLine(line)
			}
			if r.Quit {
				return
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Session.Engine.Step(input)
		c.printResult(result)

		if c.Session.Trace {
			for _, line := range FormatTrace(result) {
				c.printLine(line)
			}
		}
	}
}

// prompt shows the energy pool ahead of the cursor: a ready card as its
// glyph, a tapped one as a dot.
func (c *CLI) prompt() string {
	var b strings.Builder
	for _, en := range c.Session.Engine.Energies() {
		if en.IsTapped {
			b.WriteString("·")
		} else {
			b.WriteString(energy.Glyph(en.Type))
		}
	}
	b.WriteString(" > ")
	return b.String()
}

func (c *CLI) printNotices() {
	for _, n := range c.Session.Notices() {
		c.printSystem(n)
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
