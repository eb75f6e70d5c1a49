package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

// Trigger is the part of the upload trigger the CLI drives.
type Trigger interface {
	HandleSelection(ctx context.Context, files []domain.SelectedFile) bool
	State() domain.State
	InFlight() int
	Wait()
}

// Selector resolves the references of one selection event.
type Selector interface {
	Select(ctx context.Context, refs []string) ([]domain.SelectedFile, error)
}

type CLI struct {
	trigger  Trigger
	selector Selector
	scanner  *bufio.Scanner
	out      io.Writer
}

func New(trigger Trigger, selector Selector, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		trigger:  trigger,
		selector: selector,
		scanner:  bufio.NewScanner(in),
		out:      out,
	}
}

// Run reads commands until quit, end of input or ctx is done.
func (c *CLI) Run(ctx context.Context) error {
	c.printHelp()

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(c.out, "trigger> ")
		if !c.scanner.Scan() {
			break
		}

		parts := strings.Fields(c.scanner.Text())
		if len(parts) == 0 {
			continue
		}

		command, args := parts[0], parts[1:]
		switch command {
		case "select", "s":
			c.Select(ctx, args)
		case "status":
			c.printStatus()
		case "wait":
			c.trigger.Wait()
			c.printStatus()
		case "help":
			c.printHelp()
		case "quit", "exit", "q":
			fmt.Fprintln(c.out, "Bye!")
			return nil
		default:
			fmt.Fprintf(c.out, "Unexpected command: %s. Type 'help' to get full list of commands.\n", command)
		}
	}
	return c.scanner.Err()
}

// Select handles one selection event. It reports whether an upload started.
func (c *CLI) Select(ctx context.Context, refs []string) bool {
	files, err := c.selector.Select(ctx, refs)
	if err != nil {
		fmt.Fprintf(c.out, "ERROR: %v\n", err)
		return false
	}
	if !c.trigger.HandleSelection(ctx, files) {
		fmt.Fprintln(c.out, "Nothing selected.")
		return false
	}
	fmt.Fprintf(c.out, "Uploading %s...\n", files[0].Name)
	return true
}

func (c *CLI) printStatus() {
	fmt.Fprintf(c.out, "State: %s (%d in flight)\n", c.trigger.State(), c.trigger.InFlight())
}

func (c *CLI) printHelp() {
	fmt.Fprintln(c.out, "Available commands:")
	fmt.Fprintln(c.out, "  select <file> [file...]   - Upload the first file as the current image")
	fmt.Fprintln(c.out, "  status                    - Show uploads in flight")
	fmt.Fprintln(c.out, "  wait                      - Wait for uploads in flight to settle")
	fmt.Fprintln(c.out, "  help                      - Show this help message")
	fmt.Fprintln(c.out, "  quit/exit/q               - Exit")
}
