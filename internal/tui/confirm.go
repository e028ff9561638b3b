package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrDeclined is returned when the operator chooses not to continue.
var ErrDeclined = errors.New("operator declined to continue")

// HuhConfirmer pauses a run until the operator chooses to continue. On a
// terminal it shows a confirm form; otherwise it waits for a line on In.
type HuhConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func NewHuhConfirmer() *HuhConfirmer {
	return &HuhConfirmer{In: os.Stdin, Out: os.Stderr}
}

func (c *HuhConfirmer) Confirm(ctx context.Context, message string) error {
	if f, ok := c.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return c.confirmForm(ctx, message)
	}
	return c.waitLine(ctx, message)
}

func (c *HuhConfirmer) confirmForm(ctx context.Context, message string) error {
	confirmed := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Continue").
				Negative("Abort").
				Value(&confirmed),
		),
	).WithInput(c.In).WithOutput(c.Out).RunWithContext(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrDeclined
	}
	return nil
}

// waitLine reads one line from In. A read cannot be interrupted, so on
// cancellation In is closed when it is an io.Closer, which releases the
// reader. Stdin is never closed; its reader stays blocked until the next
// line or EOF.
func (c *HuhConfirmer) waitLine(ctx context.Context, message string) error {
	fmt.Fprintf(c.Out, "%s\nPress Enter to continue...\n", message)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(c.In).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		if cl, ok := c.In.(io.Closer); ok && c.In != os.Stdin {
			_ = cl.Close()
			<-done
		}
		return ctx.Err()
	case err := <-done:
		if errors.Is(err, io.EOF) {
			return ErrDeclined
		}
		return err
	}
}
