// Package console is the terminal presentation of the admin panel: table
// renderers for every page plus the interactive notifier, confirmation
// prompt and login navigator used by cmd/hisabi-admin.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/resource"
	"golang.org/x/term"
)

var (
	_ resource.Notifier  = (*Console)(nil)
	_ resource.Confirmer = (*Console)(nil)
	_ gateway.Navigator  = (*Console)(nil)
)

// Console reads answers from In and writes pages to Out and transient
// notifications to Err.
type Console struct {
	Out io.Writer
	Err io.Writer
	// AssumeYes accepts every confirmation prompt without reading input.
	AssumeYes bool

	mu sync.Mutex
	in io.Reader
	br *bufio.Reader
}

// New returns a console on the given streams. Nil streams default to the
// process stdio.
func New(in io.Reader, out, errOut io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Console{Out: out, Err: errOut, in: in, br: bufio.NewReader(in)}
}

func (c *Console) Success(message string) {
	fmt.Fprintf(c.Err, "✓ %s\n", message)
}

func (c *Console) Error(message string) {
	fmt.Fprintf(c.Err, "✗ %s\n", message)
}

// Navigate is called when the backend rejected the credential. A terminal
// cannot redirect, so the user is told how to sign in again.
func (c *Console) Navigate(route string) {
	if route == gateway.RouteLogin {
		fmt.Fprintln(c.Err, "Your session has ended. Run `hisabi-admin login` to sign in again.")
		return
	}
	fmt.Fprintf(c.Err, "Continue at %s\n", route)
}

// Confirm asks prompt and blocks until a yes/no answer. Anything but y or
// yes declines, as does end of input.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintln(c.Out, prompt)
	if c.AssumeYes {
		fmt.Fprintln(c.Out, "Confirmed with -yes.")
		return true, nil
	}

	type answer struct {
		line string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		line, err := c.ReadLine("Type 'yes' to confirm: ")
		done <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-done:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("[Console Confirm] read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// ReadLine prints prompt and returns the next input line without its
// line terminator.
func (c *Console) ReadLine(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.Out, prompt)
	line, err := c.br.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return line, err
	}
	return line, nil
}

// ReadPassword reads a secret without echo when the input is a terminal
// and falls back to a plain line otherwise.
func (c *Console) ReadPassword(prompt string) (string, error) {
	f, ok := c.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return c.ReadLine(prompt)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.Out, prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.Out)
	if err != nil {
		return "", fmt.Errorf("[Console ReadPassword] %w", err)
	}
	return string(secret), nil
}
