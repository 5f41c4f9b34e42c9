package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/hisabi-admin/admin"
	"github.com/jrsteele09/hisabi-admin/console"
	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/internal/config"
	"github.com/jrsteele09/hisabi-admin/internal/logging"
	"github.com/jrsteele09/hisabi-admin/resource"
	"github.com/jrsteele09/hisabi-admin/session"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(config.New(), console.New(os.Stdin, os.Stdout, os.Stderr))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		var r renderedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		log.Debug().Err(err).Str("command", args[0]).Msg("command failed")
		return 1
	}
	return 0
}

type app struct {
	cfg   config.Config
	store *session.Store
	api   *admin.API
	svc   *resource.Service
	con   *console.Console
}

func newApp(cfg config.Config, con *console.Console) (*app, error) {
	logging.Setup(cfg.GetEnv(), cfg.GetLogLevel(), con.Err)

	store, err := session.Initialize(session.NewFileRepo(cfg.GetSessionFile()))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	gw, err := gateway.NewAdmin(cfg, store, con)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	api := admin.New(gw, cfg)
	return &app{
		cfg:   cfg,
		store: store,
		api:   api,
		svc:   resource.NewService(api, resource.NewCache(cfg), con, con),
		con:   con,
	}, nil
}

// renderedError marks a failure the console has already shown.
type renderedError struct {
	err error
}

func (r renderedError) Error() string { return r.err.Error() }
func (r renderedError) Unwrap() error { return r.err }

func rendered(err error) error {
	if err == nil {
		return nil
	}
	return renderedError{err: err}
}

func usage() {
	displayAppname(config.EnvVars{}.GetAppName())
	fmt.Fprintln(os.Stderr, "usage: hisabi-admin <command> [flags] [args]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].usage)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
