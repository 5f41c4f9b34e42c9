package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/hisabi-admin/console"
	"github.com/jrsteele09/hisabi-admin/gateway"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/resource"
	"github.com/jrsteele09/hisabi-admin/session"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":        {usage: "[-u username] sign in and store the credential", run: login},
		"logout":       {usage: "forget the stored credential", run: logout},
		"status":       {usage: "show who is signed in", run: status},
		"stats":        {usage: "dashboard totals", run: protected(stats)},
		"users":        {usage: "[-page n] [-search text] list users", run: protected(users)},
		"user":         {usage: "<id> user detail", run: protected(user)},
		"delete-user":  {usage: "[-yes] <id> delete a user and their data", run: protected(deleteUser)},
		"groups":       {usage: "[-page n] [-search text] list groups", run: protected(groups)},
		"group":        {usage: "<id> group detail", run: protected(group)},
		"delete-group": {usage: "[-yes] <id> delete a group", run: protected(deleteGroup)},
		"logs":         {usage: "[-page n] [-type t] [-from date] [-to date] [-user id] activity log", run: protected(logs)},
		"content":      {usage: "<kind> list|create|update|delete ... manage " + strings.Join(contentKindNames(), ", "), run: protected(content)},
		"leaderboard":  {usage: "<metric> [-type streak] ranked users for a metric", run: protected(leaderboard)},
		"records":      {usage: "<metric> tracking records for prayer-tracking, quran-reading or quran-memorization", run: protected(records)},
	}
}

var errNotSignedIn = errors.New("not signed in")

// protected guards a command the way a protected route does: without a
// credential the user is sent to login and nothing is requested.
func protected(run func(ctx context.Context, a *app, args []string) error) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if !a.store.Authenticated() {
			a.con.Navigate(gateway.RouteLogin)
			return rendered(errNotSignedIn)
		}
		return run(ctx, a, args)
	}
}

// parse accepts flags before and after positional arguments and returns
// the positionals in order.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func exactlyOne(name string, positional []string) (string, error) {
	if len(positional) != 1 || positional[0] == "" {
		return "", fmt.Errorf("%s: expected exactly one argument, usage: hisabi-admin %s %s", name, name, commands[name].usage)
	}
	return positional[0], nil
}

func login(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login", a.con.Err)
	username := fs.String("u", "", "admin username")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	displayAppname(a.cfg.GetAppName())
	if *username == "" {
		name, err := a.con.ReadLine("Username: ")
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		*username = strings.TrimSpace(name)
	}
	password, err := a.con.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	token, err := a.api.Login(ctx, *username, password)
	switch {
	case errors.Is(err, apperrors.ErrRequiredField):
		a.con.Error("Username and password are required")
		return rendered(err)
	case err != nil:
		a.con.Error(gateway.Message(err, "Login failed"))
		return rendered(err)
	}
	if err := a.store.Login(token); err != nil {
		return err
	}
	a.con.Success("Signed in as " + *username)
	return nil
}

func logout(_ context.Context, a *app, _ []string) error {
	if err := a.store.Logout(); err != nil {
		return err
	}
	a.con.Success("Signed out")
	return nil
}

func status(_ context.Context, a *app, _ []string) error {
	if !a.store.Authenticated() {
		fmt.Fprintln(a.con.Out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.con.Out, "Signed in to %s\n", a.cfg.GetAPIURL())
	claims, ok := session.PeekClaims(a.store.Credential())
	if !ok {
		return nil
	}
	if claims.Subject != "" {
		fmt.Fprintf(a.con.Out, "Subject:  %s\n", claims.Subject)
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid"
		if !claims.ExpiresAt.After(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.con.Out, "Expires:  %s (%s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return nil
}

func stats(ctx context.Context, a *app, _ []string) error {
	view, err := a.svc.Stats().Load(ctx)
	console.Stats(a.con.Out, view)
	return rendered(err)
}

func users(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("users", a.con.Err)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "match name or email")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	list := a.svc.Users()
	list.SetFilter(resource.FilterSearch, *search)
	list.SetPage(*page)
	view, err := list.Load(ctx)
	console.Users(a.con.Out, view)
	return rendered(err)
}

func user(ctx context.Context, a *app, args []string) error {
	positional, err := parse(newFlagSet("user", a.con.Err), args)
	if err != nil {
		return err
	}
	id, err := exactlyOne("user", positional)
	if err != nil {
		return err
	}
	view, err := a.svc.User(id).Load(ctx)
	console.User(a.con.Out, view)
	return rendered(err)
}

func deleteUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete-user", a.con.Err)
	fs.BoolVar(&a.con.AssumeYes, "yes", false, "skip the confirmation prompt")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := exactlyOne("delete-user", positional)
	if err != nil {
		return err
	}

	view, err := a.svc.User(id).Load(ctx)
	if err != nil {
		console.User(a.con.Out, view)
		return rendered(err)
	}
	return declined(a, a.svc.DeleteUser(ctx, id, view.Data.User.Name))
}

func groups(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("groups", a.con.Err)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "match group name")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	list := a.svc.Groups()
	list.SetFilter(resource.FilterSearch, *search)
	list.SetPage(*page)
	view, err := list.Load(ctx)
	console.Groups(a.con.Out, view)
	return rendered(err)
}

func group(ctx context.Context, a *app, args []string) error {
	positional, err := parse(newFlagSet("group", a.con.Err), args)
	if err != nil {
		return err
	}
	id, err := exactlyOne("group", positional)
	if err != nil {
		return err
	}
	view, err := a.svc.Group(id).Load(ctx)
	console.Group(a.con.Out, view)
	return rendered(err)
}

func deleteGroup(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete-group", a.con.Err)
	fs.BoolVar(&a.con.AssumeYes, "yes", false, "skip the confirmation prompt")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := exactlyOne("delete-group", positional)
	if err != nil {
		return err
	}

	view, err := a.svc.Group(id).Load(ctx)
	if err != nil {
		console.Group(a.con.Out, view)
		return rendered(err)
	}
	return declined(a, a.svc.DeleteGroup(ctx, id, view.Data.Group.Name))
}

func logs(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("logs", a.con.Err)
	page := fs.Int("page", 1, "page number")
	activityType := fs.String("type", "", "activity type: "+joinActivityTypes())
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	userID := fs.String("user", "", "user id")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *activityType != "" && !models.ActivityType(*activityType).Valid() {
		return fmt.Errorf("unknown activity type %q, expected one of %s", *activityType, joinActivityTypes())
	}
	for _, d := range []string{*from, *to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}

	list := a.svc.ActivityLogs()
	list.SetFilter(resource.FilterActivityType, *activityType)
	list.SetFilter(resource.FilterStartDate, *from)
	list.SetFilter(resource.FilterEndDate, *to)
	list.SetFilter(resource.FilterUserID, *userID)
	list.SetPage(*page)
	view, err := list.Load(ctx)
	console.ActivityLogs(a.con.Out, view)
	return rendered(err)
}

func leaderboard(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("leaderboard", a.con.Err)
	streak := fs.String("type", "", "streak type for the streaks metric: "+joinStreakTypes())
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	name, err := exactlyOne("leaderboard", positional)
	if err != nil {
		return err
	}
	metric := models.Metric(name)
	if !metric.Valid() {
		return fmt.Errorf("unknown metric %q, expected one of %s", name, joinMetrics())
	}
	if *streak != "" && !models.StreakType(*streak).Valid() {
		return fmt.Errorf("unknown streak type %q, expected one of %s", *streak, joinStreakTypes())
	}

	view, err := a.svc.Leaderboard(metric, models.StreakType(*streak)).Load(ctx)
	console.Leaderboard(a.con.Out, metric, view)
	return rendered(err)
}

func records(ctx context.Context, a *app, args []string) error {
	positional, err := parse(newFlagSet("records", a.con.Err), args)
	if err != nil {
		return err
	}
	name, err := exactlyOne("records", positional)
	if err != nil {
		return err
	}

	switch models.Metric(name) {
	case models.MetricPrayerTracking:
		view, err := a.svc.PrayerRecords().Load(ctx)
		console.PrayerRecords(a.con.Out, view)
		return rendered(err)
	case models.MetricQuranReading:
		view, err := a.svc.QuranReadingRecords().Load(ctx)
		console.QuranReadingRecords(a.con.Out, view)
		return rendered(err)
	case models.MetricQuranMemorization:
		view, err := a.svc.QuranMemorizationRecords().Load(ctx)
		console.QuranMemorizationRecords(a.con.Out, view)
		return rendered(err)
	}
	return fmt.Errorf("metric %q has no records table", name)
}

// declined turns a refused confirmation into a quiet no-op. Mutation
// failures have already been reported by the notifier.
func declined(a *app, err error) error {
	if errors.Is(err, apperrors.ErrConfirmationDeclined) {
		fmt.Fprintln(a.con.Out, "Cancelled.")
		return nil
	}
	return rendered(err)
}

func joinActivityTypes() string {
	names := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinMetrics() string {
	names := make([]string, len(models.Metrics))
	for i, m := range models.Metrics {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func joinStreakTypes() string {
	names := make([]string, len(models.StreakTypes))
	for i, s := range models.StreakTypes {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
