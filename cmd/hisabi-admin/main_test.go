package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/hisabi-admin/console"
	"github.com/jrsteele09/hisabi-admin/internal/config"
	"github.com/jrsteele09/hisabi-admin/mockserver"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*app
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func setupTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	return setupTestAppReader(t, strings.NewReader(input))
}

func setupTestAppReader(t *testing.T, input io.Reader) *testApp {
	t.Helper()

	mock, err := mockserver.New("TEST", config.Mock{}, mockserver.NewSeededStore())
	require.NoError(t, err)
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	t.Setenv("HISABI_API_URL", srv.URL)
	t.Setenv("HISABI_SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("ENV", "TEST")
	t.Setenv("LOG_LEVEL", "disabled")

	var out, errOut bytes.Buffer
	a, err := newApp(config.New(), console.New(input, &out, &errOut))
	require.NoError(t, err)
	return &testApp{app: a, out: &out, errOut: &errOut}
}

func (ta *testApp) exec(t *testing.T, args ...string) error {
	t.Helper()
	ta.out.Reset()
	ta.errOut.Reset()
	return commands[args[0]].run(context.Background(), ta.app, args[1:])
}

func TestParseInterleavedFlags(t *testing.T) {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "")
	positional, err := parse(fs, []string{"u-1", "-yes"})
	require.NoError(t, err)
	require.Equal(t, []string{"u-1"}, positional)
	require.True(t, *yes)

	_, err = parse(fs, []string{"-nope"})
	require.Error(t, err)
}

func TestProtectedCommandsRequireLogin(t *testing.T) {
	ta := setupTestApp(t, "")
	err := ta.exec(t, "stats")
	require.ErrorIs(t, err, errNotSignedIn)
	require.Contains(t, ta.errOut.String(), "hisabi-admin login")
	require.Empty(t, ta.out.String())
}

func TestLoginAndBrowse(t *testing.T) {
	ta := setupTestApp(t, "admin\nadmin123\nno\n")

	require.NoError(t, ta.exec(t, "login"))
	require.Contains(t, ta.errOut.String(), "Signed in as admin")
	require.True(t, ta.store.Authenticated())

	require.NoError(t, ta.exec(t, "status"))
	require.Contains(t, ta.out.String(), "Subject:  admin")

	require.NoError(t, ta.exec(t, "users", "-search", "ibrahim"))
	require.Contains(t, ta.out.String(), "Ibrahim Khan")
	require.Contains(t, ta.out.String(), "Page 1 of 1 (1 total)")

	require.NoError(t, ta.exec(t, "leaderboard", "prayer-tracking"))
	require.Contains(t, ta.out.String(), "🥇 1")

	err := ta.exec(t, "user", "does-not-exist")
	require.Error(t, err)
	require.Contains(t, ta.out.String(), "User not found.")

	require.NoError(t, ta.exec(t, "content", "duas", "delete", "some-id"))
	require.Contains(t, ta.out.String(), "Cancelled.")

	require.NoError(t, ta.exec(t, "logout"))
	require.False(t, ta.store.Authenticated())
}

func TestInterruptedConfirmationIsReported(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	ta := setupTestAppReader(t, pr)

	token, err := ta.api.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, ta.store.Login(token))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ta.out.Reset()
	ta.errOut.Reset()
	err = commands["content"].run(ctx, ta.app, []string{"duas", "delete", "some-id"})
	require.ErrorIs(t, err, context.Canceled)
	require.Contains(t, ta.errOut.String(), "Failed to delete dua")
	require.NotContains(t, ta.out.String(), "Cancelled.")
}

func TestLoginRejected(t *testing.T) {
	ta := setupTestApp(t, "admin\nwrong\n")
	err := ta.exec(t, "login")
	require.Error(t, err)
	require.Contains(t, ta.errOut.String(), "Invalid credentials")
	require.False(t, ta.store.Authenticated())
}

func TestUnknownArguments(t *testing.T) {
	ta := setupTestApp(t, "")
	require.NoError(t, ta.store.Login("x"))

	require.ErrorContains(t, ta.exec(t, "leaderboard", "steps"), "unknown metric")
	require.ErrorContains(t, ta.exec(t, "records", "fasting"), "no records table")
	require.ErrorContains(t, ta.exec(t, "content", "hadith", "list"), "unknown content kind")
	require.ErrorContains(t, ta.exec(t, "logs", "-from", "yesterday"), "invalid date")
}
