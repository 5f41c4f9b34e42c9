package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jrsteele09/hisabi-admin/console"
	"github.com/jrsteele09/hisabi-admin/gateway"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/stretchr/testify/require"
)

func setupConsole(t *testing.T, input string) (*console.Console, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	return console.New(strings.NewReader(input), &out, &errOut), &out, &errOut
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "yes\n", want: true},
		{name: "y", input: "Y\n", want: true},
		{name: "no", input: "no\n", want: false},
		{name: "blank", input: "\n", want: false},
		{name: "end of input", input: "", want: false},
		{name: "no trailing newline", input: "yes", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, _ := setupConsole(t, tt.input)
			ok, err := c.Confirm(ctx, "Delete Amina?")
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
			require.Contains(t, out.String(), "Delete Amina?")
		})
	}

	t.Run("assume yes", func(t *testing.T) {
		c, out, _ := setupConsole(t, "")
		c.AssumeYes = true
		ok, err := c.Confirm(ctx, "Delete Amina?")
		require.NoError(t, err)
		require.True(t, ok)
		require.Contains(t, out.String(), "-yes")
	})
}

func TestNotifications(t *testing.T) {
	c, out, errOut := setupConsole(t, "")
	c.Success("Dua created successfully")
	c.Error("Item not found")
	c.Navigate(gateway.RouteLogin)

	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), "✓ Dua created successfully")
	require.Contains(t, errOut.String(), "✗ Item not found")
	require.Contains(t, errOut.String(), "hisabi-admin login")
}

func TestReadLineAndPassword(t *testing.T) {
	c, out, _ := setupConsole(t, "admin\r\nadmin123\n")
	user, err := c.ReadLine("Username: ")
	require.NoError(t, err)
	require.Equal(t, "admin", user)

	// Not a terminal, so the password is read as a plain line.
	pass, err := c.ReadPassword("Password: ")
	require.NoError(t, err)
	require.Equal(t, "admin123", pass)
	require.Equal(t, "Username: Password: ", out.String())
}

func TestReadItem(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		src := "title: Al-Mulk\nsurah_number: 67\nayah_from: 1\nayah_to: 30\nis_active: false\n"
		q, err := console.ReadItem[models.QuranPortion](strings.NewReader(src))
		require.NoError(t, err)
		require.Equal(t, "Al-Mulk", q.Title)
		require.Equal(t, 67, *q.SurahNumber)
		require.Equal(t, 30, *q.AyahTo)
		require.False(t, q.Active())
	})

	t.Run("json", func(t *testing.T) {
		d, err := console.ReadItem[models.Dua](strings.NewReader(`{"title":"Before sleep","arabic_text":"بِاسْمِكَ اللَّهُمَّ"}`))
		require.NoError(t, err)
		require.Equal(t, "Before sleep", d.Title)
		require.NoError(t, d.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := console.ReadItem[models.Dua](strings.NewReader(""))
		require.ErrorIs(t, err, apperrors.ErrRequiredField)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := console.ReadItem[models.QuranPortion](strings.NewReader("surah_number: sixty\n"))
		require.Error(t, err)
	})
}
