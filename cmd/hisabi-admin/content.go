package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/hisabi-admin/admin"
	"github.com/jrsteele09/hisabi-admin/console"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/resource"
)

// contentKinds maps command line names to content collections. The quran
// collections drop their "-content" suffix.
var contentKinds = map[string]admin.ContentKind{
	"duas":               admin.KindDuas,
	"dhikr-types":        admin.KindDhikrTypes,
	"fasting-types":      admin.KindFastingTypes,
	"quran-reading":      admin.KindQuranReading,
	"quran-memorization": admin.KindQuranMemorization,
}

func contentKindNames() []string {
	return []string{"duas", "dhikr-types", "fasting-types", "quran-reading", "quran-memorization"}
}

func content(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: hisabi-admin content <kind> list|create|update|delete, kinds: %v", contentKindNames())
	}
	kind, ok := contentKinds[args[0]]
	if !ok {
		return fmt.Errorf("unknown content kind %q, expected one of %v", args[0], contentKindNames())
	}
	action, rest := args[1], args[2:]

	switch kind {
	case admin.KindDuas:
		return contentAction(ctx, a, a.svc.Duas(), console.Duas, action, rest)
	case admin.KindDhikrTypes:
		return contentAction(ctx, a, a.svc.DhikrTypes(), console.DhikrTypes, action, rest)
	case admin.KindFastingTypes:
		return contentAction(ctx, a, a.svc.FastingTypes(), console.FastingTypes, action, rest)
	case admin.KindQuranReading:
		return contentAction(ctx, a, a.svc.QuranReadingContent(), console.QuranPortions, action, rest)
	case admin.KindQuranMemorization:
		return contentAction(ctx, a, a.svc.QuranMemorizationContent(), console.QuranPortions, action, rest)
	}
	return fmt.Errorf("content kind %q is not supported", kind)
}

func contentAction[T models.Validator](ctx context.Context, a *app, c *resource.ContentController[T], render func(io.Writer, resource.View[models.Page[T]]), action string, args []string) error {
	name := "content " + string(c.Kind()) + " " + action
	fs := newFlagSet(name, a.con.Err)

	switch action {
	case "list":
		page := fs.Int("page", 1, "page number, paginated collections only")
		if _, err := parse(fs, args); err != nil {
			return err
		}
		c.SetPage(*page)
		view, err := c.Load(ctx)
		render(a.con.Out, view)
		return rendered(err)

	case "create", "update":
		file := fs.String("f", "-", "YAML or JSON item file, - for stdin")
		positional, err := parse(fs, args)
		if err != nil {
			return err
		}
		item, err := readItem[T](a, *file)
		if err != nil {
			return err
		}
		if action == "create" {
			if len(positional) != 0 {
				return fmt.Errorf("%s: takes no arguments", name)
			}
			return rendered(c.Create(ctx, item))
		}
		if len(positional) != 1 {
			return fmt.Errorf("%s: expected the item id", name)
		}
		return rendered(c.Update(ctx, positional[0], item))

	case "delete":
		fs.BoolVar(&a.con.AssumeYes, "yes", false, "skip the confirmation prompt")
		label := fs.String("label", "", "name shown in the confirmation prompt")
		positional, err := parse(fs, args)
		if err != nil {
			return err
		}
		if len(positional) != 1 {
			return fmt.Errorf("%s: expected the item id", name)
		}
		return declined(a, c.Delete(ctx, positional[0], *label))
	}
	return fmt.Errorf("unknown action %q, expected list, create, update or delete", action)
}

func readItem[T any](a *app, file string) (T, error) {
	var r io.Reader
	if file == "-" {
		fmt.Fprintln(a.con.Err, "Reading item from stdin (YAML or JSON), end with Ctrl-D")
		r = os.Stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			var zero T
			return zero, fmt.Errorf("open item file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	return console.ReadItem[T](r)
}
