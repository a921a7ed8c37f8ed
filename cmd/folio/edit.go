package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/style"
	"github.com/Strob0t/folio/internal/service"
)

const editUsage = `Operations:
  show                                 print the fields, no save
  set <key> <value>                    set a text, number or true/false field
  add <key> <value>                    append to a list field
  add-item <key> [field=value ...]     append an item to an item list
  update-item <key> <index> <value>    replace a list element
  set-field <key> <index> <field> <v>  set one field of a list item
  remove <key> <index>                 remove a list element
  json <key> <text>                    replace a JSON field
  style <key> [axis=choice ...]        change width, height, spacing or background`

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <page_key> <section_key> <operation> [args...]",
		Short: "Apply one edit to a section and save it",
		Long:  "Load a section, apply one operation to its content and save the full content.\n\n" + editUsage,
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := service.NewEditorSession(a.client(), args[0], args[1])
			defer e.Close()

			if err := e.Open(cmd.Context()); err != nil {
				var nf *service.NotFoundError
				if errors.As(err, &nf) {
					return fmt.Errorf("%w\n  folio create %s --template <id> --key %s", err, nf.Ref.PageKey, nf.Ref.SectionKey)
				}
				return err
			}

			if args[2] == "show" {
				printFields(a, e.Fields())
				return nil
			}
			if err := applyEdit(e, args[2], args[3:]); err != nil {
				return err
			}
			if !e.Dirty() {
				fmt.Fprintln(a.stdout, "no changes")
				return nil
			}
			sec, err := e.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "saved %s/%s\n", sec.PageKey, sec.SectionKey)
			return nil
		},
	}
}

// applyEdit runs one editor operation given on the command line.
func applyEdit(e *service.EditorSession, op string, args []string) error {
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s expects %d arguments, got %d", domain.ErrValidation, op, n, len(args))
		}
		return nil
	}

	switch op {
	case "set":
		if err := need(2); err != nil {
			return err
		}
		v, err := scalarLike(e, args[0], args[1])
		if err != nil {
			return err
		}
		return e.SetScalar(args[0], v)

	case "add":
		if err := need(2); err != nil {
			return err
		}
		return e.AddItem(args[0], args[1])

	case "add-item":
		if len(args) < 1 {
			return fmt.Errorf("%w: add-item expects a key", domain.ErrValidation)
		}
		key := args[0]
		fields, err := parsePairs(args[1:])
		if err != nil {
			return err
		}
		if _, err := e.AddObjectItem(key); err != nil {
			return err
		}
		v, _ := e.Value(key)
		idx := len(v.([]any)) - 1
		for _, p := range fields {
			if err := e.UpdateItemField(key, idx, p[0], p[1]); err != nil {
				return err
			}
		}
		return nil

	case "update-item":
		if err := need(3); err != nil {
			return err
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return e.UpdateItem(args[0], i, args[2])

	case "set-field":
		if err := need(4); err != nil {
			return err
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return e.UpdateItemField(args[0], i, args[2], args[3])

	case "remove":
		if err := need(2); err != nil {
			return err
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return e.RemoveItem(args[0], i)

	case "json":
		if err := need(2); err != nil {
			return err
		}
		return e.EditOpaqueText(args[0], args[1])

	case "style":
		if len(args) < 1 {
			return fmt.Errorf("%w: style expects a key", domain.ErrValidation)
		}
		pairs, err := parsePairs(args[1:])
		if err != nil {
			return err
		}
		changes, err := styleChanges(pairs)
		if err != nil {
			return err
		}
		_, err = e.ApplyStyle(args[0], changes)
		return err

	default:
		return fmt.Errorf("%w: unknown operation %q\n%s", domain.ErrValidation, op, editUsage)
	}
}

// scalarLike converts text to the type the field already holds so a number
// or boolean is not saved back as a string. Numbers keep their digits.
func scalarLike(e *service.EditorSession, key, text string) (any, error) {
	cur, _ := e.Value(key)
	switch cur.(type) {
	case bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %q expects true or false, got %q", domain.ErrValidation, key, text)
		}
		return b, nil
	case float64, json.Number:
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return nil, fmt.Errorf("%w: %q expects a number, got %q", domain.ErrValidation, key, text)
		}
		return json.Number(text), nil
	}
	return text, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", domain.ErrValidation, s)
	}
	return i, nil
}

// parsePairs splits field=value arguments. Values keep any further '='.
func parsePairs(args []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: expected field=value, got %q", domain.ErrValidation, arg)
		}
		pairs = append(pairs, [2]string{k, v})
	}
	return pairs, nil
}

func styleChanges(pairs [][2]string) (style.Changes, error) {
	var c style.Changes
	for _, p := range pairs {
		v := p[1]
		switch p[0] {
		case "width":
			c.Width = &v
		case "height":
			c.Height = &v
		case "spacing":
			c.Spacing = &v
		case "background":
			c.Background = &v
		default:
			return c, fmt.Errorf("%w: unknown style axis %q", domain.ErrValidation, p[0])
		}
	}
	return c, nil
}
