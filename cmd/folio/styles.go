package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/domain/style"
)

func newStylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles [axis=choice ...]",
		Short: "Preview the style payload for a set of choices",
		Long: `Without arguments, list the choices per axis. With axis=choice pairs,
print the style payload they map to, starting from the default selection.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				choices := style.Choices()
				for _, axis := range []string{"width", "height", "spacing", "background"} {
					fmt.Fprintf(a.stdout, "%-11s %s\n", axis, strings.Join(choices[axis], ", "))
				}
				return nil
			}

			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}
			changes, err := styleChanges(pairs)
			if err != nil {
				return err
			}
			sel, payload, err := style.Apply(style.Default, changes)
			if err != nil {
				return err
			}
			return a.printJSON(map[string]any{"selection": sel, "payload": payload})
		},
	}
}
