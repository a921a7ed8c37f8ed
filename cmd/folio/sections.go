package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/domain/content"
)

func newSectionsCmd(a *app) *cobra.Command {
	var pageKey string
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List sections stored on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sections, err := a.client().ListSections(cmd.Context(), pageKey)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PAGE\tSECTION\tTITLE\tACTIVE\tEDITABLE\tFIELDS")
			for i := range sections {
				s := &sections[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%d\n",
					s.PageKey, s.SectionKey, s.Title, s.IsActive, s.IsEditable, len(s.Content))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&pageKey, "page", "", "only list sections of this page")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <page_key> <section_key>",
			Short: "Print a section",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sec, err := a.client().GetSection(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return a.printJSON(sec)
			},
		},
		&cobra.Command{
			Use:   "fields <page_key> <section_key>",
			Short: "Print the inferred field shapes of a section",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sec, err := a.client().GetSection(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printFields(a, content.Describe(sec.Content))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <page_key> <section_key>",
			Short: "Delete a section",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.client().DeleteSection(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "deleted %s/%s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

func printFields(a *app, views []content.FieldView) {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tKIND\tWIDGET\tVALUE")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Key, v.Kind, v.Widget, summarize(v))
	}
	_ = tw.Flush()
}

// summarize renders a short one-line preview of a field value.
func summarize(v content.FieldView) string {
	const maxLen = 60
	var s string
	switch val := v.Value.(type) {
	case []any:
		s = fmt.Sprintf("[%d items]", len(val))
		if len(v.Schema) > 0 {
			names := make([]string, len(v.Schema))
			for i, k := range v.Schema {
				names[i] = k.Name
			}
			s += fmt.Sprintf(" %v", names)
		}
	case map[string]any:
		s = fmt.Sprintf("{%d keys}", len(val))
	default:
		s = fmt.Sprint(val)
	}
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen-3]) + "..."
	}
	return s
}
