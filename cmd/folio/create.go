package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/domain/template"
	"github.com/Strob0t/folio/internal/service"
)

func newCreateCmd(a *app) *cobra.Command {
	var templateID, sectionKey, title, description string
	cmd := &cobra.Command{
		Use:   "create <page_key>",
		Short: "Create a section on a page from a template",
		Long: `Create a section from a template. The section key is derived from the
template id and the current time unless --key is given; keys are normalized
to lowercase letters, digits and underscores. Title and description default
to the template's.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow := service.NewCreationFlow(template.Builtin(), a.client(), args[0])
			if err := flow.SelectTemplate(templateID); err != nil {
				return err
			}
			if cmd.Flags().Changed("key") {
				if got := flow.SetSectionKey(sectionKey); got != sectionKey {
					fmt.Fprintf(a.stderr, "section key normalized to %q\n", got)
				}
			}
			if cmd.Flags().Changed("title") {
				flow.SetTitle(title)
			}
			if cmd.Flags().Changed("description") {
				flow.SetDescription(description)
			}

			sec, err := flow.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "created %s/%s (%s)\n", sec.PageKey, sec.SectionKey, sec.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&templateID, "template", "t", "", "template id (see folio templates)")
	f.StringVar(&sectionKey, "key", "", "section key")
	f.StringVar(&title, "title", "", "section title")
	f.StringVar(&description, "description", "", "section description")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
