package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studyblossom/internal/validation"
)

var errRejected = errors.New("text rejected")

func newValidateCmd() *cobra.Command {
	var (
		fieldFlag  string
		strictFlag bool
		langFlag   string
	)
	cmd := &cobra.Command{
		Use:   "validate [text]",
		Short: "Check a goal name or topic against the content rules",
		Long: `Validate runs the same rules the API applies to study goals.

Examples:
  studyctl validate --field goal "Examen de Cálculo"
  studyctl validate --field topic --strict "Historia de la Segunda Guerra Mundial"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := validation.ParseField(fieldFlag)
			if !ok {
				return fmt.Errorf("unknown field %q (want goal or topic)", fieldFlag)
			}
			res := validation.RulesFor(field, strictFlag).Validate(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if res.Accepted {
				fmt.Fprintf(out, "accepted: %s\n", res.Text)
				return nil
			}
			fmt.Fprintf(out, "rejected (%s): %s\n", res.Reason, res.Localized(langFlag))
			if res.SuggestHelp {
				fmt.Fprintln(out, validation.HelpMessage(field, langFlag))
			}
			return errRejected
		},
	}
	cmd.Flags().StringVarP(&fieldFlag, "field", "f", "topic", "Field to validate (goal or topic)")
	cmd.Flags().BoolVar(&strictFlag, "strict", false, "Apply the stricter topic length rule")
	cmd.Flags().StringVarP(&langFlag, "lang", "l", validation.DefaultLanguage, "Message language (es or en)")
	return cmd
}
