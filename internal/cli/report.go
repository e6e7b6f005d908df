package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/docdiagrams/pkg/pipeline"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "report [root]",
		Short: "Rebuild the HTML index from the last run's manifest",
		Long: `Rewrite the HTML index from the JSON manifest a previous
"generate --manifest" run left beside it. Nothing is rendered; diagrams
whose image has since been deleted are left out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadBaseOptions(flags.config)
			if err != nil {
				return err
			}
			applyRunFlags(cmd.Flags(), &flags, &opts)
			if len(args) > 0 {
				opts.Root = args[0]
			}
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			st := startStep(c.Logger, "report", "root", opts.Root)
			res, err := pipeline.RebuildReport(opts)
			if err != nil {
				return err
			}
			st.finish("diagrams", len(res.Diagrams))
			printSuccess("Report rebuilt with %d diagrams", len(res.Diagrams))
			printFile(res.ReportPath)
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
