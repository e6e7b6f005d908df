package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/docdiagrams/pkg/pipeline"
)

// cleanCommand creates the clean command.
func (c *CLI) cleanCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "clean [root]",
		Short: "Remove generated images and the HTML index",
		Long: `Remove images produced by generate from the directories of the documents
under root, together with the HTML index. Only files named like generated
output (<name>_<8 hex digits>.<png|svg|pdf>) are removed.`,
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

			st := startStep(c.Logger, "clean", "root", opts.Root)
			removed, err := pipeline.Clean(opts)
			if err != nil {
				return err
			}
			st.finish("removed", removed)

			if removed == 0 {
				printInfo("Nothing to remove under %s", opts.Root)
				return nil
			}
			printSuccess("Removed %d generated files", removed)
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
