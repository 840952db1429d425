package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonysxn/brobar.delivery/internal/identity"
)

var basenameCmd = &cobra.Command{
	Use:   "basename [filename...]",
	Short: "Print the product key an image filename resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, identity.DeriveBaseName(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(basenameCmd)
}
