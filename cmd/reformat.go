package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rfInput  inputFlags
	rfOutput string
)

var reformatCmd = &cobra.Command{
	Use:   "reformat <file>",
	Short: "Classify columns and emit typed rows as JSON {newCols, newRows, validity}",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := rfInput.load(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd, rfOutput, res)
	},
}

func init() {
	rootCmd.AddCommand(reformatCmd)
	rfInput.bind(reformatCmd)
	reformatCmd.Flags().StringVarP(&rfOutput, "output", "o", "", "write JSON to this path instead of stdout")
}
