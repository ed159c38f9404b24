package cmd

import (
	"github.com/spf13/cobra"
)

var headformCmd = &cobra.Command{
	Use:   "headform",
	Short: "Measure reference headform meshes",
	Long: `Measure ASCII STL reference headforms and manage the reference table.

The five reference meshes are expected as <category>_symmetry.stl with
X left-right, Y front-back and Z vertical, in millimetres.`,
}

func init() {
	rootCmd.AddCommand(headformCmd)
}
