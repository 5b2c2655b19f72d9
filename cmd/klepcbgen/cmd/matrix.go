package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	matrixInfile string
	matrixJSON   bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the inferred key matrix",
	Long: `Runs matrix inference and net assignment without writing any files.

Without --json: prints a grid with one line per row and one cell per column
With --json: prints the net table and the nets of every key`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)
	matrixCmd.Flags().StringVarP(&matrixInfile, "infile", "i", "", "KLE layout file")
	matrixCmd.Flags().BoolVar(&matrixJSON, "json", false, "print the net table as JSON")
	matrixCmd.MarkFlagRequired("infile")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	res, err := build(matrixInfile, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if matrixJSON {
		data, err := res.nets.ExportJSON(res.kb)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "%d keys, %d rows, %d columns\n\n",
		res.kb.Len(), len(res.kb.Rows()), len(res.kb.Columns()))
	fmt.Fprint(w, matrixGrid(res.kb, columnSpan(res)))
	return nil
}

// columnSpan is one past the highest column in use.
func columnSpan(res *result) int {
	n := 0
	for _, g := range res.kb.Columns() {
		if g.Index+1 > n {
			n = g.Index + 1
		}
	}
	return n
}
