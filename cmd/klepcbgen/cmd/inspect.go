package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/pcb"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <board_file> [net_name]",
	Short: "Show net information of a generated board",
	Long: `Reads a KiCad board file (.kicad_pcb) and reports its connectivity.

Without net_name: Lists all nets with pad/segment/via counts
With net_name: Shows every pad, segment and via of that net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	board, err := pcb.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(args) >= 2 {
		return showNetDetails(w, board, args[1])
	}
	listAllNets(w, board)
	return nil
}

func listAllNets(w io.Writer, board *pcb.Board) {
	fmt.Fprintf(w, "%s: %d nets, %d footprints\n\n",
		titleStyle.Render("Board"), len(board.Nets), len(board.Footprints))
	fmt.Fprintf(w, "%4s %-24s %6s %8s %6s\n", "#", "Net Name", "Pads", "Segments", "Vias")
	fmt.Fprintln(w, "──────────────────────────────────────────────────────")

	for _, u := range board.Usage() {
		fmt.Fprintf(w, "%4d %-24s %6d %8d %6d\n",
			u.Net.Number, u.Net.Name, u.Pads, u.Segments, u.Vias)
	}
}

func showNetDetails(w io.Writer, board *pcb.Board, netName string) error {
	net, ok := pcb.NewNetMap(board.Nets).GetByName(netName)
	if !ok {
		return fmt.Errorf("net '%s' not found", netName)
	}

	fmt.Fprintf(w, "Net: %s (number %d)\n\n", net.Name, net.Number)

	fmt.Fprintln(w, "Pads:")
	for _, fp := range board.Footprints {
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Number == net.Number {
				fmt.Fprintf(w, "  %s pad %s at (%.2f, %.2f)\n",
					fp.Reference, pad.Number, fp.Position.X, fp.Position.Y)
			}
		}
	}

	fmt.Fprintln(w, "\nSegments:")
	for _, seg := range board.Segments {
		if seg.Net != nil && seg.Net.Number == net.Number {
			fmt.Fprintf(w, "  %.2f mm on %s from (%.2f, %.2f) to (%.2f, %.2f)\n",
				seg.Width, seg.Layer, seg.Start.X, seg.Start.Y, seg.End.X, seg.End.Y)
		}
	}

	fmt.Fprintln(w, "\nVias:")
	for _, via := range board.Vias {
		if via.Net != nil && via.Net.Number == net.Number {
			fmt.Fprintf(w, "  %.2f mm, %.2f mm drill at (%.2f, %.2f)\n",
				via.Size, via.Drill, via.Position.X, via.Position.Y)
		}
	}
	return nil
}
