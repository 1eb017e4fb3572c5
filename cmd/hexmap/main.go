// hexmap renders a saved solve report as ASCII hex maps, one per layer.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/report"
)

func main() {
	inputFile := flag.String("input", "out/report.yaml", "Path to report YAML file")
	layerFlag := flag.String("layer", "all", "Layer to display (number, or all)")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	showRotation := flag.Bool("rotations", false, "Append the rotation digit to each tile")
	flag.Parse()

	rep, err := report.Load(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := renderOptions{Rotations: *showRotation, AllLayers: true}
	if *layerFlag != "all" {
		layer, err := strconv.Atoi(*layerFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid layer %q\n", *layerFlag)
			os.Exit(1)
		}
		opts.AllLayers = false
		opts.Layer = layer
	}

	var output strings.Builder
	assigned, failed, unassigned := rep.Counts()
	output.WriteString(fmt.Sprintf("Hex Map (Run: %s, Seed: %d, Attempt: %d)\n", rep.RunID, rep.Seed, rep.Attempt+1))
	output.WriteString(fmt.Sprintf("Generated: %s\n", rep.SavedAt.Format("2006-01-02 15:04:05")))
	output.WriteString(fmt.Sprintf("Cells: %d assigned, %d failed, %d unassigned\n", assigned, failed, unassigned))
	output.WriteString(strings.Repeat("=", 60) + "\n\n")

	codes := tileCodes(rep)
	render(&output, rep, codes, opts)

	if *showLegend {
		output.WriteString(legend(rep, codes))
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}
