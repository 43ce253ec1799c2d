package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func validateOutput() error {
	switch outputFormat {
	case "yaml", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use yaml or json)", outputFormat)
	}
}

func printResult(cmd *cobra.Command, v any) error {
	return writeResult(cmd.OutOrStdout(), outputFormat, v)
}

// writeResult renders v with its JSON field names in either format.
func writeResult(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to convert output to yaml: %w", err)
	}
	blockStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles the JSON input left on the
// nodes; the encoder still quotes strings that would otherwise change type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
