package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change backend settings",
	Long: "Read and change backend settings such as root_source_path and current_llm_provider.\n" +
		"current_llm_provider holds a JSON object, e.g.\n" +
		`    {"name":"ollama","baseUrl":"http://localhost:11434","model":"qwen2.5-coder"}`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete [key]",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigDelete,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDeleteCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, found, err := servicesFor(cmd).config.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("setting %s is not set", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	_, err := servicesFor(cmd).config.Set(cmd.Context(), args[0], args[1])
	return err
}

func runConfigDelete(cmd *cobra.Command, args []string) error {
	ok, err := servicesFor(cmd).config.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "setting %s was not set\n", args[0])
	}
	return nil
}
