package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [datasource-id]",
	Short: "List the tables of a data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runTables,
}

var schemaCmd = &cobra.Command{
	Use:   "schema [datasource-id] [table]",
	Short: "Print the CREATE TABLE statement of a table",
	Args:  cobra.ExactArgs(2),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	tables, err := servicesFor(cmd).schemas.Tables(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printResult(cmd, tables)
}

func runSchema(cmd *cobra.Command, args []string) error {
	ddl, err := servicesFor(cmd).schemas.TableSchema(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ddl)
	return nil
}
