package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"resource2code/model"
)

var datasourceCmd = &cobra.Command{
	Use:     "datasource",
	Aliases: []string{"ds"},
	Short:   "Manage database connection profiles",
}

var datasourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored data sources",
	Args:  cobra.NoArgs,
	RunE:  runDatasourceList,
}

var datasourceGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasourceGet,
}

var datasourceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Store a new data source",
	Long: "Store a new data source. The backend assigns the id.\n" +
		"Use --test to list its tables before saving, which checks the connection.",
	Args: cobra.NoArgs,
	RunE: runDatasourceCreate,
}

var datasourceUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change fields of a stored data source",
	Long:  "Change fields of a stored data source. Only the flags that are passed are changed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasourceUpdate,
}

var datasourceDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a data source",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasourceDelete,
}

var (
	dsFlagName     string
	dsFlagType     string
	dsFlagHost     string
	dsFlagPort     int
	dsFlagUser     string
	dsFlagPassword string
	dsFlagDatabase string
	dsFlagExtra    string

	datasourceCreateCmdTest bool
)

func addDataSourceFlags(flags *pflag.FlagSet) {
	flags.StringVar(&dsFlagName, "name", "", "Display name")
	flags.StringVar(&dsFlagType, "type", "", "Database type: mysql, postgres, sqlite or sqlserver")
	flags.StringVar(&dsFlagHost, "host", "", "Database host")
	flags.IntVar(&dsFlagPort, "port", 0, "Database port")
	flags.StringVar(&dsFlagUser, "user", "", "Database user")
	flags.StringVar(&dsFlagPassword, "password", "", "Database password")
	flags.StringVar(&dsFlagDatabase, "database", "", "Database name, or file path for sqlite")
	flags.StringVar(&dsFlagExtra, "extra", "", "Extra driver parameters, e.g. sslmode=disable")
}

func init() {
	addDataSourceFlags(datasourceCreateCmd.Flags())
	_ = datasourceCreateCmd.MarkFlagRequired("name")
	_ = datasourceCreateCmd.MarkFlagRequired("type")
	datasourceCreateCmd.Flags().BoolVar(&datasourceCreateCmdTest, "test", false, "List the tables before saving")

	addDataSourceFlags(datasourceUpdateCmd.Flags())

	datasourceCmd.AddCommand(datasourceListCmd)
	datasourceCmd.AddCommand(datasourceGetCmd)
	datasourceCmd.AddCommand(datasourceCreateCmd)
	datasourceCmd.AddCommand(datasourceUpdateCmd)
	datasourceCmd.AddCommand(datasourceDeleteCmd)
	rootCmd.AddCommand(datasourceCmd)
}

// applyDataSourceFlags copies the flags set on cmd onto ds.
func applyDataSourceFlags(cmd *cobra.Command, ds *model.DataSource) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		ds.Name = dsFlagName
	}
	if flags.Changed("type") {
		ds.DBType = model.ParseDBType(dsFlagType)
	}
	if flags.Changed("host") {
		ds.Host = dsFlagHost
	}
	if flags.Changed("port") {
		ds.Port = dsFlagPort
	}
	if flags.Changed("user") {
		ds.Username = dsFlagUser
	}
	if flags.Changed("password") {
		ds.Password = dsFlagPassword
	}
	if flags.Changed("database") {
		db := dsFlagDatabase
		ds.Database = &db
	}
	if flags.Changed("extra") {
		extra := dsFlagExtra
		ds.ExtraParams = &extra
	}
}

func runDatasourceList(cmd *cobra.Command, args []string) error {
	list, err := servicesFor(cmd).dataSources.List(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, list)
}

func runDatasourceGet(cmd *cobra.Command, args []string) error {
	ds, err := servicesFor(cmd).dataSources.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printResult(cmd, ds)
}

func runDatasourceCreate(cmd *cobra.Command, args []string) error {
	svc := servicesFor(cmd)
	var ds model.DataSource
	applyDataSourceFlags(cmd, &ds)

	if datasourceCreateCmdTest {
		tables, err := svc.schemas.TablesOf(cmd.Context(), ds)
		if err != nil {
			return err
		}
		cmd.PrintErrf("connection ok, %d tables\n", len(tables))
	}

	created, err := svc.dataSources.Create(cmd.Context(), ds)
	if err != nil {
		return err
	}
	return printResult(cmd, created)
}

func runDatasourceUpdate(cmd *cobra.Command, args []string) error {
	svc := servicesFor(cmd)
	ds, err := svc.dataSources.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	applyDataSourceFlags(cmd, &ds)

	updated, err := svc.dataSources.Update(cmd.Context(), ds)
	if err != nil {
		return err
	}
	if updated == nil {
		// The notifier already told the user.
		return nil
	}
	return printResult(cmd, updated)
}

func runDatasourceDelete(cmd *cobra.Command, args []string) error {
	ok, err := servicesFor(cmd).dataSources.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "data source %s deleted\n", args[0])
	}
	return nil
}
