package main

import (
	"time"

	"github.com/spf13/cobra"

	"resource2code/client"
	"resource2code/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:           "r2c",
	Short:         "Manage data sources and rules, and generate code from them",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiInvoker == nil {
			apiInvoker = gateway.NewHTTPInvoker(serverURL, requestTimeout)
		}
		return validateOutput()
	},
}

var (
	serverURL      string
	outputFormat   string
	requestTimeout time.Duration

	// apiInvoker is created from --server unless a test has set it.
	apiInvoker client.Invoker
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the resource2code backend")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 30*time.Second, "Timeout of a single backend call")
}

type services struct {
	dataSources *client.DataSourceService
	rules       *client.RuleService
	config      *client.ConfigService
	schemas     *client.SchemaService
	tasks       *client.TaskService
}

// servicesFor reports backend failures on the command's stderr.
func servicesFor(cmd *cobra.Command) services {
	notify := client.NewWriterNotifier(cmd.ErrOrStderr())
	return services{
		dataSources: client.NewDataSourceService(apiInvoker, notify),
		rules:       client.NewRuleService(apiInvoker, notify),
		config:      client.NewConfigService(apiInvoker, notify),
		schemas:     client.NewSchemaService(apiInvoker, notify),
		tasks:       client.NewTaskService(apiInvoker, notify),
	}
}
