package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resource2code/model"
)

var ruleCmd = &cobra.Command{
	Use:     "rule",
	Aliases: []string{"sample"},
	Short:   "Manage coding rules and code samples",
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rules",
	Args:  cobra.NoArgs,
	RunE:  runRuleList,
}

var ruleGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleGet,
}

var ruleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Store a new rule",
	Long:  "Store a new rule. The content comes from --content or from a file given with --file.",
	Args:  cobra.NoArgs,
	RunE:  runRuleCreate,
}

var ruleUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change the name or content of a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleUpdate,
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleDelete,
}

var (
	ruleFlagName    string
	ruleFlagContent string
	ruleFlagFile    string
)

func init() {
	for _, c := range []*cobra.Command{ruleCreateCmd, ruleUpdateCmd} {
		c.Flags().StringVar(&ruleFlagName, "name", "", "Rule name")
		c.Flags().StringVar(&ruleFlagContent, "content", "", "Rule text")
		c.Flags().StringVar(&ruleFlagFile, "file", "", "Read the rule text from this file")
		c.MarkFlagsMutuallyExclusive("content", "file")
	}
	_ = ruleCreateCmd.MarkFlagRequired("name")

	ruleCmd.AddCommand(ruleListCmd)
	ruleCmd.AddCommand(ruleGetCmd)
	ruleCmd.AddCommand(ruleCreateCmd)
	ruleCmd.AddCommand(ruleUpdateCmd)
	ruleCmd.AddCommand(ruleDeleteCmd)
	rootCmd.AddCommand(ruleCmd)
}

// ruleContent returns the text from --file or --content and whether either
// was given.
func ruleContent(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("file") {
		data, err := os.ReadFile(ruleFlagFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", ruleFlagFile, err)
		}
		return string(data), true, nil
	}
	return ruleFlagContent, cmd.Flags().Changed("content"), nil
}

func runRuleList(cmd *cobra.Command, args []string) error {
	rules, err := servicesFor(cmd).rules.List(cmd.Context())
	if err != nil {
		return err
	}
	return printResult(cmd, rules)
}

func runRuleGet(cmd *cobra.Command, args []string) error {
	rule, err := servicesFor(cmd).rules.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printResult(cmd, rule)
}

func runRuleCreate(cmd *cobra.Command, args []string) error {
	content, _, err := ruleContent(cmd)
	if err != nil {
		return err
	}
	created, err := servicesFor(cmd).rules.Create(cmd.Context(), model.Rule{Name: ruleFlagName, Content: content})
	if err != nil {
		return err
	}
	return printResult(cmd, created)
}

func runRuleUpdate(cmd *cobra.Command, args []string) error {
	svc := servicesFor(cmd)
	rule, err := svc.rules.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("name") {
		rule.Name = ruleFlagName
	}
	content, ok, err := ruleContent(cmd)
	if err != nil {
		return err
	}
	if ok {
		rule.Content = content
	}

	updated, err := svc.rules.Update(cmd.Context(), rule)
	if err != nil || updated == nil {
		return err
	}
	return printResult(cmd, updated)
}

func runRuleDelete(cmd *cobra.Command, args []string) error {
	ok, err := servicesFor(cmd).rules.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "rule %s deleted\n", args[0])
	}
	return nil
}
