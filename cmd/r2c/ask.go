package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resource2code/model"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Generate code for a question",
	Long: "Submit a question to the code generator, wait for it to finish and print the generated files.\n" +
		"Attach context with --rule (rule id), --table (datasource-id:table) and --file (path).\n" +
		"Pressing Ctrl-C cancels the task on the backend.",
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var (
	askCmdRules     []string
	askCmdTables    []string
	askCmdFiles     []string
	askCmdSrcDir    string
	askCmdSave      bool
	askCmdShowLogs  bool
	askCmdWait      time.Duration
	askCmdPollEvery time.Duration
)

func init() {
	askCmd.Flags().StringSliceVar(&askCmdRules, "rule", nil, "Rule ids to include")
	askCmd.Flags().StringSliceVar(&askCmdTables, "table", nil, "Tables to include, as datasource-id:table")
	askCmd.Flags().StringSliceVar(&askCmdFiles, "file", nil, "Files to include")
	askCmd.Flags().StringVar(&askCmdSrcDir, "src-dir", "", "Include the outline of this directory so the generator can pick file locations")
	askCmd.Flags().BoolVar(&askCmdSave, "save", false, "Write the generated files to disk")
	askCmd.Flags().BoolVar(&askCmdShowLogs, "logs", false, "Print the task log")
	askCmd.Flags().DurationVar(&askCmdWait, "wait", 5*time.Minute, "Give up waiting after this long")
	askCmd.Flags().DurationVar(&askCmdPollEvery, "poll", 500*time.Millisecond, "Interval between status checks")
	rootCmd.AddCommand(askCmd)
}

func buildRequest(question string) (model.CodeGenRequest, error) {
	req := model.CodeGenRequest{
		Question:      question,
		SampleIDs:     askCmdRules,
		Resources:     []model.ResourceMeta{},
		AutoDetectDir: askCmdSrcDir != "",
		CurrentSrcDir: askCmdSrcDir,
	}
	if req.SampleIDs == nil {
		req.SampleIDs = []string{}
	}
	for _, t := range askCmdTables {
		dsID, table, ok := strings.Cut(t, ":")
		if !ok || dsID == "" || table == "" {
			return model.CodeGenRequest{}, fmt.Errorf("--table %q must look like datasource-id:table", t)
		}
		req.Resources = append(req.Resources, model.ResourceMeta{ResourceType: model.ResourceTable, Name: table, Data: dsID})
	}
	for _, f := range askCmdFiles {
		req.Resources = append(req.Resources, model.ResourceMeta{ResourceType: model.ResourceFile, Name: f})
	}
	return req, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(args[0])
	if err != nil {
		return err
	}
	svc := servicesFor(cmd)

	id, err := svc.tasks.Ask(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "task %s started\n", id)

	ctx, cancel := context.WithTimeout(cmd.Context(), askCmdWait)
	defer cancel()
	if err := svc.tasks.Wait(ctx, id, askCmdPollEvery); err != nil {
		// Best effort: the task should not keep running after we stop waiting.
		_ = svc.tasks.Cancel(context.WithoutCancel(cmd.Context()), id)
		return fmt.Errorf("task %s did not finish: %w", id, err)
	}

	if askCmdShowLogs {
		logs, err := svc.tasks.Logs(cmd.Context(), id)
		if err != nil {
			return err
		}
		for _, entry := range logs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s] %s\n",
				time.UnixMilli(entry.Timestamp).Format(time.TimeOnly), entry.Level, entry.Message)
		}
	}

	result, err := svc.tasks.Result(cmd.Context(), id)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("task %s is no longer known to the backend", id)
	}

	if askCmdSave && result.Type == model.ResultCodeGen {
		for i, file := range result.Files {
			created, err := svc.tasks.SaveFile(cmd.Context(), file)
			if err != nil {
				return err
			}
			applied := true
			result.Files[i].Applied = &applied
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", verb, file.Path)
		}
	}
	return printResult(cmd, result)
}
