package model

// Backend command names understood by the gateway.
const (
	CmdGetAllDataSources = "get_all_ds"
	CmdCreateDataSource  = "create_ds"
	CmdGetDataSource     = "get_ds_by_id"
	CmdUpdateDataSource  = "update_ds"
	CmdDeleteDataSource  = "delete_ds"

	CmdGetAllSamples = "get_all_samples"
	CmdCreateSample  = "create_sample"
	CmdGetSample     = "get_sample_by_id"
	CmdUpdateSample  = "update_sample"
	CmdDeleteSample  = "delete_sample"

	CmdGetTables      = "get_tables"
	CmdGetTableSchema = "get_table_schema"

	CmdGetConfig    = "get_config"
	CmdSetConfig    = "set_config"
	CmdDeleteConfig = "delete_config"

	CmdProcessQuestion = "process_user_question"
	CmdCancelTask      = "cancel_user_task"
	CmdTaskFinished    = "is_user_task_finished"
	CmdTaskLogs        = "get_user_task_logs"
	CmdTaskResult      = "get_user_task_result"

	CmdSaveFile      = "save_generated_file"
	CmdFileExists    = "is_file_existed"
	CmdGetFileSystem = "get_file_system"

	// CmdFileExistsLegacy is the misspelled name older desktop clients send.
	CmdFileExistsLegacy = "is_file_exsited"
)

// Config keys read by the backend.
const (
	ConfigLLMProvider    = "current_llm_provider"
	ConfigRootSourcePath = "root_source_path"
)
