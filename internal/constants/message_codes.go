package constants

const (
	MESSAGE_CODE_RUN_INGESTED          = "run_ingested"
	MESSAGE_CODE_RUN_NOTHING_TO_INGEST = "run_nothing_to_ingest"
	MESSAGE_CODE_RUN_PUBLISHED         = "run_published"
	MESSAGE_CODE_RUN_FAILED            = "run_failed"
)
