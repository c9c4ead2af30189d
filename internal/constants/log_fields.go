package constants

// Log field name constants
const (
	LOG_REQUEST_ID   = "request_id"
	LOG_RUN_ID       = "run_id"
	LOG_BENCHMARK_ID = "benchmark_id"
	LOG_DATASET      = "dataset"
	LOG_FORMAT       = "format"
	LOG_LOCATION     = "location"
	LOG_FILE         = "file"
	LOG_COUNT        = "count"
	LOG_METHOD       = "method"
	LOG_URI          = "uri"
	LOG_RESP_CODE    = "code"
	LOG_ERROR        = "error"
	LOG_RUNTIME      = "runtime"
	LOG_ELAPSED      = "elapsed"
	LOG_MESSAGE_CODE = "message_code"
)
