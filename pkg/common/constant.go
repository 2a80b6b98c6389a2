package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyPipeDBType string = "PIPE_DB_TYPE"
	EnvKeyPipeDbPath string = "PIPE_DB_PATH"

	EnvKeyPipeHttpHostPort string = "PIPE_HTTP_HOST_PORT"
	EnvKeyPipeGrpcHostPort string = "PIPE_GRPC_HOST_PORT"

	EnvKeyPipeDefaultRate  string = "PIPE_DEFAULT_RATE"
	EnvKeyPipeDefaultBurst string = "PIPE_DEFAULT_BURST"

	EnvKeyPipeRedisAddr      string = "PIPE_REDIS_ADDR"
	EnvKeyPipeRedisPassword  string = "PIPE_REDIS_PASSWORD"
	EnvKeyPipeHealthCacheTTL string = "PIPE_HEALTH_CACHE_TTL"
	EnvKeyPipeAlertStream    string = "PIPE_ALERT_STREAM"

	EnvKeyPipeStoreTimeout      string = "PIPE_STORE_TIMEOUT"
	EnvKeyPipeSchedulerInterval string = "PIPE_SCHEDULER_INTERVAL"

	EnvKeyPipeFutureSkew string = "PIPE_FUTURE_SKEW"
	EnvKeyPipeRetention  string = "PIPE_RETENTION"

	EnvKeyPipeUplinkParking string = "PIPE_UPLINK_INTERVAL_PARKING"
	EnvKeyPipeUplinkWeather string = "PIPE_UPLINK_INTERVAL_WEATHER"
	EnvKeyPipeUplinkOther   string = "PIPE_UPLINK_INTERVAL_OTHER"

	EnvKeyPipeWeightSignal    string = "PIPE_HEALTH_WEIGHT_SIGNAL"
	EnvKeyPipeWeightStaleness string = "PIPE_HEALTH_WEIGHT_STALENESS"
	EnvKeyPipeWeightFlap      string = "PIPE_HEALTH_WEIGHT_FLAP"

	EnvKeyPipeSLALow      string = "PIPE_SLA_LOW"
	EnvKeyPipeSLAMedium   string = "PIPE_SLA_MEDIUM"
	EnvKeyPipeSLAHigh     string = "PIPE_SLA_HIGH"
	EnvKeyPipeSLACritical string = "PIPE_SLA_CRITICAL"

	EnvKeyPipeDefaultOfflineMinutes    string = "PIPE_DEFAULT_OFFLINE_MINUTES"
	EnvKeyPipeDefaultLowBatteryPct     string = "PIPE_DEFAULT_LOW_BATTERY_PCT"
	EnvKeyPipeDefaultStaleEventMinutes string = "PIPE_DEFAULT_STALE_EVENT_MINUTES"

	LoggerNamePipelineCore  string = "pipeline_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNameScheduler     string = "scheduler"
	LoggerFieldCategory     string = "category"

	LoggerCategoryIngest     string = "ingest"
	LoggerCategoryEvent      string = "event"
	LoggerCategoryDeadLetter string = "deadletter"
	LoggerCategoryHealth     string = "health"
	LoggerCategoryAlert      string = "alert"
	LoggerCategoryThreshold  string = "threshold"
	LoggerCategorySensor     string = "sensor"
	LoggerCategoryBench      string = "bench"
	LoggerCategoryImport     string = "import"
)
