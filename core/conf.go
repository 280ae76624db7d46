package core

type Conf struct {
	Version            string `long:"version" description:"version of the qst engine" env:"QST_ENGINE_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QST_ENGINE_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QST_ENGINE_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QST_ENGINE_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./logs" env:"QST_ENGINE_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QST_ENGINE_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QST_ENGINE_LOG_ROTATION_MAX_DAYS"`
	Seed               uint64 `long:"seed" description:"random seed for outcome simulation, 0 draws a fresh one" env:"QST_ENGINE_SEED"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QST_ENGINE_SETTING_PATH"`
}
