package config

import "errors"

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrConfigWrite        = errors.New("cannot write config file")

	ErrDBPathEmpty      = errors.New("db_path cannot be empty")
	ErrAuthorityInvalid = errors.New("authority must be a non-empty host name of letters, digits, '.', '-' or '_'")
	ErrLogLevelInvalid  = errors.New("log_level must be one of debug, info, warn, error")
	ErrLogFormatInvalid = errors.New("log_format must be text or json")
)
