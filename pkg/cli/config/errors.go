package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = goerr.New("configuration file not found")
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrInvalidBackend      = goerr.New("invalid repository backend")
	ErrMissingProjectID    = goerr.New("firestore-project-id is required when using firestore backend")
	ErrMissingDSN          = goerr.New("database DSN is required when using sql backend")
	ErrMissingPassword     = goerr.New("admin password is required unless --no-auth is set")
	ErrInvalidLogLevel     = goerr.New("invalid log level")
	ErrInvalidLogFormat    = goerr.New("invalid log format")
	ErrInvalidQuestion     = goerr.New("invalid question")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	BackendKey       = "backend"
	QuestionIDKey    = "question_id"
	QuestionIndexKey = "question_index"
)
