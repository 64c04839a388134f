package config

import "time"

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(noAuth bool, username, password, secret string, ttl time.Duration) *Auth {
	return &Auth{
		noAuth:      noAuth,
		username:    username,
		password:    password,
		tokenSecret: secret,
		tokenTTL:    ttl,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, dsn string) *Repository {
	return &Repository{
		backend:   backend,
		projectID: projectID,
		dsn:       dsn,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewQuestionnaireForTest creates a Questionnaire config for testing purposes
func NewQuestionnaireForTest(path string) *Questionnaire {
	return &Questionnaire{path: path}
}
