package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	RequestPath string
	OutputPath  string

	// Oracle
	LLMBaseURL  string
	LLMModel    string
	SearchModel string
	ReportModel string
	LLMAPIKey   string

	// Behavior
	Parallel bool
	Timeout  time.Duration
	CacheDir string
	Verbose  bool

	// Async task store
	TaskTTL      time.Duration
	TaskCapacity int
}
