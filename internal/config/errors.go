package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors so that callers
// can use errors.Is() while still getting human-readable messages.
var (
	// ErrNoRootURL is returned when the root URL is empty.
	ErrNoRootURL = errors.New("no root URL specified")

	// ErrInvalidRootURL is returned when the root URL is not an absolute
	// http or https URL.
	ErrInvalidRootURL = errors.New("invalid root URL: must be an absolute http or https URL")

	// ErrInvalidPoolSize is returned when the pool size is not positive.
	ErrInvalidPoolSize = errors.New("invalid pool size: must be positive")

	// ErrInvalidMaxPages is returned when the page ceiling is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidSummaryFormat is returned for an unknown --summary value.
	ErrInvalidSummaryFormat = errors.New("invalid summary format: must be text, markdown, json or none")

	// ErrNoOutputPath is returned when the output path is empty.
	ErrNoOutputPath = errors.New("no output path specified")

	// ErrInvalidContracts is returned when the extraction contract overrides
	// of the configuration file cannot be used.
	ErrInvalidContracts = errors.New("invalid extraction contracts")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
