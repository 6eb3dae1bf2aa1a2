// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TranslationBackend identifies the machine-translation service.
type TranslationBackend string

const (
	BackendGoogle         TranslationBackend = "google"
	BackendLibreTranslate TranslationBackend = "libretranslate"
	BackendOpenAI         TranslationBackend = "openai"
)

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// BaseURL overrides the backend's default endpoint (tests, self-hosted servers).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
}

// TranslationConfig holds settings for the translation stage.
type TranslationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the translation service: google, libretranslate, or openai.
	Backend TranslationBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=google libretranslate openai"`

	// SourceLanguage and TargetLanguage are BCP 47 language tags (e.g. "en", "si").
	SourceLanguage string `json:"source_language" yaml:"source_language" mapstructure:"source_language" validate:"required,langtag"`
	TargetLanguage string `json:"target_language" yaml:"target_language" mapstructure:"target_language" validate:"required,langtag,nefield=SourceLanguage"`

	InputFile  string `json:"input_file" yaml:"input_file" mapstructure:"input_file" validate:"required"`
	OutputFile string `json:"output_file" yaml:"output_file" mapstructure:"output_file" validate:"required"`

	// MaxContexts caps the number of paragraphs translated in one run (default 1000).
	MaxContexts int `json:"max_contexts" yaml:"max_contexts" mapstructure:"max_contexts" validate:"gt=0"`

	// BatchSize is the number of contexts sent together (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`

	// SegmentLimit is the maximum number of strings per backend call (default 128).
	SegmentLimit int `json:"segment_limit" yaml:"segment_limit" mapstructure:"segment_limit" validate:"gt=0,lte=128"`

	// RequestDelay is the pause between consecutive backend calls (default 100ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay" validate:"gte=0"`

	// MaxRetries is the number of retry attempts for failed backend calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`

	// Model is the chat model used by the openai backend.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the backend. Loaded from env or .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// CacheDir holds the translation memory database. Empty disables it.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// CheckpointDir holds the resumable per-article checkpoint.
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir" mapstructure:"checkpoint_dir" validate:"required"`
}

// LocatorStrategy selects how an answer is placed when it occurs more than once.
type LocatorStrategy string

const (
	LocatorFirst   LocatorStrategy = "first"
	LocatorNearest LocatorStrategy = "nearest"
)

// AnswerPolicy selects how QA pairs with other than one answer are handled.
type AnswerPolicy string

const (
	// AnswerPolicyReject reports multi-answer pairs instead of truncating them.
	AnswerPolicyReject AnswerPolicy = "reject"

	// AnswerPolicyFirst consumes the first answer and ignores the rest.
	AnswerPolicyFirst AnswerPolicy = "first"
)

// ReportFormat selects the encoding of the error report.
type ReportFormat string

const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// FilterConfig configures the untranslated-content filter.
// AllowedScripts, when set, takes precedence over ExcludedPattern.
type FilterConfig struct {
	// ExcludedPattern is a regular expression character class; a match anywhere
	// in a question or answer rejects the pair (default "[a-zA-Z]").
	ExcludedPattern string `json:"excluded_pattern" yaml:"excluded_pattern" mapstructure:"excluded_pattern"`

	// AllowedScripts lists Unicode script names (e.g. "Sinhala") every letter must belong to.
	AllowedScripts []string `json:"allowed_scripts,omitempty" yaml:"allowed_scripts,omitempty" mapstructure:"allowed_scripts" validate:"dive,script"`
}

// CleaningConfig holds settings for the cleaning stage.
type CleaningConfig struct {
	InputFile         string       `json:"input_file" yaml:"input_file" mapstructure:"input_file" validate:"required"`
	CleanedOutputFile string       `json:"cleaned_output_file" yaml:"cleaned_output_file" mapstructure:"cleaned_output_file" validate:"required"`
	ErrorOutputFile   string       `json:"error_output_file" yaml:"error_output_file" mapstructure:"error_output_file" validate:"required"`
	ReportFormat      ReportFormat `json:"report_format" yaml:"report_format" mapstructure:"report_format" validate:"oneof=json yaml"`

	Locator      LocatorStrategy `json:"locator" yaml:"locator" mapstructure:"locator" validate:"oneof=first nearest"`
	AnswerPolicy AnswerPolicy    `json:"answer_policy" yaml:"answer_policy" mapstructure:"answer_policy" validate:"oneof=reject first"`

	// Workers bounds the number of articles cleaned concurrently. 0 uses NumCPU.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0"`

	Filter FilterConfig `json:"filter" yaml:"filter" mapstructure:"filter"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Translation TranslationConfig `json:"translation" yaml:"translation" mapstructure:"translation"`
	Cleaning    CleaningConfig    `json:"cleaning" yaml:"cleaning" mapstructure:"cleaning"`
}
