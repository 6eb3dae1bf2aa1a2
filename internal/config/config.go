// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the pipeline configuration from a YAML file,
// SQUAD_LOCALIZE_* environment variables, command-line flags, and the
// .secrets/ directory, then validates it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/squad-localize/internal/secrets"
	"github.com/pdiddy/squad-localize/pkg/types"
)

// EnvPrefix prefixes environment overrides, e.g.
// SQUAD_LOCALIZE_TRANSLATION_BACKEND=openai.
const EnvPrefix = "SQUAD_LOCALIZE"

const configName = "squad-localize"

// apiKeyEnv names the conventional environment variable for each backend's key.
var apiKeyEnv = map[types.TranslationBackend]string{
	types.BackendGoogle:         "GOOGLE_TRANSLATE_API_KEY",
	types.BackendOpenAI:         "OPENAI_API_KEY",
	types.BackendLibreTranslate: "LIBRETRANSLATE_API_KEY",
}

// Loader reads and validates a PipelineConfig.
type Loader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
	secrets    map[string]string
}

// NewLoader creates a loader for configFile. An empty configFile searches
// for squad-localize.yaml in the working directory and in
// $HOME/.config/squad-localize. keys supplies API keys loaded from the
// secrets directory, by file name, and may be nil.
func NewLoader(configFile string, keys map[string]string) (*Loader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{viper: v, validator: validate, translator: trans, secrets: keys}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("translation.backend", string(types.BackendGoogle))
	v.SetDefault("translation.source_language", "en")
	v.SetDefault("translation.target_language", "si")
	v.SetDefault("translation.input_file", filepath.Join("data", "squad", "train-v1.1.json"))
	v.SetDefault("translation.output_file", filepath.Join("data", "translated", "train-si.json"))
	v.SetDefault("translation.max_contexts", 1000)
	v.SetDefault("translation.batch_size", 5)
	v.SetDefault("translation.segment_limit", 128)
	v.SetDefault("translation.request_delay", "100ms")
	v.SetDefault("translation.max_retries", 3)
	v.SetDefault("translation.timeout", "60s")
	v.SetDefault("translation.base_url", "")
	v.SetDefault("translation.model", "gpt-4o-mini")
	v.SetDefault("translation.api_key", "")
	v.SetDefault("translation.cache_dir", filepath.Join("data", "cache"))
	v.SetDefault("translation.checkpoint_dir", filepath.Join("data", "checkpoint"))

	v.SetDefault("cleaning.input_file", filepath.Join("data", "translated", "train-si.json"))
	v.SetDefault("cleaning.cleaned_output_file", filepath.Join("data", "cleaned", "train-si.json"))
	v.SetDefault("cleaning.error_output_file", filepath.Join("data", "cleaned", "errors.json"))
	v.SetDefault("cleaning.report_format", string(types.ReportJSON))
	v.SetDefault("cleaning.locator", string(types.LocatorFirst))
	v.SetDefault("cleaning.answer_policy", string(types.AnswerPolicyReject))
	v.SetDefault("cleaning.workers", 0)
	v.SetDefault("cleaning.filter.excluded_pattern", "[a-zA-Z]")
	v.SetDefault("cleaning.filter.allowed_scripts", []string{})
}

// BindFlag lets a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	if err := l.viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("binding %s: %w", key, err)
	}
	return nil
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.viper.ConfigFileUsed()
}

// Load reads the configuration, fills in the backend API key, and validates
// the result. A missing config file is not an error unless it was named
// explicitly.
func (l *Loader) Load() (*types.PipelineConfig, error) {
	v := l.viper

	for backend, env := range apiKeyEnv {
		if err := v.BindEnv(keySlot(backend), env); err != nil {
			return nil, fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if cfg.Translation.APIKey == "" {
		cfg.Translation.APIKey = l.apiKey(cfg.Translation.Backend)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg and reports every failing field by its config name.
func (l *Loader) Validate(cfg *types.PipelineConfig) error {
	err := l.validator.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validating configuration: %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(l.translator))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// apiKey resolves the backend key from its conventional environment
// variable, then from the secrets directory.
func (l *Loader) apiKey(backend types.TranslationBackend) string {
	if key := l.viper.GetString(keySlot(backend)); key != "" {
		return key
	}
	return l.secrets[secrets.KeyFor(backend)]
}

func keySlot(backend types.TranslationBackend) string {
	return "keys." + string(backend)
}
