// =============================================================================
// EDI Codec - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the trading-partner
// profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings, overridable
//      by EDI_* environment variables and command-line flags
//   2. Partner Profiles (partners/*.yaml): Per-partner file patterns and
//      processing options
//
// PRECEDENCE (highest first):
//   flag > environment > config file > partner profile > built-in default
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/internal/processor"
	"github.com/ginjaninja78/edi-codec/internal/validation"
)

// EnvPrefix is the prefix of environment overrides, e.g. EDI_INPUT_DIR.
const EnvPrefix = "EDI"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for EDI files to process.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" validate:"required"`

	// OutputDir receives acknowledgments, translations and reports.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" validate:"required"`

	// ArchiveDir receives inputs after they were processed and accepted.
	// Empty disables archiving.
	// Default: "./archive"
	ArchiveDir string `mapstructure:"archive_dir"`

	// MappingDir holds YAML and XLSX translation rule files loaded at startup
	// on top of the built-in rules.
	// Default: "./mappings"
	MappingDir string `mapstructure:"mapping_dir"`

	// PartnersDir holds the trading-partner profiles.
	// Default: "./partners"
	PartnersDir string `mapstructure:"partners_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// StreamThresholdBytes is the file size above which input is streamed.
	// Default: 52428800 (50 MiB)
	StreamThresholdBytes int64 `mapstructure:"stream_threshold_bytes" validate:"gte=0"`

	// MaxSegmentSize bounds one segment in streaming mode. Zero selects the
	// parser default.
	MaxSegmentSize int `mapstructure:"max_segment_size" validate:"gte=0"`

	// Encoding is the IANA charset of the input files.
	// Default: "" (UTF-8)
	Encoding string `mapstructure:"encoding"`

	// Concurrency is the number of documents processed at once.
	// Zero uses one worker per CPU.
	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`

	// TaskTimeout bounds the processing of one file.
	// Default: 5m
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"gte=0"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file names. The extension is added
	// per output kind.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {kind}      - ack, translated or report
	//   {uuid}      - The processing run id
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{original}_{kind}"
	OutputNameFormat string `mapstructure:"output_name_format" validate:"required"`

	// ReportFormat is "xml" or "json".
	// Default: "xml"
	ReportFormat string `mapstructure:"report_format" validate:"oneof=xml json"`

	// =========================================================================
	// LOGGING AND DEFAULTS
	// =========================================================================

	Logging  logging.Config     `mapstructure:"logging"`
	Defaults ProcessingDefaults `mapstructure:"defaults"`
}

// ProcessingDefaults are the processing options applied to every file unless
// a partner profile or a flag overrides them.
type ProcessingDefaults struct {
	Strictness             string        `mapstructure:"strictness" yaml:"strictness" validate:"omitempty,oneof=strict lenient"`
	AutoCorrect            bool          `mapstructure:"auto_correct" yaml:"auto_correct"`
	GenerateAcknowledgment bool          `mapstructure:"generate_acknowledgment" yaml:"generate_acknowledgment"`
	TranslateTo            string        `mapstructure:"translate_to" yaml:"translate_to" validate:"omitempty,dialect"`
	IndustryProfile        string        `mapstructure:"industry_profile" yaml:"industry_profile" validate:"omitempty,profile"`
	Timeout                time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// =============================================================================
// PARTNER CONFIGURATION STRUCTURE
// =============================================================================

// PartnerConfig holds the configuration for one trading partner.
type PartnerConfig struct {
	// Name is the human-readable partner name, used in logs.
	Name string `yaml:"name" validate:"required"`

	// Code is a short identifier; it defaults to the file name.
	Code string `yaml:"code"`

	// FilePatterns are glob patterns matched against the input file name.
	// Examples:
	//   - "acme_*.edi"
	//   - "*_IFTSTA_*.txt"
	FilePatterns []string `yaml:"file_patterns" validate:"required,min=1,dive,required,glob"`

	// Processing overrides the main defaults. Unset fields keep the default.
	Processing PartnerOverrides `yaml:"processing"`
}

// PartnerOverrides are the options a partner may override.
type PartnerOverrides struct {
	Strictness             string         `yaml:"strictness" validate:"omitempty,oneof=strict lenient"`
	AutoCorrect            *bool          `yaml:"auto_correct"`
	GenerateAcknowledgment *bool          `yaml:"generate_acknowledgment"`
	TranslateTo            *string        `yaml:"translate_to" validate:"omitempty,dialect"`
	IndustryProfile        string         `yaml:"industry_profile" validate:"omitempty,profile"`
	Timeout                *time.Duration `yaml:"timeout"`
}

// Matches reports whether the partner claims the file name.
func (p *PartnerConfig) Matches(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range p.FilePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	profiles := grammar.Builtin()
	_ = v.RegisterValidation("dialect", func(fl validator.FieldLevel) bool {
		_, err := edi.ParseDialectVersion(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("profile", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "auto" {
			return true
		}
		_, ok := profiles.Profile(name)
		return ok
	})
	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, err := filepath.Match(fl.Field().String(), "")
		return err == nil
	})
	return v
}

// validateStruct runs the struct tags and flattens the failures into one
// readable error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Validate checks the main configuration.
func (c *MainConfig) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("archive_dir", "./archive")
	v.SetDefault("mapping_dir", "./mappings")
	v.SetDefault("partners_dir", "./partners")
	v.SetDefault("stream_threshold_bytes", processor.DefaultStreamThreshold)
	v.SetDefault("concurrency", 0)
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("output_name_format", "{original}_{kind}")
	v.SetDefault("report_format", "xml")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("defaults.strictness", "strict")
	v.SetDefault("defaults.generate_acknowledgment", true)
}

// LoadMainConfig loads the main configuration through v.
//
// PARAMETERS:
//   - v: The viper instance; flags may already be bound to it.
//   - configPath: An explicit config file. When empty, "config.yaml" is
//     searched in the working directory and a missing file is not an error.
//
// RETURNS:
//   - A pointer to the validated MainConfig.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func LoadMainConfig(v *viper.Viper, configPath string) (*MainConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadPartnerConfigs loads all partner profiles from a directory, sorted by
// file name. A missing directory yields no partners.
func LoadPartnerConfigs(fs afero.Fs, dir string) ([]*PartnerConfig, error) {
	if dir == "" {
		return nil, nil
	}
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check partner directory: %w", err)
	}
	if !exists {
		return nil, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := afero.Glob(fs, filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list partner files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	partners := make([]*PartnerConfig, 0, len(files))
	codes := make(map[string]string)
	for _, file := range files {
		p, err := loadPartnerConfig(fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if prev, dup := codes[p.Code]; dup {
			return nil, fmt.Errorf("partner code %q defined in both %s and %s", p.Code, prev, file)
		}
		codes[p.Code] = file
		partners = append(partners, p)
	}
	return partners, nil
}

func loadPartnerConfig(fs afero.Fs, path string) (*PartnerConfig, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	var p PartnerConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if p.Code == "" {
		p.Code = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := validateStruct(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MatchPartner returns the first partner claiming the file, or nil.
func MatchPartner(partners []*PartnerConfig, name string) *PartnerConfig {
	for _, p := range partners {
		if p.Matches(name) {
			return p
		}
	}
	return nil
}

// FindPartner returns the partner with the given code.
func FindPartner(partners []*PartnerConfig, code string) (*PartnerConfig, bool) {
	for _, p := range partners {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return nil, false
}

// =============================================================================
// OPTION RESOLUTION
// =============================================================================

// Options resolves the processing options for a file handled by partner p
// (nil for none).
func (c *MainConfig) Options(p *PartnerConfig) (processor.Options, error) {
	d := c.Defaults
	if p != nil {
		o := p.Processing
		if o.Strictness != "" {
			d.Strictness = o.Strictness
		}
		if o.AutoCorrect != nil {
			d.AutoCorrect = *o.AutoCorrect
		}
		if o.GenerateAcknowledgment != nil {
			d.GenerateAcknowledgment = *o.GenerateAcknowledgment
		}
		if o.TranslateTo != nil {
			d.TranslateTo = *o.TranslateTo
		}
		if o.IndustryProfile != "" {
			d.IndustryProfile = o.IndustryProfile
		}
		if o.Timeout != nil {
			d.Timeout = *o.Timeout
		}
	}
	return d.Options()
}

// Options converts the defaults into processor options.
func (d ProcessingDefaults) Options() (processor.Options, error) {
	strictness, err := validation.ParseStrictness(d.Strictness)
	if err != nil {
		return processor.Options{}, err
	}
	target, err := edi.ParseDialectVersion(d.TranslateTo)
	if err != nil {
		return processor.Options{}, fmt.Errorf("invalid translate_to: %w", err)
	}
	return processor.Options{
		Strictness:             strictness,
		AutoCorrect:            d.AutoCorrect,
		GenerateAcknowledgment: d.GenerateAcknowledgment,
		TranslateTo:            target,
		IndustryProfile:        d.IndustryProfile,
		Timeout:                d.Timeout,
	}, nil
}
