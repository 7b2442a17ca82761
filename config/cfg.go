package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// CSVConfig controls delimited text import and export.
	CSVConfig struct {
		Delimiter       string `yaml:"delimiter" validate:"required,len=1"`
		HasHeader       bool   `yaml:"has_header"`
		SkipRows        int    `yaml:"skip_rows" validate:"gte=0"`
		AutoDetectTypes bool   `yaml:"auto_detect_types"`
		Encoding        string `yaml:"encoding"`
		WriteBOM        bool   `yaml:"write_bom"`
		UseCRLF         bool   `yaml:"use_crlf"`
	}

	// DateFormatsConfig holds Go layout strings applied when plain text
	// output needs date or time values rendered.
	DateFormatsConfig struct {
		Date     string `yaml:"date" validate:"required"`
		DateTime string `yaml:"datetime" validate:"required"`
		Time     string `yaml:"time" validate:"required"`
	}

	JSONConfig struct {
		Indent            int  `yaml:"indent" validate:"gte=0"`
		IncludeSheetNames bool `yaml:"include_sheet_names"`
		SkipEmptyRows     bool `yaml:"skip_empty_rows"`
	}

	MarkdownConfig struct {
		DefaultAlignment  MdAlignment `yaml:"default_alignment" validate:"gte=0"`
		HeaderLevel       int         `yaml:"header_level" validate:"min=1,max=6"`
		IncludeSheetNames bool        `yaml:"include_sheet_names"`
		FirstRowAsHeader  bool        `yaml:"first_row_as_header"`
		EscapePipes       bool        `yaml:"escape_pipes"`
		CompactFormat     bool        `yaml:"compact_format"`
		SimpleSeparators  bool        `yaml:"simple_separators"`
		SkipEmptyRows     bool        `yaml:"skip_empty_rows"`
		DetectTitleRows   bool        `yaml:"detect_title_rows"`
	}

	// PackageConfig controls workbook package output.
	PackageConfig struct {
		FixZip      bool         `yaml:"fix_zip"`
		Application string       `yaml:"application"`
		Password    SecretString `yaml:"password"`
	}

	ConversionConfig struct {
		OutputNameTemplate    string            `yaml:"output_name_template"`
		FileNameTransliterate bool              `yaml:"file_name_transliterate"`
		Dates                 DateFormatsConfig `yaml:"dates"`
		CSV                   CSVConfig         `yaml:"csv"`
		JSON                  JSONConfig        `yaml:"json"`
		Markdown              MarkdownConfig    `yaml:"markdown"`
		Package               PackageConfig     `yaml:"package"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Conversion ConversionConfig `yaml:"conversion"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
