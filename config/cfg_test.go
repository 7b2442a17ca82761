package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
conversion:
  csv:
    delimiter: ";"
    has_header: true
    skip_rows: 2
    auto_detect_types: false
  json:
    indent: 4
    skip_empty_rows: true
  markdown:
    default_alignment: center
    header_level: 3
  package:
    fix_zip: false
    application: "Test Writer"
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	if cfg.Conversion.CSV.Delimiter != ";" {
		t.Errorf("CSV delimiter = %q, want ;", cfg.Conversion.CSV.Delimiter)
	}

	if !cfg.Conversion.CSV.HasHeader {
		t.Error("Expected HasHeader to be true")
	}

	if cfg.Conversion.CSV.SkipRows != 2 {
		t.Errorf("SkipRows = %d, want 2", cfg.Conversion.CSV.SkipRows)
	}

	if cfg.Conversion.JSON.Indent != 4 {
		t.Errorf("JSON indent = %d, want 4", cfg.Conversion.JSON.Indent)
	}

	if cfg.Conversion.Markdown.DefaultAlignment != MdAlignmentCenter {
		t.Errorf("DefaultAlignment = %v, want center", cfg.Conversion.Markdown.DefaultAlignment)
	}

	if cfg.Conversion.Markdown.HeaderLevel != 3 {
		t.Errorf("HeaderLevel = %d, want 3", cfg.Conversion.Markdown.HeaderLevel)
	}

	if cfg.Conversion.Package.FixZip {
		t.Error("Expected FixZip to be false from config file")
	}

	if cfg.Conversion.Package.Application != "Test Writer" {
		t.Errorf("Application = %q, want Test Writer", cfg.Conversion.Package.Application)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
conversion:
  csv:
    delimiter: ","
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
conversion:
  csv:
    delimiter: ","
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	// Invalid version number
	configWithInvalidVersion := `version: 2
conversion:
  csv:
    delimiter: ","
`

	if err := os.WriteFile(configPath, []byte(configWithInvalidVersion), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for invalid version")
	}
}

func TestLoadConfiguration_BadDelimiter(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_delimiter.yaml")

	// Delimiter must be a single character
	configContent := `version: 1
conversion:
  csv:
    delimiter: "ab"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for multi-character delimiter")
	}
}

func TestLoadConfiguration_BadHeaderLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_level.yaml")

	configContent := `version: 1
conversion:
  markdown:
    header_level: 9
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for header level above 6")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Conversion.Package.Password = SecretString("do not tell")

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	if strings.Contains(string(data), "do not tell") {
		t.Error("Dump() leaked a secret value")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(cfg.Conversion.CSV.Delimiter) != 1 {
		t.Errorf("CSV delimiter = %q, should be a single character", cfg.Conversion.CSV.Delimiter)
	}

	if cfg.Conversion.Markdown.HeaderLevel < 1 || cfg.Conversion.Markdown.HeaderLevel > 6 {
		t.Errorf("HeaderLevel = %d, should be between 1 and 6", cfg.Conversion.Markdown.HeaderLevel)
	}

	if cfg.Conversion.Dates.Date == "" || cfg.Conversion.Dates.DateTime == "" || cfg.Conversion.Dates.Time == "" {
		t.Error("Date layouts should have defaults")
	}

	if cfg.Conversion.Package.Application == "" {
		t.Error("Package application name should have a default")
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	// Partial config that only overrides some values
	partialConfig := `version: 1
conversion:
  package:
    fix_zip: false
`

	if err := os.WriteFile(configPath, []byte(partialConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// Check that explicitly set value is used
	if cfg.Conversion.Package.FixZip {
		t.Error("Expected FixZip to be false from config file")
	}

	// Check that default values are still present for unspecified fields
	if cfg.Conversion.CSV.Delimiter == "" {
		t.Error("CSV delimiter should have default value")
	}
}

func TestOutputFmt_String(t *testing.T) {
	tests := []struct {
		fmt      OutputFmt
		expected string
	}{
		{OutputFmtXlsx, "xlsx"},
		{OutputFmtCsv, "csv"},
		{OutputFmtJson, "json"},
		{OutputFmtMd, "md"},
		{OutputFmt(99), "OutputFmt(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.fmt.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOutputFmt_IsValid(t *testing.T) {
	tests := []struct {
		fmt   OutputFmt
		valid bool
	}{
		{OutputFmtXlsx, true},
		{OutputFmtCsv, true},
		{OutputFmtJson, true},
		{OutputFmtMd, true},
		{OutputFmt(99), false},
		{OutputFmt(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.fmt.String(), func(t *testing.T) {
			got := tt.fmt.IsValid()
			if got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestParseOutputFmt(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  OutputFmt
		shouldErr bool
	}{
		{"xlsx", "xlsx", OutputFmtXlsx, false},
		{"csv", "csv", OutputFmtCsv, false},
		{"json", "json", OutputFmtJson, false},
		{"md", "md", OutputFmtMd, false},
		{"invalid", "invalid", OutputFmt(0), true},
		{"empty", "", OutputFmt(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOutputFmt(tt.input)
			if tt.shouldErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if got != tt.expected {
					t.Errorf("ParseOutputFmt(%q) = %v, want %v", tt.input, got, tt.expected)
				}
			}
		})
	}
}

func TestMustParseOutputFmt(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("MustParseOutputFmt panicked unexpectedly: %v", r)
			}
		}()
		got := MustParseOutputFmt("csv")
		if got != OutputFmtCsv {
			t.Errorf("MustParseOutputFmt(\"csv\") = %v, want %v", got, OutputFmtCsv)
		}
	})

	t.Run("invalid value panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("MustParseOutputFmt should have panicked")
			}
		}()
		MustParseOutputFmt("invalid")
	})
}

func TestOutputFmt_MarshalText(t *testing.T) {
	tests := []struct {
		fmt      OutputFmt
		expected string
	}{
		{OutputFmtXlsx, "xlsx"},
		{OutputFmtCsv, "csv"},
		{OutputFmtJson, "json"},
		{OutputFmtMd, "md"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got, err := tt.fmt.MarshalText()
			if err != nil {
				t.Errorf("MarshalText() error = %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("MarshalText() = %q, want %q", string(got), tt.expected)
			}
		})
	}
}

func TestOutputFmt_UnmarshalText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  OutputFmt
		shouldErr bool
	}{
		{"xlsx", "xlsx", OutputFmtXlsx, false},
		{"csv", "csv", OutputFmtCsv, false},
		{"json", "json", OutputFmtJson, false},
		{"md", "md", OutputFmtMd, false},
		{"invalid", "invalid", OutputFmt(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fmt OutputFmt
			err := fmt.UnmarshalText([]byte(tt.input))
			if tt.shouldErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("UnmarshalText() error = %v", err)
				}
				if fmt != tt.expected {
					t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, fmt, tt.expected)
				}
			}
		})
	}
}

func TestOutputFmtNames(t *testing.T) {
	names := OutputFmtNames()
	expected := []string{"xlsx", "csv", "json", "md"}

	if len(names) != len(expected) {
		t.Errorf("OutputFmtNames() length = %d, want %d", len(names), len(expected))
	}

	for i, name := range expected {
		if names[i] != name {
			t.Errorf("OutputFmtNames()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestOutputFmt_IsPackage(t *testing.T) {
	tests := []struct {
		fmt      OutputFmt
		expected bool
	}{
		{OutputFmtXlsx, true},
		{OutputFmtCsv, false},
		{OutputFmtJson, false},
		{OutputFmtMd, false},
	}

	for _, tt := range tests {
		t.Run(tt.fmt.String(), func(t *testing.T) {
			got := tt.fmt.IsPackage()
			if got != tt.expected {
				t.Errorf("IsPackage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestOutputFmt_Ext(t *testing.T) {
	tests := []struct {
		fmt      OutputFmt
		expected string
	}{
		{OutputFmtXlsx, ".xlsx"},
		{OutputFmtCsv, ".csv"},
		{OutputFmtJson, ".json"},
		{OutputFmtMd, ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.fmt.String(), func(t *testing.T) {
			got := tt.fmt.Ext()
			if got != tt.expected {
				t.Errorf("Ext() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOutputFmt_Ext_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Ext() should panic for invalid format")
		}
	}()
	invalidFmt := OutputFmt(99)
	invalidFmt.Ext()
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	// version: 99 will fail validation (validate:"eq=1").
	// unmarshalConfig should wrap the validation error with context.
	data := []byte("version: 99\n")
	cfg := &Config{}

	_, err := unmarshalConfig(data, cfg, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	// After the fix, the error should be wrapped so that the underlying
	// validation error is reachable via errors.Unwrap / errors.Is.
	// At minimum, the message should contain wrapping context.
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}

	// The error should preserve the chain - errors.Unwrap should return non-nil.
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}
