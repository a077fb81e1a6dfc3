// Package config loads runtime settings for the retention rule.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/younsl/retention-rule/internal/retention"
)

// ErrInvalidExpected is returned when the expectation table cannot be parsed
var ErrInvalidExpected = errors.New("invalid expected retention table")

// EnvPrefix is prepended to every setting read from the environment
const EnvPrefix = "RETENTION"

// Settings holds the runtime configuration
type Settings struct {
	Expected     string `mapstructure:"expected"`      // JSON object, from EXPECTED
	ExpectedFile string `mapstructure:"expected_file"` // YAML or JSON file, overrides Expected
	Region       string `mapstructure:"region"`
	EndpointURL  string `mapstructure:"endpoint_url"`
	LogLevel     string `mapstructure:"log_level"`
}

// NewViper returns a viper instance with defaults and environment bindings applied
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// EXPECTED and the AWS variables are read without the prefix
	_ = v.BindEnv("expected", "EXPECTED")
	_ = v.BindEnv("region", EnvPrefix+"_REGION", "AWS_REGION")
	_ = v.BindEnv("endpoint_url", EnvPrefix+"_ENDPOINT_URL", "AWS_ENDPOINT_URL")
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("expected", "")
	v.SetDefault("expected_file", "")
	v.SetDefault("region", "")
	v.SetDefault("endpoint_url", "")
	v.SetDefault("log_level", "info")
}

// Load reads Settings from v
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return s, nil
}

// ExpectationTable returns the table configured by s.
// ExpectedFile takes precedence over the EXPECTED variable.
func (s Settings) ExpectationTable() (retention.ExpectationTable, error) {
	if s.ExpectedFile != "" {
		return LoadExpectedFile(s.ExpectedFile)
	}
	return ParseExpected(s.Expected)
}

// ParseExpected parses the EXPECTED JSON object. An empty value yields an empty table;
// malformed JSON or non-positive day counts are errors.
func ParseExpected(raw string) (retention.ExpectationTable, error) {
	table := retention.ExpectationTable{}
	if strings.TrimSpace(raw) == "" {
		return table, nil
	}

	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpected, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidExpected)
	}

	for dataset, value := range values {
		days, err := toDays(value)
		if err != nil {
			return nil, fmt.Errorf("%w: dataset %s: %v", ErrInvalidExpected, dataset, err)
		}
		table[dataset] = days
	}
	return table, nil
}

// LoadExpectedFile reads an expectation table from a YAML (or JSON) file
func LoadExpectedFile(path string) (retention.ExpectationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expected file: %w", err)
	}

	var values map[string]int
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidExpected, path, err)
	}

	table := make(retention.ExpectationTable, len(values))
	for dataset, days := range values {
		if days <= 0 {
			return nil, fmt.Errorf("%w: dataset %s: days must be positive, got %d", ErrInvalidExpected, dataset, days)
		}
		table[dataset] = days
	}
	return table, nil
}

func toDays(value any) (int, error) {
	var days int
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("not an integer: %s", v)
		}
		days = int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", v)
		}
		days = n
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", days)
	}
	return days, nil
}
