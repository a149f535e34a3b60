// Package output serializes command results to stdout.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/screenlens/screenlens/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ObserveResult is the top-level output of the `observe` command.
type ObserveResult struct {
	StateID  string          `yaml:"state_id"           json:"state_id"`
	Display  int             `yaml:"display"            json:"display"`
	Width    int             `yaml:"w"                  json:"w"`
	Height   int             `yaml:"h"                  json:"h"`
	TS       int64           `yaml:"ts"                 json:"ts"`
	Image    string          `yaml:"image,omitempty"    json:"image,omitempty"`
	Elements []model.Element `yaml:"elements"           json:"elements"`
}

// ActResult is the top-level output of the `act` command and its aliases.
type ActResult struct {
	Success bool          `yaml:"success"           json:"success"`
	Action  string        `yaml:"action"            json:"action"`
	StateID string        `yaml:"state_id,omitempty" json:"state_id,omitempty"`
	Point   *model.Point  `yaml:"point,omitempty"   json:"point,omitempty"`
	To      *model.Point  `yaml:"to,omitempty"      json:"to,omitempty"`
	Message string        `yaml:"message,omitempty" json:"message,omitempty"`
	Error   *model.Error  `yaml:"error,omitempty"   json:"error,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
