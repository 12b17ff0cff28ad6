package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DocumentFile is the on-disk form of an estimate, invoice or work order.
// The same structure is accepted as JSON or YAML.
type DocumentFile struct {
	Document DocumentImport `json:"document" yaml:"document"`
	Items    []ItemImport   `json:"items" yaml:"items"`
}

type DocumentImport struct {
	// ShortID is optional; the next free ID for the kind is assigned when empty.
	ShortID       string   `json:"short_id,omitempty" yaml:"short_id,omitempty"`
	Kind          string   `json:"kind" yaml:"kind"`
	Title         string   `json:"title" yaml:"title"`
	Customer      string   `json:"customer,omitempty" yaml:"customer,omitempty"`
	Location      string   `json:"location,omitempty" yaml:"location,omitempty"`
	ProjectType   string   `json:"project_type,omitempty" yaml:"project_type,omitempty"`
	SquareFootage *float64 `json:"square_footage,omitempty" yaml:"square_footage,omitempty"`
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
}

type ItemImport struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit         string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Phase        string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	DurationDays *float64 `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
	DependsOn    []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the decoder from the file extension; anything that
// is not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadDocumentFile reads and decodes a document import file.
func LoadDocumentFile(path string) (*DocumentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocumentFile(data, FormatForPath(path))
}

// ParseDocumentFile decodes data. Unknown fields are rejected so typos
// such as "depend_on" do not silently drop information.
func ParseDocumentFile(data []byte, format Format) (*DocumentFile, error) {
	var f DocumentFile
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing yaml document file: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing json document file: %w", err)
		}
	}
	return &f, nil
}
