package shop

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	fileExtensionJSON = ".json"
	fileExtensionYAML = ".yaml"
	fileExtensionYML  = ".yml"

	errorMessageUnsupportedFormat = "shop: unsupported configuration format"
	errorMessageEmptyDocument     = "empty document"
	errorMessageReadConfiguration = "shop: read configuration"
)

// ErrUnsupportedFormat indicates a configuration file with an unknown extension.
var ErrUnsupportedFormat = errors.New(errorMessageUnsupportedFormat)

// FormatForPath infers the configuration format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case fileExtensionJSON:
		return FormatJSON, nil
	case fileExtensionYAML, fileExtensionYML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decode parses a configuration document. Shape errors are reported as
// ErrInvalidConfiguration; the result is not validated.
func Decode(document []byte, format Format) (Configuration, error) {
	if len(bytes.TrimSpace(document)) == 0 {
		return Configuration{}, fmt.Errorf("%w: %s", ErrInvalidConfiguration, errorMessageEmptyDocument)
	}

	var configuration Configuration
	switch format {
	case FormatJSON:
		if decodeErr := json.Unmarshal(document, &configuration); decodeErr != nil {
			return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, decodeErr)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(document))
		if decodeErr := decoder.Decode(&configuration); decodeErr != nil {
			if errors.Is(decodeErr, io.EOF) {
				return Configuration{}, fmt.Errorf("%w: %s", ErrInvalidConfiguration, errorMessageEmptyDocument)
			}
			return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, decodeErr)
		}
	default:
		return Configuration{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return configuration, nil
}

// LoadFile reads, decodes and validates one configuration file. A missing ID
// defaults to the file name without extension.
func LoadFile(path string) (Configuration, error) {
	format, formatErr := FormatForPath(path)
	if formatErr != nil {
		return Configuration{}, formatErr
	}

	document, readErr := os.ReadFile(path)
	if readErr != nil {
		return Configuration{}, fmt.Errorf("%s %s: %w", errorMessageReadConfiguration, path, readErr)
	}

	configuration, decodeErr := Decode(document, format)
	if decodeErr != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, decodeErr)
	}

	if strings.TrimSpace(configuration.ID) == "" {
		configuration.ID = strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	if validationErr := configuration.Validate(); validationErr != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, validationErr)
	}
	return configuration, nil
}
