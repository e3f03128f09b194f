package shop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	errorMessageMissingShopsDirectory = "shop: missing shops directory"
	errorMessageDuplicateShop         = "shop: duplicate shop identifier"
	errorMessageMissingShopID         = "shop: missing shop identifier"
	errorMessageReadShopsDirectory    = "shop: read shops directory"
)

var (
	// ErrMissingShopsDirectory indicates the catalog directory configuration was omitted.
	ErrMissingShopsDirectory = errors.New(errorMessageMissingShopsDirectory)
	// ErrDuplicateShop indicates two configurations share an identifier.
	ErrDuplicateShop = errors.New(errorMessageDuplicateShop)
	// ErrMissingShopID indicates a catalog entry without an identifier.
	ErrMissingShopID = errors.New(errorMessageMissingShopID)
)

// Catalog is an immutable set of validated configurations keyed by ID.
// It is safe for concurrent readers.
type Catalog struct {
	configurationsByID map[string]Configuration
	sortedIDs          []string
}

// NewCatalog validates the configurations and indexes them by ID.
func NewCatalog(configurations ...Configuration) (*Catalog, error) {
	catalog := &Catalog{
		configurationsByID: make(map[string]Configuration, len(configurations)),
		sortedIDs:          make([]string, 0, len(configurations)),
	}
	for _, configuration := range configurations {
		if strings.TrimSpace(configuration.ID) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingShopID, configuration.ShopName)
		}
		if validationErr := configuration.Validate(); validationErr != nil {
			return nil, fmt.Errorf("%s: %w", configuration.ID, validationErr)
		}
		if _, exists := catalog.configurationsByID[configuration.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShop, configuration.ID)
		}
		catalog.configurationsByID[configuration.ID] = configuration
		catalog.sortedIDs = append(catalog.sortedIDs, configuration.ID)
	}
	sort.Strings(catalog.sortedIDs)
	return catalog, nil
}

// LoadCatalog loads every JSON or YAML configuration file in the directory.
// Subdirectories and other files are ignored.
func LoadCatalog(directory string) (*Catalog, error) {
	trimmedDirectory := strings.TrimSpace(directory)
	if trimmedDirectory == "" {
		return nil, ErrMissingShopsDirectory
	}

	entries, readErr := os.ReadDir(trimmedDirectory)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageReadShopsDirectory, readErr)
	}

	configurations := make([]Configuration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, formatErr := FormatForPath(entry.Name()); formatErr != nil {
			continue
		}
		configuration, loadErr := LoadFile(filepath.Join(trimmedDirectory, entry.Name()))
		if loadErr != nil {
			return nil, loadErr
		}
		configurations = append(configurations, configuration)
	}
	return NewCatalog(configurations...)
}

// Lookup returns the configuration registered under the identifier.
func (catalog *Catalog) Lookup(identifier string) (Configuration, bool) {
	if catalog == nil {
		return Configuration{}, false
	}
	configuration, found := catalog.configurationsByID[strings.TrimSpace(identifier)]
	return configuration, found
}

// List returns the configurations ordered by ID.
func (catalog *Catalog) List() []Configuration {
	if catalog == nil {
		return nil
	}
	configurations := make([]Configuration, 0, len(catalog.sortedIDs))
	for _, identifier := range catalog.sortedIDs {
		configurations = append(configurations, catalog.configurationsByID[identifier])
	}
	return configurations
}

func (catalog *Catalog) Len() int {
	if catalog == nil {
		return 0
	}
	return len(catalog.sortedIDs)
}
