package monitor

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed embedded_categories.yaml
var defaultCategoriesYAML []byte

// Category describes one monitored class of operation.
type Category struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// LoadCategoriesFromFile loads category definitions from a YAML file.
func LoadCategoriesFromFile(filename string) ([]Category, error) {
	if err := validateCategoryFilePath(filename); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	// #nosec G304 - path is validated above
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return categories, nil
}

// DefaultCategories loads the embedded category registry.
func DefaultCategories() ([]Category, error) {
	var categories []Category
	if err := yaml.Unmarshal(defaultCategoriesYAML, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default categories: %w", err)
	}
	return categories, nil
}

// Describe looks up the configured description for a category name,
// falling back to the name itself for categories outside the registry.
func Describe(categories []Category, name string) string {
	for _, c := range categories {
		if c.Name == name {
			return c.Description
		}
	}
	return name
}

func validateCategoryFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("category files must have .yaml or .yml extension")
	}
	return nil
}
