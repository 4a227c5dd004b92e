package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

type catalogFile struct {
	Categories []string `yaml:"categories"`
}

// LoadCatalog reads the required-document catalog from a YAML file. An
// empty path falls back to the built-in checklist.
func LoadCatalog(path string) (domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var parsed catalogFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	catalog := make(domain.Catalog, 0, len(parsed.Categories))
	for _, category := range parsed.Categories {
		if trimmed := strings.TrimSpace(category); trimmed != "" {
			catalog = append(catalog, trimmed)
		}
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no categories", path)
	}
	return catalog, nil
}
