package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/context-store/internal/core/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, yaml/yml and xlsx. Blank means json.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "parse export format", fmt.Errorf("unsupported format %q", raw))
	}
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

func Encode(w io.Writer, format Format, bundle *domain.ExportBundle) error {
	if bundle == nil {
		return errors.New("encode export: nil bundle")
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bundle); err != nil {
			return fmt.Errorf("encode yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush yaml export: %w", err)
		}
		return nil
	case FormatXLSX:
		return encodeXLSX(w, bundle)
	default:
		return fmt.Errorf("encode export: unsupported format %q", format)
	}
}

// Decode reads an import file. The format is picked from the file extension;
// only json and yaml can be imported.
func Decode(filename string, r io.Reader) (*domain.ExportBundle, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	var bundle domain.ExportBundle
	switch ext {
	case "json":
		if err := json.NewDecoder(r).Decode(&bundle); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "decode json import", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&bundle); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "decode yaml import", err)
		}
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode import",
			fmt.Errorf("unsupported file type %q, expected .json, .yaml or .yml", filepath.Ext(filename)))
	}
	return &bundle, nil
}
