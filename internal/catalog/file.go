package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
	"gopkg.in/yaml.v3"
)

// LoadFile reads an override catalog from a YAML file with the four lists
// drop, create, copy and insert:
//
//	drop:
//	  - name: songplays
//	    sql: DROP TABLE IF EXISTS songplays
//	copy:
//	  - name: staging_events
//	    source: log
//	    sql: COPY staging_events FROM {{literal .Source}} {{.Credentials}} ...
//
// COPY entries may use the same template values as the built-in catalog.
// source is log or song; it may be omitted only for entries named after a
// built-in staging table.
func LoadFile(path string) (dwh.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dwh.Catalog{}, fmt.Errorf("catalog file not found: %s: %w", path, dwh.ErrCatalogInvalid)
		}
		return dwh.Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (dwh.Catalog, error) {
	var cat dwh.Catalog
	if err := decodeStrict(data, &cat); err != nil {
		return dwh.Catalog{}, fmt.Errorf("%w: %w", dwh.ErrCatalogInvalid, err)
	}
	if err := cat.Validate(); err != nil {
		return dwh.Catalog{}, err
	}
	return cat, nil
}

func decodeStrict(data []byte, out *dwh.Catalog) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
