package alias

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed system_aliases.yaml
var systemAliases []byte

// SystemAliases returns the predefined aliases shipped with the binary
func SystemAliases() ([]Definition, error) {
	return parseDefinitions(systemAliases)
}

func parseDefinitions(data []byte) ([]Definition, error) {
	var defs []Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse system aliases: %w", err)
	}
	for i := range defs {
		defs[i].System = true
	}
	return defs, nil
}
