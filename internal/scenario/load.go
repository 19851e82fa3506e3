package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/surge/internal/assertion"
)

// Load reads, validates and compiles the scenario file at path.
func Load(path string, dsl *assertion.DSL) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data, dsl)
}

// Parse validates and compiles a scenario document.
func Parse(data []byte, dsl *assertion.DSL) (*Scenario, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Compile(f, dsl)
}

// Decode validates data against the schema and decodes it into a File.
func Decode(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ValidationErrors{{Code: ErrDecode, Message: err.Error()}}
	}
	if doc == nil {
		return nil, ValidationErrors{{Code: ErrDecode, Message: "scenario is empty"}}
	}
	if errs := ValidateSchema(doc); len(errs) > 0 {
		return nil, errs
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, ValidationErrors{{Code: ErrDecode, Message: err.Error()}}
	}
	return &f, nil
}
