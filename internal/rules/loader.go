package rules

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a rule document from the given path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rule document %s", path)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "rule document %s", path)
	}

	return doc, nil
}

// Parse parses JSON or YAML data into a Document.
//
// JSON input is first decoded into a generic tree (keeping numbers exact)
// and re-encoded as YAML, so both formats go through the same YAML schema
// and unmarshalers. This also accepts tab-indented JSON, which is not
// valid YAML.
func Parse(data []byte) (*Document, error) {
	if looksLikeJSON(data) {
		converted, err := jsonToYAML(data)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse rule JSON")
		}

		data = converted
	}

	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse rule document")
	}

	applyDefaults(&doc)

	return &doc, nil
}

// applyDefaults fills in empty containers so callers can range freely.
func applyDefaults(doc *Document) {
	if doc.CDM == nil {
		doc.CDM = make(map[string][]RuleGroup)
	}

	if doc.Metadata.PersonID == nil {
		doc.Metadata.PersonID = make(map[string]string)
	}
}

// Marshal serializes a Document to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// MarshalJSON serializes a Document to indented JSON.
func MarshalJSON(doc *Document) ([]byte, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	return json.MarshalIndent(tree, "", "  ")
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func jsonToYAML(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}

	return yaml.Marshal(tree)
}
