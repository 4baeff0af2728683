package compile

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// SetFile holds the set header inside a definitions directory.
const SetFile = "_set.yaml"

const defExt = ".yaml"

type setHeader struct {
	Name        string            `yaml:"name"`
	PersonIDs   map[string]string `yaml:"person_ids,omitempty"`
	Definitions []string          `yaml:"definitions"`
}

// WriteSet writes a set into dir, one YAML file per definition plus the set
// header. The directory is created if it doesn't exist. Definition files
// left over from an earlier version of the set are removed.
func WriteSet(set *Set, dir string) error {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return errors.Wrap(err, "creating definitions directory")
	}

	header := setHeader{Name: set.Name, PersonIDs: set.PersonIDs}
	for _, def := range set.Definitions {
		header.Definitions = append(header.Definitions, def.Name)
	}

	existing, err := filepath.Glob(filepath.Join(dir, "*"+defExt))
	if err != nil {
		return errors.Wrap(err, "listing definitions directory")
	}

	for _, path := range existing {
		name := strings.TrimSuffix(filepath.Base(path), defExt)
		if filepath.Base(path) == SetFile || slices.Contains(header.Definitions, name) {
			continue
		}

		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "removing stale definition %s", name)
		}
	}

	for _, def := range set.Definitions {
		if err := writeYAML(filepath.Join(dir, def.Name+defExt), def); err != nil {
			return err
		}
	}

	return writeYAML(filepath.Join(dir, SetFile), header)
}

// LoadSet reads a set written by WriteSet.
func LoadSet(dir string) (*Set, error) {
	var header setHeader
	if err := readYAML(filepath.Join(dir, SetFile), &header); err != nil {
		return nil, err
	}

	set := &Set{Name: header.Name, PersonIDs: header.PersonIDs}
	if set.PersonIDs == nil {
		set.PersonIDs = make(map[string]string)
	}

	for _, name := range header.Definitions {
		def := &Definition{}
		if err := readYAML(filepath.Join(dir, name+defExt), def); err != nil {
			return nil, err
		}

		if def.Name != name {
			return nil, errors.Newf("definition file %s%s holds %q", name, defExt, def.Name)
		}

		if def.Set == "" {
			def.Set = set.Name
		}

		set.Definitions = append(set.Definitions, def)
	}

	return set, nil
}

// ListSets returns the names of the subdirectories of root that hold a set,
// sorted.
func ListSets(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "reading definitions root")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		if _, err := os.Stat(filepath.Join(root, e.Name(), SetFile)); err == nil {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

// Dump renders a value (typically a Set or Definition) for debugging.
func Dump(v any) string {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}

	return cfg.Sdump(v)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", filepath.Base(path))
	}

	err = os.WriteFile(path, data, filePerm)
	if err != nil {
		return errors.Wrapf(err, "writing file %s", filepath.Base(path))
	}

	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	return nil
}
