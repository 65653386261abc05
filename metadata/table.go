package metadata

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Types []Type `yaml:"types"`
}

// LoadTable reads a type table from YAML:
//
//	types:
//	  - name: ApexClass
//	    folder: classes
//	    suffix: cls
//	  - name: EmailTemplate
//	    folder: email
//	    suffix: email
//	    in-folder: true
//	    folder-type: EmailFolder
//
// The order of entries is kept as the table's priority order.
func LoadTable(r io.Reader) (Table, error) {
	d := yaml.NewDecoder(r)
	// bark at typos like `infolder:`
	d.KnownFields(true)

	var f tableFile
	if err := d.Decode(&f); err != nil {
		return nil, fmt.Errorf("metadata: couldn't parse type table: %w", err)
	}
	if len(f.Types) == 0 {
		return nil, fmt.Errorf("metadata: type table is empty")
	}

	seen := make(map[string]bool, len(f.Types))
	tbl := make(Table, 0, len(f.Types))
	for i, t := range f.Types {
		if t.Name == "" || t.Folder == "" {
			return nil, fmt.Errorf("metadata: type table entry %d needs both name and folder", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("metadata: type %s listed twice", t.Name)
		}
		seen[t.Name] = true
		if t.FolderType != "" && !t.InFolder {
			return nil, fmt.Errorf("metadata: type %s has a folder-type but isn't in-folder", t.Name)
		}

		t.Folder = strings.Trim(t.Folder, "/")
		t.Suffix = strings.TrimPrefix(t.Suffix, ".")
		tbl = append(tbl, t)
	}

	return tbl, nil
}

// LoadTableFile is LoadTable for a path; ~ is expanded.
func LoadTableFile(filename string) (Table, error) {
	expanded, err := homedir.Expand(filename)
	if err != nil {
		return nil, fmt.Errorf("metadata: unable to expand homedir: %w", err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("metadata: couldn't open type table %s: %w", expanded, err)
	}
	defer f.Close()

	tbl, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("metadata: loading %s: %w", expanded, err)
	}
	return tbl, nil
}
