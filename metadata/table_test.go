package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadTable(t *testing.T) {
	in := `
types:
  - name: ApexClass
    folder: classes
    suffix: .cls
  - name: EmailTemplate
    folder: email/
    suffix: email
    in-folder: true
    folder-type: EmailFolder
  - name: LightningComponentBundle
    folder: lwc
`
	tbl, err := LoadTable(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadTable() failed: %v", err)
	}

	want := Table{
		{Name: "ApexClass", Folder: "classes", Suffix: "cls"},
		{Name: "EmailTemplate", Folder: "email", Suffix: "email", InFolder: true, FolderType: "EmailFolder"},
		{Name: "LightningComponentBundle", Folder: "lwc"},
	}
	if len(tbl) != len(want) {
		t.Fatalf("LoadTable() = %+v", tbl)
	}
	for i := range want {
		if tbl[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, tbl[i], want[i])
		}
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":         "types:\n  - name: ApexClass\n    folder: classes\n    infolder: true\n",
		"missing folder":      "types:\n  - name: ApexClass\n",
		"duplicate":           "types:\n  - name: A\n    folder: a\n  - name: A\n    folder: b\n",
		"empty":               "types: []\n",
		"folder type, no dir": "types:\n  - name: Report\n    folder: reports\n    folder-type: ReportFolder\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadTable(strings.NewReader(in)); err == nil {
				t.Errorf("LoadTable() accepted %q", in)
			}
		})
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	if err := os.WriteFile(path, []byte("types:\n  - name: Flow\n    folder: flows\n    suffix: flow\n"), 0o600); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	tbl, err := LoadTableFile(path)
	if err != nil {
		t.Fatalf("LoadTableFile() failed: %v", err)
	}
	if typ, ok := tbl.Lookup("Flow"); !ok || typ.Folder != "flows" {
		t.Errorf("Lookup(Flow) = %+v, %v", typ, ok)
	}

	if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("LoadTableFile() on a missing file succeeded")
	}
}
