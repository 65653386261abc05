package metadata

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/exp/slices"
)

func TestBuildManifestApexClass(t *testing.T) {
	tbl := Table{{Name: "ApexClass", Folder: "classes", Suffix: "cls"}}
	globs := []string{"classes/*"}

	types := tbl.Resolve(globs)
	if len(types) != 1 || types[0].Name != "ApexClass" {
		t.Fatalf("Resolve() = %v", types)
	}

	paths := FilterOnGlobs([]string{"src/classes/Foo.cls", "src/classes/Bar.cls"}, globs)
	m := BuildManifest(tbl, paths)

	want := []TypeMembers{{Type: "ApexClass", Members: []string{"Foo", "Bar"}}}
	if got := m.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("Types() = %+v, want %+v", got, want)
	}
}

func TestBuildManifestNameAndFolderOnly(t *testing.T) {
	tbl := Table{{Name: "ApexClass", Folder: "classes"}}
	m := BuildManifest(tbl, []string{"src/classes/Foo.cls", "src/classes/Bar.cls"})

	if got := m.Members("ApexClass"); !slices.Equal(got, []string{"Foo", "Bar"}) {
		t.Errorf("Members(ApexClass) = %v", got)
	}
}

func TestBuildManifest(t *testing.T) {
	paths := []string{
		"src/email/Sales/Welcome.email",
		"src/classes/Foo.cls",
		"src/classes/Foo.cls-meta.xml",
		"src/aura/MyCmp",
		"src/documents/Shared/logo.png",
		"src/objects/Account.object",
		"src/mystery/Thing.x",
		"src/classes",
	}

	m := BuildManifest(DefaultTable, paths)

	want := []TypeMembers{
		{Type: "ApexClass", Members: []string{"Foo"}},
		{Type: "AuraDefinitionBundle", Members: []string{"MyCmp"}},
		{Type: "CustomObject", Members: []string{"Account"}},
		{Type: "EmailTemplate", Members: []string{"Sales/Welcome"}},
		{Type: "Document", Members: []string{"Shared/logo.png"}},
	}
	if got := m.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("Types() = %+v\nwant %+v", got, want)
	}
	if got := m.Skipped(); !slices.Equal(got, []string{"src/mystery/Thing.x", "src/classes"}) {
		t.Errorf("Skipped() = %v", got)
	}
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
	if m.Empty() {
		t.Errorf("Empty() = true")
	}
}

func TestManifestIsNotShared(t *testing.T) {
	m := BuildManifest(DefaultTable, []string{"src/classes/Foo.cls"})

	types := m.Types()
	types[0].Members[0] = "Mutated"
	if got := m.Members("ApexClass"); !slices.Equal(got, []string{"Foo"}) {
		t.Errorf("Members() after mutating Types() = %v", got)
	}
}

func TestEmptyManifest(t *testing.T) {
	m := BuildManifest(DefaultTable, nil)
	if !m.Empty() || m.Len() != 0 {
		t.Errorf("manifest from no paths isn't empty: %+v", m.Types())
	}
}

func TestPackageXML(t *testing.T) {
	m := BuildManifest(DefaultTable, []string{"src/classes/Foo.cls", "src/classes/Bar.cls", "src/pages/Home.page"})

	out, err := m.PackageXML("58.0")
	if err != nil {
		t.Fatalf("PackageXML() failed: %v", err)
	}

	doc := string(out)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Package xmlns="http://soap.sforce.com/2006/04/metadata">`,
		"<members>Foo</members>\n        <members>Bar</members>\n        <name>ApexClass</name>",
		"<members>Home</members>\n        <name>ApexPage</name>",
		"<version>58.0</version>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("package.xml lacks %q:\n%s", want, doc)
		}
	}
	if strings.Index(doc, "ApexClass") > strings.Index(doc, "ApexPage") {
		t.Errorf("types not in table order:\n%s", doc)
	}
}
