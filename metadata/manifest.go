package metadata

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"golang.org/x/exp/slices"
)

const packageNS = "http://soap.sforce.com/2006/04/metadata"

// TypeMembers is one <types> entry of a package manifest.
type TypeMembers struct {
	Type    string
	Members []string
}

// Manifest lists what a retrieve should fetch, grouped by type.  Build one with BuildManifest; it
// isn't modified afterwards.
type Manifest struct {
	types   []TypeMembers
	skipped []string
}

// BuildManifest maps file paths like src/classes/Foo.cls onto (type, member) pairs.  Types come out
// in table order, members in the order their paths were given.  Paths no table entry claims are
// left out and reported by Skipped.
func BuildManifest(tbl Table, paths []string) Manifest {
	members := map[string][]string{}
	seen := map[string]bool{}
	var skipped []string

	for _, p := range paths {
		t, member, ok := tbl.memberFor(p)
		if !ok {
			skipped = append(skipped, p)
			continue
		}
		key := t.Name + "\x00" + member
		if seen[key] {
			continue
		}
		seen[key] = true
		members[t.Name] = append(members[t.Name], member)
	}

	m := Manifest{skipped: skipped}
	for _, t := range tbl {
		if ms, ok := members[t.Name]; ok {
			m.types = append(m.types, TypeMembers{Type: t.Name, Members: ms})
		}
	}
	return m
}

func (tbl Table) memberFor(filePath string) (Type, string, bool) {
	rel := strings.TrimPrefix(filePath, "src/")
	folder, rest, ok := strings.Cut(rel, "/")
	if !ok || rest == "" {
		return Type{}, "", false
	}
	rest = strings.TrimSuffix(rest, "-meta.xml")

	for _, t := range tbl {
		if t.Folder != folder {
			continue
		}
		switch {
		case t.isBundle():
			// bundle directories never carry an extension, so a file directly under the folder
			// is named without its own
			name, _, _ := strings.Cut(rest, "/")
			return t, strings.TrimSuffix(name, path.Ext(name)), true
		case t.Suffix == "":
			// in-folder, any extension: documents/Shared/logo.png
			if strings.Contains(rest, "/") {
				return t, rest, true
			}
		case strings.HasSuffix(rest, "."+t.Suffix):
			name := strings.TrimSuffix(rest, "."+t.Suffix)
			if name == "" {
				continue
			}
			if t.InFolder && !strings.Contains(name, "/") {
				continue
			}
			return t, name, true
		}
	}
	return Type{}, "", false
}

// Types returns the manifest's entries, in table order.
func (m Manifest) Types() []TypeMembers {
	out := make([]TypeMembers, 0, len(m.types))
	for _, tm := range m.types {
		out = append(out, TypeMembers{Type: tm.Type, Members: slices.Clone(tm.Members)})
	}
	return out
}

// Members returns the members listed for one type, or nil.
func (m Manifest) Members(typeName string) []string {
	for _, tm := range m.types {
		if tm.Type == typeName {
			return slices.Clone(tm.Members)
		}
	}
	return nil
}

// Len is the total number of members over all types.
func (m Manifest) Len() int {
	n := 0
	for _, tm := range m.types {
		n += len(tm.Members)
	}
	return n
}

func (m Manifest) Empty() bool {
	return len(m.types) == 0
}

// Skipped returns the paths that didn't map onto any known type.
func (m Manifest) Skipped() []string {
	return slices.Clone(m.skipped)
}

type packageXML struct {
	XMLName xml.Name       `xml:"Package"`
	Xmlns   string         `xml:"xmlns,attr"`
	Types   []packageTypes `xml:"types"`
	Version string         `xml:"version"`
}

type packageTypes struct {
	Members []string `xml:"members"`
	Name    string   `xml:"name"`
}

// PackageXML renders the manifest as a package.xml document.
func (m Manifest) PackageXML(version string) ([]byte, error) {
	doc := packageXML{Xmlns: packageNS, Version: version}
	for _, tm := range m.types {
		doc.Types = append(doc.Types, packageTypes{Members: tm.Members, Name: tm.Type})
	}

	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("metadata: couldn't render package.xml: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
