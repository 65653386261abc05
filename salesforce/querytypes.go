package salesforce

// MaxListMetadataQueries is the most queries the server accepts in a single listMetadata call.
const MaxListMetadataQueries = 3

// ListMetadataQuery is one entry of a listMetadata call:
// https://developer.salesforce.com/docs/atlas.en-us.api_meta.meta/api_meta/meta_listmetadata.htm
type ListMetadataQuery struct {
	Type   string `xml:"type"`
	Folder string `xml:"folder,omitempty"` // only for types stored in folders, e.g. EmailTemplate
}

// RetrieveRequest defines what the retrieve call should package up:
// https://developer.salesforce.com/docs/atlas.en-us.api_meta.meta/api_meta/meta_retrieve_request.htm
type RetrieveRequest struct {
	APIVersion    string   `xml:"apiVersion"`
	SinglePackage bool     `xml:"singlePackage"`
	Unpackaged    *Package `xml:"unpackaged,omitempty"`
}

// Package is the in-request equivalent of a package.xml manifest.
type Package struct {
	Types   []PackageTypeMembers `xml:"types"`
	Version string               `xml:"version"`
}

// PackageTypeMembers lists the members of a single metadata type.  Element order matters to the
// server's schema validation: members first, then name.
type PackageTypeMembers struct {
	Members []string `xml:"members"`
	Name    string   `xml:"name"`
}

// UserInfoQuery defines the query parameters for the OAuth userinfo endpoint.
type UserInfoQuery struct {
	Format string `url:"format,omitempty"` // json or xml; json is the default
}
