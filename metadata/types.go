package metadata

// Type describes one category of metadata and where it lives inside a retrieved package.
type Type struct {
	// API name of the type, e.g. ApexClass
	Name string `yaml:"name"`
	// directory under src/, e.g. classes
	Folder string `yaml:"folder"`
	// file extension without the dot.  Empty for bundle types (aura, lwc) whose members are
	// directories, and for in-folder types whose files keep their own extension (documents).
	Suffix string `yaml:"suffix,omitempty"`
	// Members are addressed as <folder>/<name>, e.g. EmailTemplate Sales/Welcome
	InFolder bool `yaml:"in-folder,omitempty"`
	// type that lists the folders of an in-folder type, e.g. EmailFolder.  listMetadata only
	// answers for an in-folder type when asked about one folder at a time, so discovery lists the
	// folders first.  Without it the type is queried like any other and usually comes back empty.
	FolderType string `yaml:"folder-type,omitempty"`
}

func (t Type) isBundle() bool {
	return t.Suffix == "" && !t.InFolder
}

// Table is the ordered list of types we know about.  Order is priority: it decides the order of
// discovery queries and of the types in a retrieve manifest.
type Table []Type

// Lookup finds a type by API name.
func (tbl Table) Lookup(name string) (Type, bool) {
	for _, t := range tbl {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// DefaultTable covers the types people usually keep in source control.
var DefaultTable = Table{
	{Name: "ApexClass", Folder: "classes", Suffix: "cls"},
	{Name: "ApexTrigger", Folder: "triggers", Suffix: "trigger"},
	{Name: "ApexPage", Folder: "pages", Suffix: "page"},
	{Name: "ApexComponent", Folder: "components", Suffix: "component"},
	{Name: "StaticResource", Folder: "staticresources", Suffix: "resource"},
	{Name: "AuraDefinitionBundle", Folder: "aura"},
	{Name: "LightningComponentBundle", Folder: "lwc"},
	{Name: "CustomObject", Folder: "objects", Suffix: "object"},
	{Name: "CustomLabels", Folder: "labels", Suffix: "labels"},
	{Name: "CustomTab", Folder: "tabs", Suffix: "tab"},
	{Name: "Layout", Folder: "layouts", Suffix: "layout"},
	{Name: "FlexiPage", Folder: "flexipages", Suffix: "flexipage"},
	{Name: "CustomApplication", Folder: "applications", Suffix: "app"},
	{Name: "PermissionSet", Folder: "permissionsets", Suffix: "permissionset"},
	{Name: "Profile", Folder: "profiles", Suffix: "profile"},
	{Name: "Flow", Folder: "flows", Suffix: "flow"},
	{Name: "Workflow", Folder: "workflows", Suffix: "workflow"},
	{Name: "ApprovalProcess", Folder: "approvalProcesses", Suffix: "approvalProcess"},
	{Name: "QuickAction", Folder: "quickActions", Suffix: "quickAction"},
	{Name: "GlobalValueSet", Folder: "globalValueSets", Suffix: "globalValueSet"},
	{Name: "StandardValueSet", Folder: "standardValueSets", Suffix: "standardValueSet"},
	{Name: "CustomMetadata", Folder: "customMetadata", Suffix: "md"},
	{Name: "RemoteSiteSetting", Folder: "remoteSiteSettings", Suffix: "remoteSite"},
	{Name: "NamedCredential", Folder: "namedCredentials", Suffix: "namedCredential"},
	{Name: "ConnectedApp", Folder: "connectedApps", Suffix: "connectedApp"},
	{Name: "CustomSite", Folder: "sites", Suffix: "site"},
	{Name: "Group", Folder: "groups", Suffix: "group"},
	{Name: "Queue", Folder: "queues", Suffix: "queue"},
	{Name: "Role", Folder: "roles", Suffix: "role"},
	{Name: "Translations", Folder: "translations", Suffix: "translation"},
	{Name: "EmailTemplate", Folder: "email", Suffix: "email", InFolder: true, FolderType: "EmailFolder"},
	{Name: "Report", Folder: "reports", Suffix: "report", InFolder: true, FolderType: "ReportFolder"},
	{Name: "Dashboard", Folder: "dashboards", Suffix: "dashboard", InFolder: true, FolderType: "DashboardFolder"},
	{Name: "Document", Folder: "documents", InFolder: true, FolderType: "DocumentFolder"},
}
