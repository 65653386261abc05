package salesforce

import "fmt"

// FileProperties describes one component found by listMetadata (and echoed back by retrieve):
// https://developer.salesforce.com/docs/atlas.en-us.api_meta.meta/api_meta/meta_retrieveresult.htm#retrieveresult_fileproperties
type FileProperties struct {
	CreatedByID        string `xml:"createdById"`
	CreatedByName      string `xml:"createdByName"`
	CreatedDate        string `xml:"createdDate"`
	FileName           string `xml:"fileName"`
	FullName           string `xml:"fullName"`
	ID                 string `xml:"id"`
	LastModifiedByID   string `xml:"lastModifiedById"`
	LastModifiedByName string `xml:"lastModifiedByName"`
	LastModifiedDate   string `xml:"lastModifiedDate"`
	ManageableState    string `xml:"manageableState,omitempty"`
	NamespacePrefix    string `xml:"namespacePrefix,omitempty"`
	Type               string `xml:"type"`
}

// Validate checks the fields we rely on are present.  The server has been known to return
// half-empty entries for some managed package components.
func (fp FileProperties) Validate() error {
	if fp.FileName == "" {
		return fmt.Errorf("salesforce: listMetadata entry without fileName (type '%s', fullName '%s')", fp.Type, fp.FullName)
	}
	return nil
}

// AsyncResult is the job handle returned from retrieve.
type AsyncResult struct {
	Done  bool   `xml:"done"`
	ID    string `xml:"id"`
	State string `xml:"state"`
}

// RetrieveStatus is the status field of checkRetrieveStatus.
type RetrieveStatus string

const (
	StatusPending    RetrieveStatus = "Pending"
	StatusInProgress RetrieveStatus = "InProgress"
	StatusSucceeded  RetrieveStatus = "Succeeded"
	StatusFailed     RetrieveStatus = "Failed"
	StatusCanceled   RetrieveStatus = "Canceled"
)

// Terminal reports whether polling can stop.
func (s RetrieveStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// RetrieveResult is returned by checkRetrieveStatus:
// https://developer.salesforce.com/docs/atlas.en-us.api_meta.meta/api_meta/meta_retrieveresult.htm
type RetrieveResult struct {
	Done            bool              `xml:"done"`
	ErrorMessage    string            `xml:"errorMessage"`
	ErrorStatusCode string            `xml:"errorStatusCode"`
	FileProperties  []FileProperties  `xml:"fileProperties"`
	ID              string            `xml:"id"`
	Messages        []RetrieveMessage `xml:"messages"`
	Status          RetrieveStatus    `xml:"status"`
	Success         bool              `xml:"success"`

	// base64-encoded zip, only present once Status is Succeeded and includeZip was set
	ZipFile string `xml:"zipFile"`
}

// RetrieveMessage is a per-file problem report.
type RetrieveMessage struct {
	FileName string `xml:"fileName"`
	Problem  string `xml:"problem"`
}

// User is the subset of the userinfo response we display.
type User struct {
	UserID            string `json:"user_id"`
	OrganizationID    string `json:"organization_id"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Email             string `json:"email"`
}
