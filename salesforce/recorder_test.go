package salesforce

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const cassetteEndpoint = "https://acme.my.salesforce.com/services/Soap/m/58.0"

func soapInteraction(t *testing.T, call requestBody, response string) *cassette.Interaction {
	t.Helper()

	// recorded under another session; the matcher must not care
	api, err := NewAPI("https://acme.my.salesforce.com", "recorded-session", "58.0")
	if err != nil {
		t.Fatalf("NewAPI() failed: %v", err)
	}
	body, err := api.encodeCall(call)
	if err != nil {
		t.Fatalf("encodeCall() failed: %v", err)
	}

	return &cassette.Interaction{
		Request: cassette.Request{
			Method: http.MethodPost,
			URL:    cassetteEndpoint,
			Body:   redactSession(string(body)),
		},
		Response: cassette.Response{
			Status:  "200 OK",
			Code:    http.StatusOK,
			Headers: http.Header{"Content-Type": []string{"text/xml"}},
			Body:    envelopeOpen + response + envelopeClose,
		},
	}
}

func retrieveCallFor(version string) requestBody {
	return requestBody{Retrieve: &retrieveCall{
		Xmlns:   metadataNS,
		Request: RetrieveRequest{APIVersion: version, Unpackaged: &Package{Version: version}},
	}}
}

func checkStatusCall(id string) requestBody {
	return requestBody{CheckRetrieveStatus: &checkRetrieveStatusCall{Xmlns: metadataNS, AsyncProcessID: id, IncludeZip: true}}
}

func listMetadataCallFor(types ...string) requestBody {
	call := &listMetadataCall{Xmlns: metadataNS, AsOfVersion: "58.0"}
	for _, ty := range types {
		call.Queries = append(call.Queries, ListMetadataQuery{Type: ty})
	}
	return requestBody{ListMetadata: call}
}

// A retrieve session as recorded with --with-vcr: one retrieve call and two polls.
func writeRetrieveCassette(t *testing.T) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "fixtures", "retrieve-session")
	c := cassette.New(name)
	c.AddInteraction(soapInteraction(t, retrieveCallFor("58.0"),
		`<retrieveResponse><result><done>false</done><id>09S0000000000AB</id><state>Queued</state></result></retrieveResponse>`))
	c.AddInteraction(soapInteraction(t, checkStatusCall("09S0000000000AB"),
		`<checkRetrieveStatusResponse><result><done>false</done><id>09S0000000000AB</id><status>InProgress</status></result></checkRetrieveStatusResponse>`))
	c.AddInteraction(soapInteraction(t, checkStatusCall("09S0000000000AB"),
		`<checkRetrieveStatusResponse><result><done>true</done><id>09S0000000000AB</id><status>Succeeded</status><success>true</success><zipFile>UEsFBgAAAAAAAAAAAAAAAAAAAAAAAA==</zipFile></result></checkRetrieveStatusResponse>`))
	if err := c.Save(); err != nil {
		t.Fatalf("cassette.Save() failed: %v", err)
	}
	return name
}

func TestReplayRetrieveSession(t *testing.T) {
	name := writeRetrieveCassette(t)

	rec, err := NewRecorder(name, recorder.ModeReplayOnly, nil)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	defer rec.Stop()

	api, err := NewAPI("https://acme.my.salesforce.com", "tok", "58.0")
	if err != nil {
		t.Fatalf("NewAPI() failed: %v", err)
	}
	api.Client = rec.GetDefaultClient()

	ctx := context.Background()
	job, err := api.Retrieve(ctx, RetrieveRequest{Unpackaged: &Package{Version: "58.0"}})
	if err != nil {
		t.Fatalf("Retrieve() failed: %v", err)
	}
	if job.ID != "09S0000000000AB" {
		t.Fatalf("job id = %q", job.ID)
	}

	want := []RetrieveStatus{StatusInProgress, StatusSucceeded}
	for i, w := range want {
		res, err := api.CheckRetrieveStatus(ctx, job.ID, true)
		if err != nil {
			t.Fatalf("CheckRetrieveStatus() #%d failed: %v", i, err)
		}
		if res.Status != w {
			t.Errorf("poll #%d status = %q, want %q", i, res.Status, w)
		}
	}

	if _, err := api.CheckRetrieveStatus(ctx, "09S0000000000ZZ", true); err == nil {
		t.Errorf("CheckRetrieveStatus() of an unrecorded job replayed something")
	}
}

func TestRedactInteraction(t *testing.T) {
	i := &cassette.Interaction{
		Request: cassette.Request{
			Headers: http.Header{"Authorization": []string{"Bearer secret"}},
			Body:    `<SessionHeader><sessionId>00Dxx!secret</sessionId></SessionHeader>`,
		},
	}

	if err := redactInteraction(i); err != nil {
		t.Fatalf("redactInteraction() failed: %v", err)
	}
	if _, ok := i.Request.Headers["Authorization"]; ok {
		t.Errorf("Authorization header survived")
	}
	if strings.Contains(i.Request.Body, "secret") {
		t.Errorf("session id survived: %s", i.Request.Body)
	}
}

func liveRequest(t *testing.T, call requestBody) *http.Request {
	t.Helper()

	api, err := NewAPI("https://acme.my.salesforce.com", "live-session", "58.0")
	if err != nil {
		t.Fatalf("NewAPI() failed: %v", err)
	}
	body, err := api.encodeCall(call)
	if err != nil {
		t.Fatalf("encodeCall() failed: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, cassetteEndpoint, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("http.NewRequest() failed: %v", err)
	}
	return req
}

func TestMatchSOAPOperation(t *testing.T) {
	tests := []struct {
		name     string
		live     requestBody
		recorded requestBody
		want     bool
	}{
		{"same call", checkStatusCall("1"), checkStatusCall("1"), true},
		{"other operation", checkStatusCall("1"), retrieveCallFor("58.0"), false},
		{"other job", checkStatusCall("1"), checkStatusCall("2"), false},
		{"same types", listMetadataCallFor("ApexClass", "ApexPage"), listMetadataCallFor("ApexClass", "ApexPage"), true},
		{"other types", listMetadataCallFor("ApexClass"), listMetadataCallFor("CustomObject"), false},
		{"more types", listMetadataCallFor("ApexClass"), listMetadataCallFor("ApexClass", "ApexPage"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := liveRequest(t, tc.live)
			if got := matchSOAPOperation(req, soapInteraction(t, tc.recorded, "").Request); got != tc.want {
				t.Errorf("matchSOAPOperation() = %v, want %v", got, tc.want)
			}
			// the body must still be readable for the next candidate
			if got := matchSOAPOperation(req, soapInteraction(t, tc.live, "").Request); !got {
				t.Errorf("request didn't match its own recording on a second look")
			}
		})
	}
}
