package salesforce

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

var sessionIDPattern = regexp.MustCompile(`<sessionId>[^<]*</sessionId>`)

// NewRecorder sets up go-vcr so that API traffic can be recorded to, or replayed from, a cassette.
// Point API.Client at rec.GetDefaultClient() to use it, and Stop() it when done.
func NewRecorder(cassetteName string, mode recorder.Mode, realTransport http.RoundTripper) (*recorder.Recorder, error) {
	if realTransport == nil {
		realTransport = http.DefaultTransport
	}

	opts := &recorder.Options{
		CassetteName:       cassetteName,
		Mode:               mode,
		SkipRequestLatency: true,
		RealTransport:      realTransport,
	}
	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't set up go-vcr recording: %w", err)
	}

	// Don't leave credentials lying around in fixtures.
	r.AddHook(redactInteraction, recorder.AfterCaptureHook)
	r.SetMatcher(matchSOAPOperation)

	return r, nil
}

func redactInteraction(i *cassette.Interaction) error {
	delete(i.Request.Headers, "Authorization")
	i.Request.Body = redactSession(i.Request.Body)
	return nil
}

func redactSession(body string) string {
	return sessionIDPattern.ReplaceAllString(body, "<sessionId>REDACTED</sessionId>")
}

// matchSOAPOperation tells interactions apart by their SOAP body, since every Metadata API call is
// a POST to the same URL.  Recorded bodies have the session id redacted, so the live one is too
// before comparing.
func matchSOAPOperation(r *http.Request, i cassette.Request) bool {
	if r.Method != i.Method || r.URL.String() != i.URL {
		return false
	}
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return false
	}
	// the matcher runs once per candidate interaction; leave the body for the next one
	r.Body = io.NopCloser(bytes.NewReader(body))

	if soapOperation(string(body)) != soapOperation(i.Body) {
		return false
	}
	return redactSession(string(body)) == redactSession(i.Body)
}

// soapOperation returns the local name of the first element inside the SOAP body.
func soapOperation(body string) string {
	idx := strings.Index(body, "Body>")
	if idx < 0 {
		return ""
	}
	rest := body[idx+len("Body>"):]
	start := strings.Index(rest, "<")
	if start < 0 {
		return ""
	}
	rest = rest[start+1:]
	end := strings.IndexAny(rest, " />")
	if end < 0 {
		return ""
	}
	name := rest[:end]
	if colon := strings.Index(name, ":"); colon >= 0 {
		name = name[colon+1:]
	}
	return name
}
