package salesforce

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// DefaultAPIVersion is used when the user doesn't pin one in config.
const DefaultAPIVersion = "58.0"

var apiVersionPattern = regexp.MustCompile(`^[0-9]+\.0$`)

func NewAPI(instanceURL string, token string, apiVersion string) (*API, error) {
	if instanceURL == "" {
		return nil, fmt.Errorf("salesforce: configure your org's instance URL with --instance-url")
	}
	if token == "" {
		return nil, fmt.Errorf("salesforce: access token is empty, please check auth-token-cmd")
	}

	// people paste these from `sf org display`, which prints "v58.0"
	apiVersion = strings.TrimPrefix(apiVersion, "v")
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if !apiVersionPattern.MatchString(apiVersion) {
		return nil, fmt.Errorf("salesforce: API version should look like %s, got '%s'", DefaultAPIVersion, apiVersion)
	}

	u, err := url.ParseRequestURI(strings.TrimSuffix(instanceURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't parse instance URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("salesforce: instance URL needs an http(s) scheme: %s", instanceURL)
	}

	a := &API{
		BaseURI:    u,
		APIVersion: apiVersion,
		token:      token,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// The org's instance, e.g. https://MYDOMAIN.my.salesforce.com
	BaseURI *url.URL

	// Metadata API version without the "v", e.g. 58.0
	APIVersion string

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// OAuth access token, doubles as the SOAP session id
	token string
}
