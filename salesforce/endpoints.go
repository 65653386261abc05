package salesforce

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// getMetadataEndpoint returns the SOAP endpoint of the Metadata API:
// https://developer.salesforce.com/docs/atlas.en-us.api_meta.meta/api_meta/meta_intro.htm
//
// Every Metadata API call is a POST to this one URL; the operation lives in the envelope.
func (a *API) getMetadataEndpoint() (*url.URL, error) {
	ep, err := a.resolveEndpoint(fmt.Sprintf("/services/Soap/m/%s", a.APIVersion))
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't resolve endpoint: %w", err)
	}
	return ep, nil
}

// getUserInfoEndpoint returns the OpenID Connect userinfo endpoint:
// https://help.salesforce.com/s/articleView?id=sf.remoteaccess_using_userinfo_endpoint.htm
func (a *API) getUserInfoEndpoint(opts UserInfoQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("/services/oauth2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	baseUri := a.BaseURI

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("salesforce: failed to parse endpoint ref: %w", err)
	}

	return baseUri.ResolveReference(ref), nil
}
