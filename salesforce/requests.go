package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ListMetadata lists the components of up to MaxListMetadataQueries types.
func (api *API) ListMetadata(ctx context.Context, queries []ListMetadataQuery) ([]FileProperties, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("salesforce: listMetadata needs at least one query")
	}
	if len(queries) > MaxListMetadataQueries {
		return nil, fmt.Errorf("salesforce: listMetadata accepts at most %d queries, got %d", MaxListMetadataQueries, len(queries))
	}

	body, err := api.call(ctx, requestBody{
		ListMetadata: &listMetadataCall{
			Xmlns:       metadataNS,
			Queries:     queries,
			AsOfVersion: api.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("salesforce: listMetadata failed: %w", err)
	}
	if body.ListMetadataResponse == nil {
		return nil, fmt.Errorf("salesforce: listMetadata response had no listMetadataResponse element")
	}

	for _, fp := range body.ListMetadataResponse.Result {
		if err := fp.Validate(); err != nil {
			return nil, err
		}
	}

	return body.ListMetadataResponse.Result, nil
}

// Retrieve submits an asynchronous retrieve job.  Poll it with CheckRetrieveStatus.
func (api *API) Retrieve(ctx context.Context, req RetrieveRequest) (*AsyncResult, error) {
	if req.APIVersion == "" {
		req.APIVersion = api.APIVersion
	}

	body, err := api.call(ctx, requestBody{
		Retrieve: &retrieveCall{
			Xmlns:   metadataNS,
			Request: req,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("salesforce: retrieve failed: %w", err)
	}
	if body.RetrieveResponse == nil {
		return nil, fmt.Errorf("salesforce: retrieve response had no retrieveResponse element")
	}
	if body.RetrieveResponse.Result.ID == "" {
		return nil, fmt.Errorf("salesforce: retrieve response carried no job id")
	}

	return &body.RetrieveResponse.Result, nil
}

// CheckRetrieveStatus polls a retrieve job.  With includeZip the archive is sent along once the
// job has succeeded.
func (api *API) CheckRetrieveStatus(ctx context.Context, id string, includeZip bool) (*RetrieveResult, error) {
	if id == "" {
		return nil, fmt.Errorf("salesforce: please provide a job id to check")
	}

	body, err := api.call(ctx, requestBody{
		CheckRetrieveStatus: &checkRetrieveStatusCall{
			Xmlns:          metadataNS,
			AsyncProcessID: id,
			IncludeZip:     includeZip,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("salesforce: checkRetrieveStatus failed: %w", err)
	}
	if body.CheckRetrieveStatusResponse == nil {
		return nil, fmt.Errorf("salesforce: checkRetrieveStatus response had no checkRetrieveStatusResponse element")
	}

	return &body.CheckRetrieveStatusResponse.Result, nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getUserInfoEndpoint(UserInfoQuery{Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't get userinfo endpoint: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't perform http request: %w", err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("salesforce: couldn't parse json response: %w", err)
	}

	return &user, nil
}

func (api *API) call(ctx context.Context, rb requestBody) (*responseBody, error) {
	ep, err := api.getMetadataEndpoint()
	if err != nil {
		return nil, err
	}

	payload, err := api.encodeCall(rb)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't instantiate http request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	// required by the endpoint, but its value is ignored
	req.Header.Set("SOAPAction", `""`)

	raw, err := api.do(req)
	if err != nil {
		return nil, err
	}

	return decodeEnvelope(raw)
}

func (api *API) encodeCall(rb requestBody) ([]byte, error) {
	payload, err := xml.Marshal(api.newEnvelope(rb))
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't encode SOAP envelope: %w", err)
	}
	return append([]byte(xml.Header), payload...), nil
}

// Request implements the basic Request function
func (api *API) request(ctx context.Context, url *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	req.Header.Set("Authorization", "Bearer "+api.token)

	return api.do(req)
}

func (api *API) do(req *http.Request) ([]byte, error) {
	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("salesforce: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("salesforce: couldn't close response body: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent, http.StatusNoContent, http.StatusResetContent:
		return body, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("salesforce: authentication failed")
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("salesforce: service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		// SOAP faults travel as 500s
		if _, err := decodeEnvelope(body); err != nil {
			var fault *Fault
			if errors.As(err, &fault) {
				return nil, fault
			}
		}
		return nil, fmt.Errorf("salesforce: internal server error: %s", response.Status)
	case http.StatusConflict:
		return nil, fmt.Errorf("salesforce: conflict: %s", response.Status)
	}

	return nil, fmt.Errorf("salesforce: unknown HTTP response status: %s: %s", response.Status, req.URL.String())
}
