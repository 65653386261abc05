package salesforce

import (
	"encoding/xml"
	"fmt"
)

const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	metadataNS     = "http://soap.sforce.com/2006/04/metadata"
)

// encoding/xml can't emit prefixed names on its own, so the soapenv prefix is spelled out in the
// tags.  Everything under the body uses the metadata namespace as its default namespace.
type requestEnvelope struct {
	XMLName xml.Name      `xml:"soapenv:Envelope"`
	SoapEnv string        `xml:"xmlns:soapenv,attr"`
	Header  requestHeader `xml:"soapenv:Header"`
	Body    requestBody   `xml:"soapenv:Body"`
}

type requestHeader struct {
	SessionHeader sessionHeader `xml:"SessionHeader"`
}

type sessionHeader struct {
	Xmlns     string `xml:"xmlns,attr"`
	SessionID string `xml:"sessionId"`
}

// Exactly one of these is set per call.
type requestBody struct {
	ListMetadata        *listMetadataCall        `xml:"listMetadata,omitempty"`
	Retrieve            *retrieveCall            `xml:"retrieve,omitempty"`
	CheckRetrieveStatus *checkRetrieveStatusCall `xml:"checkRetrieveStatus,omitempty"`
}

type listMetadataCall struct {
	Xmlns       string              `xml:"xmlns,attr"`
	Queries     []ListMetadataQuery `xml:"queries"`
	AsOfVersion string              `xml:"asOfVersion"`
}

type retrieveCall struct {
	Xmlns   string          `xml:"xmlns,attr"`
	Request RetrieveRequest `xml:"retrieveRequest"`
}

type checkRetrieveStatusCall struct {
	Xmlns          string `xml:"xmlns,attr"`
	AsyncProcessID string `xml:"asyncProcessId"`
	IncludeZip     bool   `xml:"includeZip"`
}

// Responses are matched on local names only, whatever prefixes the server picks.
type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault                       *Fault                       `xml:"Fault"`
	ListMetadataResponse        *listMetadataResponse        `xml:"listMetadataResponse"`
	RetrieveResponse            *retrieveResponse            `xml:"retrieveResponse"`
	CheckRetrieveStatusResponse *checkRetrieveStatusResponse `xml:"checkRetrieveStatusResponse"`
}

type listMetadataResponse struct {
	Result []FileProperties `xml:"result"`
}

type retrieveResponse struct {
	Result AsyncResult `xml:"result"`
}

type checkRetrieveStatusResponse struct {
	Result RetrieveResult `xml:"result"`
}

// Fault is a SOAP fault returned by the Metadata API, e.g. sf:INVALID_SESSION_ID.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("salesforce: SOAP fault %s: %s", f.Code, f.String)
}

func (api *API) newEnvelope(body requestBody) requestEnvelope {
	return requestEnvelope{
		SoapEnv: soapEnvelopeNS,
		Header: requestHeader{
			SessionHeader: sessionHeader{
				Xmlns:     metadataNS,
				SessionID: api.token,
			},
		},
		Body: body,
	}
}

func decodeEnvelope(raw []byte) (*responseBody, error) {
	var env responseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("salesforce: couldn't parse SOAP response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, env.Body.Fault
	}
	return &env.Body, nil
}
