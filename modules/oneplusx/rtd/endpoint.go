package oneplusx

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"text/template"

	"github.com/asaskevich/govalidator"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/macros"
)

const defaultEndpoint = "https://{{.CustomerID}}.profiles.tagger.opecloud.com/v1.0/targeting"

// The customer id becomes a host label of the profiling service.
var customerIDPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

type profileEndpoint struct {
	template *template.Template
}

func newProfileEndpoint(endpoint string) (*profileEndpoint, error) {
	endpointTemplate, err := template.New("endpointTemplate").Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint template %q: %v", endpoint, err)
	}

	resolved, err := macros.ResolveMacros(endpointTemplate, macros.EndpointTemplateParams{CustomerID: "customer"})
	if err != nil {
		return nil, fmt.Errorf("unable to resolve endpoint %q: %v", endpoint, err)
	}
	if !govalidator.IsURL(resolved) {
		return nil, fmt.Errorf("endpoint %q does not resolve to a valid URL", endpoint)
	}

	return &profileEndpoint{template: endpointTemplate}, nil
}

// buildURL returns the profiling service URL for the customer and page. It does no I/O.
func (e *profileEndpoint) buildURL(customerID, pageURL string) (string, error) {
	if !customerIDPattern.MatchString(customerID) {
		return "", &errortypes.ConfigError{
			Reason:  errortypes.InvalidCustomerId,
			Message: fmt.Sprintf("customerId %q is not a valid host label", customerID),
		}
	}

	base, err := macros.ResolveMacros(e.template, macros.EndpointTemplateParams{CustomerID: customerID})
	if err != nil {
		return "", &errortypes.ConfigError{Reason: errortypes.InvalidParams, Message: err.Error()}
	}

	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}

	return base + separator + "url=" + encodeURIComponent(pageURL), nil
}

// encodeURIComponent percent-encodes s for use as a query value. Spaces become %20.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
