package checkout

import (
	"net/http"
	"strings"
)

// CountryHeader carries the visitor's ISO country code, set by the edge proxy.
const CountryHeader = "CF-IPCountry"

// Request holds the per-request signals provider eligibility depends on.
type Request struct {
	Country        string // ISO 3166-1 alpha-2, any case
	OptOutRegional bool   // visitor asked for the international payment flow
}

// RequestFromHTTP reads the country header and the intl=1 opt-out.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		Country:        strings.TrimSpace(r.Header.Get(CountryHeader)),
		OptOutRegional: r.FormValue("intl") == "1",
	}
}

func (r Request) isJapan() bool {
	return strings.EqualFold(r.Country, "JP")
}
