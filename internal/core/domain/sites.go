package domain

import "fmt"

// SiteProfile describes one supported retailer site: its base URL plus the
// conventions for building the search URL, locating the product link on the
// search page, and testing a product page for content.
//
// SearchPathFormat and LinkIDFormat each take the SKU as their single
// formatting argument. An empty SearchPathFormat means the site has no
// search rule; lookups against it fail as a transport-class error.
type SiteProfile struct {
	Key              string
	BaseURL          string
	SearchPathFormat string
	LinkIDFormat     string
	Marker           string
}

// HasSearchRule reports whether the profile defines a search convention.
func (p SiteProfile) HasSearchRule() bool {
	return p.SearchPathFormat != ""
}

// sites is the fixed registry of supported profiles.
var sites = map[string]SiteProfile{
	"efacil": {
		Key:              "efacil",
		BaseURL:          "https://www.efacil.com.br",
		SearchPathFormat: "/loja/busca/?searchTerm=%s",
		LinkIDFormat:     "btn_skuP%s",
		Marker:           "lp-container",
	},
	// martins has no search rule defined yet; resolution succeeds but
	// every lookup against it exhausts its retries and classifies Error.
	"martins": {
		Key:     "martins",
		BaseURL: "https://www.martinsatacado.com.br",
	},
}

// ResolveSite looks up the profile for a site key. An unknown key is a
// configuration error for the whole run, not a per-SKU failure.
func ResolveSite(key string) (SiteProfile, error) {
	p, ok := sites[key]
	if !ok {
		return SiteProfile{}, fmt.Errorf("unknown site %q", key)
	}
	return p, nil
}

// SiteKeys returns the registered site keys, for usage messages.
func SiteKeys() []string {
	keys := make([]string, 0, len(sites))
	for k := range sites {
		keys = append(keys, k)
	}
	return keys
}
