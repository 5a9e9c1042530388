package rdap

import (
	"encoding/json"
	"strings"

	gerr "github.com/pkg/errors"
)

// GTLD is the registry metadata IANA/ICANN publish for one new-gTLD
// delegation. Only the facts the generator folds into its documents
// are retained.
type GTLD struct {
	ApplicationID string
	Spec13        bool
	ULabel        string
}

// RefData holds the two read-only reference mappings loaded once per
// run: TLD to RDAP base URL, and TLD to gTLD registry metadata.
type RefData struct {
	RDAPBase map[string]string
	GTLDs    map[string]GTLD
}

func (rd *RefData) IsGTLD(tld string) bool {
	if rd == nil {
		return false
	}
	_, ok := rd.GTLDs[tld]
	return ok
}

// ParseBootstrap extracts a TLD-to-base-URL mapping from the IANA RDAP
// bootstrap registry. Each service entry pairs a list of TLDs with a
// list of base URLs; an HTTPS URL is preferred when several are listed.
func ParseBootstrap(bs []byte) (map[string]string, error) {

	var doc struct {
		Services [][2][]string `json:"services"`
	}
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, gerr.WithMessage(err, "bootstrap registry")
	}

	m := make(map[string]string)
	for _, svc := range doc.Services {

		url := pickURL(svc[1])
		if len(url) == 0 {
			continue
		}

		for _, tld := range svc[0] {
			m[strings.ToLower(tld)] = url
		}
	}

	return m, nil
}

func pickURL(urls []string) string {
	for _, u := range urls {
		if strings.HasPrefix(u, "https://") {
			return u
		}
	}
	if len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// ParseGTLDRegistry extracts per-TLD metadata from the ICANN gTLD
// registry document.
func ParseGTLDRegistry(bs []byte) (map[string]GTLD, error) {

	var doc struct {
		GTLDs []struct {
			GTLD          string `json:"gTLD"`
			ApplicationID string `json:"applicationId"`
			Spec13        bool   `json:"specification13"`
			ULabel        string `json:"uLabel"`
		} `json:"gTLDs"`
	}
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, gerr.WithMessage(err, "gTLD registry")
	}

	m := make(map[string]GTLD, len(doc.GTLDs))
	for _, g := range doc.GTLDs {
		if len(g.GTLD) == 0 {
			continue
		}
		m[strings.ToLower(g.GTLD)] = GTLD{
			ApplicationID: g.ApplicationID,
			Spec13:        g.Spec13,
			ULabel:        g.ULabel,
		}
	}

	return m, nil
}
