package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gerr "github.com/pkg/errors"
	"golang.org/x/net/idna"

	"github.com/gbxyz/rootrdap/rdap"
	"github.com/gbxyz/rootrdap/whois"
)

const (
	rootDBURL    = "https://www.iana.org/domains/root/db/%s.html"
	aboutURL     = "https://about.rdap.org"
	agreementURL = "https://www.icann.org/en/registry-agreements/details/%s"
	spec13URL    = "https://newgtlds.icann.org/en/applicants/agb/base-agreement-spec-13"
)

var serviceNotice = rdap.Notice{
	Title: "About This Service",
	Description: []string{
		"This service provides RDAP records for top-level domains, generated from the IANA root zone database and whois service.",
		"It is not operated by, or affiliated with, IANA or ICANN.",
	},
}

// AssembleTLD runs one TLD through the parse-then-assemble pipeline.
func AssembleTLD(tld string, sLines []string, ref *rdap.RefData, now time.Time) (*rdap.Domain, error) {

	rec, err := whois.Parse(tld, sLines, whois.Options{GTLD: ref.IsGTLD(tld)})
	if err != nil {
		return nil, err
	}

	return BuildDocument(rec, ref, now), nil
}

// BuildDocument merges a parsed whois record with the reference-data
// mappings into the final RDAP document tree.
func BuildDocument(rec *whois.Record, ref *rdap.RefData, now time.Time) *rdap.Domain {

	tld := rec.LDHName

	doc := &rdap.Domain{
		ObjectClassName: "domain",
		Conformance:     []string{rdap.ConformanceLevel},
		Handle:          rec.Handle,
		LDHName:         tld,
		Status:          rec.Status,
		Entities:        rec.Entities(),
		Nameservers:     rec.Nameservers,
		SecureDNS:       rec.SecureDNS,
		Remarks:         rec.Remarks,
		Port43:          "whois.iana.org",
	}

	doc.Events = append(append([]rdap.Event{}, rec.Events...), rdap.Event{
		Action: "last update of RDAP database",
		Date:   now.Format(time.RFC3339),
	})

	doc.Notices = []rdap.Notice{serviceNotice}
	if len(rec.Comments) > 0 {
		doc.Notices = append(doc.Notices, rdap.Notice{
			Title:       "Comments",
			Description: rec.Comments,
		})
	}

	rootDB := fmt.Sprintf(rootDBURL, tld)
	doc.Links = []rdap.Link{
		{Value: rootDB, Rel: "related", Href: rootDB, Title: "Root Zone Database Entry"},
		{Value: aboutURL, Rel: "related", Href: aboutURL, Title: "About RDAP"},
	}
	if len(rec.RegistrationURL) > 0 {
		doc.Links = append(doc.Links, rdap.Link{
			Value: rec.RegistrationURL,
			Rel:   "related",
			Href:  rec.RegistrationURL,
			Title: "Registration Information",
		})
	}

	if base, ok := ref.RDAPBase[tld]; ok {

		doc.Remarks = append(doc.Remarks, rdap.Remark{
			Title:       "RDAP Service",
			Description: []string{fmt.Sprintf("The RDAP base URL for this TLD is %s.", base)},
			Links:       []rdap.Link{{Value: base, Rel: "related", Href: base, Title: "RDAP Service"}},
		})

		// the top-level link only appears when the record also
		// carries a registration URL; consumers depend on this
		if len(rec.RegistrationURL) > 0 {
			doc.Links = append(doc.Links, rdap.Link{
				Value: base, Rel: "related", Href: base, Title: "RDAP Service",
			})
		}
	}

	if meta, ok := ref.GTLDs[tld]; ok {

		agreement := fmt.Sprintf(agreementURL, tld)
		doc.Links = append(doc.Links, rdap.Link{
			Value: agreement, Rel: "related", Href: agreement, Title: "Registry Agreement",
		})

		if len(meta.ApplicationID) > 0 {
			doc.Remarks = append(doc.Remarks, rdap.Remark{
				Title:       "Application ID",
				Description: []string{meta.ApplicationID},
			})
		}

		if meta.Spec13 {
			doc.Remarks = append(doc.Remarks, rdap.Remark{
				Title:       "Specification 13 Exemption",
				Description: []string{"This TLD is exempt from Specification 13 of the ICANN Registry Agreement."},
				Links:       []rdap.Link{{Value: spec13URL, Rel: "related", Href: spec13URL, Title: "Specification 13"}},
			})
		}

		if len(meta.ULabel) > 0 {
			doc.UnicodeName = meta.ULabel
		}
	}

	if len(doc.UnicodeName) == 0 && strings.HasPrefix(tld, "xn--") {
		if u, err := idna.ToUnicode(tld); err == nil && u != tld {
			doc.UnicodeName = u
		}
	}

	return doc
}

// Collector folds trimmed per-TLD documents into the combined search
// document written once at the end of the run.
type Collector struct {
	doc rdap.SearchResults
}

func NewCollector() *Collector {
	return &Collector{
		doc: rdap.SearchResults{
			Conformance: []string{rdap.ConformanceLevel},
			Domains:     []*rdap.Domain{},
		},
	}
}

// Add appends a trimmed copy of the document. The notices block is
// seeded from the first document and kept thereafter.
func (c *Collector) Add(doc *rdap.Domain) {
	if c.doc.Notices == nil {
		c.doc.Notices = doc.Notices
	}
	c.doc.Domains = append(c.doc.Domains, doc.Trimmed())
}

func (c *Collector) Len() int {
	return len(c.doc.Domains)
}

// WriteFile serializes the aggregate document to <dir>/_all.json.
func (c *Collector) WriteFile(dir string) error {

	bs, err := rdap.Encode(&c.doc)
	if err != nil {
		return err
	}

	fname := filepath.Join(dir, "_all.json")
	return gerr.WithMessage(os.WriteFile(fname, bs, 0664), fname)
}
