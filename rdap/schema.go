package rdap

import (
	"encoding/json"
)

// ConformanceLevel is the only conformance tag this generator emits.
const ConformanceLevel = "rdap_level_0"

// Link signifies a link to another resource on the Internet.
// https://tools.ietf.org/html/rfc7483#section-4.2
type Link struct {
	Value string `json:"value,omitempty"`
	Rel   string `json:"rel,omitempty"`
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Notice contains information about the entire RDAP response.
// https://tools.ietf.org/html/rfc7483#section-4.3
type Notice struct {
	Title       string   `json:"title"`
	Description []string `json:"description"`
	Links       []Link   `json:"links,omitempty"`
}

// Remark contains information about the containing RDAP object.
// https://tools.ietf.org/html/rfc7483#section-4.3
type Remark struct {
	Title       string   `json:"title"`
	Description []string `json:"description"`
	Links       []Link   `json:"links,omitempty"`
}

// Event represents some event which has occurred/may occur in the future.
// https://tools.ietf.org/html/rfc7483#section-4.5
type Event struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

// IPAddresses holds the glue addresses of a nameserver, already
// classified by family.
type IPAddresses struct {
	V4 []string `json:"v4,omitempty"`
	V6 []string `json:"v6,omitempty"`
}

// Nameserver is a nameserver object nested in a Domain.
// https://tools.ietf.org/html/rfc7483#section-5.2
type Nameserver struct {
	ObjectClassName string       `json:"objectClassName"`
	LDHName         string       `json:"ldhName"`
	IPAddresses     *IPAddresses `json:"ipAddresses,omitempty"`
}

// DSData is one delegation-signer record published for a TLD.
type DSData struct {
	KeyTag     int    `json:"keyTag"`
	Algorithm  int    `json:"algorithm"`
	DigestType int    `json:"digestType"`
	Digest     string `json:"digest"`
}

// SecureDNS carries the DNSSEC facts of a delegation. Present in a
// Domain only when the zone publishes DS records.
type SecureDNS struct {
	DelegationSigned bool     `json:"delegationSigned"`
	DSData           []DSData `json:"dsData,omitempty"`
}

// Entity is a contact object nested in a Domain.
type Entity struct {
	ObjectClassName string   `json:"objectClassName"`
	Handle          string   `json:"handle"`
	Roles           []string `json:"roles"`
	VCard           VCard    `json:"vcardArray"`
}

// Domain is a topmost RDAP response object.
// https://tools.ietf.org/html/rfc7483#section-5.3
type Domain struct {
	ObjectClassName string       `json:"objectClassName"`
	Conformance     []string     `json:"rdapConformance,omitempty"`
	Handle          string       `json:"handle"`
	LDHName         string       `json:"ldhName"`
	UnicodeName     string       `json:"unicodeName,omitempty"`
	Status          []string     `json:"status,omitempty"`
	Entities        []Entity     `json:"entities"`
	Nameservers     []Nameserver `json:"nameservers,omitempty"`
	SecureDNS       *SecureDNS   `json:"secureDNS,omitempty"`
	Events          []Event      `json:"events,omitempty"`
	Remarks         []Remark     `json:"remarks,omitempty"`
	Notices         []Notice     `json:"notices,omitempty"`
	Links           []Link       `json:"links,omitempty"`
	Port43          string       `json:"port43,omitempty"`
}

// Trimmed returns a copy of the domain suitable for inclusion in a
// search result: the conformance tag and notices live on the enclosing
// document, so both are stripped.
func (d *Domain) Trimmed() *Domain {
	cp := *d
	cp.Conformance = nil
	cp.Notices = nil
	return &cp
}

// SearchResults is the combined document written once per run.
type SearchResults struct {
	Conformance []string  `json:"rdapConformance"`
	Notices     []Notice  `json:"notices,omitempty"`
	Domains     []*Domain `json:"domainSearchResults"`
}

// VCard is a jCard: an ordered list of property tuples.
// https://tools.ietf.org/html/rfc7095
type VCard []VCardProperty

// VCardProperty serializes to the four-element jCard tuple
// [name, params, type, value].
type VCardProperty struct {
	Name   string
	Params map[string]string
	Type   string
	Value  interface{}
}

func (vp VCardProperty) MarshalJSON() ([]byte, error) {
	params := vp.Params
	if params == nil {
		// jCard requires an object here, never null
		params = map[string]string{}
	}
	return json.Marshal([]interface{}{vp.Name, params, vp.Type, vp.Value})
}

func (vc VCard) MarshalJSON() ([]byte, error) {
	props := []VCardProperty(vc)
	if props == nil {
		props = []VCardProperty{}
	}
	return json.Marshal([]interface{}{"vcard", props})
}

// NewVCard returns a jCard seeded with the mandatory version marker.
func NewVCard() VCard {
	return VCard{{Name: "version", Type: "text", Value: "4.0"}}
}
