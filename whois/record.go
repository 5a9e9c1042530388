// Package whois converts the semi-structured whois records that IANA
// publishes for root-zone TLDs into structured domain records ready
// for RDAP assembly.
package whois

import (
	"sort"
	"strings"

	"github.com/gbxyz/rootrdap/rdap"
)

// RegistrantRole is the contact role every record starts out with.
// Contact-detail lines seen before any "contact:" line apply to it.
const RegistrantRole = "registrant"

// Record is the structured form of one TLD's whois response. It is
// populated in a single linear pass over the response lines and is
// immutable afterwards.
type Record struct {
	LDHName         string
	Handle          string
	Status          []string
	Nameservers     []rdap.Nameserver
	SecureDNS       *rdap.SecureDNS
	Events          []rdap.Event
	Remarks         []rdap.Remark
	RegistrationURL string
	Comments        []string

	roles    []string
	contacts map[string]*Contact
}

// Contact accumulates the vCard properties of one contact block.
type Contact struct {
	Role  string
	props rdap.VCard
	ixAdr int
}

func newRecord(tld string) *Record {
	rec := &Record{
		LDHName:  tld,
		Handle:   tld,
		contacts: map[string]*Contact{},
	}
	// every record carries a registrant entry, even an empty one
	rec.contact(RegistrantRole)
	return rec
}

// contact returns the contact registered under the given role key,
// creating it on first use. Role keys are unique within a record.
func (rec *Record) contact(role string) *Contact {

	if pC, ok := rec.contacts[role]; ok {
		return pC
	}

	pC := &Contact{
		Role:  role,
		props: rdap.NewVCard(),
		ixAdr: -1,
	}
	rec.roles = append(rec.roles, role)
	rec.contacts[role] = pC
	return pC
}

func (pC *Contact) addProp(name string, params map[string]string, value interface{}) {
	pC.props = append(pC.props, rdap.VCardProperty{
		Name:   name,
		Params: params,
		Type:   "text",
		Value:  value,
	})
}

// addAddress appends to the contact's single adr tuple. A contact has
// at most one adr: follow-up address lines extend its label rather
// than producing duplicate tuples.
func (pC *Contact) addAddress(line string) {

	if pC.ixAdr < 0 {
		pC.props = append(pC.props, rdap.VCardProperty{
			Name:   "adr",
			Params: map[string]string{"label": line},
			Type:   "text",
			Value:  []string{"", "", "", "", "", "", ""},
		})
		pC.ixAdr = len(pC.props) - 1
		return
	}

	pP := &pC.props[pC.ixAdr]
	pP.Params["label"] = pP.Params["label"] + "\n" + line
}

// Entities renders the collected contacts as RDAP entity objects,
// sorted by role key so output is reproducible regardless of whois
// response ordering.
func (rec *Record) Entities() []rdap.Entity {

	roles := make([]string, len(rec.roles))
	copy(roles, rec.roles)
	sort.Strings(roles)

	sEnt := make([]rdap.Entity, 0, len(roles))
	for _, role := range roles {
		pC := rec.contacts[role]
		sEnt = append(sEnt, rdap.Entity{
			ObjectClassName: "entity",
			Handle:          rec.Handle + "-" + role,
			Roles:           []string{role},
			VCard:           pC.props,
		})
	}

	return sEnt
}

func (rec *Record) addStatus(s string) {
	for _, have := range rec.Status {
		if have == s {
			return
		}
	}
	rec.Status = append(rec.Status, s)
}

func (rec *Record) addComment(line string) {
	rec.Comments = append(rec.Comments, strings.TrimSpace(line))
}
