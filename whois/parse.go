package whois

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gerr "github.com/pkg/errors"

	"github.com/gbxyz/rootrdap/rdap"
)

var (
	EBadKey    = gerr.New("unrecognized whois key")
	EBadStatus = gerr.New("unrecognized status value")
)

// Key identifies one recognized whois attribute. Matching against raw
// key text is exact and case-sensitive; anything outside the closed
// set maps to KeyUnknown, which is a fatal parse error.
type Key int

const (
	KeyUnknown Key = iota
	KeyDomain
	KeyDomainACE
	KeySource
	KeyNserver
	KeyDSRdata
	KeyStatus
	KeyCreated
	KeyChanged
	KeyRemarks
	KeyContact
	KeyName
	KeyOrganisation
	KeyAddress
	KeyPhone
	KeyFaxNo
	KeyEMail
	KeyWhois
)

var mKeys = map[string]Key{
	"domain":       KeyDomain,
	"domain-ace":   KeyDomainACE,
	"source":       KeySource,
	"nserver":      KeyNserver,
	"ds-rdata":     KeyDSRdata,
	"status":       KeyStatus,
	"created":      KeyCreated,
	"changed":      KeyChanged,
	"remarks":      KeyRemarks,
	"contact":      KeyContact,
	"name":         KeyName,
	"organisation": KeyOrganisation,
	"address":      KeyAddress,
	"phone":        KeyPhone,
	"fax-no":       KeyFaxNo,
	"e-mail":       KeyEMail,
	"whois":        KeyWhois,
}

// recognized lifecycle tokens; status values are case-folded before
// the check, unlike keys
var mStatus = map[string]bool{
	"active":  true,
	"removed": true,
	"former":  true,
}

var rxRegInfo = regexp.MustCompile(`(?i)^registration information:\s*(\S+)`)

// Options modify a single parse.
type Options struct {
	// GTLD marks the TLD as present in the gTLD registry, which
	// enables the whois.nic.<tld> host guess for empty whois lines.
	GTLD bool
}

type parser struct {
	tld  string
	opts Options
	rec  *Record
	cur  *Contact
}

// Parse converts one TLD's raw whois response lines into a Record.
// Lines must be in response order; the record mirrors that order
// except for the final by-role entity sort.
func Parse(tld string, lines []string, opts Options) (*Record, error) {

	p := parser{
		tld:  tld,
		opts: opts,
		rec:  newRecord(tld),
	}
	p.cur = p.rec.contact(RegistrantRole)

	for ix, line := range lines {

		line = strings.TrimRight(line, "\r")

		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		if strings.HasPrefix(line, "%") {
			p.rec.addComment(strings.TrimPrefix(line, "%"))
			continue
		}

		key, value, err := splitLine(line)
		if err != nil {
			return nil, gerr.WithMessage(err, fmt.Sprintf("%s line %d", tld, ix+1))
		}

		if err := p.apply(key, value); err != nil {
			return nil, gerr.WithMessage(err, fmt.Sprintf("%s line %d", tld, ix+1))
		}
	}

	return p.rec, nil
}

// splitLine breaks "key: value" on the first colon. The value may
// itself contain colons.
func splitLine(line string) (string, string, error) {
	ix := strings.Index(line, ":")
	if ix < 0 {
		return "", "", gerr.WithMessage(EBadKey, strconv.Quote(line))
	}
	return line[:ix], strings.TrimLeft(line[ix+1:], " "), nil
}

func (p *parser) apply(rawKey, value string) error {

	switch mKeys[rawKey] {

	case KeyDomain, KeyDomainACE:
		// the TLD is already known from the processing unit

	case KeySource:
		p.rec.Remarks = append(p.rec.Remarks, rdap.Remark{
			Title:       "Source",
			Description: []string{value},
		})

	case KeyNserver:
		p.rec.Nameservers = append(p.rec.Nameservers, parseNserver(value))

	case KeyDSRdata:
		p.applyDSRdata(value)

	case KeyStatus:
		status := strings.ToLower(value)
		if !mStatus[status] {
			return gerr.WithMessage(EBadStatus, strconv.Quote(value))
		}
		p.rec.addStatus(status)

	case KeyCreated:
		p.rec.Events = append(p.rec.Events, rdap.Event{Action: "registration", Date: value})

	case KeyChanged:
		p.rec.Events = append(p.rec.Events, rdap.Event{Action: "last changed", Date: value})

	case KeyRemarks:
		p.applyRemarks(value)

	case KeyContact:
		p.cur = p.rec.contact(value)

	case KeyName:
		p.cur.addProp("fn", nil, value)

	case KeyOrganisation:
		p.cur.addProp("org", nil, value)

	case KeyAddress:
		p.cur.addAddress(value)

	case KeyPhone:
		p.cur.addProp("tel", map[string]string{"type": "voice"}, value)

	case KeyFaxNo:
		p.cur.addProp("tel", map[string]string{"type": "fax"}, value)

	case KeyEMail:
		p.cur.addProp("email", nil, value)

	case KeyWhois:
		p.applyWhois(value)

	case KeyUnknown:
		return gerr.WithMessage(EBadKey, strconv.Quote(rawKey))
	}

	return nil
}

// parseNserver splits a nserver value into hostname plus glue IPs.
// Each IP token is classified by the presence of '.' or ':',
// independently; a token could in principle match neither or both.
// That is accepted behavior inherited from the whois format.
func parseNserver(value string) rdap.Nameserver {

	fields := strings.Fields(value)
	ns := rdap.Nameserver{ObjectClassName: "nameserver"}
	if len(fields) == 0 {
		return ns
	}

	ns.LDHName = strings.ToLower(fields[0])

	var ips rdap.IPAddresses
	for _, tok := range fields[1:] {
		if strings.Contains(tok, ".") {
			ips.V4 = append(ips.V4, tok)
		}
		if strings.Contains(tok, ":") {
			ips.V6 = append(ips.V6, tok)
		}
	}
	if len(ips.V4) > 0 || len(ips.V6) > 0 {
		ns.IPAddresses = &ips
	}

	return ns
}

// applyDSRdata records one DS record and marks the delegation signed.
// The digest is the remainder after three splits, so an embedded space
// survives as-is.
func (p *parser) applyDSRdata(value string) {

	if p.rec.SecureDNS == nil {
		p.rec.SecureDNS = &rdap.SecureDNS{}
	}
	p.rec.SecureDNS.DelegationSigned = true

	fields := strings.SplitN(value, " ", 4)
	var ds rdap.DSData
	if len(fields) > 0 {
		ds.KeyTag, _ = strconv.Atoi(fields[0])
	}
	if len(fields) > 1 {
		ds.Algorithm, _ = strconv.Atoi(fields[1])
	}
	if len(fields) > 2 {
		ds.DigestType, _ = strconv.Atoi(fields[2])
	}
	if len(fields) > 3 {
		ds.Digest = fields[3]
	}

	p.rec.SecureDNS.DSData = append(p.rec.SecureDNS.DSData, ds)
}

func (p *parser) applyRemarks(value string) {

	remark := rdap.Remark{
		Title:       "Remarks",
		Description: []string{value},
	}

	if m := rxRegInfo.FindStringSubmatch(value); m != nil {
		url := m[1]
		p.rec.RegistrationURL = url
		remark.Links = []rdap.Link{{
			Value: url,
			Rel:   "related",
			Href:  url,
		}}
	}

	p.rec.Remarks = append(p.rec.Remarks, remark)
}

// applyWhois notes the registry's port-43 whois service. Some gTLD
// records omit the hostname; those get the conventional
// whois.nic.<tld> guess.
func (p *parser) applyWhois(value string) {

	host := value
	if len(host) == 0 {
		if !p.opts.GTLD {
			return
		}
		host = "whois.nic." + p.tld
	}

	p.rec.Remarks = append(p.rec.Remarks, rdap.Remark{
		Title: "Whois Service",
		Description: []string{fmt.Sprintf(
			"The port-43 whois server for the %s TLD is %s.", p.tld, host,
		)},
	})
}
