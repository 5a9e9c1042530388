package whois

import (
	"reflect"
	"testing"

	gerr "github.com/pkg/errors"
)

func mustParse(t *testing.T, tld string, lines []string) *Record {
	t.Helper()
	rec, err := Parse(tld, lines, Options{})
	if err != nil {
		t.Fatalf("Parse(%s): %v", tld, err)
	}
	return rec
}

func TestParseFullRecord(t *testing.T) {

	lines := []string{
		"% IANA WHOIS server",
		"% for more information on IANA, visit http://www.iana.org",
		"",
		"domain:       EXAMPLE",
		"organisation: Example Registry",
		"address:      123 Example Street",
		"address:      Example City",
		"contact:      administrative",
		"name:         Admin Person",
		"e-mail:       admin@example.test",
		"nserver:      NS1.EXAMPLE 192.0.2.1 2001:db8::1",
		"ds-rdata:     12345 8 2 ABCDEF0123",
		"status:       ACTIVE",
		"created:      1985-01-01",
		"changed:      2020-06-01",
		"source:       IANA",
	}

	rec := mustParse(t, "example", lines)

	if rec.LDHName != "example" || rec.Handle != "example" {
		t.Errorf("names: got %q/%q", rec.LDHName, rec.Handle)
	}

	if !reflect.DeepEqual(rec.Status, []string{"active"}) {
		t.Errorf("status: got %v", rec.Status)
	}

	if !reflect.DeepEqual(rec.Comments, []string{
		"IANA WHOIS server",
		"for more information on IANA, visit http://www.iana.org",
	}) {
		t.Errorf("comments: got %v", rec.Comments)
	}

	wantEvents := []string{"registration", "last changed"}
	if len(rec.Events) != len(wantEvents) {
		t.Fatalf("events: got %v", rec.Events)
	}
	for ix, action := range wantEvents {
		if rec.Events[ix].Action != action {
			t.Errorf("event %d: got %q, want %q", ix, rec.Events[ix].Action, action)
		}
	}
	if rec.Events[0].Date != "1985-01-01" {
		t.Errorf("registration date: got %q", rec.Events[0].Date)
	}

	if len(rec.Remarks) != 1 || rec.Remarks[0].Title != "Source" {
		t.Errorf("remarks: got %+v", rec.Remarks)
	}
}

func TestParseNserverClassification(t *testing.T) {

	tests := []struct {
		name  string
		value string
		host  string
		v4    []string
		v6    []string
	}{
		{
			name:  "both families",
			value: "nserver: ns1.example 192.0.2.1 2001:db8::1",
			host:  "ns1.example",
			v4:    []string{"192.0.2.1"},
			v6:    []string{"2001:db8::1"},
		},
		{
			name:  "hostname only",
			value: "nserver: NS2.EXAMPLE",
			host:  "ns2.example",
		},
		{
			name:  "dotted v6 lands in both lists",
			value: "nserver: ns3.example ::ffff:192.0.2.1",
			host:  "ns3.example",
			v4:    []string{"::ffff:192.0.2.1"},
			v6:    []string{"::ffff:192.0.2.1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			rec := mustParse(t, "example", []string{tc.value})
			if len(rec.Nameservers) != 1 {
				t.Fatalf("nameservers: got %d", len(rec.Nameservers))
			}

			ns := rec.Nameservers[0]
			if ns.LDHName != tc.host {
				t.Errorf("host: got %q, want %q", ns.LDHName, tc.host)
			}

			var v4, v6 []string
			if ns.IPAddresses != nil {
				v4, v6 = ns.IPAddresses.V4, ns.IPAddresses.V6
			}
			if !reflect.DeepEqual(v4, tc.v4) {
				t.Errorf("v4: got %v, want %v", v4, tc.v4)
			}
			if !reflect.DeepEqual(v6, tc.v6) {
				t.Errorf("v6: got %v, want %v", v6, tc.v6)
			}
		})
	}
}

func TestParseDSRdata(t *testing.T) {

	rec := mustParse(t, "example", []string{
		"ds-rdata: 12345 8 2 ABCDEF0123456789",
	})

	if rec.SecureDNS == nil || !rec.SecureDNS.DelegationSigned {
		t.Fatal("delegationSigned not set")
	}
	if len(rec.SecureDNS.DSData) != 1 {
		t.Fatalf("dsData: got %d entries", len(rec.SecureDNS.DSData))
	}

	ds := rec.SecureDNS.DSData[0]
	if ds.KeyTag != 12345 || ds.Algorithm != 8 || ds.DigestType != 2 {
		t.Errorf("numeric fields: got %+v", ds)
	}
	if ds.Digest != "ABCDEF0123456789" {
		t.Errorf("digest: got %q", ds.Digest)
	}
}

func TestParseDSRdataDigestKeepsRemainder(t *testing.T) {

	rec := mustParse(t, "example", []string{
		"ds-rdata: 1 2 3 AAAA BBBB CCCC",
	})

	if got := rec.SecureDNS.DSData[0].Digest; got != "AAAA BBBB CCCC" {
		t.Errorf("digest: got %q, want remainder with embedded spaces", got)
	}
}

func TestParseNoSecureDNSWithoutDSRdata(t *testing.T) {
	rec := mustParse(t, "example", []string{"status: ACTIVE"})
	if rec.SecureDNS != nil {
		t.Errorf("secureDNS present without ds-rdata: %+v", rec.SecureDNS)
	}
}

func TestParseBadStatus(t *testing.T) {

	_, err := Parse("example", []string{"status: bogus"}, Options{})
	if !gerr.Is(err, EBadStatus) {
		t.Errorf("got %v, want EBadStatus", err)
	}
}

func TestParseBadKey(t *testing.T) {

	tests := []struct {
		name string
		line string
	}{
		{"unknown key", "frobnicate: yes"},
		{"case-sensitive match", "Status: ACTIVE"},
		{"no colon at all", "garbage line"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("example", []string{tc.line}, Options{})
			if !gerr.Is(err, EBadKey) {
				t.Errorf("got %v, want EBadKey", err)
			}
		})
	}
}

func TestParseStatusValueIsCaseFolded(t *testing.T) {

	rec := mustParse(t, "example", []string{"status: FORMER"})
	if !reflect.DeepEqual(rec.Status, []string{"former"}) {
		t.Errorf("status: got %v", rec.Status)
	}
}

func TestParseValueMayContainColons(t *testing.T) {

	rec := mustParse(t, "example", []string{
		"remarks: see https://www.example.test/registration",
	})
	if len(rec.Remarks) != 1 {
		t.Fatalf("remarks: got %+v", rec.Remarks)
	}
	if got := rec.Remarks[0].Description[0]; got != "see https://www.example.test/registration" {
		t.Errorf("description: got %q", got)
	}
}

func TestParseRegistrationURLCapture(t *testing.T) {

	rec := mustParse(t, "example", []string{
		"remarks: Registration information: http://www.example.test",
	})

	if rec.RegistrationURL != "http://www.example.test" {
		t.Errorf("registrationUrl: got %q", rec.RegistrationURL)
	}
	if len(rec.Remarks) != 1 || len(rec.Remarks[0].Links) != 1 {
		t.Fatalf("remark link missing: %+v", rec.Remarks)
	}
	if rec.Remarks[0].Links[0].Href != "http://www.example.test" {
		t.Errorf("link href: got %q", rec.Remarks[0].Links[0].Href)
	}
}

func TestParseRegistrationURLCaseInsensitive(t *testing.T) {

	rec := mustParse(t, "example", []string{
		"remarks: REGISTRATION INFORMATION: http://nic.example",
	})
	if rec.RegistrationURL != "http://nic.example" {
		t.Errorf("registrationUrl: got %q", rec.RegistrationURL)
	}
}

func TestParseWhoisRemark(t *testing.T) {

	t.Run("explicit host", func(t *testing.T) {
		rec := mustParse(t, "example", []string{"whois: whois.example.test"})
		if len(rec.Remarks) != 1 || rec.Remarks[0].Title != "Whois Service" {
			t.Fatalf("remarks: %+v", rec.Remarks)
		}
	})

	t.Run("empty host, gTLD guess", func(t *testing.T) {
		rec, err := Parse("example", []string{"whois:"}, Options{GTLD: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(rec.Remarks) != 1 {
			t.Fatalf("remarks: %+v", rec.Remarks)
		}
		want := "The port-43 whois server for the example TLD is whois.nic.example."
		if got := rec.Remarks[0].Description[0]; got != want {
			t.Errorf("description: got %q, want %q", got, want)
		}
	})

	t.Run("empty host, not a gTLD", func(t *testing.T) {
		rec := mustParse(t, "example", []string{"whois:"})
		if len(rec.Remarks) != 0 {
			t.Errorf("unexpected remark: %+v", rec.Remarks)
		}
	})
}
