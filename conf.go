package main

import (
	"os"
	"time"

	gerr "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Conf is the run configuration. Defaults suit normal use; a YAML file
// given with --config overrides individual fields, mainly so tests and
// mirrors can point the tool at different endpoints.
type Conf struct {
	ListURL      string `yaml:"list_url"`
	BootstrapURL string `yaml:"bootstrap_url"`
	GTLDsURL     string `yaml:"gtlds_url"`
	WhoisHost    string `yaml:"whois_host"`
	Workers      int    `yaml:"workers"`
	CacheTTLH    int    `yaml:"cache_ttl_hours"`
	DialTimeoutS int    `yaml:"dial_timeout_seconds"`
}

func DefaultConf() Conf {
	return Conf{
		ListURL:      "https://data.iana.org/TLD/tlds-alpha-by-domain.txt",
		BootstrapURL: "https://data.iana.org/rdap/dns.json",
		GTLDsURL:     "https://www.icann.org/resources/registries/gtlds/v2/gtlds.json",
		WhoisHost:    "whois.iana.org",
		Workers:      8,
		CacheTTLH:    24,
		DialTimeoutS: 5,
	}
}

func (c *Conf) LoadFile(fname string) error {

	bs, err := os.ReadFile(fname)
	if err != nil {
		return gerr.WithMessage(err, "read config")
	}

	if err := yaml.Unmarshal(bs, c); err != nil {
		return gerr.WithMessage(err, "parse config")
	}

	c.normalize()
	return nil
}

func (c *Conf) normalize() {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.CacheTTLH < 0 {
		c.CacheTTLH = 0
	}
	if c.DialTimeoutS < 1 {
		c.DialTimeoutS = 1
	}
}

func (c Conf) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLH) * time.Hour
}

func (c Conf) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutS) * time.Second
}
