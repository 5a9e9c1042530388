package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gerr "github.com/pkg/errors"
)

var rxTLDLine = regexp.MustCompile(`^[A-Z0-9-]+$`)

// TLDListFile is the cache filename of the master TLD list inside the
// target directory.
const TLDListFile = "tlds-alpha-by-domain.txt"

func Exists(fname string) bool {
	if _, err := os.Stat(fname); os.IsNotExist(err) {
		return false
	}
	return true
}

// Fresh reports whether a cache file exists and was modified within
// the freshness window.
func Fresh(fname string, ttl time.Duration) bool {
	fi, err := os.Stat(fname)
	if err != nil {
		return false
	}
	return time.Since(fi.ModTime()) < ttl
}

// WriteFileAtomic stages contents in a tempfile, then renames it into
// place so a failed write never leaves a truncated cache file behind.
func WriteFileAtomic(fname string, bs []byte) error {

	pF, err := os.CreateTemp(filepath.Dir(fname), filepath.Base(fname)+"-*")
	if err != nil {
		return err
	}

	tmpname := pF.Name()
	if _, err = pF.Write(bs); err != nil {
		pF.Close()
		os.Remove(tmpname)
		return err
	}
	if err = pF.Close(); err != nil {
		os.Remove(tmpname)
		return err
	}

	return os.Rename(tmpname, fname)
}

func httpGet(url string) ([]byte, error) {

	rsp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	// error on non-200
	if rsp.StatusCode != 200 {
		return nil, fmt.Errorf("%s: %s", rsp.Status, url)
	}

	return io.ReadAll(rsp.Body)
}

// Fetcher retrieves raw text for TLD processing, preferring fresh
// local cache files over network round-trips.
type Fetcher struct {
	Conf    Conf
	Dir     string
	Refresh bool
	Log     Logx
}

// Logx is the logging surface the fetch layer needs.
type Logx interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
}

// TLDs returns the master TLD list, lowercased, in list order. A fetch
// failure degrades to a stale cached copy; with no cached copy at all
// the run cannot proceed.
func (f *Fetcher) TLDs() ([]string, error) {

	fname := filepath.Join(f.Dir, TLDListFile)

	if !f.Refresh && Fresh(fname, f.Conf.CacheTTL()) {
		f.Log.Debug("using cached TLD list", "file", fname)
		bs, err := os.ReadFile(fname)
		if err != nil {
			return nil, err
		}
		return parseTLDList(bs), nil
	}

	f.Log.Info("fetching TLD list", "url", f.Conf.ListURL)
	bs, err := httpGet(f.Conf.ListURL)
	if err != nil {

		if Exists(fname) {
			f.Log.Warn("TLD list fetch failed, using stale cache", "error", err)
			bs, err = os.ReadFile(fname)
			if err != nil {
				return nil, err
			}
			return parseTLDList(bs), nil
		}

		return nil, gerr.WithMessage(err, "TLD list unavailable and not cached")
	}

	if err := WriteFileAtomic(fname, bs); err != nil {
		return nil, gerr.WithMessage(err, "cache TLD list")
	}

	return parseTLDList(bs), nil
}

// parseTLDList keeps the lines that look like TLD labels and drops
// everything else (the file leads with a comment line).
func parseTLDList(bs []byte) []string {

	var sTLDs []string
	pSc := bufio.NewScanner(bytes.NewReader(bs))
	for pSc.Scan() {
		line := strings.TrimSpace(pSc.Text())
		if rxTLDLine.MatchString(line) {
			sTLDs = append(sTLDs, strings.ToLower(line))
		}
	}

	return sTLDs
}

// Whois returns the whois response lines for one TLD, from cache when
// fresh, otherwise from a live port-43 query. A failed live query
// degrades to stale cache, or to no lines at all; it never fails the
// run.
func (f *Fetcher) Whois(tld string) []string {

	fname := filepath.Join(f.Dir, tld+".txt")

	if !f.Refresh && Fresh(fname, f.Conf.CacheTTL()) {
		return readCachedLines(fname, f.Log)
	}

	f.Log.Debug("querying whois", "tld", tld, "host", f.Conf.WhoisHost)
	bs, err := f.query(tld)
	if err != nil {
		f.Log.Warn("whois query failed", "tld", tld, "error", err)
		if Exists(fname) {
			return readCachedLines(fname, f.Log)
		}
		return nil
	}

	if err := WriteFileAtomic(fname, bs); err != nil {
		f.Log.Warn("whois cache write failed", "tld", tld, "error", err)
	}

	return splitLines(bs)
}

// query speaks RFC 3912 to the whois host: send the query, read until
// EOF. The deadline bounds the whole exchange.
func (f *Fetcher) query(tld string) ([]byte, error) {

	conn, err := net.DialTimeout("tcp", f.Conf.WhoisHost+":43", f.Conf.DialTimeout())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(f.Conf.DialTimeout())); err != nil {
		return nil, err
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", tld); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func readCachedLines(fname string, lg Logx) []string {
	bs, err := os.ReadFile(fname)
	if err != nil {
		lg.Warn("cache read failed", "file", fname, "error", err)
		return nil
	}
	return splitLines(bs)
}

func splitLines(bs []byte) []string {

	var sLines []string
	pSc := bufio.NewScanner(bytes.NewReader(bs))
	for pSc.Scan() {
		sLines = append(sLines, pSc.Text())
	}

	return sLines
}
