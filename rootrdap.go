// Command rootrdap fetches the IANA root-zone TLD list and per-TLD
// whois records, parses them into structured form, and writes
// RDAP-compliant JSON documents to a target directory.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	gerr "github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/gbxyz/rootrdap/logx"
	"github.com/gbxyz/rootrdap/rdap"
	"github.com/gbxyz/rootrdap/whois"
)

func main() {

	var E error
	var lg *logx.Logger
	defer func() {
		if E != nil {
			if lg != nil {
				lg.Error(E.Error())
			} else {
				fmt.Fprintln(os.Stderr, "error:", E)
			}
			os.Exit(1)
		}
	}()

	// default to color if stderr is a TTY
	bIsTty := isatty.IsTerminal(os.Stderr.Fd())

	var (
		bHelp        bool
		bRefresh     bool
		bInteractive bool
		bVerbose     bool
		bColor       bool
		nWorkers     int
		szConfig     string
	)

	cfg := DefaultConf()

	pflag.BoolVarP(&bHelp, "help", "h", false, "print usage and exit")
	pflag.BoolVar(&bRefresh, "refresh", false, "ignore cache freshness, re-fetch everything")
	pflag.BoolVarP(&bInteractive, "interactive", "i", false, "inspect cached records interactively instead of generating output")
	pflag.BoolVarP(&bVerbose, "verbose", "v", false, "debug logging")
	pflag.BoolVar(&bColor, "color", bIsTty, "force color log output on/off")
	pflag.IntVarP(&nWorkers, "workers", "w", cfg.Workers, "concurrent TLD fetches")
	pflag.StringVarP(&szConfig, "config", "c", "", "YAML run configuration file")

	var iWri io.Writer = os.Stdout
	pflag.CommandLine.SetOutput(iWri)
	pflag.Usage = func() {
		fmt.Fprint(iWri, `USAGE
  rootrdap [OPTION]... [DIR]

Generates RDAP records for every TLD in the IANA root zone: fetches the
root-zone TLD list and each TLD's whois record, parses the whois text
into structured form, and writes one pretty-printed JSON document per
TLD plus a combined _all.json into DIR (default: current directory).
Fetched text is cached in DIR and reused within the freshness window.

OPTION
`)
		pflag.PrintDefaults()
		fmt.Fprint(iWri, "\n")
	}

	pflag.Parse()

	if bHelp {
		pflag.Usage()
		return
	}

	lvl := logx.LevelInfo
	if bVerbose {
		lvl = logx.LevelDebug
	}
	lg = logx.New(lvl, bColor)

	if len(szConfig) > 0 {
		if E = cfg.LoadFile(szConfig); E != nil {
			return
		}
	}
	if nWorkers > 0 {
		cfg.Workers = nWorkers
	}

	// target directory
	dir := "."
	if args := pflag.Args(); len(args) > 0 {
		dir = args[0]
	}
	fi, err := os.Stat(dir)
	if err != nil {
		E = gerr.WithMessage(err, "target directory")
		return
	}
	if !fi.IsDir() {
		E = gerr.Errorf("target %q is not a directory", dir)
		return
	}

	// reference data, cached between runs
	store, err := OpenRefStore(dir)
	if err != nil {
		E = err
		return
	}
	defer store.Close()
	ref := store.LoadRefData(cfg, bRefresh, lg)

	if bInteractive {
		E = Inspect(dir, ref, lg)
		return
	}

	E = generate(cfg, dir, bRefresh, ref, lg)
}

// generate is the batch pipeline: list the TLDs, process each one
// through fetch-parse-assemble on a worker pool, write documents in
// list order, then write the aggregate.
func generate(cfg Conf, dir string, refresh bool, ref *rdap.RefData, lg *logx.Logger) error {

	fetcher := &Fetcher{Conf: cfg, Dir: dir, Refresh: refresh, Log: lg}

	sTLDs, err := fetcher.TLDs()
	if err != nil {
		return err
	}
	lg.Info("processing TLDs", "count", len(sTLDs), "workers", cfg.Workers)

	collector := NewCollector()
	t0 := time.Now()

	fnWork := func(tld string) (*rdap.Domain, error) {
		return AssembleTLD(tld, fetcher.Whois(tld), ref, time.Now())
	}

	fnEmit := func(tld string, doc *rdap.Domain, err error) error {
		if err != nil {
			return err
		}

		bs, err := rdap.Encode(doc)
		if err != nil {
			return err
		}

		fname := filepath.Join(dir, tld+".json")
		if err := os.WriteFile(fname, bs, 0664); err != nil {
			return gerr.WithMessage(err, fname)
		}

		lg.Debug("wrote", "file", fname)
		collector.Add(doc)
		return nil
	}

	if err := RunOrdered(cfg.Workers, sTLDs, fnWork, fnEmit); err != nil {

		// an unrecognized key or status means the whois format
		// changed under us; halting beats corrupting every
		// following document
		if gerr.Is(err, whois.EBadKey) || gerr.Is(err, whois.EBadStatus) {
			return gerr.WithMessage(err, "whois format change suspected")
		}
		return err
	}

	if err := collector.WriteFile(dir); err != nil {
		return err
	}

	lg.Info("done", "tlds", collector.Len(), "elapsed", time.Since(t0).Round(time.Millisecond))
	return nil
}
