package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
	gerr "github.com/pkg/errors"

	"github.com/gbxyz/rootrdap/rdap"
)

var rxTLDLabel = regexp.MustCompile(`^[a-z0-9-]+$`)

var ENoSuchTLD = gerr.New("no cached whois record; run a generation pass first")

var eQuit = gerr.New("quit")

// Inspect is the interactive mode: a readline loop over the cached
// whois records in the target directory. Typing a TLD re-parses its
// cached record and prints the assembled document. Read-only; output
// files are never touched.
func Inspect(dir string, ref *rdap.RefData, lg Logx) error {

	rl, err := readline.New("rootrdap> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("commands: <tld> | ls | quit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		if err := inspectCmd(dir, ref, line); err != nil {
			if err == eQuit {
				return nil
			}
			lg.Warn(err.Error())
		}
	}
}

func inspectCmd(dir string, ref *rdap.RefData, cmd string) error {

	cmd = strings.ToLower(strings.TrimSpace(cmd))

	switch {

	case len(cmd) == 0:
		return nil

	case cmd == "quit" || cmd == "exit":
		return eQuit

	case cmd == "ls":
		sTLDs, err := cachedTLDs(dir)
		if err != nil {
			return err
		}
		for _, tld := range sTLDs {
			fmt.Println(tld)
		}
		return nil

	case rxTLDLabel.MatchString(cmd):
		return inspectTLD(dir, ref, cmd)
	}

	return gerr.Errorf("bad command %q", cmd)
}

func inspectTLD(dir string, ref *rdap.RefData, tld string) error {

	fname := filepath.Join(dir, tld+".txt")
	if !Exists(fname) {
		return gerr.WithMessage(ENoSuchTLD, tld)
	}

	bs, err := os.ReadFile(fname)
	if err != nil {
		return err
	}

	doc, err := AssembleTLD(tld, splitLines(bs), ref, time.Now())
	if err != nil {
		return err
	}

	out, err := rdap.Encode(doc)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(out)
	return err
}

// cachedTLDs lists the TLDs with a cached whois record, sorted.
func cachedTLDs(dir string) ([]string, error) {

	sMatch, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}

	var sTLDs []string
	for _, fname := range sMatch {
		base := strings.TrimSuffix(filepath.Base(fname), ".txt")
		if base == strings.TrimSuffix(TLDListFile, ".txt") {
			continue
		}
		if rxTLDLabel.MatchString(base) {
			sTLDs = append(sTLDs, base)
		}
	}

	sort.Strings(sTLDs)
	return sTLDs, nil
}
