package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseTLDList(t *testing.T) {

	bs := []byte(`# Version 2024050100, Last Updated Wed May  1 07:07:01 2024 UTC
AAA
ABB
XN--90AE

lowercase-ignored
`)

	got := parseTLDList(bs)
	want := []string{"aaa", "abb", "xn--90ae"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSplitLines(t *testing.T) {

	got := splitLines([]byte("one\r\ntwo\nthree"))
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := splitLines(nil); got != nil {
		t.Errorf("empty input: got %q", got)
	}
}

func TestFresh(t *testing.T) {

	dir := t.TempDir()
	fname := filepath.Join(dir, "x.txt")

	if Fresh(fname, time.Hour) {
		t.Error("missing file reported fresh")
	}

	if err := os.WriteFile(fname, []byte("x"), 0664); err != nil {
		t.Fatal(err)
	}
	if !Fresh(fname, time.Hour) {
		t.Error("new file reported stale")
	}

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(fname, old, old); err != nil {
		t.Fatal(err)
	}
	if Fresh(fname, 24*time.Hour) {
		t.Error("48h-old file reported fresh inside a 24h window")
	}
}

func TestWriteFileAtomic(t *testing.T) {

	dir := t.TempDir()
	fname := filepath.Join(dir, "out.txt")

	if err := WriteFileAtomic(fname, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	bs, err := os.ReadFile(fname)
	if err != nil || string(bs) != "hello" {
		t.Fatalf("got %q, %v", bs, err)
	}

	// overwrite in place
	if err := WriteFileAtomic(fname, []byte("replaced")); err != nil {
		t.Fatal(err)
	}
	bs, _ = os.ReadFile(fname)
	if string(bs) != "replaced" {
		t.Errorf("got %q", bs)
	}

	// no tempfile litter
	sMatch, _ := filepath.Glob(filepath.Join(dir, "out.txt-*"))
	if len(sMatch) != 0 {
		t.Errorf("leftover tempfiles: %v", sMatch)
	}
}

func TestFetcherWhoisUsesFreshCache(t *testing.T) {

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "aaa.txt"), []byte("status: ACTIVE\n"), 0664); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConf()
	cfg.WhoisHost = "127.0.0.1" // never reached: the cache is fresh
	f := &Fetcher{Conf: cfg, Dir: dir, Log: testLog{}}

	got := f.Whois("aaa")
	if !reflect.DeepEqual(got, []string{"status: ACTIVE"}) {
		t.Errorf("got %q", got)
	}
}

type testLog struct{}

func (testLog) Debug(string, ...interface{}) {}
func (testLog) Info(string, ...interface{})  {}
func (testLog) Warn(string, ...interface{})  {}
