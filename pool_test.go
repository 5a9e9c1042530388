package main

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	gerr "github.com/pkg/errors"

	"github.com/gbxyz/rootrdap/rdap"
)

func TestRunOrderedDeliversInListOrder(t *testing.T) {

	sTLDs := []string{"aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh"}

	for _, workers := range []int{1, 3, 16} {

		fnWork := func(tld string) (*rdap.Domain, error) {
			// jitter so completion order differs from list order
			time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			return &rdap.Domain{LDHName: tld}, nil
		}

		var got []string
		fnEmit := func(tld string, doc *rdap.Domain, err error) error {
			if err != nil {
				return err
			}
			got = append(got, doc.LDHName)
			return nil
		}

		if err := RunOrdered(workers, sTLDs, fnWork, fnEmit); err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if !reflect.DeepEqual(got, sTLDs) {
			t.Errorf("workers=%d: got %v", workers, got)
		}
	}
}

func TestRunOrderedStopsOnError(t *testing.T) {

	sTLDs := []string{"aaa", "bbb", "bad", "ddd", "eee"}
	EBoom := gerr.New("boom")

	fnWork := func(tld string) (*rdap.Domain, error) {
		if tld == "bad" {
			return nil, EBoom
		}
		return &rdap.Domain{LDHName: tld}, nil
	}

	var emitted []string
	fnEmit := func(tld string, doc *rdap.Domain, err error) error {
		if err != nil {
			return err
		}
		emitted = append(emitted, tld)
		return nil
	}

	err := RunOrdered(4, sTLDs, fnWork, fnEmit)
	if !gerr.Is(err, EBoom) {
		t.Fatalf("got %v, want the work error", err)
	}

	// everything before the failure is emitted, nothing after
	if !reflect.DeepEqual(emitted, []string{"aaa", "bbb"}) {
		t.Errorf("emitted: got %v", emitted)
	}
}

func TestRunOrderedEmptyList(t *testing.T) {

	called := false
	err := RunOrdered(4, nil,
		func(string) (*rdap.Domain, error) { called = true; return nil, nil },
		func(string, *rdap.Domain, error) error { called = true; return nil },
	)
	if err != nil || called {
		t.Errorf("err=%v called=%v", err, called)
	}
}
