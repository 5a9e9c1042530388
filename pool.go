package main

import (
	"sync"

	"github.com/gbxyz/rootrdap/rdap"
)

// tldResult is one TLD's processing outcome, tagged with its position
// in the master list.
type tldResult struct {
	ix  int
	tld string
	doc *rdap.Domain
	err error
}

// WorkFunc processes one TLD into a finished document.
type WorkFunc func(tld string) (*rdap.Domain, error)

// EmitFunc receives finished documents strictly in list order. A
// non-nil return stops the pool; remaining TLDs are neither emitted
// nor written.
type EmitFunc func(tld string, doc *rdap.Domain, err error) error

// RunOrdered fans the TLD list out over a bounded set of workers while
// keeping delivery deterministic: emit sees results in exactly the
// order of the input list, whatever order the workers finish in. The
// per-TLD pipeline is independent across TLDs, so only emission needs
// serializing.
func RunOrdered(workers int, sTLDs []string, fnWork WorkFunc, fnEmit EmitFunc) error {

	if workers < 1 {
		workers = 1
	}
	if workers > len(sTLDs) {
		workers = len(sTLDs)
	}
	if len(sTLDs) == 0 {
		return nil
	}

	jobs := make(chan int)
	results := make(chan tldResult, workers)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ix := range jobs {
				doc, err := fnWork(sTLDs[ix])
				select {
				case results <- tldResult{ix: ix, tld: sTLDs[ix], doc: doc, err: err}:
				case <-done:
					return
				}
			}
		}()
	}

	// feeder
	go func() {
		defer close(jobs)
		for ix := range sTLDs {
			select {
			case jobs <- ix:
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// reorder completions into list order before emission
	pending := make(map[int]tldResult)
	next := 0
	var emitErr error

	for res := range results {
		pending[res.ix] = res

		for emitErr == nil {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if err := fnEmit(r.tld, r.doc, r.err); err != nil {
				emitErr = err
				close(done)
			}
		}

		if emitErr != nil {
			break
		}
	}

	if emitErr != nil {
		// unblock and discard whatever is still in flight
		for range results {
		}
		return emitErr
	}

	return nil
}
