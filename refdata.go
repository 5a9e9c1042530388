package main

import (
	"path/filepath"
	"time"

	gerr "github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/gbxyz/rootrdap/rdap"
)

// RefDBFile is the bbolt database holding cached reference-data
// documents inside the target directory.
const RefDBFile = "refdata.db"

func Clone(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

type IHasBucket interface {
	Bucket([]byte) *bbolt.Bucket
}

func GetBucket(ib IHasBucket, bsKey []byte) (*bbolt.Bucket, error) {
	bkt := ib.Bucket(bsKey)
	if bkt == nil {
		return nil, gerr.Errorf("bucket %s: not found", string(bsKey))
	}
	return bkt, nil
}

type RefBucket int

const (
	RbBody RefBucket = iota
	RbFetchedAt
	RbMAX
)

func (k RefBucket) Key() []byte {
	switch k {
	case RbBody:
		return []byte("body")
	case RbFetchedAt:
		return []byte("fetched_at")
	}
	return []byte{}
}

// RefStore caches the RDAP bootstrap registry and the gTLD registry
// between runs, so a fresh run does not re-download two documents that
// change rarely.
type RefStore struct {
	db *bbolt.DB
}

func OpenRefStore(dir string) (*RefStore, error) {

	db, err := bbolt.Open(filepath.Join(dir, RefDBFile), 0664, nil)
	if err != nil {
		return nil, gerr.WithMessage(err, "open refdata db")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for ix := RefBucket(0); ix < RbMAX; ix++ {
			if _, err := tx.CreateBucketIfNotExists(ix.Key()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &RefStore{db: db}, nil
}

func (rs *RefStore) Close() error {
	return rs.db.Close()
}

// get returns the cached body for a document name plus its age, or nil
// when nothing is cached.
func (rs *RefStore) get(name string) (bs []byte, age time.Duration, err error) {

	age = time.Duration(1<<63 - 1)

	err = rs.db.View(func(tx *bbolt.Tx) error {

		bkt, err := GetBucket(tx, RbBody.Key())
		if err != nil {
			return err
		}
		if v := bkt.Get([]byte(name)); v != nil {
			bs = Clone(v)
		}

		bkt, err = GetBucket(tx, RbFetchedAt.Key())
		if err != nil {
			return err
		}
		if v := bkt.Get([]byte(name)); v != nil {
			if at, err := time.Parse(time.RFC3339, string(v)); err == nil {
				age = time.Since(at)
			}
		}

		return nil
	})

	return
}

func (rs *RefStore) put(name string, bs []byte, at time.Time) error {

	return rs.db.Update(func(tx *bbolt.Tx) error {

		bkt, err := GetBucket(tx, RbBody.Key())
		if err != nil {
			return err
		}
		if err := bkt.Put([]byte(name), bs); err != nil {
			return gerr.WithMessage(err, "put body")
		}

		bkt, err = GetBucket(tx, RbFetchedAt.Key())
		if err != nil {
			return err
		}
		return gerr.WithMessage(
			bkt.Put([]byte(name), []byte(at.Format(time.RFC3339))),
			"put fetched_at",
		)
	})
}

// Document fetches a reference document through the cache: a fresh
// cached copy wins, then a live fetch, then a stale cached copy. With
// neither it returns nil; reference data is enrichment, never a hard
// requirement.
func (rs *RefStore) Document(name, url string, ttl time.Duration, refresh bool, lg Logx) []byte {

	bs, age, err := rs.get(name)
	if err != nil {
		lg.Warn("refdata cache read failed", "doc", name, "error", err)
	}

	if bs != nil && age < ttl && !refresh {
		lg.Debug("using cached reference data", "doc", name, "age", age.Round(time.Minute))
		return bs
	}

	lg.Info("fetching reference data", "doc", name, "url", url)
	fresh, err := httpGet(url)
	if err != nil {
		if bs != nil {
			lg.Warn("refdata fetch failed, using stale cache", "doc", name, "error", err)
			return bs
		}
		lg.Warn("refdata unavailable", "doc", name, "error", err)
		return nil
	}

	if err := rs.put(name, fresh, time.Now()); err != nil {
		lg.Warn("refdata cache write failed", "doc", name, "error", err)
	}

	return fresh
}

// LoadRefData assembles the two read-only reference mappings used
// during per-TLD processing.
func (rs *RefStore) LoadRefData(cfg Conf, refresh bool, lg Logx) *rdap.RefData {

	ref := &rdap.RefData{
		RDAPBase: map[string]string{},
		GTLDs:    map[string]rdap.GTLD{},
	}

	if bs := rs.Document("dns.json", cfg.BootstrapURL, cfg.CacheTTL(), refresh, lg); bs != nil {
		m, err := rdap.ParseBootstrap(bs)
		if err != nil {
			lg.Warn("bad bootstrap registry", "error", err)
		} else {
			ref.RDAPBase = m
		}
	}

	if bs := rs.Document("gtlds.json", cfg.GTLDsURL, cfg.CacheTTL(), refresh, lg); bs != nil {
		m, err := rdap.ParseGTLDRegistry(bs)
		if err != nil {
			lg.Warn("bad gTLD registry", "error", err)
		} else {
			ref.GTLDs = m
		}
	}

	return ref
}
