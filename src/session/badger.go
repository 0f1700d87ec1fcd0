package session

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	sessionKey = "session"
	cookiesKey = "cookies"
)

// BadgerStore keeps the session and the cookie credentials of a client in an
// embedded key-value store. An empty dir keeps everything in memory.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the store in dir. Badger's own log lines go to
// logger when it is not nil.
func OpenBadger(dir string, logger *logrus.Entry) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "create data directory %s", dir)
		}
		opts = badger.DefaultOptions(dir).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(logger)
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// get decodes the JSON value under key into dst. It reports false when the
// key is absent.
func (s *BadgerStore) get(key string, dst any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "read %s", key)
	}
	return true, nil
}

func (s *BadgerStore) put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return errors.Wrapf(err, "write %s", key)
}

func (s *BadgerStore) delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete %s", key)
}

// Load returns the persisted session, or nil when none is stored.
func (s *BadgerStore) Load() (*Session, error) {
	var session Session
	found, err := s.get(sessionKey, &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *BadgerStore) Save(session Session) error {
	return s.put(sessionKey, session)
}

func (s *BadgerStore) Clear() error {
	return s.delete(sessionKey)
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies returns the saved credentials, nil when there are none.
func (s *BadgerStore) LoadCookies() ([]*http.Cookie, error) {
	var stored []storedCookie
	if _, err := s.get(cookiesKey, &stored); err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies, nil
}

// SaveCookies replaces the saved credentials. An empty slice removes them.
func (s *BadgerStore) SaveCookies(cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.delete(cookiesKey)
	}
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	return s.put(cookiesKey, stored)
}
