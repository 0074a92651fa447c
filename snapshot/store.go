package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned by Load when nothing was saved.
var ErrNoSnapshot = errors.New("no snapshot")

const (
	keySections = "meta:sections"
	keySignals  = "meta:signals"
)

func sectionKey(i int) string { return fmt.Sprintf("section:%06d:state", i) }

func signalKey(i int) string { return fmt.Sprintf("signal:%06d:hold", i) }

// parseKey returns the index in a key of the form prefix:index:suffix.
func parseKey(key, prefix, suffix string) (int, bool) {
	if !strings.HasPrefix(key, prefix+":") || !strings.HasSuffix(key, ":"+suffix) {
		return 0, false
	}
	raw := key[len(prefix)+1 : len(key)-len(suffix)-1]
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Store keeps the latest snapshot in a buntdb database.
type Store struct {
	db *buntdb.DB
}

// Open opens the database at path. Use ":memory:" for a store that is never written to disk.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var c buntdb.Config
	if err := db.ReadConfig(&c); err != nil {
		db.Close()
		return nil, err
	}
	c.SyncPolicy = buntdb.Always
	if err := db.SetConfig(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (st *Store) Close() error {
	return st.db.Close()
}

// Save replaces the stored snapshot with s.
func (st *Store) Save(s Snapshot) error {
	return st.db.Update(func(tx *buntdb.Tx) error {
		var stale []string
		err := tx.AscendKeys("section:*", func(key, _ string) bool {
			stale = append(stale, key)
			return true
		})
		if err != nil {
			return err
		}
		err = tx.AscendKeys("signal:*", func(key, _ string) bool {
			stale = append(stale, key)
			return true
		})
		if err != nil {
			return err
		}
		for _, key := range stale {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}
		for i, sec := range s.Sections {
			data, err := json.Marshal(sec)
			if err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
			if _, _, err := tx.Set(sectionKey(i), string(data), nil); err != nil {
				return err
			}
		}
		for i, sig := range s.Signals {
			data, err := json.Marshal(sig)
			if err != nil {
				return fmt.Errorf("signal %d: %w", i, err)
			}
			if _, _, err := tx.Set(signalKey(i), string(data), nil); err != nil {
				return err
			}
		}
		if _, _, err := tx.Set(keySections, strconv.Itoa(len(s.Sections)), nil); err != nil {
			return err
		}
		_, _, err = tx.Set(keySignals, strconv.Itoa(len(s.Signals)), nil)
		return err
	})
}

func getCount(tx *buntdb.Tx, key string) (int, error) {
	raw, err := tx.Get(key)
	if errors.Is(err, buntdb.ErrNotFound) {
		return 0, ErrNoSnapshot
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid count %q", key, raw)
	}
	return n, nil
}

// Load returns the stored snapshot, or ErrNoSnapshot.
func (st *Store) Load() (Snapshot, error) {
	var s Snapshot
	err := st.db.View(func(tx *buntdb.Tx) error {
		sections, err := getCount(tx, keySections)
		if err != nil {
			return err
		}
		signals, err := getCount(tx, keySignals)
		if err != nil {
			return err
		}
		s.Sections = make([]SectionState, sections)
		s.Signals = make([]SignalState, signals)
		seenSections := make([]bool, sections)
		seenSignals := make([]bool, signals)
		var loadErr error
		err = tx.Ascend("", func(key, value string) bool {
			if i, ok := parseKey(key, "section", "state"); ok {
				if i >= sections {
					zap.S().Errorw("section out of range", "key", key)
					return true
				}
				if err := json.Unmarshal([]byte(value), &s.Sections[i]); err != nil {
					loadErr = fmt.Errorf("%s: %w", key, err)
					return false
				}
				seenSections[i] = true
				return true
			}
			if i, ok := parseKey(key, "signal", "hold"); ok {
				if i >= signals {
					zap.S().Errorw("signal out of range", "key", key)
					return true
				}
				if err := json.Unmarshal([]byte(value), &s.Signals[i]); err != nil {
					loadErr = fmt.Errorf("%s: %w", key, err)
					return false
				}
				seenSignals[i] = true
			}
			return true
		})
		if err != nil {
			return err
		}
		if loadErr != nil {
			return loadErr
		}
		for i, ok := range seenSections {
			if !ok {
				return fmt.Errorf("section %d missing", i)
			}
		}
		for i, ok := range seenSignals {
			if !ok {
				return fmt.Errorf("signal %d missing", i)
			}
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
