package ledger

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// FileName of the ledger inside the output directory
const FileName = ".kodekloud-downloader.db"

var (
	metadataBucket = []byte("__metadata__")
	versionKey     = []byte("version")
)

const currentVersion = 1

// Entry records one finished lesson
type Entry struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Ledger remembers finished lessons across runs, one bucket per course
type Ledger struct {
	db *bbolt.DB
}

// Open opens or creates the ledger in dir
func Open(dir string) (*Ledger, error) {
	db, err := bbolt.Open(filepath.Join(dir, FileName), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		metadata, err := tx.CreateBucketIfNotExists(metadataBucket)
		if err != nil {
			return err
		}
		b, err := json.Marshal(currentVersion)
		if err != nil {
			return err
		}
		return metadata.Put(versionKey, b)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Done returns the entry of a finished lesson
func (l *Ledger) Done(courseID, lessonID string) (e Entry, ok bool, err error) {
	err = l.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(courseKey(courseID))
		if bucket == nil {
			return nil
		}
		v := bucket.Get([]byte(lessonID))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &e)
	})
	return e, ok, err
}

// MarkDone records a finished lesson
func (l *Ledger) MarkDone(courseID, lessonID string, e Entry) error {
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(courseKey(courseID))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(lessonID), data)
	})
}

// Forget drops a lesson, e.g. when its file went missing
func (l *Ledger) Forget(courseID, lessonID string) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(courseKey(courseID))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(lessonID))
	})
}

// Close ...
func (l *Ledger) Close() error {
	return l.db.Close()
}

func courseKey(courseID string) []byte {
	return []byte("course:" + courseID)
}
