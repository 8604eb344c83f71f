package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/seating-chart/internal/model"
)

// SessionRepo stores one ledger per session date.
type SessionRepo struct{ Store BlobStore }

func NewSessionRepo(s BlobStore) *SessionRepo { return &SessionRepo{Store: s} }

func SessionKey(date string) string {
	return "session_" + KeyPart(date) + ".json"
}

// ArchiveKey names the archived copy of a session closed at the given time.
func ArchiveKey(date string, at time.Time) string {
	return fmt.Sprintf("session_%s_%s.json.archive", KeyPart(date), at.Format("150405"))
}

func (r *SessionRepo) Load(ctx context.Context, date string) (model.SessionData, error) {
	var s model.SessionData
	b, err := r.Store.Get(ctx, SessionKey(date))
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return model.SessionData{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s model.SessionData) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.Store.Put(ctx, SessionKey(s.SessionDate), b)
}

// Archive moves the live session blob to its archive key and returns that key.
func (r *SessionRepo) Archive(ctx context.Context, date string, at time.Time) (string, error) {
	key := ArchiveKey(date, at)
	if err := r.Store.Rename(ctx, SessionKey(date), key); err != nil {
		return "", err
	}
	return key, nil
}
