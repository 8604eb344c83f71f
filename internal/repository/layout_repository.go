package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/seating-chart/internal/model"
)

// LayoutRepo stores one snapshot per (area, role).
type LayoutRepo struct{ Store BlobStore }

func NewLayoutRepo(s BlobStore) *LayoutRepo { return &LayoutRepo{Store: s} }

// LayoutKey returns the blob key for an area's snapshot slot.
func LayoutKey(area string, role model.SnapshotRole) string {
	return fmt.Sprintf("seatlayout_%s_%s.json", KeyPart(area), role)
}

// Load reads a snapshot.  A missing slot yields ErrNotFound and an
// undecodable one ErrCorrupt (wrapped with the decoder error).
func (r *LayoutRepo) Load(ctx context.Context, area string, role model.SnapshotRole) (model.LayoutSnapshot, error) {
	var snap model.LayoutSnapshot
	b, err := r.Store.Get(ctx, LayoutKey(area, role))
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return model.LayoutSnapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return snap, nil
}

func (r *LayoutRepo) Save(ctx context.Context, snap model.LayoutSnapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.Store.Put(ctx, LayoutKey(snap.Area, snap.Role), b)
}

func (r *LayoutRepo) Delete(ctx context.Context, area string, role model.SnapshotRole) error {
	return r.Store.Delete(ctx, LayoutKey(area, role))
}
