package memory

import (
	"context"
	"sync"

	sharingDatamodel "github.com/frahmantamala/drive-sharing/internal/core/datamodel/sharing"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
)

// Ledger keeps grants in process memory in insertion order. Rows are never removed.
type Ledger struct {
	mu     sync.RWMutex
	grants []*sharingDatamodel.Grant
	nextID int64
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

var _ sharing.RepositoryAPI = (*Ledger)(nil)

func (l *Ledger) Create(_ context.Context, grant *sharingDatamodel.Grant) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if grant.Active {
		for _, g := range l.grants {
			if g.Active && g.GranteeID == grant.GranteeID && sameTarget(g, grant) {
				return sharing.ErrDuplicateGrant
			}
		}
	}

	grant.ID = l.nextID
	l.nextID++
	l.grants = append(l.grants, clone(grant))
	return nil
}

func (l *Ledger) GetByID(_ context.Context, id int64) (*sharingDatamodel.Grant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if g := l.find(id); g != nil {
		return clone(g), nil
	}
	return nil, nil
}

func (l *Ledger) FindActive(_ context.Context, target sharing.TargetRef, granteeID int64) (*sharingDatamodel.Grant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, g := range l.grants {
		if g.Active && g.GranteeID == granteeID && matchesTarget(g, target) {
			return clone(g), nil
		}
	}
	return nil, nil
}

func (l *Ledger) ListByTarget(_ context.Context, target sharing.TargetRef, activeOnly bool) ([]*sharingDatamodel.Grant, error) {
	return l.filter(func(g *sharingDatamodel.Grant) bool {
		return matchesTarget(g, target) && (!activeOnly || g.Active)
	}), nil
}

func (l *Ledger) ListByGrantee(_ context.Context, granteeID int64, activeOnly bool) ([]*sharingDatamodel.Grant, error) {
	return l.filter(func(g *sharingDatamodel.Grant) bool {
		return g.GranteeID == granteeID && (!activeOnly || g.Active)
	}), nil
}

func (l *Ledger) UpdateAccessLevel(_ context.Context, id int64, accessLevelID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.find(id)
	if g == nil {
		return sharing.ErrGrantNotFound
	}
	g.AccessLevelID = accessLevelID
	return nil
}

func (l *Ledger) Deactivate(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.find(id)
	if g == nil {
		return sharing.ErrGrantNotFound
	}
	g.Active = false
	return nil
}

// Len reports how many grants, active or revoked, the ledger holds.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.grants)
}

func (l *Ledger) find(id int64) *sharingDatamodel.Grant {
	for _, g := range l.grants {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (l *Ledger) filter(keep func(*sharingDatamodel.Grant) bool) []*sharingDatamodel.Grant {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*sharingDatamodel.Grant, 0)
	for _, g := range l.grants {
		if keep(g) {
			out = append(out, clone(g))
		}
	}
	return out
}

func matchesTarget(g *sharingDatamodel.Grant, target sharing.TargetRef) bool {
	switch target.Kind() {
	case sharing.TargetFile:
		return g.FileID != nil && *g.FileID == target.ID()
	case sharing.TargetFolder:
		return g.FolderID != nil && *g.FolderID == target.ID()
	}
	return false
}

func sameTarget(a, b *sharingDatamodel.Grant) bool {
	return equalID(a.FileID, b.FileID) && equalID(a.FolderID, b.FolderID)
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clone(g *sharingDatamodel.Grant) *sharingDatamodel.Grant {
	c := *g
	if g.FileID != nil {
		id := *g.FileID
		c.FileID = &id
	}
	if g.FolderID != nil {
		id := *g.FolderID
		c.FolderID = &id
	}
	return &c
}
