package auditservice

import (
	"context"
	"sort"

	auditdb "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// FakeAuditRepo keeps entries in memory.
type FakeAuditRepo struct {
	trace   []string
	entries []auditdb.Entry
	nextID  int64

	InsertErr error
	ListErr   error
	lastLimit int
}

func NewFakeAuditRepo() *FakeAuditRepo {
	return &FakeAuditRepo{trace: []string{}, nextID: 1}
}

func (f *FakeAuditRepo) Trace() []string { return f.trace }

func (f *FakeAuditRepo) InsertEntry(_ context.Context, _ bun.IDB, e *auditdb.Entry) error {
	f.trace = append(f.trace, "InsertEntry")
	if f.InsertErr != nil {
		return f.InsertErr
	}
	e.ID = f.nextID
	f.nextID++
	f.entries = append(f.entries, *e)
	return nil
}

func (f *FakeAuditRepo) ListRecent(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, limit int) ([]auditdb.Entry, error) {
	f.trace = append(f.trace, "ListRecent")
	f.lastLimit = limit
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []auditdb.Entry
	for _, e := range f.entries {
		if e.Scope == scope {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
