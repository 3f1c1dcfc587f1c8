// Package syncengine implements bidirectional synchronization between two
// repositories: a deterministic per-record merge, replay protection, and a
// single-flight guard so at most one pass runs per (local, remote) pair at
// a time. It operates on ciphertext records only and never touches the
// session key.
package syncengine

import (
	"context"
	"sync"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
)

// Report counts what a sync pass did, for the CLI to summarize using only
// short id prefixes — never plaintext metadata.
type Report struct {
	Uploaded          int
	Downloaded        int
	Tombstoned        int
	ConflictsResolved int
	ReplaysRejected   int
}

// RemotePolicy is the pre-sync transport precheck: non-embedded remotes
// require an auth token of at least 16 characters and TLS unless
// explicitly opted out.
type RemotePolicy struct {
	RemoteKind repository.Kind
	AuthToken  string
	RequireTLS bool
	TLSInUse   bool
}

const minAuthTokenLen = 16

// Validate enforces the remote transport policy before any sync I/O
// happens.
func (p RemotePolicy) Validate() error {
	if p.RemoteKind == repository.KindEmbedded {
		return nil
	}

	if len(p.AuthToken) < minAuthTokenLen {
		return chacraberrors.ErrSyncConfig
	}

	if p.RequireTLS && !p.TLSInUse {
		return chacraberrors.ErrSyncConfig
	}

	return nil
}

// Engine runs sync passes and enforces the single-flight rule per (local,
// remote) pair.
type Engine struct {
	mu      sync.Mutex
	running map[pairKey]struct{}
}

type pairKey struct {
	local, remote repository.Kind
}

func New() *Engine {
	return &Engine{running: make(map[pairKey]struct{})}
}

func (e *Engine) acquire(key pairKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.running[key]; busy {
		return false
	}

	e.running[key] = struct{}{}

	return true
}

func (e *Engine) release(key pairKey) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.running, key)
}

// Sync runs one bidirectional pass between local and remote. At most one
// pass per (local.Kind(), remote.Kind()) pair may run at a time; a second
// concurrent call fails with [chacraberrors.ErrSyncBusy].
func (e *Engine) Sync(ctx context.Context, local, remote repository.Repository) (Report, error) {
	key := pairKey{local: local.Kind(), remote: remote.Kind()}

	if !e.acquire(key) {
		return Report{}, chacraberrors.ErrSyncBusy
	}
	defer e.release(key)

	localItems, err := local.ListWithTombstones(ctx)
	if err != nil {
		return Report{}, err
	}

	remoteItems, err := remote.ListWithTombstones(ctx)
	if err != nil {
		return Report{}, err
	}

	localByID := indexByID(localItems)
	remoteByID := indexByID(remoteItems)

	ids := make(map[uuid16]struct{}, len(localByID)+len(remoteByID))
	for id := range localByID {
		ids[id] = struct{}{}
	}

	for id := range remoteByID {
		ids[id] = struct{}{}
	}

	var report Report

	for id := range ids {
		l, hasLocal := localByID[id]
		r, hasRemote := remoteByID[id]

		switch {
		case hasLocal && !hasRemote:
			if err := applyWinner(ctx, remote, nil, l, &report, true); err != nil {
				return report, err
			}
		case hasRemote && !hasLocal:
			if err := applyWinner(ctx, local, nil, r, &report, false); err != nil {
				return report, err
			}
		default:
			cmp := model.StateOf(l).Compare(model.StateOf(r))

			switch {
			case cmp > 0:
				if l.Deleted {
					report.Tombstoned++
				} else {
					report.ConflictsResolved++
				}

				existing := model.StateOf(r)
				if err := applyWinner(ctx, remote, &existing, l, &report, true); err != nil {
					return report, err
				}
			case cmp < 0:
				if r.Deleted {
					report.Tombstoned++
				} else {
					report.ConflictsResolved++
				}

				existing := model.StateOf(l)
				if err := applyWinner(ctx, local, &existing, r, &report, false); err != nil {
					return report, err
				}
			default:
				// Equivalent on both sides; no action.
			}
		}
	}

	return report, nil
}

// applyWinner writes winner to dst, unless lastApplied is non-nil and
// winner's sync_version is strictly lower than it — in which case the
// write is a stale replay, rejected and counted, never mutating dst. A
// tie in sync_version is not a replay: [model.SyncState.Compare] already
// picked winner over the record at lastApplied using updated_at/deleted,
// so it must still be written. toRemote controls whether a successful
// write counts as an upload or a download in the report.
func applyWinner(ctx context.Context, dst repository.Repository, lastApplied *model.SyncState, winner model.VaultItem, report *Report, toRemote bool) error {
	if lastApplied != nil && winner.SyncVersion < lastApplied.SyncVersion {
		report.ReplaysRejected++
		return nil
	}

	if err := dst.Upsert(ctx, winner); err != nil {
		return err
	}

	if toRemote {
		report.Uploaded++
	} else {
		report.Downloaded++
	}

	return nil
}

type uuid16 = [16]byte

func indexByID(items []model.VaultItem) map[uuid16]model.VaultItem {
	m := make(map[uuid16]model.VaultItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}

	return m
}
