package ledger

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"Groupool/internal/snapshot"
)

// Store is the single writer of the ledger. Every mutation runs as one
// compound update on a private copy that replaces the state only if the whole
// update succeeds.
type Store struct {
	mu    sync.Mutex
	state *State
	seq   uint64
	snap  snapshot.Store
	log   *zap.Logger

	subMu   sync.Mutex
	subs    map[int]chan View
	nextSub int
}

// NewStore loads the ledger from snap, or seeds it when the snapshot is
// missing a key or cannot be decoded. snap may be nil for a purely in-memory ledger.
func NewStore(ctx context.Context, snap snapshot.Store, seed func() Data, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{snap: snap, log: log, subs: map[int]chan View{}}

	if snap != nil {
		kv, err := snap.Load(ctx)
		if err != nil {
			log.Warn("snapshot load failed, using seed data", zap.Error(err))
		} else if data, err := Decode(kv); err != nil {
			log.Info("snapshot incomplete, using seed data", zap.Error(err))
		} else {
			s.state = NewState(data)
			log.Info("ledger restored from snapshot",
				zap.Int("members", len(data.Members)),
				zap.Int("challenges", len(data.Challenges)),
				zap.Int("withdrawals", len(data.Withdrawals)),
			)
			return s, nil
		}
	}

	s.state = NewState(seed())
	if err := s.save(ctx); err != nil {
		log.Error("failed to save seed snapshot", zap.Error(err))
	}
	return s, nil
}

// Update runs fn against a copy of the state under the writer lock. If fn
// returns an error nothing is applied and the error is returned unchanged.
// On success the copy becomes the state, a snapshot is written best-effort
// and observers are notified.
func (s *Store) Update(ctx context.Context, fn func(tx Tx) error) error {
	_, err := s.Commit(ctx, fn)
	return err
}

// Commit is Update that also returns the commit's sequence number. Numbers
// start at 1 and grow by one per successful commit, so callers that publish
// after the lock is released can still be ordered by commit.
func (s *Store) Commit(ctx context.Context, fn func(tx Tx) error) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.Clone()
	if err := fn(work); err != nil {
		return 0, err
	}
	s.state = work
	s.seq++

	if err := s.save(ctx); err != nil {
		s.log.Error("failed to save ledger snapshot", zap.Error(err))
	}
	s.broadcast(View{st: work})
	return s.seq, nil
}

// Replace swaps the whole state, e.g. when the group is reset, and returns
// the commit's sequence number.
func (s *Store) Replace(ctx context.Context, data Data) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = NewState(data)
	s.seq++
	if err := s.save(ctx); err != nil {
		s.log.Error("failed to save ledger snapshot after replace", zap.Error(err))
	}
	s.broadcast(View{st: s.state})
	return s.seq
}

// Seq is the sequence number of the latest commit, 0 before the first.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// View returns the committed state. Committed states are never mutated, so
// the view stays consistent however long it is held.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{st: s.state}
}

// Flush writes the current state to the snapshot store.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// Subscribe returns a channel that receives the view after every commit.
// A slow subscriber only ever sees the latest view. Call cancel to stop.
func (s *Store) Subscribe() (<-chan View, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan View, 1)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) broadcast(v View) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// drop the stale view and keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (s *Store) save(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}
	kv, err := Encode(s.state.Data())
	if err != nil {
		return err
	}
	return s.snap.Save(ctx, kv)
}
