// Package engine is the group treasury settlement engine: challenge
// settlement, withdrawal auto-resolution, the vote ledger and treasury
// movements, all applied through the ledger's single writer.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

const (
	// MaxMissedVotes demotes a member to inactive once reached.
	MaxMissedVotes = 3
	// WinReputationBonus is added to the winner of a challenge.
	WinReputationBonus = 10
	// DefaultWithdrawalWindow is how long a withdrawal can be contested.
	DefaultWithdrawalWindow = 24 * time.Hour
	// DefaultWinCooldown blocks withdrawals after a challenge win.
	DefaultWinCooldown = 24 * time.Hour
)

// SettlementMode decides whose balances a challenge resolution books.
type SettlementMode string

const (
	// SettleAllParticipants pays the winner from every other participant's stake.
	SettleAllParticipants SettlementMode = "all_participants"
	// SettleActingMember books only the resolving member's win, loss or refund.
	SettleActingMember SettlementMode = "acting_member"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Mode             SettlementMode
	WithdrawalWindow time.Duration
	WinCooldown      time.Duration
	Now              func() time.Time
	Publisher        events.Publisher
	Logger           *zap.Logger
}

// Engine applies treasury operations to one group's ledger.
type Engine struct {
	store  *ledger.Store
	mode   SettlementMode
	window time.Duration
	cool   time.Duration
	now    func() time.Time
	pub    events.Publisher
	log    *zap.Logger
}

// New builds an Engine over store.
func New(store *ledger.Store, opts Options) *Engine {
	e := &Engine{
		store:  store,
		mode:   opts.Mode,
		window: opts.WithdrawalWindow,
		cool:   opts.WinCooldown,
		now:    opts.Now,
		pub:    opts.Publisher,
		log:    opts.Logger,
	}
	if e.mode == "" {
		e.mode = SettleAllParticipants
	}
	if e.window <= 0 {
		e.window = DefaultWithdrawalWindow
	}
	if e.cool <= 0 {
		e.cool = DefaultWinCooldown
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e
}

// View returns the current committed ledger.
func (e *Engine) View() ledger.View {
	return e.store.View()
}

// Mode returns the configured settlement mode.
func (e *Engine) Mode() SettlementMode { return e.mode }

// actor loads the acting member and refuses unknown or suspended members.
func actor(tx ledger.Tx, memberID string) (model.Member, error) {
	m, ok := tx.Member(memberID)
	if !ok {
		return model.Member{}, unauthorized("%s is not a member of the group", memberID)
	}
	if m.Status == model.MemberSuspended {
		return model.Member{}, unauthorized("member %s is suspended", memberID)
	}
	return m, nil
}

// recordParticipation runs once per resolution over the whole roster: voters
// have their miss streak cleared and the target added to their history,
// everyone else has the streak extended and is demoted at MaxMissedVotes.
func recordParticipation(tx ledger.Tx, targetID string, votes []model.Vote) {
	voted := make(map[string]bool, len(votes))
	for _, v := range votes {
		if v.TargetID == targetID {
			voted[v.VoterID] = true
		}
	}
	for _, m := range tx.Roster() {
		if voted[m.ID] {
			m.ConsecutiveMissedVotes = 0
			m.RecordVote(targetID)
		} else {
			m.ConsecutiveMissedVotes++
			if m.ConsecutiveMissedVotes >= MaxMissedVotes && m.Status == model.MemberActive {
				m.Status = model.MemberInactive
			}
		}
		tx.PutMember(m)
	}
}

func (e *Engine) publish(ctx context.Context, evt events.Event) {
	if e.pub == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.GroupID == "" {
		evt.GroupID = e.store.View().Group().ID
	}
	if err := e.pub.Publish(ctx, evt); err != nil {
		e.log.Warn("event publish failed",
			zap.String("type", string(evt.Type)),
			zap.String("target", evt.TargetID),
			zap.Error(err),
		)
	}
}

func newTransaction(now time.Time, typ model.TransactionType, description string) model.Transaction {
	return model.Transaction{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		Timestamp:   now,
	}
}
