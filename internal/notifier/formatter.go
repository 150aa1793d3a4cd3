package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"Groupool/internal/calculator"
	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

func memberName(v ledger.View, id string) string {
	if m, ok := v.Member(id); ok {
		return html.EscapeString(m.Name)
	}
	return id
}

func money(d decimal.Decimal) string {
	return "R$" + d.StringFixed(2)
}

// FormatRemaining renders a countdown such as "3h 05m"; anything at or below
// zero is "expired".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h >= 24 {
		return fmt.Sprintf("%dd %02dh", h/24, h%24)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatEvent renders the chat message for evt, or "" when the event is not
// announced to the group.
func FormatEvent(evt events.Event, v ledger.View) string {
	var b strings.Builder
	title := html.EscapeString(evt.Title)

	switch evt.Type {
	case events.ChallengeCreated:
		b.WriteString(fmt.Sprintf("🎯 <b>New challenge</b>: %s\n", title))
		if c, ok := v.Challenge(evt.TargetID); ok {
			b.WriteString(fmt.Sprintf("Buy-in: %s | Deadline: %s\n", money(c.BuyIn), c.Deadline.Format("2006-01-02 15:04")))
		}
		b.WriteString(fmt.Sprintf("Proposed by %s", memberName(v, evt.ActorID)))
	case events.ChallengeVotingStarted:
		b.WriteString(fmt.Sprintf("🗳 <b>Voting open</b>: %s\n", title))
		b.WriteString("Cast your vote with approval, contest or abstain.")
	case events.ChallengeCompleted:
		b.WriteString(fmt.Sprintf("🏆 <b>Challenge complete</b>: %s\n", title))
		if c, ok := v.Challenge(evt.TargetID); ok && c.WinnerID != "" {
			b.WriteString(fmt.Sprintf("Winner: %s\n", memberName(v, c.WinnerID)))
		}
		writeTransactions(&b, evt.Transactions, v)
	case events.ChallengeFailed:
		b.WriteString(fmt.Sprintf("❌ <b>Challenge failed</b>: %s\n", title))
		b.WriteString(html.EscapeString(evt.Reason) + "\n")
		writeTransactions(&b, evt.Transactions, v)
	case events.WithdrawalRequested:
		w, ok := v.Withdrawal(evt.TargetID)
		if !ok {
			return ""
		}
		b.WriteString(fmt.Sprintf("💸 <b>Withdrawal requested</b> by %s: %s\n", memberName(v, w.InitiatorID), money(w.Amount)))
		b.WriteString(fmt.Sprintf("Contest before %s or it is approved.", w.Deadline.Format("2006-01-02 15:04")))
	case events.WithdrawalApproved:
		b.WriteString(fmt.Sprintf("✅ <b>Withdrawal approved</b> for %s\n", memberName(v, evt.ActorID)))
		writeTransactions(&b, evt.Transactions, v)
	case events.WithdrawalRejected:
		b.WriteString(fmt.Sprintf("🚫 <b>Withdrawal rejected</b> for %s\n", memberName(v, evt.ActorID)))
		b.WriteString(html.EscapeString(evt.Reason))
	case events.GroupReset:
		b.WriteString("♻️ <b>Group reset</b> to its initial state.")
	default:
		return ""
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTransactions(b *strings.Builder, txs []model.Transaction, v ledger.View) {
	for _, t := range txs {
		sign := ""
		if t.Amount.IsPositive() {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("  %s %s%s (%s)\n", memberName(v, t.MemberID), sign, t.Amount.StringFixed(2), t.Type))
	}
}

// FormatPoolStatus formats the treasury and every member's balance.
func FormatPoolStatus(v ledger.View, now time.Time) string {
	var b strings.Builder
	g := v.Group()
	b.WriteString(fmt.Sprintf("📦 <b>%s</b> | %s\n\n", html.EscapeString(g.Name), now.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Pool: %s\n", money(g.TotalPool)))
	for _, m := range v.Members() {
		bal, _ := v.Balance(m.ID)
		line := fmt.Sprintf("  %s: %s", html.EscapeString(m.Name), money(bal.Equity))
		if bal.Frozen.IsPositive() {
			line += fmt.Sprintf(" (%s frozen)", money(bal.Frozen))
		}
		if m.Status != model.MemberActive {
			line += " [" + string(m.Status) + "]"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatChallenge describes the open challenge, or says there is none.
func FormatChallenge(v ledger.View, now time.Time) string {
	c, ok := v.OpenChallenge()
	if !ok {
		return "No open challenge."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>%s</b> [%s]\n", html.EscapeString(c.Title), c.Status))
	b.WriteString(fmt.Sprintf("Buy-in: %s | Pot: %s\n", money(c.BuyIn), money(calculator.Pot(c.BuyIn, len(c.Participants)))))
	names := make([]string, 0, len(c.Participants))
	for _, id := range c.Participants {
		names = append(names, memberName(v, id))
	}
	b.WriteString("Participants: " + strings.Join(names, ", ") + "\n")
	b.WriteString("Time left: " + FormatRemaining(c.Deadline.Sub(now)))
	if c.Status == model.ChallengeVoting {
		votes := v.VotesFor(c.ID)
		b.WriteString(fmt.Sprintf("\nVotes: %d/%d", len(votes), len(v.Members())))
	}
	return b.String()
}

// FormatWithdrawals lists pending withdrawal requests with their countdowns.
func FormatWithdrawals(v ledger.View, now time.Time) string {
	pending := v.PendingWithdrawals()
	if len(pending) == 0 {
		return "No pending withdrawals."
	}
	var b strings.Builder
	b.WriteString("💸 <b>Pending withdrawals</b>\n")
	for _, w := range pending {
		contests := 0
		for _, vote := range v.VotesFor(w.ID) {
			if vote.Type == model.VoteContest {
				contests++
			}
		}
		b.WriteString(fmt.Sprintf("  %s %s | %d contest | %s\n",
			memberName(v, w.InitiatorID), money(w.Amount), contests, FormatRemaining(w.Deadline.Sub(now))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMember shows one member's standing.
func FormatMember(v ledger.View, id string) string {
	m, ok := v.Member(id)
	if !ok {
		return fmt.Sprintf("Unknown member %s.", html.EscapeString(id))
	}
	bal, _ := v.Balance(id)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>%s</b> [%s]\n", html.EscapeString(m.Name), m.Status))
	b.WriteString(fmt.Sprintf("Equity: %s | Available: %s\n", money(bal.Equity), money(bal.Available)))
	b.WriteString(fmt.Sprintf("Won: %d | Lost: %d | Reputation: %d\n", m.ChallengesWon, m.ChallengesLost, m.ReputationScore))
	b.WriteString(fmt.Sprintf("Missed votes in a row: %d", m.ConsecutiveMissedVotes))
	return b.String()
}

// FormatDigest is the periodic treasury summary.
func FormatDigest(v ledger.View, now time.Time) string {
	return FormatPoolStatus(v, now) + "\n\n" + FormatChallenge(v, now) + "\n\n" + FormatWithdrawals(v, now)
}
