package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Groupool/internal/events"
	"Groupool/internal/ledger"
	"Groupool/internal/model"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func seedView(t *testing.T, data ledger.Data) ledger.View {
	t.Helper()
	s, err := ledger.NewStore(context.Background(), nil, func() ledger.Data { return data }, nil)
	require.NoError(t, err)
	return s.View()
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(Options{BotToken: "TOKEN", ChatID: "42", APIBase: srv.URL + "/"}, nil)
	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, map[string]string{"chat_id": "42", "text": "<b>hi</b>", "parse_mode": "HTML"}, got)
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(Options{BotToken: "T", ChatID: "1", APIBase: srv.URL}, nil)
	err := n.Send(context.Background(), "x")
	assert.ErrorContains(t, err, "status 400")
}

type flakySender struct {
	mu       sync.Mutex
	failures int
	sent     []string
}

func (f *flakySender) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("temporary")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *flakySender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestSendWithRetry(t *testing.T) {
	s := &flakySender{failures: 2}
	err := sendWithRetry(context.Background(), s, "hello", 2, time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, s.messages())

	s = &flakySender{failures: 5}
	err = sendWithRetry(context.Background(), s, "hello", 1, time.Millisecond, zap.NewNop())
	assert.ErrorContains(t, err, "all 2 retries exhausted")
}

func TestStartPolling(t *testing.T) {
	replies := make(chan string, 1)
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /pool "}}]}`)
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier(Options{BotToken: "T", ChatID: "1", APIBase: srv.URL}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /pool", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "expired"},
		{0, "expired"},
		{42 * time.Minute, "42m"},
		{3*time.Hour + 5*time.Minute, "3h 05m"},
		{50 * time.Hour, "2d 02h"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatters(t *testing.T) {
	data := ledger.Seed()
	data.Challenges = []model.Challenge{{
		ID: "c1", Title: "Run <5k>", BuyIn: decimal.NewFromInt(50), Deadline: now.Add(26 * time.Hour),
		Participants: []string{"mbr-001", "mbr-002"}, Status: model.ChallengeVoting,
	}}
	data.Withdrawals = []model.WithdrawalRequest{{
		ID: "w1", InitiatorID: "mbr-003", Amount: decimal.NewFromInt(80), Status: model.WithdrawalPending,
		Deadline: now.Add(90 * time.Minute),
	}}
	data.Votes = []model.Vote{{ID: "v1", VoterID: "mbr-001", TargetID: "w1", Type: model.VoteContest}}
	v := seedView(t, data)

	pool := FormatPoolStatus(v, now)
	assert.Contains(t, pool, "Pool: R$2000.00")
	assert.Contains(t, pool, "Ana: R$500.00 (R$50.00 frozen)")
	assert.Contains(t, pool, "Diego: R$500.00")

	c := FormatChallenge(v, now)
	assert.Contains(t, c, "Run &lt;5k&gt;")
	assert.Contains(t, c, "Pot: R$100.00")
	assert.Contains(t, c, "Participants: Ana, Bruno")
	assert.Contains(t, c, "Time left: 1d 02h")
	assert.Contains(t, c, "Votes: 0/4")

	w := FormatWithdrawals(v, now)
	assert.Contains(t, w, "Carla R$80.00 | 1 contest | 1h 30m")

	m := FormatMember(v, "mbr-002")
	assert.Contains(t, m, "Equity: R$500.00 | Available: R$450.00")
	assert.Equal(t, "Unknown member x.", FormatMember(v, "x"))

	empty := seedView(t, ledger.Seed())
	assert.Equal(t, "No open challenge.", FormatChallenge(empty, now))
	assert.Equal(t, "No pending withdrawals.", FormatWithdrawals(empty, now))
	assert.Contains(t, FormatDigest(empty, now), "No pending withdrawals.")
}

func TestFormatEvent(t *testing.T) {
	data := ledger.Seed()
	data.Challenges = []model.Challenge{{ID: "c1", Title: "Swim", WinnerID: "mbr-002", Status: model.ChallengeComplete}}
	v := seedView(t, data)

	msg := FormatEvent(events.Event{
		Type: events.ChallengeCompleted, TargetID: "c1", Title: "Swim",
		Transactions: []model.Transaction{
			{MemberID: "mbr-002", Amount: decimal.NewFromInt(50), Type: model.TxWin},
			{MemberID: "mbr-001", Amount: decimal.NewFromInt(-50), Type: model.TxExpense},
		},
	}, v)
	assert.Contains(t, msg, "Challenge complete</b>: Swim")
	assert.Contains(t, msg, "Winner: Bruno")
	assert.Contains(t, msg, "Bruno +50.00 (win)")
	assert.Contains(t, msg, "Ana -50.00 (expense)")

	failed := FormatEvent(events.Event{Type: events.ChallengeFailed, Title: "Swim", Reason: "Tie vote (1 vs 1)."}, v)
	assert.Contains(t, failed, "Tie vote (1 vs 1).")

	assert.Empty(t, FormatEvent(events.Event{Type: events.VoteCast}, v))
}

func TestEventSink(t *testing.T) {
	v := seedView(t, ledger.Seed())
	s := &flakySender{failures: 1}
	sink := NewEventSink(s, func() ledger.View { return v }, 2, nil)
	sink.backoff = time.Millisecond

	ch := make(chan events.Event, 3)
	ch <- events.Event{Type: events.VoteCast}
	ch <- events.Event{Type: events.WithdrawalRejected, ActorID: "mbr-004", Reason: "Contested by 3 of 4 members."}
	ch <- events.Event{Type: events.GroupReset}
	close(ch)

	sink.Run(context.Background(), ch)

	msgs := s.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "Withdrawal rejected</b> for Diego")
	assert.Contains(t, msgs[1], "Group reset")
}
