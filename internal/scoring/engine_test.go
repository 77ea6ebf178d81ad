package scoring_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
	"github.com/Ectormind/bot-punteggio-ha-repository/internal/scoring"
)

var testMessages = scoring.Messages{
	AlreadyUsed:       "⚠️ %s, hai già usato oggi: %s",
	Awarded:           "%s ha guadagnato %d punti! 🎉",
	LeaderboardHeader: testHeader,
	LeaderboardEmpty:  testEmpty,
	ResetDone:         "Classifica e parole resettate per questa chat!",
}

// fakeStore is an in-memory Store implementation mirroring the transactional
// semantics of the SQLite-backed one: awards skip already-recorded hashtags
// and credit points only for the rest.
type fakeStore struct {
	mu     sync.Mutex
	scores map[string]int
	usage  map[string]bool

	failHasUsed bool
	failAward   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores: make(map[string]int),
		usage:  make(map[string]bool),
	}
}

func scoreKey(chatID int64, user string) string {
	return fmt.Sprintf("%d|%s", chatID, user)
}

func usageKey(chatID int64, user, hashtag, day string) string {
	return fmt.Sprintf("%d|%s|%s|%s", chatID, user, hashtag, day)
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) GetLeaderboard(_ context.Context, chatID int64) ([]database.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []database.LeaderboardEntry
	for key, points := range f.scores {
		prefix := fmt.Sprintf("%d|", chatID)
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, database.LeaderboardEntry{
				UserName: strings.TrimPrefix(key, prefix),
				Points:   points,
			})
		}
	}
	return entries, nil
}

func (f *fakeStore) HasUsedToday(_ context.Context, chatID int64, user, hashtag, day string) (bool, error) {
	if f.failHasUsed {
		return false, errors.New("store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usage[usageKey(chatID, user, hashtag, day)], nil
}

func (f *fakeStore) AwardPoints(_ context.Context, chatID int64, user string, awards []database.Award, day string) ([]database.Award, int, error) {
	if f.failAward {
		return nil, 0, errors.New("store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var granted []database.Award
	total := 0
	for _, award := range awards {
		key := usageKey(chatID, user, award.Hashtag, day)
		if f.usage[key] {
			continue
		}
		f.usage[key] = true
		granted = append(granted, award)
		total += award.Points
	}
	if total > 0 {
		f.scores[scoreKey(chatID, user)] += total
	}
	return granted, total, nil
}

func (f *fakeStore) ResetChat(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("%d|", chatID)
	for key := range f.scores {
		if strings.HasPrefix(key, prefix) {
			delete(f.scores, key)
		}
	}
	for key := range f.usage {
		if strings.HasPrefix(key, prefix) {
			delete(f.usage, key)
		}
	}
	return nil
}

func (f *fakeStore) PruneUsageBefore(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

func (f *fakeStore) points(chatID int64, user string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[scoreKey(chatID, user)]
}

func newTestEngine(t *testing.T, store database.Store) *scoring.Engine {
	t.Helper()

	catalog, err := scoring.NewCatalog(map[string]int{
		"#workout":  15,
		"#detox":    15,
		"#spuntino": 8,
		"#bilancia": 10,
	})
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	return scoring.NewEngine(store, catalog, testMessages, time.UTC, nil)
}

func TestHandleMessageSilentDrops(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		user string
		text string
	}{
		{name: "empty text", user: "anna", text: ""},
		{name: "whitespace text", user: "anna", text: "   \n"},
		{name: "unresolvable user", user: "", text: "#workout"},
		{name: "no catalog match", user: "anna", text: "buongiorno a tutti"},
		{name: "unknown hashtag", user: "anna", text: "#nonesiste"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			engine := newTestEngine(t, store)

			notices, err := engine.HandleMessage(context.Background(), 100, tc.user, tc.text, time.Now())
			if err != nil {
				t.Fatalf("HandleMessage() returned error: %v", err)
			}
			if len(notices) != 0 {
				t.Errorf("HandleMessage() produced notices %v, want none", notices)
			}
			if got := store.points(100, tc.user); got != 0 {
				t.Errorf("store mutated: %d points recorded, want 0", got)
			}
		})
	}
}

func TestHandleMessageAwardsSingleHashtag(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)

	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "fatto il #workout!", time.Now())
	if err != nil {
		t.Fatalf("HandleMessage() returned error: %v", err)
	}

	want := []string{"anna ha guadagnato 15 punti! 🎉"}
	assertNotices(t, notices, want)
	if got := store.points(100, "anna"); got != 15 {
		t.Errorf("points = %d, want 15", got)
	}
}

func TestHandleMessageAdditivity(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)

	// Two hashtags in one message yield a single combined delta.
	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout e poi #spuntino", time.Now())
	if err != nil {
		t.Fatalf("HandleMessage() returned error: %v", err)
	}

	assertNotices(t, notices, []string{"anna ha guadagnato 23 punti! 🎉"})
	if got := store.points(100, "anna"); got != 23 {
		t.Errorf("points = %d, want 23", got)
	}
}

func TestHandleMessageIdempotentDedup(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", now); err != nil {
		t.Fatalf("first HandleMessage() returned error: %v", err)
	}

	// Same hashtag later the same day: only the already-used notice, no points.
	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", now.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("second HandleMessage() returned error: %v", err)
	}

	assertNotices(t, notices, []string{"⚠️ anna, hai già usato oggi: #workout"})
	if got := store.points(100, "anna"); got != 15 {
		t.Errorf("points = %d after duplicate, want 15", got)
	}
}

func TestHandleMessageDayBoundary(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)
	day1 := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", day1); err != nil {
		t.Fatalf("day 1 HandleMessage() returned error: %v", err)
	}

	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", day2)
	if err != nil {
		t.Fatalf("day 2 HandleMessage() returned error: %v", err)
	}

	assertNotices(t, notices, []string{"anna ha guadagnato 15 punti! 🎉"})
	if got := store.points(100, "anna"); got != 30 {
		t.Errorf("points = %d across two days, want 30", got)
	}
}

func TestHandleMessageMixedNotices(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", now); err != nil {
		t.Fatalf("setup HandleMessage() returned error: %v", err)
	}

	// One hashtag already used, one newly awardable: both notices, in order.
	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout #detox", now)
	if err != nil {
		t.Fatalf("HandleMessage() returned error: %v", err)
	}

	assertNotices(t, notices, []string{
		"⚠️ anna, hai già usato oggi: #workout",
		"anna ha guadagnato 15 punti! 🎉",
	})
	if got := store.points(100, "anna"); got != 30 {
		t.Errorf("points = %d, want 30", got)
	}
}

func TestHandleMessageChatsAreIndependent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)
	now := time.Now()

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", now); err != nil {
		t.Fatalf("chat 100 HandleMessage() returned error: %v", err)
	}

	// Same user, same day, different chat: scoring is partitioned by chat.
	notices, err := engine.HandleMessage(context.Background(), 200, "anna", "#workout", now)
	if err != nil {
		t.Fatalf("chat 200 HandleMessage() returned error: %v", err)
	}

	assertNotices(t, notices, []string{"anna ha guadagnato 15 punti! 🎉"})
	if got := store.points(200, "anna"); got != 15 {
		t.Errorf("chat 200 points = %d, want 15", got)
	}
}

func TestHandleMessageStoreErrorsPropagate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		setup func(*fakeStore)
	}{
		{name: "usage check fails", setup: func(s *fakeStore) { s.failHasUsed = true }},
		{name: "award fails", setup: func(s *fakeStore) { s.failAward = true }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			tc.setup(store)
			engine := newTestEngine(t, store)

			notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", time.Now())
			if err == nil {
				t.Fatal("HandleMessage() error = nil, want store failure")
			}
			if len(notices) != 0 {
				t.Errorf("HandleMessage() produced notices %v alongside error, want none", notices)
			}
		})
	}
}

func TestResetClearsScoresAndLedger(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)
	now := time.Now()

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout #detox", now); err != nil {
		t.Fatalf("HandleMessage() returned error: %v", err)
	}

	confirmation, err := engine.Reset(context.Background(), 100)
	if err != nil {
		t.Fatalf("Reset() returned error: %v", err)
	}
	if confirmation != testMessages.ResetDone {
		t.Errorf("Reset() = %q, want %q", confirmation, testMessages.ResetDone)
	}

	// After reset the same hashtags are awardable again the same day.
	notices, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", now)
	if err != nil {
		t.Fatalf("post-reset HandleMessage() returned error: %v", err)
	}
	assertNotices(t, notices, []string{"anna ha guadagnato 15 punti! 🎉"})
	if got := store.points(100, "anna"); got != 15 {
		t.Errorf("points = %d after reset and re-award, want 15", got)
	}
}

func TestLeaderboardRendersStandings(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(t, store)

	text, err := engine.Leaderboard(context.Background(), 100)
	if err != nil {
		t.Fatalf("Leaderboard() returned error: %v", err)
	}
	if text != testEmpty {
		t.Errorf("empty Leaderboard() = %q, want %q", text, testEmpty)
	}

	if _, err := engine.HandleMessage(context.Background(), 100, "anna", "#workout", time.Now()); err != nil {
		t.Fatalf("HandleMessage() returned error: %v", err)
	}

	text, err = engine.Leaderboard(context.Background(), 100)
	if err != nil {
		t.Fatalf("Leaderboard() returned error: %v", err)
	}
	if !strings.Contains(text, "anna: 15 punti") {
		t.Errorf("Leaderboard() = %q, want it to contain %q", text, "anna: 15 punti")
	}
}

func assertNotices(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d notices %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notice %d = %q, want %q", i, got[i], want[i])
		}
	}
}
