package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/slatewatch/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(100, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testOutcome(id string, status models.BetStatus, settledAt time.Time) models.Bet {
	req := models.NewTeamRequirement("req-0", "Buffalo Bills", "Rushing TD", 1)
	req.Current = 1
	req.Completed = status == models.StatusWon
	return models.Bet{
		ID:           id,
		Title:        "Early slate",
		Type:         models.TeamSlate,
		TimeSlots:    []string{"1PM Slot"},
		Status:       status,
		Requirements: []models.Requirement{req},
		Notes:        "+300",
		CreatedAt:    settledAt.Add(-3 * time.Hour),
		SettledAt:    settledAt,
	}
}

func TestStorage_RecordAndGetOutcome(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()
	bet := testOutcome("bet-1", models.StatusWon, now)

	if err := s.RecordOutcome(bet); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	got, err := s.GetOutcome("bet-1")
	if err != nil {
		t.Fatalf("GetOutcome: %v", err)
	}
	if got.Notified {
		t.Error("new outcome should not be notified")
	}
	if got.Bet.Status != models.StatusWon || got.Bet.Type != models.TeamSlate || got.Bet.Notes != "+300" {
		t.Errorf("unexpected bet: %+v", got.Bet)
	}
	if !got.Bet.SettledAt.Equal(time.Unix(0, now.UnixNano())) {
		t.Errorf("settled at: got %v, want %v", got.Bet.SettledAt, now)
	}
	if len(got.Bet.TimeSlots) != 1 || got.Bet.TimeSlots[0] != "1PM Slot" {
		t.Errorf("time slots: got %v", got.Bet.TimeSlots)
	}
	if len(got.Bet.Requirements) != 1 {
		t.Fatalf("got %d requirements, want 1", len(got.Bet.Requirements))
	}
	team, ok := got.Bet.Requirements[0].Team()
	if !ok || team != "Buffalo Bills" || !got.Bet.Requirements[0].Completed {
		t.Errorf("requirement not round-tripped: %+v", got.Bet.Requirements[0])
	}
}

func TestStorage_RecordOutcome_RejectsActiveBet(t *testing.T) {
	s := newTestStorage(t)
	if err := s.RecordOutcome(testOutcome("bet-1", models.StatusActive, time.Now())); err == nil {
		t.Error("expected error recording an unsettled bet")
	}
}

func TestStorage_GetOutcome_NotFound(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.GetOutcome("nonexistent"); !errors.Is(err, ErrOutcomeNotFound) {
		t.Errorf("error = %v, want ErrOutcomeNotFound", err)
	}
}

func TestStorage_MarkNotified(t *testing.T) {
	s := newTestStorage(t)
	if err := s.RecordOutcome(testOutcome("bet-1", models.StatusLost, time.Now())); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if err := s.MarkNotified("bet-1"); err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	got, _ := s.GetOutcome("bet-1")
	if !got.Notified {
		t.Error("outcome should be notified")
	}
	if err := s.MarkNotified("missing"); !errors.Is(err, ErrOutcomeNotFound) {
		t.Errorf("error = %v, want ErrOutcomeNotFound", err)
	}
}

func TestStorage_RecentOutcomes(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		bet := testOutcome(fmt.Sprintf("bet-%d", i), models.StatusWon, now.Add(time.Duration(i)*time.Minute))
		if err := s.RecordOutcome(bet); err != nil {
			t.Fatalf("RecordOutcome: %v", err)
		}
	}

	recent, err := s.RecentOutcomes(2)
	if err != nil {
		t.Fatalf("RecentOutcomes: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(recent))
	}
	if recent[0].Bet.ID != "bet-2" || recent[1].Bet.ID != "bet-1" {
		t.Errorf("not sorted by settlement time: %s, %s", recent[0].Bet.ID, recent[1].Bet.ID)
	}
}

func TestStorage_RecentOutcomes_Empty(t *testing.T) {
	s := newTestStorage(t)
	recent, err := s.RecentOutcomes(10)
	if err != nil {
		t.Fatalf("RecentOutcomes: %v", err)
	}
	if recent == nil || len(recent) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", recent)
	}
}

func TestStorage_RecordOutcome_EnforcesMaxOutcomes(t *testing.T) {
	// max_outcomes=3: recording a 4th should evict the oldest.
	s, err := New(3, ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	now := time.Now()
	for i := 0; i < 4; i++ {
		bet := testOutcome(fmt.Sprintf("bet-%d", i), models.StatusWon, now.Add(-time.Duration(4-i)*time.Second))
		if err := s.RecordOutcome(bet); err != nil {
			t.Fatalf("RecordOutcome %d: %v", i, err)
		}
	}
	recent, _ := s.RecentOutcomes(10)
	if len(recent) != 3 {
		t.Errorf("got %d outcomes, want 3 after cap enforcement", len(recent))
	}
	if _, err := s.GetOutcome("bet-0"); err == nil {
		t.Error("oldest outcome bet-0 should have been evicted")
	}
}

func TestStorage_RotateOutcomes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := New(10, dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Now()
	for i := 0; i < 8; i++ {
		bet := testOutcome(fmt.Sprintf("bet-%d", i), models.StatusLost, now.Add(-time.Duration(8-i)*time.Second))
		if err := s.RecordOutcome(bet); err != nil {
			t.Fatalf("RecordOutcome %d: %v", i, err)
		}
	}
	_ = s.Close()

	// Reopen with a smaller cap; rotation trims the persisted history.
	s, err = New(5, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if err := s.RotateOutcomes(); err != nil {
		t.Fatalf("RotateOutcomes: %v", err)
	}
	recent, _ := s.RecentOutcomes(10)
	if len(recent) != 5 {
		t.Errorf("got %d outcomes after rotation, want 5", len(recent))
	}
	for _, o := range recent {
		if o.Bet.ID == "bet-0" || o.Bet.ID == "bet-1" || o.Bet.ID == "bet-2" {
			t.Errorf("old outcome %s should have been rotated out", o.Bet.ID)
		}
	}
}

func TestStorage_DefaultPath(t *testing.T) {
	s, err := New(10, "")
	if err != nil {
		t.Fatalf("New with empty path: %v", err)
	}
	defer s.Close()
}
