package conversation

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestStoreMemoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	memory := NewContextualMemory("s1", "c1")
	memory.Preferences.Styles = []string{"classic", "modern"}
	memory.Demographics.Profession = "architect"

	if err := store.SaveMemory(ctx, memory); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.LoadMemory(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CustomerID != "c1" {
		t.Errorf("CustomerID = %q, want c1", loaded.CustomerID)
	}
	if len(loaded.Preferences.Styles) != 2 {
		t.Errorf("Styles = %v, want 2 entries", loaded.Preferences.Styles)
	}
	if loaded.Demographics.Profession != "architect" {
		t.Errorf("Profession = %q, want architect", loaded.Demographics.Profession)
	}
}

func TestStoreFlowRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	flow := &ConversationFlow{
		CurrentStage:  StageStyleConsultation,
		Framework:     FrameworkDirective,
		KnownTimeline: "two weeks",
		DecisionJourney: DecisionJourney{
			CurrentPhase:     PhaseConsideration,
			ProgressionScore: 0.5,
		},
	}
	if err := store.SaveFlow(ctx, "s1", flow); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.LoadFlow(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CurrentStage != StageStyleConsultation {
		t.Errorf("CurrentStage = %q", loaded.CurrentStage)
	}
	if loaded.Framework != FrameworkDirective {
		t.Errorf("Framework = %q", loaded.Framework)
	}
	if loaded.KnownTimeline != "two weeks" {
		t.Errorf("KnownTimeline = %q", loaded.KnownTimeline)
	}
	if loaded.DecisionJourney.ProgressionScore != 0.5 {
		t.Errorf("ProgressionScore = %v", loaded.DecisionJourney.ProgressionScore)
	}
}

func TestStoreNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.LoadMemory(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadMemory error = %v, want ErrNotFound", err)
	}
	if _, err := store.LoadFlow(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadFlow error = %v, want ErrNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveMemory(ctx, NewContextualMemory("s1", "c1")); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveFlow(ctx, "s1", &ConversationFlow{CurrentStage: StageInitialDiscovery}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadMemory(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("memory survived delete: %v", err)
	}
	if _, err := store.LoadFlow(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("flow survived delete: %v", err)
	}
}
