package statistics

import (
	"sync"
	"testing"
)

func TestRecordAndRead(t *testing.T) {
	rec := NewRecorder()
	rec.RecordResult("ada", SinglePlayer, Win)
	rec.RecordResult("ada", SinglePlayer, Win)
	rec.RecordResult("ada", SinglePlayer, Loss)
	rec.RecordResult("ada", OnlineMultiplayer, Tie)

	snap, ok := rec.Read("ada")
	if !ok {
		t.Fatal("expected a snapshot for ada")
	}
	if snap.Username != "ada" {
		t.Errorf("Username = %q, want ada", snap.Username)
	}

	single := snap.ByMode[SinglePlayer]
	if single.Wins != 2 || single.Losses != 1 || single.Ties != 0 {
		t.Errorf("single-player counters = %+v, want 2/1/0", single)
	}
	if single.Total() != 3 {
		t.Errorf("Total() = %d, want 3", single.Total())
	}

	online := snap.ByMode[OnlineMultiplayer]
	if online.Ties != 1 {
		t.Errorf("online ties = %d, want 1", online.Ties)
	}
}

func TestReadUnknownPlayer(t *testing.T) {
	rec := NewRecorder()
	if _, ok := rec.Read("nobody"); ok {
		t.Error("expected no snapshot for an unknown player")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	rec := NewRecorder()
	rec.RecordResult("ada", SinglePlayer, Win)

	snap, _ := rec.Read("ada")
	snap.ByMode[SinglePlayer] = Counters{Wins: 99}

	fresh, _ := rec.Read("ada")
	if fresh.ByMode[SinglePlayer].Wins != 1 {
		t.Error("mutating a snapshot must not affect the recorder")
	}
}

func TestConcurrentRecording(t *testing.T) {
	rec := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rec.RecordResult("ada", SinglePlayer, Win)
			}
		}()
	}
	wg.Wait()

	snap, _ := rec.Read("ada")
	if got := snap.ByMode[SinglePlayer].Wins; got != 1000 {
		t.Errorf("wins = %d, want 1000", got)
	}
}

func TestModeAndOutcomeStrings(t *testing.T) {
	if SinglePlayer.String() == "" || OnlineMultiplayer.String() == "" {
		t.Error("modes must have names")
	}
	if Win.String() == "" || Loss.String() == "" || Tie.String() == "" {
		t.Error("outcomes must have names")
	}
}
