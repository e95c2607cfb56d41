package redis

import (
	"testing"
	"time"

	"edugames-service/internal/app"
	"edugames-service/internal/engine"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsLiveness(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	session, err := app.NewPlaySession(sampleGame(), "u1", engine.NewManualScheduler())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	store.Put(session)
	if !mr.Exists("play:session:" + session.ID) {
		t.Fatalf("expected liveness key to be set")
	}
	if got, ok := store.Get(session.ID); !ok || got != session {
		t.Fatalf("expected to find session")
	}

	store.Delete(session.ID)
	if mr.Exists("play:session:" + session.ID) {
		t.Fatalf("expected liveness key to be removed")
	}
}
