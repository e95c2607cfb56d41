package memory

import (
	"testing"

	"edugames-service/internal/app"
	"edugames-service/internal/engine"
)

func TestSessionStorePutGetDelete(t *testing.T) {
	store := NewSessionStore()
	session, err := app.NewPlaySession(sampleGame(), "u1", engine.NewManualScheduler())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	store.Put(session)
	got, ok := store.Get(session.ID)
	if !ok || got != session {
		t.Fatalf("expected to find session %s", session.ID)
	}

	store.Delete(session.ID)
	if _, ok := store.Get(session.ID); ok {
		t.Fatalf("expected session to be removed")
	}
}
