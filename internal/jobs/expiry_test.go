package jobs

import (
	"testing"
	"time"

	"github.com/scaladei/vinobot-backend/internal/models"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

func TestCloseExpiredSessions(t *testing.T) {
	store := storage.NewMemoryStore()
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)

	store.EnsureSession("expired")
	store.UpdateSession("expired", map[string]interface{}{
		"state":    models.StateAskName,
		"close_by": &past,
	})
	store.EnsureSession("live")
	store.UpdateSession("live", map[string]interface{}{
		"state":    models.StateAskName,
		"close_by": &future,
	})

	job := NewExpiryJob(store)
	job.closeExpiredSessions()

	expired, err := store.GetSession("expired")
	if err != nil {
		t.Fatal(err)
	}
	if expired.State != models.StateClosed {
		t.Errorf("expired session state = %q, want closed", expired.State)
	}
	if expired.CloseBy != nil {
		t.Error("deadline not cleared on close")
	}

	live, err := store.GetSession("live")
	if err != nil {
		t.Fatal(err)
	}
	if live.State != models.StateAskName {
		t.Errorf("live session state = %q, want ask_name", live.State)
	}
}
