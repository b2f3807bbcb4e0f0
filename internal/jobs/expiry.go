package jobs

import (
	"log"
	"time"

	"github.com/scaladei/vinobot-backend/internal/models"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

// ExpiryJob periodically marks sessions past their deadline as closed.
// The engine's lazy expiry check on each inbound event stays authoritative;
// this job only tidies rows for contacts that never wrote back.
type ExpiryJob struct {
	store     storage.Store
	interval  time.Duration
	isRunning bool
}

// NewExpiryJob creates a new session expiry sweeper
func NewExpiryJob(store storage.Store) *ExpiryJob {
	return &ExpiryJob{
		store:    store,
		interval: 5 * time.Minute,
	}
}

// Start begins the sweeper goroutine
func (j *ExpiryJob) Start() {
	if j.isRunning {
		log.Println("Expiry job already running")
		return
	}
	j.isRunning = true
	log.Println("Starting session expiry sweeper...")
	go j.sweep()
}

// Stop halts the sweeper after the current tick
func (j *ExpiryJob) Stop() {
	j.isRunning = false
	log.Println("Stopping session expiry sweeper...")
}

func (j *ExpiryJob) sweep() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for range ticker.C {
		if !j.isRunning {
			return
		}
		j.closeExpiredSessions()
	}
}

func (j *ExpiryJob) closeExpiredSessions() {
	sessions, err := j.store.GetExpiredSessions(time.Now().UTC())
	if err != nil {
		log.Printf("Error loading expired sessions: %v", err)
		return
	}

	closed := 0
	for _, sess := range sessions {
		err := j.store.UpdateSession(sess.Phone, map[string]interface{}{
			"state":    models.StateClosed,
			"close_by": nil,
		})
		if err != nil {
			log.Printf("Error closing expired session for %s: %v", sess.Phone, err)
			continue
		}
		closed++
	}
	if closed > 0 {
		log.Printf("🧹 Closed %d expired session(s)", closed)
	}
}
