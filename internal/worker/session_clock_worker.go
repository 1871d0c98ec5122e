package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/service"
)

// TickInterval is the countdown resolution.
const TickInterval = 1 * time.Second

// SessionClockWorker drives every in-progress session's countdown. The
// session engine itself exposes no timer loop; this worker is the
// clock-driven collaborator that decrements remaining time once per
// elapsed second and triggers auto-submission when it reaches zero.
type SessionClockWorker struct {
	sessions *service.ExamSessionService
	log      zerolog.Logger
}

// NewSessionClockWorker creates a new SessionClockWorker.
func NewSessionClockWorker(sessions *service.ExamSessionService, log zerolog.Logger) *SessionClockWorker {
	return &SessionClockWorker{
		sessions: sessions,
		log:      log.With().Str("component", "session_clock_worker").Logger(),
	}
}

// Start runs the tick loop until ctx is cancelled.
func (w *SessionClockWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SessionClockWorker started")

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionClockWorker stopped")
			return

		case <-ticker.C:
			for _, id := range w.sessions.InProgressSessionIDs(ctx) {
				expired, err := w.sessions.Tick(ctx, id)
				if err != nil {
					// A session submitted between listing and ticking
					// is not an error worth reporting.
					if errors.Is(err, service.ErrInvalidSessionState) {
						continue
					}
					w.log.Error().Err(err).Str("session_id", id.String()).Msg("Tick failed")
					continue
				}
				if expired {
					w.log.Debug().Str("session_id", id.String()).Msg("Session timer expired")
				}
			}
		}
	}
}
