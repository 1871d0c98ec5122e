package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/service"
	ws "github.com/aiexam/aiexam-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session state (countdown, answer acks,
// grading) over a WebSocket.
type WSHandler struct {
	sessionService *service.ExamSessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Pushes the remaining time once per second and accepts answer/submit
// actions. The countdown itself is advanced by the session clock
// worker; this stream only observes it.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.Status != model.SessionStatusInProgress {
		c.JSON(http.StatusConflict, gin.H{"error": "session is not in progress"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	streamLog := h.log.With().
		Str("session_id", sessionID.String()).
		Str("student_id", session.StudentID).
		Logger()
	streamLog.Info().Msg("Student connected")

	// Read pump: all writes stay on this goroutine, as gorilla permits
	// only one concurrent writer. The pump selects on done for every
	// hand-off; a plain send could park forever when the stream ends
	// with a pipelined frame still in flight, since closing the
	// connection unblocks ReadJSON but never a channel send.
	actions := make(chan ws.RequestPayload)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				readErr <- err
				return
			}
			select {
			case actions <- msg:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				streamLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				streamLog.Debug().Msg("Connection closed")
			}
			return

		case msg := <-actions:
			if finished := h.handleAction(c, conn, streamLog, sessionID, msg); finished {
				return
			}

		case <-ticker.C:
			live, err := h.sessionService.Get(c.Request.Context(), sessionID)
			if err != nil {
				ws.WriteError(conn, "session no longer exists")
				return
			}
			if live.Status != model.SessionStatusInProgress {
				// Timer expired between ticks: report the stored result.
				h.writeGraded(c, conn, streamLog, live.StudentID, live.ExamID)
				return
			}
			err = ws.WriteTyped(conn, ws.TimeResponse{
				Event:            ws.EventTime,
				RemainingSeconds: live.TimeRemainingSeconds,
			})
			if err != nil {
				// Dead connection; don't wait for the read side to notice.
				streamLog.Debug().Err(err).Msg("Time push failed")
				return
			}
		}
	}
}

// handleAction dispatches one client action. It reports true when the
// stream should end (after grading).
func (h *WSHandler) handleAction(c *gin.Context, conn *websocket.Conn, streamLog zerolog.Logger, sessionID uuid.UUID, msg ws.RequestPayload) bool {
	switch msg.Action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		return false

	case ws.ActionAnswer:
		if msg.QuestionIndex == nil {
			ws.WriteError(conn, "question_index is required")
			return false
		}
		_, err := h.sessionService.RecordAnswer(c.Request.Context(), sessionID, *msg.QuestionIndex, msg.Answer)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSessionState) {
				ws.WriteError(conn, "answer rejected: session state")
				return false
			}
			streamLog.Error().Err(err).Msg("Answer failed")
			ws.WriteError(conn, "answer failed")
			return false
		}
		ws.WriteTyped(conn, ws.AnswerResponse{Event: ws.EventSuccess, Status: "saved"})
		return false

	case ws.ActionSubmit:
		result, err := h.sessionService.Complete(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSessionState) {
				ws.WriteError(conn, "session already finished")
				return true
			}
			streamLog.Error().Err(err).Msg("Submit failed")
			ws.WriteError(conn, "submit failed")
			return false
		}
		streamLog.Info().Int("score", result.Score).Msg("Session submitted over stream")
		ws.WriteTyped(conn, ws.GradedResponse{
			Event:          ws.EventGraded,
			Score:          result.Score,
			TotalQuestions: result.TotalQuestions,
			CompletedAt:    result.CompletedAt.Format(time.RFC3339),
		})
		return true

	default:
		streamLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		ws.WriteError(conn, "unknown action: "+string(msg.Action))
		return false
	}
}

// writeGraded looks up the stored result for an auto-submitted session
// and pushes the graded event.
func (h *WSHandler) writeGraded(c *gin.Context, conn *websocket.Conn, streamLog zerolog.Logger, studentID string, examID uuid.UUID) {
	for _, res := range h.sessionService.ResultsByStudent(c.Request.Context(), studentID) {
		if res.ExamID == examID {
			ws.WriteTyped(conn, ws.GradedResponse{
				Event:          ws.EventGraded,
				Score:          res.Score,
				TotalQuestions: res.TotalQuestions,
				CompletedAt:    res.CompletedAt.Format(time.RFC3339),
			})
			return
		}
	}
	streamLog.Warn().Msg("Finished session has no stored result")
	ws.WriteError(conn, "session finished")
}
