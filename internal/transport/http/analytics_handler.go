package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-progress-service/internal/domain"
)

func (h *Handler) usersOverview(c *gin.Context) {
	rows, err := h.analytics.Users(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, rows)
}

func (h *Handler) leaderboard(c *gin.Context) {
	rows, err := h.analytics.Leaderboard(c.Request.Context(), identityFrom(c), c.Query("level"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, rows)
}

func (h *Handler) userDetail(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.respondError(c, domain.Invalid("user id must be an integer"))
		return
	}
	detail, err := h.analytics.UserDetail(c.Request.Context(), identityFrom(c), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, detail)
}

// quizStats lists per-question difficulty; unattempted questions carry a null rate and come last in their level.
func (h *Handler) quizStats(c *gin.Context) {
	rows, err := h.analytics.QuizStats(c.Request.Context(), identityFrom(c), c.Query("level"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, rows)
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// leaderboardFeed pushes the leaderboard right after the upgrade and then on every tick
// until the client goes away. Access and the level filter are checked before upgrading
// so refusals are plain HTTP errors.
func (h *Handler) leaderboardFeed(c *gin.Context) {
	caller := identityFrom(c)
	level := c.Query("level")
	first, err := h.analytics.Leaderboard(c.Request.Context(), caller, level)
	if err != nil {
		h.respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// the reader only watches for the peer closing; the feed is one-way
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	rows := first
	for {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(outboundMessage[[]domain.LeaderboardRow]{Type: "leaderboard", Payload: rows}); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
			return
		}
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		rows, err = h.analytics.Leaderboard(ctx, caller, level)
		if err != nil {
			h.log.Error("leaderboard refresh failed", zap.Error(err))
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "leaderboard unavailable"}})
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""))
			return
		}
	}
}
