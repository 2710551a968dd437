package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-progress-service/internal/domain"
)

type startRequest struct {
	Level         string `json:"level"`
	QuestionCount int    `json:"question_count"`
}

func (h *Handler) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.Invalid("body must be {level, question_count}"))
		return
	}
	res, err := h.sessions.Start(c.Request.Context(), identityFrom(c), req.Level, req.QuestionCount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.sessionEvent(eventStarted)
	c.JSON(http.StatusCreated, res)
}

type submitRequest struct {
	Answers []json.RawMessage `json:"answers"`
}

// rawAnswer keeps both fields undecoded so a bad entry is skipped instead of failing the body.
type rawAnswer struct {
	QuizID         json.RawMessage `json:"quiz_id"`
	SelectedOption json.RawMessage `json:"selected_option"`
}

func (h *Handler) submitSession(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.Invalid("answers must be a list"))
		return
	}
	res, err := h.sessions.Submit(c.Request.Context(), identityFrom(c), c.Param("id"), decodeAnswers(req.Answers))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.sessionEvent(eventCompleted)
	respondOK(c, res)
}

func (h *Handler) abandonSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Abandon(c.Request.Context(), identityFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.sessionEvent(eventAbandoned)
	respondOK(c, gin.H{"session_id": id, "status": domain.StatusAbandoned})
}

func (h *Handler) practice(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, domain.Invalid("count must be an integer"))
			return
		}
		count = n
	}
	set, err := h.sessions.Practice(c.Request.Context(), c.Query("level"), count)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, set)
}

func decodeAnswers(raw []json.RawMessage) []domain.Answer {
	answers := make([]domain.Answer, 0, len(raw))
	for _, item := range raw {
		var entry rawAnswer
		if err := json.Unmarshal(item, &entry); err != nil {
			answers = append(answers, domain.Answer{})
			continue
		}
		answers = append(answers, domain.Answer{
			QuizID:         decodeQuizID(entry.QuizID),
			SelectedOption: decodeOption(entry.SelectedOption),
		})
	}
	return answers
}

// decodeQuizID accepts a JSON integer or a numeric string; anything else yields 0.
func decodeQuizID(raw json.RawMessage) int64 {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch id := v.(type) {
	case float64:
		if id != math.Trunc(id) || id <= 0 || id >= math.MaxInt64 {
			return 0
		}
		return int64(id)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || n <= 0 {
			return 0
		}
		return n
	}
	return 0
}

func decodeOption(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
