package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

func (h *Handler) myOverview(c *gin.Context) {
	overview, err := h.progress.Overview(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, overview)
}

func (h *Handler) myLevels(c *gin.Context) {
	levels, err := h.progress.Levels(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, levels)
}

func (h *Handler) myHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		h.respondError(c, err)
		return
	}
	history, err := h.progress.History(c.Request.Context(), identityFrom(c), app.HistoryQuery{
		Level:  c.Query("level"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, history)
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid("%s must be an integer", name)
	}
	return n, nil
}
