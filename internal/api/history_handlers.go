package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/objectkit/internal/api/replay"
)

// historyFilter разбирает ?type=a,b&since=RFC3339&until=RFC3339&limit=N
func historyFilter(c *gin.Context) (*replay.ReplayFilter, bool) {
	filter := &replay.ReplayFilter{Project: c.Param("project")}

	if types := c.Query("type"); types != "" {
		filter.EventTypes = strings.Split(types, ",")
	}
	for param, dst := range map[string]**time.Time{"since": &filter.StartTime, "until": &filter.EndTime} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Неверный формат времени в "+param)
			return nil, false
		}
		*dst = &t
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fail(c, http.StatusBadRequest, "Неверный limit")
			return nil, false
		}
		filter.Limit = limit
	}
	return filter, true
}

func (rs *RestServer) handleProjectHistory(c *gin.Context) {
	filter, valid := historyFilter(c)
	if !valid {
		return
	}
	records, err := rs.replay.StreamEvents(c.Request.Context(), filter)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	if records == nil {
		records = []replay.ChangeRecord{}
	}
	ok(c, "История изменений", records)
}

func (rs *RestServer) handleHistoryStats(c *gin.Context) {
	filter, valid := historyFilter(c)
	if !valid {
		return
	}
	filter.Project = c.Query("project")

	stats, err := rs.replay.GetEventStats(c.Request.Context(), filter)
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Статистика событий", stats)
}

func (rs *RestServer) handleHistoryTypes(c *gin.Context) {
	types, err := rs.replay.GetEventTypes(c.Request.Context())
	if err != nil {
		rs.respondError(c, err)
		return
	}
	ok(c, "Типы событий", types)
}
