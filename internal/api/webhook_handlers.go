package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func webhookID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Неверный ID webhook'а")
		return 0, false
	}
	return id, true
}

func (rs *RestServer) handleGetOutboundWebhooks(c *gin.Context) {
	ok(c, "Webhook'и", rs.webhooks.GetWebhooks())
}

func (rs *RestServer) handleCreateOutboundWebhook(c *gin.Context) {
	var webhook OutboundWebhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	created := rs.webhooks.AddWebhook(webhook)
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "Webhook создан", Data: created})
}

func (rs *RestServer) handleGetOutboundWebhook(c *gin.Context) {
	id, valid := webhookID(c)
	if !valid {
		return
	}
	webhook := rs.webhooks.GetWebhook(id)
	if webhook == nil {
		fail(c, http.StatusNotFound, "Webhook не найден")
		return
	}
	ok(c, "Webhook", webhook)
}

func (rs *RestServer) handleUpdateOutboundWebhook(c *gin.Context) {
	id, valid := webhookID(c)
	if !valid {
		return
	}
	var updates WebhookUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	webhook := rs.webhooks.UpdateWebhook(id, updates)
	if webhook == nil {
		fail(c, http.StatusNotFound, "Webhook не найден")
		return
	}
	ok(c, "Webhook обновлён", webhook)
}

func (rs *RestServer) handleDeleteOutboundWebhook(c *gin.Context) {
	id, valid := webhookID(c)
	if !valid {
		return
	}
	if !rs.webhooks.DeleteWebhook(id) {
		fail(c, http.StatusNotFound, "Webhook не найден")
		return
	}
	ok(c, "Webhook удалён", nil)
}

func (rs *RestServer) handleGetWebhookEventTypes(c *gin.Context) {
	ok(c, "Типы событий", rs.webhooks.GetEventTypes())
}
