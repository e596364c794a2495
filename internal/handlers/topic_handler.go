package handlers

import (
	"net/http"

	"topicbrief_backend/internal/middleware"
	"topicbrief_backend/internal/services"
	"topicbrief_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TopicHandler struct {
	*BaseHandler
	topicService services.TopicService
}

func NewTopicHandler(base *BaseHandler, topicService services.TopicService) *TopicHandler {
	return &TopicHandler{
		BaseHandler:  base,
		topicService: topicService,
	}
}

func (h *TopicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	topics := rg.Group("/topics")
	topics.Use(middleware.RequireAuth())
	{
		topics.GET("", h.ListTopics)
		topics.POST("", h.CreateTopic)
		topics.DELETE("/:id", h.DeleteTopic)
	}
}

func (h *TopicHandler) ListTopics(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	topics, err := h.topicService.List(db, snapshot.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topics)
}

func (h *TopicHandler) CreateTopic(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTopicRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	topic, err := h.topicService.Create(db, snapshot.ID, req.Name)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"topic":   topic,
	})
}

func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	snapshot, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.topicService.Delete(db, snapshot.ID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
