// Package rest exposes the chat core over HTTP with gin.
package rest

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"presence-chat/domain"
	"presence-chat/errors"
	"presence-chat/projection"
	"presence-chat/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	log              *slog.Logger
	service          services.IChatService
	timeline         *projection.Timeline
	broadcastLiteral string
	userHeader       string
}

func NewHandler(log *slog.Logger, service services.IChatService,
	broadcastLiteral, userHeader string) *Handler {
	return &Handler{log: log, service: service, broadcastLiteral: broadcastLiteral, userHeader: userHeader}
}

// WithTimeline exposes the recent activity on GET /activity.
func (h *Handler) WithTimeline(timeline *projection.Timeline) *Handler {
	h.timeline = timeline
	return h
}

// NewEngine builds the gin engine with recovery, request logging and CORS.
func NewEngine(log *slog.Logger, h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log), cors(h.userHeader))
	h.Routes(engine)
	return engine
}

func (h *Handler) Routes(router gin.IRouter) {
	router.GET("/participants", h.listParticipants)
	router.POST("/participants", h.join)
	router.GET("/messages", h.listMessages)
	router.POST("/messages", h.sendMessage)
	router.PUT("/messages/:id", h.updateMessage)
	router.DELETE("/messages/:id", h.deleteMessage)
	router.POST("/status", h.refreshStatus)
	if h.timeline != nil {
		router.GET("/activity", h.activity)
	}
}

func (h *Handler) listParticipants(c *gin.Context) {
	participants, err := h.service.Participants(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, toParticipantsResponse(participants))
}

func (h *Handler) join(c *gin.Context) {
	var body joinRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	participant, err := h.service.Join(c.Request.Context(), body.Name)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, toParticipantResponse(participant))
	case stderrors.Is(err, errors.ErrConflict):
		h.fail(c, http.StatusConflict, err)
	case stderrors.Is(err, errors.ErrInvalidInput):
		h.fail(c, http.StatusUnprocessableEntity, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) listMessages(c *gin.Context) {
	query := domain.ListMessagesQuery{Requester: c.GetHeader(h.userHeader)}
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, http.StatusUnprocessableEntity, errors.ErrInvalidLimit)
			return
		}
		query.Limit = &limit
	}
	messages, err := h.service.Messages(c.Request.Context(), query)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toMessagesResponse(messages, h.broadcastLiteral))
	case stderrors.Is(err, errors.ErrInvalidInput):
		h.fail(c, http.StatusUnprocessableEntity, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) sendMessage(c *gin.Context) {
	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	id, err := h.service.SendMessage(c.Request.Context(), domain.SendMessageCommand{
		From: c.GetHeader(h.userHeader),
		To:   body.To,
		Text: body.Text,
		Kind: body.Type,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, createdResponse{ID: id.String()})
	case stderrors.Is(err, errors.ErrUnauthorized), stderrors.Is(err, errors.ErrInvalidInput):
		h.fail(c, http.StatusUnprocessableEntity, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) refreshStatus(c *gin.Context) {
	user, ok := h.requester(c)
	if !ok {
		return
	}
	err := h.service.Refresh(c.Request.Context(), user)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case stderrors.Is(err, errors.ErrNotFound):
		h.fail(c, http.StatusNotFound, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) deleteMessage(c *gin.Context) {
	user, ok := h.requester(c)
	if !ok {
		return
	}
	err := h.service.DeleteMessage(c.Request.Context(), domain.DeleteMessageCommand{
		ID:        c.Param("id"),
		Requester: user,
	})
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	// An absent requester is reported like a missing resource on this route
	case stderrors.Is(err, errors.ErrUnknownParticipant), stderrors.Is(err, errors.ErrNotFound):
		h.fail(c, http.StatusNotFound, err)
	case stderrors.Is(err, errors.ErrUnauthorized):
		h.fail(c, http.StatusUnauthorized, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) updateMessage(c *gin.Context) {
	user, ok := h.requester(c)
	if !ok {
		return
	}
	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	err := h.service.UpdateMessage(c.Request.Context(), domain.UpdateMessageCommand{
		ID:        c.Param("id"),
		Requester: user,
		To:        body.To,
		Text:      body.Text,
		Kind:      body.Type,
	})
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case stderrors.Is(err, errors.ErrUnauthorized):
		h.fail(c, http.StatusUnauthorized, err)
	case stderrors.Is(err, errors.ErrNotFound):
		h.fail(c, http.StatusNotFound, err)
	case stderrors.Is(err, errors.ErrInvalidInput):
		h.fail(c, http.StatusUnprocessableEntity, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) activity(c *gin.Context) {
	c.JSON(http.StatusOK, h.timeline.Recent())
}

// requester reads the identity header. Routes acting on behalf of a
// participant answer 404 when it is missing.
func (h *Handler) requester(c *gin.Context) (string, bool) {
	user := c.GetHeader(h.userHeader)
	if user == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "missing " + h.userHeader + " header"})
		return "", false
	}
	return user, true
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
