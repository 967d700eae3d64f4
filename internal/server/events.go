package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/mowind/walletrpc-go/internal/connection"
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
)

const (
	// EventMethod 连接方式变更事件
	EventMethod = "method"
	// EventState 连接状态变更事件
	EventState = "state"
)

type sseEvent struct {
	name string
	data interface{}
}

// eventsHandler 以 SSE 推送连接方式变更和连接状态变化，客户端断开后结束
func (s *Server) eventsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	entry := apperrors.EntryFromContext(ctx, s.logger)
	events := make(chan sseEvent, 16)

	// 监听器在切换方式的调用方 goroutine 中执行，缓冲区满时丢弃事件
	unsubscribe := s.controller.Subscribe(func(change connection.MethodChange) {
		if !change.Changed() {
			return
		}
		select {
		case events <- sseEvent{name: EventMethod, data: change}:
		default:
			entry.Warn("Event stream buffer full, dropping method change")
		}
	})
	defer unsubscribe()

	go s.controller.Watch(ctx, func(state connection.State) {
		select {
		case events <- sseEvent{name: EventState, data: state}:
		case <-ctx.Done():
		}
	})

	entry.Debug("Event stream opened")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-events:
			c.SSEvent(ev.name, ev.data)
			return true
		}
	})
	entry.Debug("Event stream closed")
}
