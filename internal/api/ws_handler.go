package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	wsWriteWait    = 5 * time.Second
	wsPingInterval = 30 * time.Second
	// The client must answer a ping before the next one is due.
	wsPongWait = wsPingInterval + 10*time.Second
)

var errStreamClosed = errors.New("event stream closed")

// Subscriber streams the raw events of one document.
type Subscriber interface {
	Subscribe(ctx context.Context, documentID uint) (<-chan string, func() error, error)
}

// EventsHandler 把文档事件（保存、归档、删除）经 WebSocket 推送给正在编辑该文档的客户端。
type EventsHandler struct {
	subscriber   Subscriber
	logger       *slog.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongWait     time.Duration
}

// NewEventsHandler 构造 EventsHandler。allowedOrigins 为空时只接受同源连接。
func NewEventsHandler(subscriber Subscriber, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return originAllowed(allowedOrigins, r) },
		},
		pingInterval: wsPingInterval,
		pongWait:     wsPongWait,
	}
}

func originAllowed(allowed []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(allowed) > 0 {
		return slices.Contains(allowed, origin)
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// HandleConnection subscribes before upgrading so a Redis failure can still be
// answered with a plain HTTP error.
func (h *EventsHandler) HandleConnection(c *gin.Context) {
	documentID, err := parseDocumentID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	log := h.logger.With(
		slog.Int("document_id", int(documentID)),
		slog.String("client_ip", c.ClientIP()),
	)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, unsubscribe, err := h.subscriber.Subscribe(ctx, documentID)
	if err != nil {
		log.Error("subscribe document events failed", slog.Any("error", err))
		Internal(c, "failed to subscribe to document events")
		return
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			log.Warn("unsubscribe document events failed", slog.Any("error", err))
		}
	}()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("websocket upgrade rejected", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log.Info("event stream opened")
	err = h.stream(ctx, conn, messages)
	log.Info("event stream closed", slog.Any("reason", err))
}

// stream pumps events to conn until the client leaves, the subscription
// ends or ctx is cancelled.
func (h *EventsHandler) stream(ctx context.Context, conn *websocket.Conn, messages <-chan string) error {
	g, ctx := errgroup.WithContext(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	// Client messages are ignored; reading surfaces disconnects and pongs.
	g.Go(func() error {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(h.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// Unblocks the reader.
				_ = conn.Close()
				return ctx.Err()
			case msg, ok := <-messages:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, errStreamClosed.Error()),
						time.Now().Add(wsWriteWait))
					_ = conn.Close()
					return errStreamClosed
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
					_ = conn.Close()
					return err
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					_ = conn.Close()
					return err
				}
			}
		}
	})

	return g.Wait()
}
