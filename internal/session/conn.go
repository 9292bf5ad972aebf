package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var errClosed = errors.New("соединение закрыто")

// conn сериализует запись в websocket: все сообщения идут через очередь
// и пишутся одной горутиной.
type conn struct {
	ws     *websocket.Conn
	logger *zap.Logger

	send chan Outbound
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, logger *zap.Logger) *conn {
	c := &conn{
		ws:     ws,
		logger: logger,
		send:   make(chan Outbound, 64),
		done:   make(chan struct{}),
	}
	ws.SetReadLimit(maxMessageSize)

	c.wg.Add(1)
	go c.writeLoop()
	return c
}

// push ставит сообщение в очередь. После закрытия соединения сообщение
// отбрасывается.
func (c *conn) push(msg Outbound) {
	select {
	case c.send <- msg:
	case <-c.done:
	}
}

// readLoop читает сообщения до ошибки или закрытия и передает их handle
func (c *conn) readLoop(handle func(Inbound)) error {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				return nil
			}
			return fmt.Errorf("ошибка чтения сообщения: %w", err)
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var msg Inbound
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn("некорректное сообщение клиента", zap.Error(err))
			continue
		}
		handle(msg)
	}
}

func (c *conn) writeLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("ошибка отправки сообщения", zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close закрывает соединение. Повторные вызовы безопасны.
func (c *conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) wait() {
	c.wg.Wait()
}
