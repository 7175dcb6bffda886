package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"social_media/internal/models"
)

const (
	sendBufferSize = 256
	maxReadSize    = 4096
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
)

// Relay 將事件轉送給其他實例，例如 Redis pub/sub
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
	// Subscribe 確認訂閱後才返回，之後在背景接收事件；結束原因送到回傳的 channel
	Subscribe(ctx context.Context, handle func(payload []byte)) (<-chan error, error)
}

// Client 代表一個訂閱訊息動態的 WebSocket 連線
type Client struct {
	Conn      *websocket.Conn
	AccountID uint // 只接收該帳號的訊息，0 表示全部
	SendChan  chan *models.MessageEvent
}

// FeedHub 管理所有訂閱中的 WebSocket 連線並廣播訊息異動
type FeedHub struct {
	clients    map[*Client]bool
	clientsMux sync.RWMutex
	relay      Relay
	active     Relay // 訂閱確認後才設定，中斷時清除
	relayMux   sync.RWMutex
	log        logrus.FieldLogger
}

// NewFeedHub 建立 FeedHub；relay 為 nil 時只在本機廣播
func NewFeedHub(relay Relay, log logrus.FieldLogger) *FeedHub {
	return &FeedHub{
		clients: make(map[*Client]bool),
		relay:   relay,
		log:     log,
	}
}

// Publish 發佈事件；relay 訂閱中時經由 relay 廣播，讓每個實例（包含自己）都收到一次，
// 否則只在本機廣播
func (h *FeedHub) Publish(ctx context.Context, event models.MessageEvent) {
	relay := h.activeRelay()
	if relay == nil {
		h.broadcast(&event)
		return
	}

	payload, err := json.Marshal(event)
	if err == nil {
		err = relay.Publish(ctx, payload)
	}
	if err != nil {
		h.log.WithError(err).Warn("relay publish failed, broadcasting locally")
		h.broadcast(&event)
	}
}

// Start 訂閱 relay，確認後才返回；訂閱結束後改回本機廣播。沒有 relay 時直接返回
func (h *FeedHub) Start(ctx context.Context) error {
	if h.relay == nil {
		return nil
	}
	done, err := h.relay.Subscribe(ctx, func(payload []byte) {
		var event models.MessageEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.log.WithError(err).Warn("drop malformed feed event")
			return
		}
		h.broadcast(&event)
	})
	if err != nil {
		return fmt.Errorf("subscribe feed relay: %w", err)
	}
	h.setActiveRelay(h.relay)

	go func() {
		err := <-done
		h.setActiveRelay(nil)
		if err != nil && !errors.Is(err, context.Canceled) {
			h.log.WithError(err).Error("feed relay stopped, broadcasting locally")
		}
	}()
	return nil
}

func (h *FeedHub) activeRelay() Relay {
	h.relayMux.RLock()
	defer h.relayMux.RUnlock()
	return h.active
}

func (h *FeedHub) setActiveRelay(relay Relay) {
	h.relayMux.Lock()
	defer h.relayMux.Unlock()
	h.active = relay
}

// HandleConnection 處理新的訂閱連線，阻塞直到連線結束
func (h *FeedHub) HandleConnection(conn *websocket.Conn, accountID uint) {
	client := &Client{
		Conn:      conn,
		AccountID: accountID,
		SendChan:  make(chan *models.MessageEvent, sendBufferSize),
	}

	h.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		h.removeClient(client)
		conn.Close()
		close(client.SendChan)
	}()

	go h.writePump(client)
	h.readPump(client)
}

// readPump 只處理心跳與關閉，客戶端送來的內容一律忽略
func (h *FeedHub) readPump(client *Client) {
	client.Conn.SetReadLimit(maxReadSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("feed connection closed unexpectedly")
			}
			return
		}
	}
}

// writePump 將事件寫給客戶端並定期送出 ping
func (h *FeedHub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast 將事件放入每個符合條件的客戶端佇列；佇列已滿的客戶端會被斷線
func (h *FeedHub) broadcast(event *models.MessageEvent) {
	var slow []*Client

	h.clientsMux.RLock()
	for client := range h.clients {
		if client.AccountID != 0 && client.AccountID != event.Message.PostedBy {
			continue
		}
		select {
		case client.SendChan <- event:
		default:
			slow = append(slow, client)
		}
	}
	h.clientsMux.RUnlock()

	for _, client := range slow {
		h.removeClient(client)
		client.Conn.Close()
	}
}

func (h *FeedHub) addClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	h.clients[client] = true
}

func (h *FeedHub) removeClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	delete(h.clients, client)
}

// ClientCount 回傳目前訂閱中的連線數
func (h *FeedHub) ClientCount() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}
