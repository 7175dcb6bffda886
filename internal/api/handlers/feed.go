package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"social_media/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler 將 HTTP 連線升級為訊息動態的 WebSocket 訂閱
type FeedHandler struct {
	hub *service.FeedHub
}

// NewFeedHandler 創建一個新的 FeedHandler 實例
func NewFeedHandler(hub *service.FeedHub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// Subscribe 處理 WebSocket 連接請求，可用 ?accountId= 只訂閱單一帳號的訊息
func (h *FeedHandler) Subscribe(c *gin.Context) {
	var accountID uint
	if raw := c.Query("accountId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		accountID = uint(id)
	}

	// 升級失敗時 upgrader 已回應錯誤
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.hub.HandleConnection(conn, accountID)
}
