package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social_media/internal/models"
	"social_media/internal/service"
)

// MessageHandler 處理訊息的新增、查詢、修改與刪除
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 創建一個新的 MessageHandler 實例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Create 處理發佈新訊息的請求
func (h *MessageHandler) Create(c *gin.Context) {
	var input models.Message
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	message, err := h.messageService.Create(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

// ListAll 回傳所有訊息，沒有訊息時回傳空陣列
func (h *MessageHandler) ListAll(c *gin.Context) {
	messages, err := h.messageService.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// ListByAccount 回傳某帳號的所有訊息
func (h *MessageHandler) ListByAccount(c *gin.Context) {
	accountID, exists, ok := parseID(c, "accountId")
	if !ok {
		return
	}
	if !exists {
		c.JSON(http.StatusOK, []models.Message{})
		return
	}

	messages, err := h.messageService.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// Get 查詢單一訊息；不存在時仍回應 200，body 為空
func (h *MessageHandler) Get(c *gin.Context) {
	messageID, exists, ok := parseID(c, "messageId")
	if !ok {
		return
	}
	if !exists {
		c.Status(http.StatusOK)
		return
	}

	message, err := h.messageService.GetByID(c.Request.Context(), messageID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if message == nil {
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusOK, message)
}

// UpdateText 修改訊息內容，成功時 body 為更新的筆數
func (h *MessageHandler) UpdateText(c *gin.Context) {
	messageID, exists, ok := parseID(c, "messageId")
	if !ok {
		return
	}
	if !exists {
		abortWithError(c, service.ErrNotFound)
		return
	}

	var input models.Message
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	rows, err := h.messageService.UpdateText(c.Request.Context(), messageID, input.MessageText)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.String(http.StatusOK, strconv.FormatInt(rows, 10))
}

// Delete 刪除訊息；訊息不存在時回應 200 且 body 為空
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, exists, ok := parseID(c, "messageId")
	if !ok {
		return
	}
	if !exists {
		c.Status(http.StatusOK)
		return
	}

	count, err := h.messageService.DeleteByID(c.Request.Context(), messageID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if count == 0 {
		c.Status(http.StatusOK)
		return
	}

	c.String(http.StatusOK, strconv.FormatInt(count, 10))
}
