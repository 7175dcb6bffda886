package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social_media/internal/models"
	"social_media/internal/service"
)

// AccountHandler 處理帳號註冊與登入
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler 創建一個新的 AccountHandler 實例
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Register 處理用戶註冊
func (h *AccountHandler) Register(c *gin.Context) {
	var input models.Account
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// Login 處理用戶登入
func (h *AccountHandler) Login(c *gin.Context) {
	var input models.Account
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	account, err := h.accountService.Login(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
