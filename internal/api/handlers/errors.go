package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social_media/internal/service"
)

// statusFor 將 service 層錯誤轉為 HTTP 狀態碼
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrPersistence):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 以對應狀態碼回應，body 留空
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatus(statusFor(err))
}

// parseID 解析路徑中的數字 ID，非數字時回應 400。
// 負數或超出主鍵範圍的 ID 仍是合法請求，exists 為 false 表示必定查無資料
func parseID(c *gin.Context, name string) (id uint, exists bool, ok bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		c.AbortWithStatus(http.StatusBadRequest)
		return 0, false, false
	}
	if err != nil || n < 1 || n > math.MaxUint32 {
		return 0, false, true
	}
	return uint(n), true, true
}
