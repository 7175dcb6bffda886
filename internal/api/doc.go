// Package api 處理 HTTP 請求路由和處理。
//
// 這個包包含了所有的 HTTP 處理器（handlers）。
// 它負責將 HTTP 請求轉換為適當的服務調用，並將服務回傳的錯誤轉換為對應的狀態碼。
package api
