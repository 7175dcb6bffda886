// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 這個包包含請求 ID 與存取日誌、panic 復原以及 Prometheus 指標收集，
// 皆以 gin.HandlerFunc 的形式掛載在路由上。
package middleware
