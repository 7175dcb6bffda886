package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"social_media/internal/middleware"
	"social_media/internal/repository"
	"social_media/internal/service"
	"social_media/internal/storage"
	"social_media/pkg/config"
	"social_media/pkg/logger"
)

func newTestServer(t *testing.T) (*gin.Engine, *service.Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(config.DBConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	services := service.NewServices(repository.NewRepositories(db), nil, log)
	router := NewRouter(services, middleware.NewMetrics("test"), log)
	return router, services
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, router *gin.Engine, username string) int64 {
	t.Helper()
	rec := doJSONRequest(t, router, http.MethodPost, "/register", map[string]string{
		"username": username,
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gjson.Get(rec.Body.String(), "accountId").Int()
}

func postMessage(t *testing.T, router *gin.Engine, postedBy int64, text string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONRequest(t, router, http.MethodPost, "/messages", map[string]interface{}{
		"postedBy":        postedBy,
		"messageText":     text,
		"timePostedEpoch": 1669947792,
	})
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSONRequest(t, router, http.MethodPost, "/register", map[string]string{"username": "", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodPost, "/register", map[string]string{"username": "user", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, router, http.MethodPost, "/register", map[string]string{"username": "user", "password": "abcd"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotZero(t, gjson.Get(body, "accountId").Int())
	assert.Equal(t, "user", gjson.Get(body, "username").String())
	assert.Equal(t, "abcd", gjson.Get(body, "password").String())

	rec = doJSONRequest(t, router, http.MethodPost, "/register", map[string]string{"username": "user", "password": "abcdef"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRegisterMalformedBody(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "testuser1")

	rec := doJSONRequest(t, router, http.MethodPost, "/login", map[string]string{"username": "testuser1", "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gjson.Get(rec.Body.String(), "accountId").Int())
	assert.Equal(t, "testuser1", gjson.Get(rec.Body.String(), "username").String())

	rec = doJSONRequest(t, router, http.MethodPost, "/login", map[string]string{"username": "testuser1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCreateMessageEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "poster")

	rec := postMessage(t, router, id, strings.Repeat("x", 254))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMessage(t, router, id, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMessage(t, router, id+100, "orphan")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMessage(t, router, id, strings.Repeat("x", 253))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotZero(t, gjson.Get(body, "messageId").Int())
	assert.Equal(t, id, gjson.Get(body, "postedBy").Int())
	assert.EqualValues(t, 1669947792, gjson.Get(body, "timePostedEpoch").Int())
}

func TestListMessagesEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSONRequest(t, router, http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	alice := register(t, router, "alice")
	bob := register(t, router, "bob")
	require.Equal(t, http.StatusOK, postMessage(t, router, alice, "a1").Code)
	require.Equal(t, http.StatusOK, postMessage(t, router, bob, "b1").Code)
	require.Equal(t, http.StatusOK, postMessage(t, router, alice, "a2").Code)

	rec = doJSONRequest(t, router, http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, gjson.Get(rec.Body.String(), "#").Int())

	rec = doJSONRequest(t, router, http.MethodGet, fmt.Sprintf("/accounts/%d/messages", alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	texts := gjson.Get(rec.Body.String(), "#.messageText").Array()
	require.Len(t, texts, 2)
	assert.Equal(t, "a1", texts[0].String())
	assert.Equal(t, "a2", texts[1].String())

	rec = doJSONRequest(t, router, http.MethodGet, "/accounts/9999/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodGet, "/accounts/abc/messages", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessageEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "poster")
	created := postMessage(t, router, id, "findme")
	messageID := gjson.Get(created.Body.String(), "messageId").Int()

	rec := doJSONRequest(t, router, http.MethodGet, fmt.Sprintf("/messages/%d", messageID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "findme", gjson.Get(rec.Body.String(), "messageText").String())

	rec = doJSONRequest(t, router, http.MethodGet, "/messages/424242", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestPatchMessageEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "poster")
	created := postMessage(t, router, id, "original")
	messageID := gjson.Get(created.Body.String(), "messageId").Int()
	path := fmt.Sprintf("/messages/%d", messageID)

	rec := doJSONRequest(t, router, http.MethodPatch, "/messages/424242", map[string]string{"messageText": "new"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, router, http.MethodPatch, path, map[string]string{"messageText": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, router, http.MethodPatch, path, map[string]string{"messageText": strings.Repeat("y", 254)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, router, http.MethodPatch, path, map[string]string{"messageText": "updated"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodGet, path, nil)
	assert.Equal(t, "updated", gjson.Get(rec.Body.String(), "messageText").String())
}

func TestDeleteMessageEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "poster")
	created := postMessage(t, router, id, "doomed")
	path := fmt.Sprintf("/messages/%d", gjson.Get(created.Body.String(), "messageId").Int())

	rec := doJSONRequest(t, router, http.MethodDelete, "/messages/424242", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodDelete, "/messages/xyz", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	rec := doJSONRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())

	rec = doJSONRequest(t, router, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSONRequest(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestFeedReceivesMessageEvents(t *testing.T) {
	router, services := newTestServer(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	id := register(t, router, "streamer")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/messages/ws?accountId=%d", id)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return services.Feed.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	created := postMessage(t, router, id, "live")
	require.Equal(t, http.StatusOK, created.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "created", gjson.GetBytes(frame, "type").String())
	assert.Equal(t, "live", gjson.GetBytes(frame, "message.messageText").String())

	rec := doJSONRequest(t, router, http.MethodGet, "/messages/ws?accountId=bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImpossibleIDsAreAbsent(t *testing.T) {
	router, _ := newTestServer(t)
	id := register(t, router, "poster")
	require.Equal(t, http.StatusOK, postMessage(t, router, id, "kept").Code)

	for _, path := range []string{"/messages/-1", "/messages/0", "/messages/4294967296", "/messages/99999999999999999999"} {
		rec := doJSONRequest(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)

		rec = doJSONRequest(t, router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)

		rec = doJSONRequest(t, router, http.MethodPatch, path, map[string]string{"messageText": "new"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := doJSONRequest(t, router, http.MethodGet, "/accounts/-1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doJSONRequest(t, router, http.MethodGet, "/messages", nil)
	assert.EqualValues(t, 1, gjson.Get(rec.Body.String(), "#").Int())
}
