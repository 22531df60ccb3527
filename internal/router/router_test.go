package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/config"
	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dao/mysql/repository/memrepo"
	"vedzeb_server/internal/gateway/websocket"
	"vedzeb_server/internal/handler"
	"vedzeb_server/internal/https_server"
	"vedzeb_server/internal/infrastructure/mq"
	"vedzeb_server/internal/infrastructure/sms"
	"vedzeb_server/internal/infrastructure/storage"
	"vedzeb_server/internal/model"
	"vedzeb_server/internal/router"
	"vedzeb_server/internal/service"
	"vedzeb_server/pkg/rbac"
	"vedzeb_server/pkg/util/jwt"
)

type testServer struct {
	*httptest.Server
	repos *repository.Repositories
	store *memrepo.Store
	hub   *websocket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.InitTrans())

	cfg := &config.Config{}
	cfg.MainConfig.AllowOrigin = []string{"http://localhost:5173"}
	cfg.StorageConfig.LocalPath = t.TempDir()
	cfg.ApplyDefaults()
	cfg.RateLimitConfig.Enabled = false
	jwt.Init("router-test-secret-0123456789abcdef", cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry, cfg.AdminTokenExpiry)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	repos, store := memrepo.New()
	images, err := storage.NewLocalStore(cfg.StorageConfig.LocalPath, cfg.StorageConfig.PublicBaseURL)
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	publisher := mq.NewChannelPublisher(hub)
	t.Cleanup(func() { _ = publisher.Close() })

	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Sms:       sms.NewMockSmsService(),
		Store:     images,
		Publisher: publisher,
	}, cfg)
	handlers := handler.NewHandlers(svc, handler.RealtimeDeps{
		Hub:      hub,
		Upgrader: websocket.NewUpgrader(cfg.MainConfig.AllowOrigin),
		Users:    repos.User,
	}, cfg.StorageConfig.MaxFileSize)

	engine := https_server.Init(cfg, router.NewRouter(handlers, repos.User, nil, cfg.RateLimitConfig))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, repos: repos, store: store, hub: hub}
}

type result struct {
	status int
	body   map[string]any
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) result {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) result {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rsp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rsp.Body.Close()
	raw, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	out := result{status: rsp.StatusCode}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

// login 走完整的验证码流程，返回 access token 和用户 id
func (s *testServer) login(t *testing.T, phone string) (string, string) {
	t.Helper()
	r := s.do(t, http.MethodPost, "/api/auth/send-code", "", gin.H{"phone": phone})
	require.Equal(t, http.StatusOK, r.status, r.body)
	assert.Equal(t, sms.MockCode, r.body["code"])

	r = s.do(t, http.MethodPost, "/api/auth/verify-code", "", gin.H{"phone": phone, "code": sms.MockCode})
	require.Equal(t, http.StatusOK, r.status, r.body)
	user := r.body["user"].(map[string]any)
	return r.body["accessToken"].(string), user["id"].(string)
}

func get(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		cur = cur.(map[string]any)[p]
	}
	return cur
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ok", r.body["status"])

	r = s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "Not found", r.body["error"])
}

func TestValidationEnvelope(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, http.MethodPost, "/api/auth/verify-code", "", gin.H{"phone": "555123456", "code": "12"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Validation error", r.body["error"])
	assert.Contains(t, r.body["details"], "code")

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/auth/send-code", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r = s.send(t, req, "")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Invalid request body", r.body["error"])

	r = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestContactFlow(t *testing.T) {
	s := newTestServer(t)
	ownerTok, ownerID := s.login(t, "555 11 11 11")
	seekerTok, _ := s.login(t, "555 22 22 22")

	me := s.do(t, http.MethodGet, "/api/auth/me", ownerTok, nil)
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, "+995555111111", get(me.body, "user", "phone"))

	created := s.do(t, http.MethodPost, "/api/profiles", ownerTok, gin.H{
		"type":      "searching_sibling",
		"firstName": "Nino",
		"birthYear": 1984,
		"region":    "Tbilisi",
	})
	require.Equal(t, http.StatusCreated, created.status, created.body)
	profileID := get(created.body, "profile", "id").(string)

	search := s.do(t, http.MethodGet, "/api/profiles?region=Tbilisi", "", nil)
	require.Equal(t, http.StatusOK, search.status)
	assert.Len(t, search.body["profiles"], 1)
	assert.EqualValues(t, 1, get(search.body, "pagination", "total"))

	// 档案所有者在线，收到新请求推送
	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=" + ownerTok
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Online(ownerID) }, time.Second, 10*time.Millisecond)

	sent := s.do(t, http.MethodPost, "/api/contact-requests", seekerTok, gin.H{"profileId": profileID, "message": "Hello"})
	require.Equal(t, http.StatusCreated, sent.status, sent.body)
	requestID := get(sent.body, "contactRequest", "id").(string)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev mq.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, mq.EventContactRequestCreated, ev.Type)
	assert.Equal(t, requestID, ev.ContactRequestID)

	dup := s.do(t, http.MethodPost, "/api/contact-requests", seekerTok, gin.H{"profileId": profileID, "message": "Hello again"})
	assert.Equal(t, http.StatusConflict, dup.status)
	self := s.do(t, http.MethodPost, "/api/contact-requests", ownerTok, gin.H{"profileId": profileID})
	assert.Equal(t, http.StatusForbidden, self.status)

	inbox := s.do(t, http.MethodGet, "/api/contact-requests?type=received", ownerTok, nil)
	require.Equal(t, http.StatusOK, inbox.status)
	received := inbox.body["received"].([]any)
	require.Len(t, received, 1)
	first := received[0].(map[string]any)
	assert.Equal(t, "pending", first["status"])
	assert.Len(t, first["messages"], 1)

	forbidden := s.do(t, http.MethodPut, "/api/contact-requests/"+requestID, seekerTok, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, forbidden.status)
	invalid := s.do(t, http.MethodPut, "/api/contact-requests/"+requestID, ownerTok, gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, invalid.status)
	accepted := s.do(t, http.MethodPut, "/api/contact-requests/"+requestID, ownerTok, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, accepted.status)
	assert.Equal(t, "accepted", get(accepted.body, "contactRequest", "status"))
	again := s.do(t, http.MethodPut, "/api/contact-requests/"+requestID, ownerTok, gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, again.status)

	msg := s.do(t, http.MethodPost, "/api/contact-requests/"+requestID+"/messages", ownerTok, gin.H{"content": "Hi, let's talk"})
	require.Equal(t, http.StatusCreated, msg.status, msg.body)

	conv := s.do(t, http.MethodGet, "/api/contact-requests/"+requestID+"/messages", seekerTok, nil)
	require.Equal(t, http.StatusOK, conv.status)
	assert.Len(t, conv.body["messages"], 2)
}

func pngUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	img.Set(1, 1, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", "face.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestPhotoUploadServedLocally(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.login(t, "555 33 33 33")

	created := s.do(t, http.MethodPost, "/api/profiles", tok, gin.H{"type": "searching_child", "firstName": "Luka"})
	require.Equal(t, http.StatusCreated, created.status)
	profileID := get(created.body, "profile", "id").(string)

	body, contentType := pngUpload(t)
	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/profiles/"+profileID+"/photos", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	up := s.send(t, req, tok)
	require.Equal(t, http.StatusCreated, up.status, up.body)
	assert.Equal(t, true, get(up.body, "photo", "isPrimary"))

	url := get(up.body, "photo", "url").(string)
	rsp, err := http.Get(s.URL + url)
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	missing, err := http.NewRequest(http.MethodPost, s.URL+"/api/profiles/"+profileID+"/photos", nil)
	require.NoError(t, err)
	r := s.send(t, missing, tok)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "No photo uploaded", r.body["error"])
}

func TestAdminPermissions(t *testing.T) {
	s := newTestServer(t)
	_, userID := s.login(t, "555 44 44 44")

	for _, u := range []struct {
		phone, name string
		role        rbac.Role
	}{
		{"+995555900001", "moder1", rbac.RoleModer},
		{"+995555900002", "boss1", rbac.RoleAdministrator},
	} {
		name := u.name
		require.NoError(t, s.repos.User.Save(&model.User{Phone: u.phone, Username: &name, RawPassword: "secret123", Role: u.role}))
	}

	bad := s.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"username": "moder1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.status)

	login := func(name string) string {
		r := s.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"username": name, "password": "secret123"})
		require.Equal(t, http.StatusOK, r.status, r.body)
		return r.body["token"].(string)
	}
	moderTok := login("moder1")
	bossTok := login("boss1")

	stats := s.do(t, http.MethodGet, "/api/admin/stats", moderTok, nil)
	require.Equal(t, http.StatusOK, stats.status)
	assert.NotContains(t, stats.body, "totalUsers")

	denied := s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/ban", moderTok, gin.H{"reason": "spam"})
	assert.Equal(t, http.StatusForbidden, denied.status)
	assert.Equal(t, "Permission denied", denied.body["error"])

	banned := s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/ban", bossTok, gin.H{"reason": "spam"})
	require.Equal(t, http.StatusOK, banned.status, banned.body)
	assert.Equal(t, true, get(banned.body, "user", "isBanned"))

	role := s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/role", bossTok, gin.H{"role": "moder"})
	assert.Equal(t, http.StatusForbidden, role.status)

	logs := s.do(t, http.MethodGet, "/api/admin/audit-logs?action=user_banned", bossTok, nil)
	require.Equal(t, http.StatusOK, logs.status)
	assert.Len(t, logs.body["logs"], 1)

	// 用户令牌不能访问后台
	userTok, err := jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	r := s.do(t, http.MethodGet, "/api/admin/me", userTok, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "INVALID_TOKEN", r.body["code"])
}
