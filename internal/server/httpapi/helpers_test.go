package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/media"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/dmitrijs2005/gophchat/internal/server/session"
	"github.com/dmitrijs2005/gophchat/internal/server/ws"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testOrigin = "http://localhost:5173"
	pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
)

type stack struct {
	srv      *httptest.Server
	api      *Server
	tokens   *auth.TokenManager
	registry *registry.Registry
	store    *media.MemoryStore
	realtime *ws.Handler
}

func newStack(t *testing.T) *stack {
	t.Helper()

	logger := logging.NewNopLogger()
	repos := repomanager.NewMemoryRepositoryManager()
	tokens := auth.NewTokenManager("test-secret", 7*24*time.Hour)
	store := media.NewMemoryStore("http://media.test")
	reg := registry.New()
	gate := session.NewGate(tokens, repos.Users(repos.Conn()))

	us := services.NewUserService(repos, tokens, auth.NewPasswordHasherWithCost(bcrypt.MinCost), store, logger)
	ms := services.NewMessageService(repos, reg, store, logger)
	rt := ws.NewHandler(gate, reg, []string{testOrigin}, logger)

	api := NewServer(Options{
		AllowedOrigins: []string{testOrigin},
		CookieSecure:   false,
		CookieMaxAge:   tokens.Validity(),
	}, logger, us, ms, gate, rt)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &stack{srv: srv, api: api, tokens: tokens, registry: reg, store: store, realtime: rt}
}

// user is a test client with its own cookie jar.
type user struct {
	t      *testing.T
	s      *stack
	client *http.Client
	model  models.User
}

func (s *stack) newClient(t *testing.T) *user {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &user{t: t, s: s, client: &http.Client{Jar: jar}}
}

func (s *stack) signup(t *testing.T, name, email string) *user {
	t.Helper()
	u := s.newClient(t)
	resp, body := u.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &u.model))
	return u
}

func (u *user) do(method, path string, payload any) (*http.Response, []byte) {
	u.t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(u.t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, u.s.srv.URL+path, body)
	require.NoError(u.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := u.client.Do(req)
	require.NoError(u.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(u.t, err)
	return resp, data
}

func (u *user) sessionCookie() string {
	base, _ := url.Parse(u.s.srv.URL)
	for _, c := range u.client.Jar.Cookies(base) {
		if c.Name == "jwt" {
			return c.Value
		}
	}
	return ""
}

// connect opens the user's websocket using the session cookie.
func (u *user) connect() *websocket.Conn {
	u.t.Helper()
	hdr := http.Header{}
	hdr.Set("Cookie", "jwt="+u.sessionCookie())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(u.s.srv.URL, "http")+"/ws", hdr)
	require.NoError(u.t, err)
	u.t.Cleanup(func() { conn.Close() })
	return conn
}

type wireEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

// nextEvent skips events until one named name arrives.
func nextEvent(t *testing.T, conn *websocket.Conn, name string) wireEvent {
	t.Helper()
	for {
		ev := readEvent(t, conn)
		if ev.Name == name {
			return ev
		}
	}
}
