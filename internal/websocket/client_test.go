package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forms-service/internal/auth"
	"forms-service/internal/config"
	"forms-service/internal/models"
	"forms-service/internal/repositories/memory"
	"forms-service/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func startLiveServer(t *testing.T) (*httptest.Server, *auth.TokenManager) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, u := range []models.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Status: models.StatusActive, Role: models.RoleUser},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Status: models.StatusActive, Role: models.RoleUser},
		{ID: "mallory", Name: "Mallory", Email: "mallory@example.com", Status: models.StatusBlocked, Role: models.RoleUser},
	} {
		require.NoError(t, store.Users.Create(ctx, &u))
	}
	require.NoError(t, store.Templates.Create(ctx, &models.Template{ID: "t1", Title: "Survey", CreatorID: "alice", LikedBy: []string{}}))

	tokens := auth.NewTokenManager(testSecret, time.Hour)
	authenticator := NewAuthenticator(services.NewAuthService(store.Users, tokens, nil, nil), testSecret)
	hub := createTestHub(t)
	dispatcher := NewDispatcher(
		services.NewCommentService(store, nil),
		services.NewLikeService(store, nil),
		NewLocalBroadcaster(hub),
		time.Second,
	)
	upgrader := NewUpgrader(config.CORSConfig{AllowedOrigins: []string{"https://forms.example.com"}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := authenticator.Authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": "Authentication failed"})
			return
		}
		ServeWS(hub, dispatcher, upgrader, w, r, session)
	}))
	t.Cleanup(srv.Close)
	return srv, tokens
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func token(t *testing.T, tokens *auth.TokenManager, userID string) string {
	t.Helper()
	tok, err := tokens.Generate(userID)
	require.NoError(t, err)
	return tok
}

func readFrame(t *testing.T, conn *websocket.Conn) receivedFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f receivedFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestUpgradeRefusedWithoutValidCredential(t *testing.T) {
	srv, tokens := startLiveServer(t)

	expired := auth.NewTokenManager(testSecret, -time.Minute)
	cases := map[string]string{
		"no credential": wsURL(srv),
		"garbage token": wsURL(srv) + "?token=garbage",
		"wrong secret":  wsURL(srv) + "?token=" + token(t, auth.NewTokenManager("other", time.Hour), "alice"),
		"expired token": wsURL(srv) + "?token=" + token(t, expired, "alice"),
		"unknown user":  wsURL(srv) + "?token=" + token(t, tokens, "ghost"),
		"blocked user":  wsURL(srv) + "?token=" + token(t, tokens, "mallory"),
	}
	for name, url := range cases {
		t.Run(name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			assert.Nil(t, conn)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, map[string]string{"status": "fail", "message": "Authentication failed"}, body)
		})
	}
}

func TestCredentialSources(t *testing.T) {
	srv, tokens := startLiveServer(t)
	tok := token(t, tokens, "alice")

	t.Run("signed cookie", func(t *testing.T) {
		header := http.Header{"Cookie": {auth.CookieName + "=" + auth.SignCookie(tok, testSecret)}}
		dial(t, wsURL(srv), header)
	})
	t.Run("plain cookie", func(t *testing.T) {
		header := http.Header{"Cookie": {auth.CookieName + "=" + tok}}
		dial(t, wsURL(srv), header)
	})
	t.Run("bearer header", func(t *testing.T) {
		dial(t, wsURL(srv), http.Header{"Authorization": {"Bearer " + tok}})
	})
	t.Run("tampered signed cookie falls back to token", func(t *testing.T) {
		header := http.Header{"Cookie": {auth.CookieName + "=" + auth.SignCookie(tok, "forged")}}
		dial(t, wsURL(srv)+"?token="+tok, header)
	})
	t.Run("signed cookie wins over query token", func(t *testing.T) {
		header := http.Header{"Cookie": {auth.CookieName + "=" + auth.SignCookie(tok, testSecret)}}
		conn := dial(t, wsURL(srv)+"?token="+token(t, tokens, "bob"), header)
		assert.Equal(t, "Alice", commentAuthor(t, conn))
	})
	t.Run("query token wins over bearer header", func(t *testing.T) {
		header := http.Header{"Authorization": {"Bearer " + token(t, tokens, "bob")}}
		conn := dial(t, wsURL(srv)+"?token="+tok, header)
		assert.Equal(t, "Alice", commentAuthor(t, conn))
	})
}

// commentAuthor joins t1, posts a comment and returns the author name echoed back.
func commentAuthor(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"event": "join-template", "data": "t1"}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "comment:create",
		"data":  map[string]string{"text": "who am I", "templateId": "t1"},
	}))
	frame := readFrame(t, conn)
	require.Equal(t, MessageTypeCommentNew, frame.Event)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(frame.Data, &comment))
	require.NotNil(t, comment.Author)
	return comment.Author.Name
}

func TestUpgradeChecksOrigin(t *testing.T) {
	srv, tokens := startLiveServer(t)
	url := wsURL(srv) + "?token=" + token(t, tokens, "alice")

	dial(t, url, http.Header{"Origin": {"https://forms.example.com"}})
	dial(t, url, nil)

	for _, origin := range []string{
		"https://localhost.attacker.example",
		"https://evil-127.0.0.1.example",
		"http://localhost:3000",
		"https://forms.example.com.attacker.example",
	} {
		t.Run(origin, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {origin}})
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			assert.Nil(t, conn)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestRoomConversationOverTheWire(t *testing.T) {
	srv, tokens := startLiveServer(t)
	alice := dial(t, wsURL(srv)+"?token="+token(t, tokens, "alice"), nil)
	bob := dial(t, wsURL(srv)+"?token="+token(t, tokens, "bob"), nil)

	for _, conn := range []*websocket.Conn{alice, bob} {
		require.NoError(t, conn.WriteJSON(map[string]any{"event": "join-template", "data": "t1"}))
		// Joins run inline on the read loop, so the reply to the next frame proves membership.
		require.NoError(t, conn.WriteJSON(map[string]any{"event": "join-template"}))
		require.Equal(t, MessageTypeError, readFrame(t, conn).Event)
	}

	require.NoError(t, alice.WriteJSON(map[string]any{
		"event": "comment:create",
		"data":  map[string]string{"text": "Hello", "templateId": "t1"},
	}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := readFrame(t, conn)
		require.Equal(t, MessageTypeCommentNew, frame.Event)
		var comment models.Comment
		require.NoError(t, json.Unmarshal(frame.Data, &comment))
		assert.Equal(t, "Hello", comment.Text)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "Alice", comment.Author.Name)
	}

	require.NoError(t, bob.WriteJSON(map[string]any{
		"event": "comment:edit",
		"data":  map[string]string{"commentId": "nope", "text": "x", "templateId": "t1"},
	}))
	frame := readFrame(t, bob)
	assert.Equal(t, MessageTypeCommentError, frame.Event)

	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame = readFrame(t, bob)
	assert.Equal(t, MessageTypeError, frame.Event)
}
