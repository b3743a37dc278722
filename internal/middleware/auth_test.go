package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damoang/angple-messenger/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(mgr *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(mgr))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "nickname": GetNickname(c)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	mgr := jwt.NewManager("test-secret", 60)
	r := newAuthRouter(mgr)

	token, err := mgr.GenerateToken("alice", "앨리스")
	require.NoError(t, err)

	t.Run("유효한 토큰", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"alice","nickname":"앨리스"}`, w.Body.String())
	})

	t.Run("헤더 없음", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("잘못된 형식", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("다른 키로 서명된 토큰", func(t *testing.T) {
		other, err := jwt.NewManager("other-secret", 60).GenerateToken("alice", "")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("일반 요청은 쿼리 토큰을 받지 않는다", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("웹소켓 핸드셰이크는 쿼리 토큰 허용", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRedactToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/messages?token=secret&x=1", nil)
	got := redactToken(req.URL.Query())
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "x=1")
}
