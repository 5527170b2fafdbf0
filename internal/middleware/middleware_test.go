package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogserver/internal/managers/mocks"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
)

func TestInjectTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(InjectTrace())
	router.GET("/", func(c *gin.Context) {
		traceId, _ := c.Value(utils.TraceIdKey.String()).(string)
		c.String(http.StatusOK, traceId)
	})

	t.Run("Generates a trace id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		router.ServeHTTP(recorder, request)

		assert.NotEmpty(t, recorder.Body.String())
		assert.Equal(t, recorder.Body.String(), recorder.Header().Get("X-Trace-Id"))
	})

	t.Run("Keeps a caller-provided trace id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Trace-Id", "caller-trace")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, "caller-trace", recorder.Body.String())
	})
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newAuthRouter := func(jwtMock *mocks.MockJwtManager, databaseMock *mocks.MockDatabaseManager) *gin.Engine {
		router := gin.New()
		router.GET("/", RequireAuth(jwtMock, databaseMock), func(c *gin.Context) {
			claims := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
			c.String(http.StatusOK, claims["sub"].(string))
		})
		return router
	}

	t.Run("Valid token with a live session passes", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		jwtMock := new(mocks.MockJwtManager)
		jwtMock.On("ValidateJWT", "valid-token").
			Return(jwt.MapClaims{"sub": "user-1", "sid": "session-1"}, nil)

		databaseMock := new(mocks.MockDatabaseManager)
		databaseMock.On("GetPool").Return(pool)

		pool.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM blog_schema\.sessions`).
			WithArgs("session-1", "user-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer valid-token")
		newAuthRouter(jwtMock, databaseMock).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "user-1", recorder.Body.String())
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("Token of a deleted session is rejected", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()

		jwtMock := new(mocks.MockJwtManager)
		jwtMock.On("ValidateJWT", "valid-token").
			Return(jwt.MapClaims{"sub": "user-1", "sid": "session-1"}, nil)

		databaseMock := new(mocks.MockDatabaseManager)
		databaseMock.On("GetPool").Return(pool)

		pool.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM blog_schema\.sessions`).
			WithArgs("session-1", "user-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer valid-token")
		newAuthRouter(jwtMock, databaseMock).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Invalid token is rejected", func(t *testing.T) {
		jwtMock := new(mocks.MockJwtManager)
		jwtMock.On("ValidateJWT", "bad-token").Return(nil, assert.AnError)

		databaseMock := new(mocks.MockDatabaseManager)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer bad-token")
		newAuthRouter(jwtMock, databaseMock).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "ERR-007")
	})

	t.Run("Missing header is rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		newAuthRouter(new(mocks.MockJwtManager), new(mocks.MockDatabaseManager)).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestValidateAndSanitizeStruct(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/", ValidateAndSanitizeStruct(schemas.CreateCommentRequest{}), func(c *gin.Context) {
		payload := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateCommentRequest)
		c.JSON(http.StatusOK, payload)
	})

	t.Run("Sanitizes string fields", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		body := `{"content": "Nice <script>alert(1)</script>post", "stars": 4}`
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Nice post")
		assert.NotContains(t, recorder.Body.String(), "script")
	})

	t.Run("Rejects out-of-range stars", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content": "x", "stars": 9}`))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "ERR-001")
	})

	t.Run("Each request gets its own payload", func(t *testing.T) {
		first := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content": "first", "stars": 1}`))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(first, request)

		second := httptest.NewRecorder()
		request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content": "second", "stars": 2}`))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(second, request)

		assert.Contains(t, first.Body.String(), "first")
		assert.Contains(t, second.Body.String(), "second")
	})
}
