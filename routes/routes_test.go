package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"schoolgear/app"
	"schoolgear/auth"
	"schoolgear/db"
	"schoolgear/models"
	"schoolgear/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full router against a throwaway sqlite database and an
// in-process redis, so every test exercises the real middleware chain.
func newTestApp(t *testing.T) (*app.App, *db.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "portal.db") + "?_pragma=busy_timeout(10000)"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	})

	a := &app.App{
		Router: gin.New(),
		DB:     conn,
		RDB:    rdb,
		Log:    zerolog.Nop(),
		Config: app.Config{
			JWTSecret:      "test-secret",
			RateLimitRPS:   10000,
			RateLimitBurst: 10000,
		},
		Tokens: session.NewTokenStore(rdb),
		Issuer: auth.NewTokenIssuer("test-secret"),
	}
	RegisterRoutes(a.Router, a)
	return a, db.NewRepo(conn)
}

func createAccount(t *testing.T, r *db.Repo, username, password, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     username + " Test",
		Role:         role,
		Email:        username + "@school.test",
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func do(t *testing.T, a *app.App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, a *app.App, username, password string) string {
	t.Helper()
	w := do(t, a, http.MethodPost, "/users/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "bearer", out.TokenType)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestHealthz(t *testing.T) {
	a, _ := newTestApp(t)
	w := do(t, a, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)

	token := login(t, a, "alice", "password123")

	w := do(t, a, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := jsonBody(t, w)
	assert.Equal(t, "alice", me["username"])
	assert.Nil(t, me["passwordHash"], "hash must never be serialized")

	w = do(t, a, http.MethodPost, "/users/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	token := login(t, a, "alice", "password123")

	require.Equal(t, http.StatusOK, do(t, a, http.MethodGet, "/users/me", token, nil).Code)
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, "/users/logout", token, nil).Code)

	// The same token is dead from here on.
	assert.Equal(t, http.StatusUnauthorized, do(t, a, http.MethodGet, "/users/me", token, nil).Code)
}

func TestRoleEnforcement(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	admin := login(t, a, "root", "password123")

	// Admin-only surfaces refuse a student.
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/equipment"},
		{http.MethodPost, "/categories"},
		{http.MethodPost, "/users/signup"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/analytics/usage/top-requested"},
		{http.MethodGet, "/analytics/usage/average-duration"},
	} {
		w := do(t, a, tc.method, tc.path, student, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}

	// Staff-only lending surfaces refuse a student too.
	for _, path := range []string{"/lending/approve/1", "/lending/reject/1", "/lending/return/1"} {
		w := do(t, a, http.MethodPost, path, student, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	assert.Equal(t, http.StatusForbidden, do(t, a, http.MethodGet, "/lending/overdue", student, nil).Code)

	// Admins review but do not borrow.
	w := do(t, a, http.MethodPost, "/lending/request", admin, gin.H{
		"equipmentId": 1, "quantity": 1, "expectedReturnDate": "2026-09-15",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignup(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	admin := login(t, a, "root", "password123")

	body := gin.H{
		"username": "bob",
		"password": "password123",
		"fullName": "Bob Staff",
		"email":    "bob@school.test",
		"role":     models.RoleStaff,
	}
	w := do(t, a, http.MethodPost, "/users/signup", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Duplicate username.
	assert.Equal(t, http.StatusConflict, do(t, a, http.MethodPost, "/users/signup", admin, body).Code)

	// Unknown role.
	body["username"], body["email"], body["role"] = "carol", "carol@school.test", "Principal"
	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodPost, "/users/signup", admin, body).Code)

	// The new staff account can log in.
	login(t, a, "bob", "password123")
}

func TestDeleteUserRevokesSessions(t *testing.T) {
	a, repo := newTestApp(t)
	alice := createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	admin := login(t, a, "root", "password123")

	w := do(t, a, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, do(t, a, http.MethodGet, "/users/me", student, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), admin, nil).Code)
}

// seedCatalog creates a category and one equipment row through the admin API.
func seedCatalog(t *testing.T, a *app.App, admin, name string, total int) uint {
	t.Helper()
	w := do(t, a, http.MethodPost, "/categories", admin, gin.H{"categoryName": name + " category"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := uint(jsonBody(t, w)["categoryId"].(float64))

	w = do(t, a, http.MethodPost, "/equipment", admin, gin.H{
		"name": name, "categoryId": catID, "totalQuantity": total,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(jsonBody(t, w)["equipmentId"].(float64))
}

func TestLendingLifecycle(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "bob", "password123", models.RoleStaff)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	staff := login(t, a, "bob", "password123")
	admin := login(t, a, "root", "password123")

	camID := seedCatalog(t, a, admin, "Camera", 3)
	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	w := do(t, a, http.MethodPost, "/lending/request", student, gin.H{
		"equipmentId": camID, "quantity": 2, "expectedReturnDate": due,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reqID := uint(jsonBody(t, w)["requestId"].(float64))

	// A request beyond stock is refused up front.
	w = do(t, a, http.MethodPost, "/lending/request", student, gin.H{
		"equipmentId": camID, "quantity": 4, "expectedReturnDate": due,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient quantity available", jsonBody(t, w)["error"])

	approvePath := fmt.Sprintf("/lending/approve/%d", reqID)
	w = do(t, a, http.MethodPost, approvePath, staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Approving again finds no pending request.
	w = do(t, a, http.MethodPost, approvePath, staff, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "request not found or not in 'Pending' status", jsonBody(t, w)["error"])

	w = do(t, a, http.MethodGet, fmt.Sprintf("/equipment/%d", camID), student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), jsonBody(t, w)["availableQuantity"])

	returnPath := fmt.Sprintf("/lending/return/%d", reqID)
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, returnPath, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodPost, returnPath, staff, nil).Code)

	w = do(t, a, http.MethodGet, fmt.Sprintf("/equipment/%d", camID), student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), jsonBody(t, w)["availableQuantity"])

	// The student sees their own history.
	w = do(t, a, http.MethodGet, "/lending/mine", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := jsonBody(t, w)["items"].([]any)
	assert.Len(t, items, 1)
}

func TestRejectRequest(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "bob", "password123", models.RoleStaff)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	staff := login(t, a, "bob", "password123")
	admin := login(t, a, "root", "password123")

	camID := seedCatalog(t, a, admin, "Camera", 3)
	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	w := do(t, a, http.MethodPost, "/lending/request", student, gin.H{
		"equipmentId": camID, "quantity": 1, "expectedReturnDate": due,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	reqID := uint(jsonBody(t, w)["requestId"].(float64))

	rejectPath := fmt.Sprintf("/lending/reject/%d", reqID)

	// Malformed and over-long bodies are refused; the request stays Pending.
	w = do(t, a, http.MethodPost, rejectPath, staff, gin.H{"reason": 123})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, a, http.MethodPost, rejectPath, staff, gin.H{"reason": strings.Repeat("x", 1001)})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, a, http.MethodPost, rejectPath, staff, gin.H{"reason": "Damaged on inspection"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Damaged on inspection", jsonBody(t, w)["reason"])

	// Terminal state: no second rejection, no approval, no return.
	assert.Equal(t, http.StatusBadRequest, do(t, a, http.MethodPost, rejectPath, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodPost, fmt.Sprintf("/lending/approve/%d", reqID), staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodPost, fmt.Sprintf("/lending/return/%d", reqID), staff, nil).Code)

	// Rejection never touched stock.
	w = do(t, a, http.MethodGet, fmt.Sprintf("/equipment/%d", camID), student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), jsonBody(t, w)["availableQuantity"])
}

func TestListRequestsFilter(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "bob", "password123", models.RoleStaff)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	staff := login(t, a, "bob", "password123")
	admin := login(t, a, "root", "password123")

	camID := seedCatalog(t, a, admin, "Camera", 5)
	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	for i := 0; i < 2; i++ {
		w := do(t, a, http.MethodPost, "/lending/request", student, gin.H{
			"equipmentId": camID, "quantity": 1, "expectedReturnDate": due,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, a, http.MethodGet, "/lending?status=Pending", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["items"].([]any), 2)

	w = do(t, a, http.MethodGet, "/lending?status=Issued", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["items"].([]any), 0)

	w = do(t, a, http.MethodGet, "/lending?status=Bogus", staff, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown status", jsonBody(t, w)["error"])
}

func TestRepairFlow(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "bob", "password123", models.RoleStaff)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	staff := login(t, a, "bob", "password123")
	admin := login(t, a, "root", "password123")

	camID := seedCatalog(t, a, admin, "Camera", 3)

	w := do(t, a, http.MethodPost, "/repairs", student, gin.H{
		"equipmentId": camID, "damageDescription": "Cracked lens mount",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	logID := uint(jsonBody(t, w)["logId"].(float64))

	// Listing is staff-only.
	assert.Equal(t, http.StatusForbidden, do(t, a, http.MethodGet, "/repairs", student, nil).Code)

	w = do(t, a, http.MethodGet, "/repairs?open=true", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["items"].([]any), 1)

	completePath := fmt.Sprintf("/repairs/%d/complete", logID)
	w = do(t, a, http.MethodPut, completePath, staff, gin.H{"repairCost": 42.50, "repairedBy": "Tech shop"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Completed logs are immutable.
	w = do(t, a, http.MethodPut, completePath, staff, gin.H{"repairCost": 10, "repairedBy": "Someone"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "repair log not found or already completed", jsonBody(t, w)["error"])

	w = do(t, a, http.MethodGet, "/repairs?open=true", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["items"].([]any), 0)
}

func TestAnalyticsEndpoints(t *testing.T) {
	a, repo := newTestApp(t)
	createAccount(t, repo, "alice", "password123", models.RoleStudent)
	createAccount(t, repo, "root", "password123", models.RoleAdmin)
	student := login(t, a, "alice", "password123")
	admin := login(t, a, "root", "password123")

	camID := seedCatalog(t, a, admin, "Camera", 5)
	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	w := do(t, a, http.MethodPost, "/lending/request", student, gin.H{
		"equipmentId": camID, "quantity": 3, "expectedReturnDate": due,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, a, http.MethodGet, "/analytics/usage/top-requested", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := jsonBody(t, w)["items"].([]any)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, "Camera", row["equipmentName"])
	assert.Equal(t, float64(3), row["totalUnitsBorrowed"])

	// No returned loans yet.
	w = do(t, a, http.MethodGet, "/analytics/usage/average-duration", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, jsonBody(t, w)["items"].([]any), 0)
}
