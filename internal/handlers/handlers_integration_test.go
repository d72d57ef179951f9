package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mandi/internal/config"
	"mandi/internal/database"
	"mandi/internal/metrics"
	"mandi/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp builds the full application on a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	_, err = database.SeedCategories(t.Context(), db)
	require.NoError(t, err)

	cfg := &config.Config{
		JWT:       config.JWTConfig{Secret: "test_jwt_secret", TTL: time.Hour},
		Discovery: config.DiscoveryConfig{RadiusKm: 10},
		Chat:      config.ChatConfig{RatePerSecond: 100, Burst: 100, MaxMessageLength: 200},
	}
	return server.New(server.Deps{Config: cfg, DB: db, Metrics: metrics.New("test")})
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []any
		require.NoError(t, json.Unmarshal(raw, &list), string(raw))
		out["items"] = list
	}
	return resp.StatusCode, out
}

type account struct {
	token     string
	profileID string
}

// signUp registers a user, logs in and creates a profile with the given role.
func signUp(t *testing.T, app *fiber.App, name, role string, location ...float64) account {
	t.Helper()
	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": name,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)

	profile := map[string]any{
		"user_type":      role,
		"business_name":  name + " Traders",
		"contact_person": name,
		"city":           "Delhi",
	}
	if len(location) == 2 {
		profile["latitude"], profile["longitude"] = location[0], location[1]
	}
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/profiles", token, profile)
	require.Equal(t, http.StatusCreated, status, body)
	return account{token: token, profileID: body["id"].(string)}
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["rabbitmq"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)
	user := map[string]string{"username": "testuser", "email": "test@example.com", "password": "password123"}

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", user)
	assert.Equal(t, http.StatusCreated, status)
	registered := body["user"].(map[string]any)
	assert.Equal(t, "testuser", registered["username"])
	assert.NotContains(t, registered, "password")

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", user)
	assert.Equal(t, http.StatusConflict, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "email")

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "testuser", "password": "password123"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "testuser", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/profiles/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileIsUniquePerUser(t *testing.T) {
	app := setupApp(t)
	vendor := signUp(t, app, "asha", "vendor")

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/profiles", vendor.token, map[string]any{
		"user_type": "vendor", "business_name": "Second", "contact_person": "Asha",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/profiles/me", vendor.token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, vendor.profileID, body["id"])
}

func TestChatEndpoints(t *testing.T) {
	app := setupApp(t)
	vendor := signUp(t, app, "asha", "vendor")
	supplier := signUp(t, app, "ravi", "supplier")
	outsider := signUp(t, app, "meera", "vendor")

	status, _ := doJSON(t, app, http.MethodGet, "/chat-rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = doJSON(t, app, http.MethodPost, "/send-message", "", map[string]string{"chatRoomId": "x", "message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/chat-rooms", vendor.token, map[string]string{"supplier_id": supplier.profileID})
	require.Equal(t, http.StatusCreated, status, body)
	roomID := body["chatRoom"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/chat-rooms", vendor.token, map[string]string{"supplier_id": supplier.profileID})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, roomID, body["chatRoom"].(map[string]any)["id"])

	status, body = doJSON(t, app, http.MethodPost, "/send-message", vendor.token, map[string]string{"chatRoomId": roomID, "message": "need 20kg onions"})
	require.Equal(t, http.StatusOK, status, body)
	msg := body["message"].(map[string]any)
	assert.Equal(t, "need 20kg onions", msg["message"])
	assert.Equal(t, vendor.profileID, msg["sender_id"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/send-message", supplier.token, map[string]string{"chatRoomId": roomID, "message": "40/kg"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/send-message", vendor.token, map[string]string{"chatRoomId": uuid.NewString(), "message": "hello"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodPost, "/send-message", outsider.token, map[string]string{"chatRoomId": roomID, "message": "hello"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodPost, "/send-message", vendor.token, map[string]string{"chatRoomId": roomID, "message": "  "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodGet, "/chat-rooms", supplier.token, nil)
	require.Equal(t, http.StatusOK, status)
	rooms := body["chatRooms"].([]any)
	require.Len(t, rooms, 1)
	room := rooms[0].(map[string]any)
	assert.Equal(t, "asha Traders", room["vendor"].(map[string]any)["business_name"])
	assert.Equal(t, "ravi", room["supplier"].(map[string]any)["contact_person"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/chat-rooms/"+roomID+"/messages", supplier.token, nil)
	require.Equal(t, http.StatusOK, status)
	history := body["messages"].([]any)
	require.Len(t, history, 2)
	assert.Equal(t, "need 20kg onions", history[0].(map[string]any)["message"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/chat-rooms/"+roomID+"/read", supplier.token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["updated"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/chat-rooms/"+roomID+"/stream", outsider.token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func firstCategory(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodGet, "/api/v1/categories", token, nil)
	require.Equal(t, http.StatusOK, status)
	categories := body["items"].([]any)
	require.NotEmpty(t, categories)
	return categories[0].(map[string]any)["id"].(string)
}

func TestOrderLifecycle(t *testing.T) {
	app := setupApp(t)
	vendor := signUp(t, app, "asha", "vendor")
	supplier := signUp(t, app, "ravi", "supplier")
	categoryID := firstCategory(t, app, supplier.token)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/products", vendor.token, map[string]any{
		"category_id": categoryID, "name": "Onion", "price_per_unit": 40, "unit": "kg", "stock_quantity": 10, "minimum_order_quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/products", supplier.token, map[string]any{
		"category_id": categoryID, "name": "Onion", "price_per_unit": 40.5, "unit": "kg", "stock_quantity": 10, "minimum_order_quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status, body)
	productID := body["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/orders", vendor.token, map[string]any{
		"supplier_id":      supplier.profileID,
		"delivery_address": "Chandni Chowk",
		"items":            []map[string]any{{"product_id": productID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	orderID := body["id"].(string)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, 162.0, body["total_amount"])

	path := fmt.Sprintf("/api/v1/orders/%s/status", orderID)
	status, _ = doJSON(t, app, http.MethodPatch, path, vendor.token, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = doJSON(t, app, http.MethodPatch, path, supplier.token, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, []any{"preparing"}, body["next_statuses"])

	status, _ = doJSON(t, app, http.MethodPatch, path, supplier.token, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, status, "double confirm is rejected")

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, vendor.token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 6, body["stock_quantity"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, vendor.token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["next_statuses"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/orders?status=confirmed", supplier.token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
}

func TestNearbySuppliers(t *testing.T) {
	app := setupApp(t)
	vendor := signUp(t, app, "asha", "vendor")
	signUp(t, app, "ravi", "supplier", 28.7041, 77.1025)
	signUp(t, app, "kiran", "supplier")

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/suppliers/nearby?lat=28.6139&lng=77.2090&radius=20", vendor.token, nil)
	require.Equal(t, http.StatusOK, status, body)
	found := body["suppliers"].([]any)
	require.Len(t, found, 1)
	first := found[0].(map[string]any)
	assert.Equal(t, 14.4, first["distance_km"])
	assert.Equal(t, true, first["distance_known"])
	assert.Equal(t, "ravi Traders", first["supplier"].(map[string]any)["business_name"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/suppliers/nearby?lat=28.6139&lng=77.2090&radius=10", vendor.token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["suppliers"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/suppliers/nearby?lat=28.6139&lng=77.2090&radius=0", vendor.token, nil)
	require.Equal(t, http.StatusOK, status)
	all := body["suppliers"].([]any)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].(map[string]any)["distance_km"], "suppliers without a location sort last")

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/suppliers/nearby", vendor.token, nil)
	assert.Equal(t, http.StatusBadRequest, status, "no query location and no profile location")

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/suppliers/nearby?lat=abc&lng=1", vendor.token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
