package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicbook/clinic-app/backend"
	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/middleware"
	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/persist"
	"github.com/clinicbook/clinic-app/storage"
	"github.com/clinicbook/clinic-app/store"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	st := store.NewStore()
	medium := storage.NewMemoryStorage()
	mock := backend.NewMockBackend(st, persist.NewCodec(st, medium), bus.NewBroker())
	mock.MinLatency = 0
	mock.MaxLatency = 0
	t.Cleanup(mock.Close)
	SetBackend(mock)

	app := fiber.New()
	app.Post("/auth/register", Register)
	app.Post("/auth/login", Login)
	app.Get("/auth/me", middleware.Protected(), GetUserProfile)
	app.Post("/appointments", middleware.Protected(), middleware.RequireRole("PATIENT", "ADMIN"), CreateAppointment)
	app.Get("/notifications", middleware.Protected(), GetNotifications)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, email string, role models.Role) (token, userID string) {
	t.Helper()
	resp, _ := doJSON(t, app, "POST", "/auth/register", "", fiber.Map{
		"email":      email,
		"password":   "secret123",
		"first_name": "Test",
		"role":       role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/auth/login", "", fiber.Map{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]interface{})
	return token, user["id"].(string)
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := newTestApp(t)
	token, userID := registerAndLogin(t, app, "me@clinic.test", models.RolePatient)

	resp, body := doJSON(t, app, "GET", "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, userID, body["id"])
	assert.Equal(t, "me@clinic.test", body["email"])
	assert.Empty(t, body["password"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app, "dup@clinic.test", models.RolePatient)

	resp, _ := doJSON(t, app, "POST", "/auth/register", "", fiber.Map{
		"email":      "dup@clinic.test",
		"password":   "secret123",
		"first_name": "Again",
		"role":       models.RolePatient,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newTestApp(t)
	registerAndLogin(t, app, "bad@clinic.test", models.RolePatient)

	resp, _ := doJSON(t, app, "POST", "/auth/login", "", fiber.Map{
		"email":    "bad@clinic.test",
		"password": "not-it",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, "GET", "/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBookingOverHTTP(t *testing.T) {
	app := newTestApp(t)
	patientToken, _ := registerAndLogin(t, app, "hp@clinic.test", models.RolePatient)
	doctorToken, doctorID := registerAndLogin(t, app, "hd@clinic.test", models.RoleDoctor)

	resp, body := doJSON(t, app, "POST", "/appointments", patientToken, fiber.Map{
		"doctor_id":        doctorID,
		"appointment_date": "2026-09-14",
		"start_time":       "09:00",
		"end_time":         "09:30",
		"reason":           "Checkup",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(models.StatusPending), body["status"])

	// the doctor's role is rejected on the booking route
	resp, _ = doJSON(t, app, "POST", "/appointments", doctorToken, fiber.Map{
		"doctor_id":        doctorID,
		"appointment_date": "2026-09-14",
		"start_time":       "10:00",
		"end_time":         "10:30",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// booking produced a notification for the doctor
	resp, _ = doJSON(t, app, "GET", "/notifications", doctorToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
