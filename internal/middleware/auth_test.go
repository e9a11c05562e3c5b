package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  uint(42),
		"username": "alice",
		"exp":      time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newAuthTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprintf("%d", c.Locals("userID")))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	os.Setenv("JWT_SECRET", testSecret)
	defer os.Unsetenv("JWT_SECRET")

	app := newAuthTestApp()
	valid := signToken(t, testSecret, time.Hour)

	tests := []struct {
		name       string
		header     string
		cookie     string
		query      string
		wantStatus int
	}{
		{name: "bearer header", header: "Bearer " + valid, wantStatus: 200},
		{name: "cookie", cookie: valid, wantStatus: 200},
		{name: "query parameter", query: valid, wantStatus: 200},
		{name: "missing token", wantStatus: 401},
		{name: "malformed header", header: "Token " + valid, wantStatus: 401},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other-secret", time.Hour), wantStatus: 401},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, -time.Hour), wantStatus: 401},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/protected"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "rc_access", Value: tt.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAuthRequiredSetsIdentity(t *testing.T) {
	os.Setenv("JWT_SECRET", testSecret)
	defer os.Unsetenv("JWT_SECRET")

	app := fiber.New()
	var gotUserID uint
	var gotUsername string
	app.Get("/whoami", AuthRequired(), func(c *fiber.Ctx) error {
		gotUserID, _ = c.Locals("userID").(uint)
		gotUsername, _ = c.Locals("username").(string)
		return c.SendStatus(200)
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Hour))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotUserID != 42 {
		t.Errorf("userID = %d, want 42", gotUserID)
	}
	if gotUsername != "alice" {
		t.Errorf("username = %q, want alice", gotUsername)
	}
}
