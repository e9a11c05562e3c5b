package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/testutil"
)

type stubUserRepo struct {
	users []models.User
}

func (s *stubUserRepo) FindByID(id uint) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], nil
		}
	}
	return nil, testutil.RecordNotFound()
}

func (s *stubUserRepo) FindByUsername(username string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Username == username {
			return &s.users[i], nil
		}
	}
	return nil, testutil.RecordNotFound()
}

func (s *stubUserRepo) RecordLogin(userID uint, sessionID string) error { return nil }

func (s *stubUserRepo) RecordLogout(userID uint) error { return nil }

func (s *stubUserRepo) ListActive() ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestUserList(t *testing.T) {
	repo := &stubUserRepo{users: []models.User{
		{ID: 1, Username: "alice", Name: "Alice", Status: "active", Password: "hash"},
		{ID: 2, Username: "bob", Name: "Bob", Status: "disabled", Password: "hash"},
		{ID: 3, Username: "carol", Name: "Carol", Status: "active", Password: "hash"},
	}}
	h := NewUserHandler(repo, nil, nil)

	app := fiber.New()
	app.Get("/users", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return h.List(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var decoded struct {
		Users []map[string]interface{} `json:"users"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("malformed body %s: %v", body, err)
	}
	if len(decoded.Users) != 2 {
		t.Fatalf("got %d users, want 2 active", len(decoded.Users))
	}
	for _, u := range decoded.Users {
		if _, leaked := u["password"]; leaked {
			t.Error("credential leaked in directory response")
		}
	}
}

func TestUserListRequiresAuth(t *testing.T) {
	h := NewUserHandler(&stubUserRepo{}, nil, nil)

	app := fiber.New()
	app.Get("/users", h.List)

	resp, err := app.Test(httptest.NewRequest("GET", "/users", nil))
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401 without identity", resp.StatusCode)
	}
}
