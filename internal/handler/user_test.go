package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUserHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.users.Register(rr, jsonRequest(t, http.MethodPost, "/users", map[string]interface{}{
		"name":     "Mike",
		"age":      27,
		"email":    "mike@example.com",
		"password": "red12345",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp AuthResponse
	decodeBody(t, rr, &resp)
	if resp.User.Email != "mike@example.com" || resp.Token == "" {
		t.Errorf("unexpected response: %+v", resp)
	}

	body := rr.Body.String()
	for _, secret := range []string{"hash", "tokens", "avatar", "red12345"} {
		if strings.Contains(body, secret) {
			t.Errorf("response leaks %q: %s", secret, body)
		}
	}

	t.Run("extra body keys ignored", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.Register(rr, jsonRequest(t, http.MethodPost, "/users", map[string]interface{}{
			"name":     "Ann",
			"email":    "ann@example.com",
			"password": "red12345",
			"admin":    true,
		}))
		if rr.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}

func TestUserHandler_Register_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"weak password", map[string]interface{}{"name": "Mike", "email": "a@b.co", "password": "abc"}},
		{"forbidden password", map[string]interface{}{"name": "Mike", "email": "a@b.co", "password": "password1"}},
		{"bad email", map[string]interface{}{"name": "Mike", "email": "nope", "password": "red12345"}},
		{"missing name", map[string]interface{}{"email": "a@b.co", "password": "red12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.users.Register(rr, jsonRequest(t, http.MethodPost, "/users", tt.body))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mike@example.com")

	rr := httptest.NewRecorder()
	env.users.Register(rr, jsonRequest(t, http.MethodPost, "/users", map[string]interface{}{
		"name": "Mike", "email": "mike@example.com", "password": "red12345",
	}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", rr.Code)
	}
}

func TestUserHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mike@example.com")

	t.Run("success", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.Login(rr, jsonRequest(t, http.MethodPost, "/users/login", map[string]interface{}{
			"email": "mike@example.com", "password": "red12345",
		}))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp AuthResponse
		decodeBody(t, rr, &resp)
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.Login(rr, jsonRequest(t, http.MethodPost, "/users/login", map[string]interface{}{
			"email": "mike@example.com", "password": "wrong999",
		}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.Login(rr, jsonRequest(t, http.MethodPost, "/users/login", map[string]interface{}{
			"email": "nobody@example.com", "password": "red12345",
		}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestUserHandler_LogoutFlows(t *testing.T) {
	env := newTestEnv(t)
	user, first := env.seedUser(t, "mike@example.com")
	ctx := context.Background()

	second, err := env.tokens.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("issuing second token: %v", err)
	}

	rr := httptest.NewRecorder()
	env.users.Logout(rr, authed(jsonRequest(t, http.MethodPost, "/users/logout", nil), user, first))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	stored, _ := env.userRepo.GetByID(ctx, user.ID)
	if stored.HasToken(first) {
		t.Error("logged-out token still present")
	}
	if !stored.HasToken(second) {
		t.Error("single logout revoked the other session")
	}

	rr = httptest.NewRecorder()
	env.users.LogoutAll(rr, authed(jsonRequest(t, http.MethodPost, "/users/logoutAll", nil), user, second))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	stored, _ = env.userRepo.GetByID(ctx, user.ID)
	if len(stored.Tokens) != 0 {
		t.Errorf("expected all sessions revoked, got %d", len(stored.Tokens))
	}
}

func TestUserHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "mike@example.com")

	rr := httptest.NewRecorder()
	env.users.Me(rr, authed(httptest.NewRequest(http.MethodGet, "/users/me", nil), user, token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp UserResponse
	decodeBody(t, rr, &resp)
	if resp.ID != user.ID || resp.Name != "Mike" {
		t.Errorf("unexpected profile: %+v", resp)
	}
}

func TestUserHandler_UpdateMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "mike@example.com")

	t.Run("allowed fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.UpdateMe(rr, authed(jsonRequest(t, http.MethodPatch, "/users/me", map[string]interface{}{
			"name": "Michael", "age": 28,
		}), user, token))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp UserResponse
		decodeBody(t, rr, &resp)
		if resp.Name != "Michael" || resp.Age != 28 {
			t.Errorf("update not applied: %+v", resp)
		}
	})

	t.Run("rejected field", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.UpdateMe(rr, authed(jsonRequest(t, http.MethodPatch, "/users/me", map[string]interface{}{
			"email": "new@example.com",
		}), user, token))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for immutable field, got %d", rr.Code)
		}
	})
}

func TestUserHandler_DeleteMe_CascadesTasks(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "mike@example.com")
	ctx := context.Background()

	rr := httptest.NewRecorder()
	env.tasks.Create(rr, authed(jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{
		"description": "orphan me",
	}), user, token))
	if rr.Code != http.StatusCreated {
		t.Fatalf("seeding task failed: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	env.users.DeleteMe(rr, authed(httptest.NewRequest(http.MethodDelete, "/users/me", nil), user, token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if stored, _ := env.userRepo.GetByID(ctx, user.ID); stored != nil {
		t.Error("user still exists after deletion")
	}
	if tasks, _ := env.taskRepo.ListByOwner(ctx, user.ID, listAll()); len(tasks) != 0 {
		t.Errorf("expected tasks removed with the account, found %d", len(tasks))
	}
}

func TestUserHandler_AvatarLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "mike@example.com")

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	t.Run("upload", func(t *testing.T) {
		body, contentType := multipartAvatar(t, "me.png", encoded.Bytes())
		req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		env.users.UploadAvatar(rr, authed(req, user, token))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("fetch by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/"+user.ID+"/avatar", nil)
		req.SetPathValue("id", user.ID)

		rr := httptest.NewRecorder()
		env.users.GetAvatar(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("expected image/png, got %q", ct)
		}
		served, _, err := image.Decode(bytes.NewReader(rr.Body.Bytes()))
		if err != nil {
			t.Fatalf("served avatar does not decode: %v", err)
		}
		if served.Bounds().Dx() != 320 || served.Bounds().Dy() != 240 {
			t.Errorf("expected 320x240 avatar, got %v", served.Bounds())
		}
	})

	t.Run("bad extension", func(t *testing.T) {
		body, contentType := multipartAvatar(t, "me.gif", encoded.Bytes())
		req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", body)
		req.Header.Set("Content-Type", contentType)

		rr := httptest.NewRecorder()
		env.users.UploadAvatar(rr, authed(req, user, token))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for disallowed extension, got %d", rr.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		env.users.DeleteAvatar(rr, authed(httptest.NewRequest(http.MethodDelete, "/users/me/avatar", nil), user, token))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/users/"+user.ID+"/avatar", nil)
		req.SetPathValue("id", user.ID)
		rr = httptest.NewRecorder()
		env.users.GetAvatar(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 after avatar delete, got %d", rr.Code)
		}
	})
}
