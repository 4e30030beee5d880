package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/allmight/taskapp/internal/middleware"
	"github.com/allmight/taskapp/internal/model"
	"github.com/allmight/taskapp/internal/repository"
	"github.com/allmight/taskapp/internal/service"
)

// In-memory repository fakes. Handlers are exercised against real
// services wired to these.

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*model.User
	emailIndex map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[string]*model.User),
		emailIndex: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = "user:" + user.Email
	user.CreatedOn = time.Now()
	user.UpdatedOn = time.Now()
	f.users[user.ID] = user
	f.emailIndex[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailIndex[email], nil
}

func (f *fakeUserRepo) GetByIDWithToken(ctx context.Context, userID, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || !user.HasToken(token) {
		return nil, nil
	}
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	f.emailIndex[user.Email] = user
	return nil
}

func (f *fakeUserRepo) AddToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Tokens = append(user.Tokens, token)
	}
	return nil
}

func (f *fakeUserRepo) RemoveToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		kept := user.Tokens[:0]
		for _, t := range user.Tokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		user.Tokens = kept
	}
	return nil
}

func (f *fakeUserRepo) ClearTokens(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Tokens = nil
	}
	return nil
}

func (f *fakeUserRepo) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Avatar = avatar
	}
	return nil
}

func (f *fakeUserRepo) ClearAvatar(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Avatar = nil
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		delete(f.emailIndex, user.Email)
		delete(f.users, id)
	}
	return nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	tasks  map[string]*model.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*model.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = "task:" + string(rune('0'+f.nextID))
	task.CreatedOn = time.Now()
	task.UpdatedOn = time.Now()
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) GetOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.Owner != ownerID {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) ListByOwner(ctx context.Context, ownerID string, opts model.TaskListOptions) ([]*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Task
	for _, task := range f.tasks {
		if task.Owner != ownerID {
			continue
		}
		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateOwned(ctx context.Context, id, ownerID string, updates map[string]interface{}) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.Owner != ownerID {
		return nil, nil
	}
	if v, ok := updates["description"].(string); ok {
		task.Description = v
	}
	if v, ok := updates["completed"].(bool); ok {
		task.Completed = v
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) DeleteOwned(ctx context.Context, id, ownerID string) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.Owner != ownerID {
		return nil, nil
	}
	delete(f.tasks, id)
	return task, nil
}

func (f *fakeTaskRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, task := range f.tasks {
		if task.Owner == ownerID {
			delete(f.tasks, id)
		}
	}
	return nil
}

type fakeMailer struct{}

func (fakeMailer) SendWelcome(context.Context, string, string) error      { return nil }
func (fakeMailer) SendCancellation(context.Context, string, string) error { return nil }

// testEnv wires real services over the in-memory fakes
type testEnv struct {
	userRepo *fakeUserRepo
	taskRepo *fakeTaskRepo
	users    *UserHandler
	tasks    *TaskHandler
	tokens   *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	userRepo := newFakeUserRepo()
	taskRepo := newFakeTaskRepo()
	mailer := fakeMailer{}

	tokenService := service.NewTokenService(userRepo, "test-secret", 48*time.Hour)
	authService := service.NewAuthService(userRepo, tokenService, mailer, logger)
	userService := service.NewUserService(userRepo, taskRepo, mailer, logger)
	avatarService := service.NewAvatarService(userRepo)
	taskService := service.NewTaskService(taskRepo, repository.SortColumn)

	return &testEnv{
		userRepo: userRepo,
		taskRepo: taskRepo,
		users:    NewUserHandler(authService, userService, avatarService),
		tasks:    NewTaskHandler(taskService),
		tokens:   tokenService,
	}
}

// seedUser registers a user and returns it with one valid token
func (env *testEnv) seedUser(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	body := map[string]interface{}{
		"name":     "Mike",
		"age":      27,
		"email":    email,
		"password": "red12345",
	}
	rr := httptest.NewRecorder()
	env.users.Register(rr, jsonRequest(t, http.MethodPost, "/users", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("seeding user failed with status %d: %s", rr.Code, rr.Body.String())
	}

	var resp AuthResponse
	decodeBody(t, rr, &resp)
	user, _ := env.userRepo.GetByID(context.Background(), resp.User.ID)
	return user, resp.Token
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authed attaches an authenticated identity to the request context the
// way the auth middleware would
func authed(req *http.Request, user *model.User, token string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserKey, user)
	ctx = context.WithValue(ctx, middleware.TokenKey, token)
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func listAll() model.TaskListOptions {
	return model.TaskListOptions{}
}

func multipartAvatar(t *testing.T, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
