package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkpost/app/controllers"
	"inkpost/app/logger"
	"inkpost/app/models"
	"inkpost/app/repositories/mock"
	"inkpost/app/services"
	"inkpost/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	router   *mux.Router
	store    *mock.Store
	users    *services.UserService
	sessions *services.SessionService
	posts    *services.PostService
	comments *services.CommentService
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.Discard()
	store := mock.NewStore()

	users := services.NewUserService(store.Users(), bcrypt.MinCost, log)
	sessions := services.NewSessionService(store.Sessions(), store.Users(), "routes-secret", time.Hour, log)
	posts := services.NewPostService(store.Posts(), log)
	comments := services.NewCommentService(store.Comments(), log)

	renderer, err := views.New()
	require.NoError(t, err)
	base := controllers.NewController(renderer, log, false)
	postController := controllers.NewPostController(base, posts, comments, users)

	router := Setup(Handlers{
		Base:     base,
		Posts:    postController,
		Comments: controllers.NewCommentController(postController),
		Auth:     controllers.NewAuthController(base, users, sessions),
		Pages:    controllers.NewPagesController(base, store),
		Actors:   sessions,
		Logger:   log,
	})
	return &testApp{router: router, store: store, users: users, sessions: sessions, posts: posts, comments: comments}
}

// browser keeps cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	b.app.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, form)
}

func (b *browser) register(email, password, name string) {
	b.t.Helper()
	w := b.post("/register", url.Values{"email": {email}, "password": {password}, "name": {name}})
	require.Equal(b.t, http.StatusFound, w.Code)
}

func helloPost() url.Values {
	return url.Values{
		"title":    {"Hello"},
		"subtitle": {"World"},
		"body":     {"..."},
		"img_url":  {"http://x/y.png"},
	}
}

func TestPublicPages(t *testing.T) {
	app := setupTestApp(t)
	b := app.browser(t)

	for _, path := range []string{"/", "/about", "/contact", "/register", "/login"} {
		t.Run(path, func(t *testing.T) {
			w := b.get(path)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	app := setupTestApp(t)
	b := app.browser(t)

	assert.Equal(t, http.StatusNotFound, b.get("/nope").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/post/abc").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, b.do(http.MethodDelete, "/post/1", nil).Code)
}

func TestOperationalEndpoints(t *testing.T) {
	app := setupTestApp(t)
	b := app.browser(t)

	w := b.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	b.get("/about")
	w = b.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_server_requests_total")
}

func TestAdminCreatesPost(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	admin := app.browser(t)
	admin.register("admin@example.com", "admin-pass", "Angela")

	w := admin.post("/new-post", helloPost())
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	posts, err := app.posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, time.Now().Format(models.PostDateLayout), posts[0].Date)

	listing := admin.get("/")
	assert.Equal(t, 1, strings.Count(listing.Body.String(), "<h2>Hello</h2>"))

	t.Run("duplicate title is rejected", func(t *testing.T) {
		w := admin.post("/new-post", helloPost())
		assert.Equal(t, http.StatusConflict, w.Code)

		posts, err := app.posts.ListPosts(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})
}

func TestNonAdminIsForbidden(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	admin := app.browser(t)
	admin.register("admin@example.com", "admin-pass", "Angela")
	require.Equal(t, http.StatusFound, admin.post("/new-post", helloPost()).Code)

	reader := app.browser(t)
	reader.register("reader@example.com", "reader-pass", "Rick")
	anonymous := app.browser(t)

	other := helloPost()
	other.Set("title", "Hijacked")

	requests := []struct {
		method string
		target string
		form   url.Values
	}{
		{http.MethodGet, "/new-post", nil},
		{http.MethodPost, "/new-post", other},
		{http.MethodGet, "/edit-post/1", nil},
		{http.MethodPost, "/edit-post/1", other},
		{http.MethodGet, "/delete/1", nil},
		{http.MethodGet, "/edit-post/99", nil},
		{http.MethodGet, "/delete/99", nil},
	}
	for name, b := range map[string]*browser{"reader": reader, "anonymous": anonymous} {
		for _, req := range requests {
			t.Run(name+" "+req.method+" "+req.target, func(t *testing.T) {
				w := b.do(req.method, req.target, req.form)
				assert.Equal(t, http.StatusForbidden, w.Code)
			})
		}
	}

	posts, err := app.posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
}

func TestCommentLifecycle(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	admin := app.browser(t)
	admin.register("admin@example.com", "admin-pass", "Angela")
	require.Equal(t, http.StatusFound, admin.post("/new-post", helloPost()).Code)

	userA := app.browser(t)
	userA.register("a@example.com", "a-pass", "Alma")
	require.Equal(t, http.StatusFound, userA.get("/logout").Code)

	w := userA.post("/login", url.Values{"email": {"a@example.com"}, "password": {"a-pass"}})
	require.Equal(t, http.StatusFound, w.Code)

	w = userA.post("/post/1", url.Values{"comment_text": {"Nice one"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nice one")

	comments, err := app.comments.GetCommentsByPost(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	alma, err := app.users.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, alma.ID, comments[0].AuthorID)

	require.Equal(t, http.StatusFound, userA.get("/logout").Code)

	w = userA.post("/post/1", url.Values{"comment_text": {"Sneaky"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	comments, err = app.comments.GetCommentsByPost(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	login := userA.get("/login")
	assert.Contains(t, login.Body.String(), controllers.MsgLoginToComment)

	t.Run("deleting the post removes its comments", func(t *testing.T) {
		require.Equal(t, http.StatusFound, admin.get("/delete/1").Code)

		byAuthor, err := app.comments.GetCommentsByAuthor(ctx, alma.ID)
		require.NoError(t, err)
		assert.Empty(t, byAuthor)
		assert.Equal(t, http.StatusNotFound, admin.get("/post/1").Code)
	})
}

func TestLoginFailuresNeverStartSession(t *testing.T) {
	app := setupTestApp(t)

	owner := app.browser(t)
	owner.register("owner@example.com", "right-pass", "Olive")

	b := app.browser(t)
	w := b.post("/login", url.Values{"email": {"ghost@example.com"}, "password": {"right-pass"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), controllers.MsgUnknownEmail)
	assert.NotContains(t, b.cookies, "session")

	w = b.post("/login", url.Values{"email": {"owner@example.com"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), controllers.MsgWrongPassword)
	assert.NotContains(t, b.cookies, "session")
}

func TestDuplicateRegistration(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	first := app.browser(t)
	first.register("dup@example.com", "first-pass", "First")

	second := app.browser(t)
	w := second.post("/register", url.Values{"email": {"dup@example.com"}, "password": {"second-pass"}, "name": {"Second"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotContains(t, second.cookies, "session")

	user, err := app.users.FindByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, "First", user.Name)
	assert.True(t, app.users.VerifyPassword(user, "first-pass"))
}

func TestTamperedSessionIsAnonymous(t *testing.T) {
	app := setupTestApp(t)

	b := app.browser(t)
	b.register("admin@example.com", "admin-pass", "Angela")
	b.cookies["session"].Value += "x"

	assert.Equal(t, http.StatusForbidden, b.get("/new-post").Code)
}

func TestSessionOfVanishedUserFailsRequest(t *testing.T) {
	app := setupTestApp(t)

	token, _, err := app.sessions.Login(context.Background(), &models.User{ID: 77})
	require.NoError(t, err)

	b := app.browser(t)
	b.cookies["session"] = &http.Cookie{Name: "session", Value: token}
	assert.Equal(t, http.StatusNotFound, b.get("/").Code)
}
