package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
	"github.com/reelhouse/reelhouse/internal/content"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/store"
)

const testSecret = "test-jwt-secret-key"

// platformStub stands in for the remote platform API.
type platformStub struct {
	mu              sync.Mutex
	videos          []api.Video
	comments        []api.Comment
	shareLinks      map[string]*api.ShareLink
	shareViews      []api.ShareView
	feedback        []api.FeedbackSubmission
	feedbackStarted chan struct{}
	holdFeedback    chan struct{}
	signups         int
	passwordChanges int
	failSignIn      bool
	failUpdates     bool
}

func newPlatformStub() *platformStub {
	return &platformStub{shareLinks: map[string]*api.ShareLink{}}
}

func (p *platformStub) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/auth/signin", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		fail := p.failSignIn
		p.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.Session{User: api.User{ID: "u1", Email: "a@b.com"}})
	})

	r.Post("/v1/auth/signup", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		p.signups++
		p.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.Session{User: api.User{ID: "u9", Email: "new@b.com"}})
	})

	r.Get("/v1/videos", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(p.videos)
	})

	r.Get("/v1/videos/{id}", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, v := range p.videos {
			if v.ID == chi.URLParam(req, "id") {
				_ = json.NewEncoder(w).Encode(v)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"video not found"}`))
	})

	r.Get("/v1/videos/{id}/comments", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		videoID := chi.URLParam(req, "id")
		out := []api.Comment{}
		for _, c := range p.comments {
			if c.VideoID == videoID {
				out = append(out, c)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	r.Get("/v1/comments", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(p.comments)
	})

	r.Post("/v1/comments", func(w http.ResponseWriter, req *http.Request) {
		var in api.CommentInput
		_ = json.NewDecoder(req.Body).Decode(&in)
		c := api.Comment{ID: "c-new", VideoID: in.VideoID, UserID: in.UserID, Text: in.Text, Status: api.CommentPending}
		p.mu.Lock()
		p.comments = append(p.comments, c)
		p.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	})

	r.Post("/v1/comments/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(req.Body).Decode(&in)
		p.mu.Lock()
		defer p.mu.Unlock()
		for i := range p.comments {
			if p.comments[i].ID == chi.URLParam(req, "id") {
				p.comments[i].Status = in.Status
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"comment not found"}`))
	})

	r.Post("/v1/users/{id}/password", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		p.passwordChanges++
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/v1/feedback", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		started, hold := p.feedbackStarted, p.holdFeedback
		p.mu.Unlock()
		if started != nil {
			started <- struct{}{}
		}
		if hold != nil {
			<-hold
		}
		w.WriteHeader(http.StatusCreated)
	})

	r.Get("/v1/feedback", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		_ = json.NewEncoder(w).Encode(p.feedback)
	})

	r.Post("/v1/watch-sessions", func(w http.ResponseWriter, req *http.Request) {
		var in api.WatchSession
		_ = json.NewDecoder(req.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	})

	r.Patch("/v1/watch-sessions/{id}", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		fail := p.failUpdates
		p.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"telemetry store unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/v1/share-links/{token}", func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		link, ok := p.shareLinks[chi.URLParam(req, "token")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"share link not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(link)
	})

	r.Post("/v1/share-links/{token}/views", func(w http.ResponseWriter, req *http.Request) {
		var view api.ShareView
		_ = json.NewDecoder(req.Body).Decode(&view)
		p.mu.Lock()
		p.shareViews = append(p.shareViews, view)
		p.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	return r
}

type fakeThumbnailStore struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	failURL bool
}

func (f *fakeThumbnailStore) UploadThumbnail(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeThumbnailStore) ThumbnailURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if f.failURL {
		return "", errors.New("presign failed")
	}
	return "https://cdn.test/" + key, nil
}

func (f *fakeThumbnailStore) DeleteThumbnail(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestServer(t *testing.T) (*Server, *platformStub, pgxmock.PgxPoolIface) {
	t.Helper()

	stub := newPlatformStub()
	remote := httptest.NewServer(stub.router())
	t.Cleanup(remote.Close)

	client := api.New(remote.URL, "test-key")
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	c := cache.New(0)
	srv := New(Config{
		Auth:      session.NewManager(client),
		Accounts:  client,
		Tokens:    session.NewTokens(mock, testSecret, false),
		Videos:    content.NewVideos(client, c),
		Playlists: content.NewPlaylists(client, c),
		Comments:  content.NewComments(client, c),
		Users:     content.NewUsers(client, c),
		Feedback:  content.NewFeedback(client),
		Watch:     content.NewWatch(client, nil),
		Shares:    content.NewShares(client, c),
		Store:     store.New(mock),
		Storage:   &fakeThumbnailStore{},
		BaseURL:   "http://localhost:8080",
	})
	return srv, stub, mock
}

func accessCookie(t *testing.T, userID string, admin bool) *http.Cookie {
	t.Helper()
	token, err := session.GenerateAccessToken(testSecret, userID, admin)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "access_token", Value: token}
}

func doJSON(srv *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestListVideos(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.videos = []api.Video{{ID: "v1", Title: "First Film"}}

	rec := doJSON(srv, "GET", "/api/videos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var videos []api.Video
	if err := json.NewDecoder(rec.Body).Decode(&videos); err != nil {
		t.Fatal(err)
	}
	if len(videos) != 1 || videos[0].Title != "First Film" {
		t.Errorf("unexpected videos %+v", videos)
	}
}

func TestGetVideo_RemoteNotFoundPassesThrough(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "GET", "/api/videos/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSignIn_SuccessSetsSessionCookies(t *testing.T) {
	srv, _, mock := newTestServer(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := doJSON(srv, "POST", "/api/auth/signin", `{"email":"a@b.com","password":"Passw0rd!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp signInResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.User == nil || resp.User.ID != "u1" {
		t.Errorf("unexpected user %+v", resp.User)
	}
	if resp.Redirect != "/" {
		t.Errorf("expected home redirect, got %q", resp.Redirect)
	}

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
	}
	if !names["access_token"] || !names["refresh_token"] {
		t.Errorf("expected session cookies, got %v", names)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.failSignIn = true

	rec := doJSON(srv, "POST", "/api/auth/signin", `{"email":"a@b.com","password":"Passw0rd!"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Errorf("expected platform message, got %s", rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" && c.Value != "" {
			t.Error("failed sign-in must not set a session cookie")
		}
	}
}

func TestIntendedPath_NotSharedAcrossVisitors(t *testing.T) {
	srv, stub, mock := newTestServer(t)

	// Visitor A fails to sign in while headed for the admin console; the
	// destination is kept on A's cookie only.
	stub.failSignIn = true
	recA := doJSON(srv, "POST", "/api/auth/signin?from=/admin/dashboard", `{"email":"a@b.com","password":"Passw0rd!"}`)
	if recA.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recA.Code)
	}

	// An unrelated visitor signs up and must land on the home page, not on
	// visitor A's destination.
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "u9", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM visitor_state`).
		WithArgs(pgxmock.AnyArg(), "signup_draft").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	body := `{"email":"new@b.com","password":"Passw0rd!","firstName":"Ada","acceptTerms":true,
		"profile":{"stateRegion":"CA","country":"US","utilizationPurpose":"personal"}}`
	recB := doJSON(srv, "POST", "/api/auth/signup", body)
	if recB.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recB.Code, recB.Body.String())
	}
	var respB signInResponse
	if err := json.NewDecoder(recB.Body).Decode(&respB); err != nil {
		t.Fatal(err)
	}
	if respB.Redirect != "/" {
		t.Errorf("unrelated visitor must not inherit a recorded path, got %q", respB.Redirect)
	}

	// Visitor A retries with their own cookie and gets their destination back.
	stub.failSignIn = false
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	retry := httptest.NewRequest("POST", "/api/auth/signin", strings.NewReader(`{"email":"a@b.com","password":"Passw0rd!"}`))
	retry.Header.Set("Content-Type", "application/json")
	for _, c := range recA.Result().Cookies() {
		if c.MaxAge >= 0 {
			retry.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	recRetry := httptest.NewRecorder()
	srv.ServeHTTP(recRetry, retry)
	if recRetry.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recRetry.Code, recRetry.Body.String())
	}
	var respRetry signInResponse
	if err := json.NewDecoder(recRetry.Body).Decode(&respRetry); err != nil {
		t.Fatal(err)
	}
	if respRetry.Redirect != "/admin/dashboard" {
		t.Errorf("expected the visitor's own destination, got %q", respRetry.Redirect)
	}
}

func TestSignIn_InvalidEmailRejectedLocally(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "POST", "/api/auth/signin", `{"email":"not-an-email","password":"x"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email") {
		t.Errorf("expected email field error, got %s", rec.Body.String())
	}
}

func TestSignUp_WeakPasswordNeverReachesPlatform(t *testing.T) {
	srv, stub, _ := newTestServer(t)

	body := `{"email":"a@b.com","password":"alllowercase1!","firstName":"Ada","acceptTerms":true,
		"profile":{"stateRegion":"CA","country":"US","utilizationPurpose":"personal"}}`
	rec := doJSON(srv, "POST", "/api/auth/signup", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "password") {
		t.Errorf("expected password field error, got %s", rec.Body.String())
	}
	if stub.signups != 0 {
		t.Error("weak password must not reach the platform API")
	}
}

func TestSignUp_Success(t *testing.T) {
	srv, stub, mock := newTestServer(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "u9", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM visitor_state`).
		WithArgs(pgxmock.AnyArg(), "signup_draft").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	body := `{"email":"new@b.com","password":"Passw0rd!","firstName":"Ada","acceptTerms":true,
		"profile":{"stateRegion":"CA","country":"US","utilizationPurpose":"personal"}}`
	rec := doJSON(srv, "POST", "/api/auth/signup", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.signups != 1 {
		t.Errorf("expected one signup call, got %d", stub.signups)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListComments_PendingVisibleOnlyToAuthor(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.comments = []api.Comment{
		{ID: "c1", VideoID: "v1", UserID: "u2", Status: api.CommentApproved, Text: "public"},
		{ID: "c2", VideoID: "v1", UserID: "u2", Status: api.CommentPending, Text: "theirs"},
		{ID: "c3", VideoID: "v1", UserID: "u1", Status: api.CommentPending, Text: "mine"},
		{ID: "c4", VideoID: "v1", UserID: "u2", Status: api.CommentRejected, Text: "gone"},
	}

	var anon []api.Comment
	rec := doJSON(srv, "GET", "/api/videos/v1/comments", "")
	if err := json.NewDecoder(rec.Body).Decode(&anon); err != nil {
		t.Fatal(err)
	}
	if len(anon) != 1 || anon[0].ID != "c1" {
		t.Errorf("anonymous viewer should see approved only, got %+v", anon)
	}

	var mine []api.Comment
	rec = doJSON(srv, "GET", "/api/videos/v1/comments", "", accessCookie(t, "u1", false))
	if err := json.NewDecoder(rec.Body).Decode(&mine); err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("author should also see own pending comment, got %+v", mine)
	}
}

func TestCreateComment_RequiresAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "POST", "/api/videos/v1/comments", `{"text":"nice"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreateComment_ReturnsModerationNotice(t *testing.T) {
	srv, stub, _ := newTestServer(t)

	rec := doJSON(srv, "POST", "/api/videos/v1/comments", `{"text":"  great film  "}`, accessCookie(t, "u1", false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp createCommentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Comment.Status != api.CommentPending {
		t.Errorf("new comment must be pending, got %q", resp.Comment.Status)
	}
	if resp.Comment.Text != "great film" {
		t.Errorf("expected trimmed text, got %q", resp.Comment.Text)
	}
	if resp.Notice == "" {
		t.Error("expected moderation notice")
	}
	if len(stub.comments) != 1 {
		t.Errorf("expected comment stored remotely, got %d", len(stub.comments))
	}
}

func TestCreateComment_EmptyTextRejected(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	rec := doJSON(srv, "POST", "/api/videos/v1/comments", `{"text":"   "}`, accessCookie(t, "u1", false))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(stub.comments) != 0 {
		t.Error("invalid comment must not reach the platform")
	}
}

func TestChangePassword(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	me := accessCookie(t, "u1", false)

	rec := doJSON(srv, "PUT", "/api/profile/password", `{"password":"Passw0rd!","confirmPassword":"different"}`, me)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "confirmPassword") {
		t.Errorf("mismatch must land on confirmPassword, got %s", rec.Body.String())
	}
	if stub.passwordChanges != 0 {
		t.Error("mismatched confirmation must not reach the platform")
	}

	rec = doJSON(srv, "PUT", "/api/profile/password", `{"password":"Passw0rd!","confirmPassword":"Passw0rd!"}`, me)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.passwordChanges != 1 {
		t.Errorf("expected one password change, got %d", stub.passwordChanges)
	}
}

func TestAdminComments_ForbiddenForNonAdmins(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "GET", "/api/admin/comments", "", accessCookie(t, "u1", false))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestModerateComment_OnceOnly(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.comments = []api.Comment{{ID: "c1", VideoID: "v1", UserID: "u2", Status: api.CommentPending}}
	admin := accessCookie(t, "admin", true)

	rec := doJSON(srv, "PATCH", "/api/admin/comments/c1/status", `{"status":"approved"}`, admin)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.comments[0].Status != api.CommentApproved {
		t.Errorf("expected remote status update, got %q", stub.comments[0].Status)
	}

	rec = doJSON(srv, "PATCH", "/api/admin/comments/c1/status", `{"status":"rejected"}`, admin)
	if rec.Code != http.StatusConflict {
		t.Errorf("moderation must not reverse, got %d", rec.Code)
	}
}

func TestModerateComment_InvalidStatus(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.comments = []api.Comment{{ID: "c1", VideoID: "v1", Status: api.CommentPending}}

	rec := doJSON(srv, "PATCH", "/api/admin/comments/c1/status", `{"status":"pending"}`, accessCookie(t, "admin", true))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if stub.comments[0].Status != api.CommentPending {
		t.Error("invalid status must not reach the platform")
	}
}

func thumbnailRequest(t *testing.T, target, filename, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	head := make(textproto.MIMEHeader)
	head.Set("Content-Disposition", `form-data; name="thumbnail"; filename="`+filename+`"`)
	head.Set("Content-Type", contentType)
	part, err := mw.CreatePart(head)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("not a real image, close enough")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("POST", target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploadThumbnail_StagesAndReturnsURL(t *testing.T) {
	srv, _, _ := newTestServer(t)
	fake := srv.storage.(*fakeThumbnailStore)

	r := thumbnailRequest(t, "/api/videos/v1/thumbnail", "poster.jpg", "image/jpeg")
	r.AddCookie(accessCookie(t, "admin", true))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp["key"], "thumbnails/v1/") {
		t.Errorf("unexpected staging key %q", resp["key"])
	}
	if resp["url"] != "https://cdn.test/"+resp["key"] {
		t.Errorf("unexpected staged url %q", resp["url"])
	}
	if len(fake.keys) != 1 || len(fake.deleted) != 0 {
		t.Errorf("expected one staged object, got keys=%v deleted=%v", fake.keys, fake.deleted)
	}
}

func TestUploadThumbnail_RejectsNonImage(t *testing.T) {
	srv, _, _ := newTestServer(t)
	fake := srv.storage.(*fakeThumbnailStore)

	r := thumbnailRequest(t, "/api/videos/v1/thumbnail", "notes.txt", "text/plain")
	r.AddCookie(accessCookie(t, "admin", true))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(fake.keys) != 0 {
		t.Errorf("rejected upload must not be staged, got %v", fake.keys)
	}
}

func TestUploadThumbnail_DeletesStagedObjectWhenURLFails(t *testing.T) {
	srv, _, _ := newTestServer(t)
	fake := srv.storage.(*fakeThumbnailStore)
	fake.failURL = true

	r := thumbnailRequest(t, "/api/videos/v1/thumbnail", "poster.png", "image/png")
	r.AddCookie(accessCookie(t, "admin", true))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(fake.keys) != 1 {
		t.Fatalf("expected one staged object, got %v", fake.keys)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != fake.keys[0] {
		t.Errorf("unreachable staged object must be deleted, got %v", fake.deleted)
	}
}

func TestLanguages_ListsPickerChoices(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(srv, "GET", "/api/languages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var all []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatal(err)
	}
	if len(all) == 0 {
		t.Fatal("expected at least one language")
	}
	found := false
	for _, l := range all {
		if l.Code == "en" && l.Name == "English" {
			found = true
		}
	}
	if !found {
		t.Error("expected English in the picker choices")
	}
}

func TestExportComments_DownloadsSpreadsheet(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.comments = []api.Comment{{ID: "c1", VideoID: "v1", Status: api.CommentApproved, Text: "great"}}

	rec := doJSON(srv, "GET", "/api/admin/comments/export", "", accessCookie(t, "admin", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "REELHOUSE_") || !strings.Contains(disposition, ".xlsx") {
		t.Errorf("unexpected disposition %q", disposition)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected workbook bytes")
	}
}

func TestExportFeedback_AdminOnly(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.feedback = []api.FeedbackSubmission{{UserID: "u1", Ratings: map[string]int{"overall": 4}, Text: "Site survey"}}

	rec := doJSON(srv, "GET", "/api/admin/feedback/export", "", accessCookie(t, "u1", false))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admins, got %d", rec.Code)
	}

	rec = doJSON(srv, "GET", "/api/admin/feedback/export", "", accessCookie(t, "admin", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Errorf("expected attachment disposition, got %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.Len() == 0 {
		t.Error("expected workbook bytes")
	}
}

func TestFilmFeedback_ShortTextRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)
	body := `{"ratings":{"story":5,"visuals":4,"audio":4,"pacing":3,"overall":4},"text":"too short"}`
	rec := doJSON(srv, "POST", "/api/videos/v1/feedback", body, accessCookie(t, "u1", false))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestFeedback_ConcurrentSubmitRejected(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.feedbackStarted = make(chan struct{}, 1)
	stub.holdFeedback = make(chan struct{})

	me := accessCookie(t, "u1", false)
	long := strings.Repeat("A thoughtful reflection on the platform. ", 8)
	body := `{"ratings":{"content":5,"design":4,"performance":4,"support":3,"overall":4},"text":"` + long + `"}`

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- doJSON(srv, "POST", "/api/feedback", body, me)
	}()
	<-stub.feedbackStarted

	rec := doJSON(srv, "POST", "/api/feedback", body, me)
	if rec.Code != http.StatusConflict {
		t.Errorf("second submit while one is in flight must be rejected, got %d", rec.Code)
	}

	// A different user's submit is not blocked.
	hold := stub.holdFeedback
	stub.mu.Lock()
	stub.feedbackStarted, stub.holdFeedback = nil, nil
	stub.mu.Unlock()
	rec = doJSON(srv, "POST", "/api/feedback", body, accessCookie(t, "u2", false))
	if rec.Code != http.StatusCreated {
		t.Errorf("other user's submit must proceed, got %d: %s", rec.Code, rec.Body.String())
	}

	close(hold)
	if rec := <-first; rec.Code != http.StatusCreated {
		t.Errorf("released submit must succeed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFilmFeedback_Valid(t *testing.T) {
	srv, _, _ := newTestServer(t)
	long := strings.Repeat("A thoughtful reflection on the film. ", 8)
	body := `{"ratings":{"story":5,"visuals":4,"audio":4,"pacing":3,"overall":4},"text":"` + long + `"}`
	rec := doJSON(srv, "POST", "/api/videos/v1/feedback", body, accessCookie(t, "u1", false))
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWatchSessionLifecycle(t *testing.T) {
	srv, stub, _ := newTestServer(t)

	rec := doJSON(srv, "POST", "/api/watch/sessions", `{"videoId":"v1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var ws api.WatchSession
	if err := json.NewDecoder(rec.Body).Decode(&ws); err != nil {
		t.Fatal(err)
	}
	if ws.ID == "" || ws.VideoID != "v1" {
		t.Errorf("unexpected session %+v", ws)
	}

	rec = doJSON(srv, "PATCH", "/api/watch/sessions/"+ws.ID, `{"percentWatched":40}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}

	// Telemetry loss is absorbed, not surfaced.
	stub.failUpdates = true
	rec = doJSON(srv, "POST", "/api/watch/sessions/"+ws.ID+"/end", `{"percentWatched":90}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 despite remote failure, got %d", rec.Code)
	}
}

func TestShareWatchPage_RendersAndRecordsView(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.videos = []api.Video{{ID: "v1", Title: "First Film", VideoURL: "https://cdn.example/v1.mp4"}}
	stub.shareLinks["tok1"] = &api.ShareLink{Token: "tok1", VideoID: "v1"}

	r := httptest.NewRequest("GET", "/watch/tok1", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "First Film") {
		t.Error("expected video title on the watch page")
	}
	if len(stub.shareViews) != 1 || !stub.shareViews[0].Unique {
		t.Errorf("expected one unique view, got %+v", stub.shareViews)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, r)
	if len(stub.shareViews) != 2 || stub.shareViews[1].Unique {
		t.Errorf("repeat view must not be unique, got %+v", stub.shareViews)
	}
}

func TestShareWatchPage_UnknownToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(srv, "GET", "/watch/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestThemePrefs(t *testing.T) {
	srv, _, mock := newTestServer(t)

	mock.ExpectQuery(`SELECT value FROM visitor_state`).
		WithArgs(pgxmock.AnyArg(), "dark_mode").
		WillReturnError(pgx.ErrNoRows)
	rec := doJSON(srv, "GET", "/api/prefs/theme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"darkMode":false`) {
		t.Errorf("absent flag must default to light, got %s", rec.Body.String())
	}

	mock.ExpectExec(`INSERT INTO visitor_state`).
		WithArgs(pgxmock.AnyArg(), "dark_mode", []byte("true")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	rec = doJSON(srv, "PUT", "/api/prefs/theme", `{"darkMode":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAuthRateLimit(t *testing.T) {
	srv, stub, _ := newTestServer(t)
	stub.failSignIn = true

	var last int
	for i := 0; i < 6; i++ {
		rec := doJSON(srv, "POST", "/api/auth/signin", `{"email":"a@b.com","password":"Passw0rd!"}`)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 after exhausting the auth burst, got %d", last)
	}
}
