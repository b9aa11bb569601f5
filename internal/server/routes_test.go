package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokedoro/internal/authstub"
	"pokedoro/internal/config"
	"pokedoro/internal/models"
	"pokedoro/internal/services"
	"pokedoro/internal/utils"
)

type testEnv struct {
	app    *httptest.Server
	stub   *authstub.Stub
	client *http.Client
}

// newTestEnv starts the app against a stub auth endpoint. wrap, when set,
// decorates the stub.
func newTestEnv(t *testing.T, wrap func(http.Handler) http.Handler) *testEnv {
	t.Helper()

	stub := authstub.New([]byte("stub-secret"))
	require.NoError(t, stub.AddUser("ash@pallet.town", "pikachu"))
	var authHandler http.Handler = stub
	if wrap != nil {
		authHandler = wrap(stub)
	}
	authSrv := httptest.NewServer(authHandler)
	t.Cleanup(authSrv.Close)

	cfg := &config.Config{
		AuthEndpoint:   authSrv.URL + "/user/login",
		PostLoginRoute: "/user",
		SessionKey:     "0123456789abcdef0123456789abcdef",
		StorageBackend: config.StorageCookie,
		LoginRate:      100,
		LoginBurst:     100,
	}
	s := newServer(cfg, services.NewAuthClient(authSrv.Client(), cfg.AuthEndpoint), nil)
	app := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := newClient()
	client.Jar = jar
	return &testEnv{app: app, stub: stub, client: client}
}

func newClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type submission struct {
	code int
	body string
	err  error
}

func submitAsync(client *http.Client, base, email, password string) <-chan submission {
	out := make(chan submission, 1)
	go func() {
		resp, err := client.PostForm(base+"/login", url.Values{"email": {email}, "password": {password}})
		if err != nil {
			out <- submission{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		out <- submission{code: resp.StatusCode, body: string(body), err: err}
	}()
	return out
}

func awaitSubmission(t *testing.T, ch <-chan submission) submission {
	t.Helper()
	select {
	case s := <-ch:
		require.NoError(t, s.err)
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("submission did not complete")
		return submission{}
	}
}

// holdAuth parks every auth request until release is closed.
func holdAuth(started chan<- struct{}, release <-chan struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started <- struct{}{}
			<-release
			next.ServeHTTP(w, r)
		})
	}
}

func (e *testEnv) postForm(t *testing.T, email, password string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.app.URL+"/login", url.Values{"email": {email}, "password": {password}})
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.app.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIndexAndLoginPage(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body := env.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Log in</h1>")
	assert.Contains(t, body, "This is your email")
	assert.NotContains(t, body, "disabled")
}

func TestLoginValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.postForm(t, "ash", "123")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid email received.")
	assert.Contains(t, body, "Password must contain at least 4 characters.")
	assert.Contains(t, body, `value="ash"`)
	assert.Zero(t, env.stub.Hits(), "invalid credentials never reach the endpoint")
}

func TestLoginUserNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.postForm(t, "gary@pallet.town", "eevee")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "User not found.")

	resp, _ = env.get(t, "/user")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginPasswordMismatch(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.postForm(t, "ash@pallet.town", "raichu")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Password does not match.")

	resp, _ = env.get(t, "/user")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginSuccessRedirectsToUser(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.postForm(t, "ash@pallet.town", "pikachu")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/user", resp.Header.Get("Location"))
	assert.Equal(t, 1, env.stub.Hits())

	resp, body := env.get(t, "/user")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Logged in with ease!")
	assert.Contains(t, body, "Welcome, ash@pallet.town")

	// The success toast is shown once.
	_, body = env.get(t, "/user")
	assert.NotContains(t, body, "Logged in with ease!")
}

func TestLoginUnclassifiedFailure(t *testing.T) {
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})
	env := newTestEnv(t, func(http.Handler) http.Handler { return failing })

	resp, body := env.postForm(t, "ash@pallet.town", "pikachu")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, services.GenericFailureMessage)
	assert.NotContains(t, body, "upstream exploded")
}

func TestLoginOverlappingSubmitRendersPendingForm(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	releaseOnce := sync.OnceFunc(func() { close(release) })
	env := newTestEnv(t, holdAuth(started, release))
	defer releaseOnce()

	resp, _ := env.get(t, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first := submitAsync(env.client, env.app.URL, "ash@pallet.town", "pikachu")
	<-started
	second := awaitSubmission(t, submitAsync(env.client, env.app.URL, "ash@pallet.town", "pikachu"))
	assert.Equal(t, http.StatusConflict, second.code)
	assert.Contains(t, second.body, "disabled")
	assert.Contains(t, second.body, "Loading...")

	releaseOnce()
	res := awaitSubmission(t, first)
	assert.Equal(t, http.StatusSeeOther, res.code)
	assert.Equal(t, 1, env.stub.Hits())
}

func TestLoginOverlappingSubmitWithoutSessionCookie(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	releaseOnce := sync.OnceFunc(func() { close(release) })
	env := newTestEnv(t, holdAuth(started, release))
	defer releaseOnce()

	first := submitAsync(newClient(), env.app.URL, "ash@pallet.town", "pikachu")
	<-started
	second := awaitSubmission(t, submitAsync(newClient(), env.app.URL, "ASH@pallet.town", "pikachu"))
	assert.Equal(t, http.StatusConflict, second.code)
	assert.Contains(t, second.body, "Loading...")

	releaseOnce()
	res := awaitSubmission(t, first)
	assert.Equal(t, http.StatusSeeOther, res.code)
	assert.Equal(t, 1, env.stub.Hits())
}

func TestValidateFields(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.client.Post(env.app.URL+"/api/login/validate", "application/json", strings.NewReader(`{"email":"ash"}`))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.False(t, out.Valid)
	assert.Equal(t, map[string]string{"email": "Invalid email received."}, out.Errors)

	resp, err = env.client.Post(env.app.URL+"/api/login/validate", "application/json", strings.NewReader(`{"email":" ash@pallet.town "}`))
	require.NoError(t, err)
	out.Valid, out.Errors = false, nil
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &out))
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)

	resp, err = env.client.Post(env.app.URL+"/api/login/validate", "application/json", strings.NewReader(`{"username":"ash"}`))
	require.NoError(t, err)
	_ = readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPILogin(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.client.Post(env.app.URL+"/api/login", "application/json",
		strings.NewReader(`{"email":"ash@pallet.town","password":"raichu"}`))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Password does not match."}`, body)

	resp, err = env.client.Post(env.app.URL+"/api/login", "application/json",
		strings.NewReader(`{"email":"ash@pallet.town","password":"pikachu"}`))
	require.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	info, ok := utils.InspectToken(out.Token)
	require.True(t, ok)
	assert.Equal(t, "ash@pallet.town", info.Subject)

	resp, _ = env.get(t, "/user")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"It's healthy"}`, body)
}
