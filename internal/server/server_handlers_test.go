package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"testing"

	"crimson-db/internal/db"
)

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app.ts, http.MethodPost, "/api/auth/signup", map[string]string{"email": "alucard@example.com"})
	assertError(t, resp, http.StatusBadRequest, "Password is required")

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/signup", map[string]string{"email": "alucard@example.com", "password": "short"})
	assertStatus(t, resp, http.StatusBadRequest)

	app.signIn(t, "alucard@example.com")
	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/signup", map[string]string{"email": "alucard@example.com", "password": "correct-horse"})
	assertStatus(t, resp, http.StatusConflict)

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/login", map[string]string{"email": "alucard@example.com", "password": "wrong-horse"})
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestSignupRollsBackWhenProfileFails(t *testing.T) {
	app := newTestApp(t)
	creds := map[string]string{"email": "maria@example.com", "password": "correct-horse"}

	if err := app.conn.Migrator().DropTable(&db.User{}); err != nil {
		t.Fatalf("drop users: %v", err)
	}
	resp := doRequest(t, app.ts, http.MethodPost, "/api/auth/signup", creds)
	assertStatus(t, resp, http.StatusInternalServerError)

	var identities int64
	if err := app.conn.Model(&db.Identity{}).Count(&identities).Error; err != nil {
		t.Fatalf("count identities: %v", err)
	}
	if identities != 0 {
		t.Fatalf("expected the identity to be rolled back, got %d rows", identities)
	}

	if err := app.conn.AutoMigrate(&db.User{}); err != nil {
		t.Fatalf("restore users: %v", err)
	}
	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/signup", creds)
	assertStatus(t, resp, http.StatusCreated)
	if body := decodeBody(t, resp); body["email"] != "maria@example.com" {
		t.Fatalf("unexpected profile %#v", body)
	}
}

func TestLoginCookieSession(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "alucard@example.com")

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	req, err := http.NewRequest(http.MethodPost, app.ts.URL+"/api/auth/login",
		strings.NewReader(`{"email":"alucard@example.com","password":"correct-horse"}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := send(t, client, req)
	assertStatus(t, resp, http.StatusOK)

	var found bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected http-only %s cookie", sessionCookie)
	}

	req, _ = http.NewRequest(http.MethodGet, app.ts.URL+"/api/account", nil)
	resp = send(t, client, req)
	assertStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["email"] != "alucard@example.com" || body["username"] != "alucard" {
		t.Fatalf("unexpected profile %#v", body)
	}

	req, _ = http.NewRequest(http.MethodPost, app.ts.URL+"/api/auth/logout", nil)
	resp = send(t, client, req)
	assertStatus(t, resp, http.StatusOK)

	req, _ = http.NewRequest(http.MethodGet, app.ts.URL+"/api/account", nil)
	resp = send(t, client, req)
	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestLogoutRevokesBearerToken(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "alucard@example.com")

	resp := doAuthedRequest(t, app.ts, http.MethodPost, "/api/auth/logout", token, nil)
	assertStatus(t, resp, http.StatusOK)

	resp = doAuthedRequest(t, app.ts, http.MethodGet, "/api/account", token, nil)
	assertError(t, resp, http.StatusUnauthorized, "Unauthorized")
}

var resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "alucard@example.com")

	resp := doRequest(t, app.ts, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": "nobody@example.com"})
	assertStatus(t, resp, http.StatusOK)
	if strings.Contains(app.logs.String(), "nobody@example.com") {
		t.Fatalf("expected no reset link for an unknown email")
	}

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": "alucard@example.com"})
	assertStatus(t, resp, http.StatusOK)
	match := resetTokenPattern.FindStringSubmatch(app.logs.String())
	if match == nil {
		t.Fatalf("expected reset link in logs")
	}

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"token":    "deadbeef",
		"password": "brand-new-horse",
	})
	assertStatus(t, resp, http.StatusBadRequest)

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/password-reset/confirm", map[string]string{
		"token":    match[1],
		"password": "brand-new-horse",
	})
	assertStatus(t, resp, http.StatusOK)

	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/login", map[string]string{"email": "alucard@example.com", "password": "correct-horse"})
	assertStatus(t, resp, http.StatusUnauthorized)
	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/login", map[string]string{"email": "alucard@example.com", "password": "brand-new-horse"})
	assertStatus(t, resp, http.StatusOK)
}

func TestUpdateAccount(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "alucard@example.com")

	resp := doAuthedRequest(t, app.ts, http.MethodPut, "/api/account", token, map[string]any{
		"username": "son-of-dracula",
		"isDev":    true,
	})
	assertStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["username"] != "son-of-dracula" || body["isDev"] != true {
		t.Fatalf("unexpected profile %#v", body)
	}

	resp = doAuthedRequest(t, app.ts, http.MethodPut, "/api/account", token, map[string]any{})
	assertError(t, resp, http.StatusBadRequest, "No update data provided.")

	resp = doAuthedRequest(t, app.ts, http.MethodPut, "/api/account", token, map[string]any{"email": "adrian@example.com"})
	assertStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["email"] != "adrian@example.com" {
		t.Fatalf("expected changed email, got %#v", body["email"])
	}
	resp = doRequest(t, app.ts, http.MethodPost, "/api/auth/login", map[string]string{"email": "adrian@example.com", "password": "correct-horse"})
	assertStatus(t, resp, http.StatusOK)
}

func uploadRequest(t *testing.T, url, token, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadProfilePicture(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "alucard@example.com")

	image := []byte("not really a png")
	resp := send(t, http.DefaultClient, uploadRequest(t, app.ts.URL+"/api/account/pfp", token, "file", "portrait.PNG", image))
	assertStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	pfpURL, _ := body["pfpURL"].(string)
	if !strings.HasPrefix(pfpURL, "http://localhost/media/avatars/") || !strings.HasSuffix(pfpURL, ".png") {
		t.Fatalf("unexpected pfpURL %q", pfpURL)
	}

	resp = doRequest(t, app.ts, http.MethodGet, strings.TrimPrefix(pfpURL, "http://localhost"), nil)
	assertStatus(t, resp, http.StatusOK)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read media: %v", err)
	}
	if !bytes.Equal(data, image) {
		t.Fatalf("expected stored image bytes, got %q", data)
	}

	resp = doRequest(t, app.ts, http.MethodGet, "/media/avatars/missing.png", nil)
	assertStatus(t, resp, http.StatusNotFound)
}

func TestUploadProfilePictureWithoutFile(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "alucard@example.com")

	resp := send(t, http.DefaultClient, uploadRequest(t, app.ts.URL+"/api/account/pfp", token, "", "", nil))
	assertError(t, resp, http.StatusBadRequest, "No file provided.")

	resp = doAuthedRequest(t, app.ts, http.MethodPost, "/api/account/pfp", token, map[string]string{"image": ""})
	assertError(t, resp, http.StatusBadRequest, "No file provided.")
}

func TestUploadProfilePictureDataURL(t *testing.T) {
	app := newTestApp(t)
	token := app.signIn(t, "alucard@example.com")

	resp := doAuthedRequest(t, app.ts, http.MethodPost, "/api/account/pfp", token, map[string]string{
		"image":    testAvatarData,
		"filename": "avatar.png",
	})
	assertStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if url, _ := body["pfpURL"].(string); !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected pfpURL %q", url)
	}
}
