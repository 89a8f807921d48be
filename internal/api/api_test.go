package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ameliecafe/storefront/internal/db"
	"github.com/ameliecafe/storefront/internal/store"
)

const (
	testEmail    = "admin@ameliecafe.com.br"
	testPassword = "correct horse"
)

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	testDB := db.NewTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := store.CreateUser(context.Background(), testDB, testEmail, string(hash)); err != nil {
		t.Fatalf("create user: %v", err)
	}

	secret, err := store.GetJWTSecret(context.Background(), testDB)
	if err != nil {
		t.Fatalf("get jwt secret: %v", err)
	}

	srv := httptest.NewServer(NewRouter(testDB, secret, nil))
	t.Cleanup(srv.Close)
	return srv, testDB
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body, _ := json.Marshal(loginRequest{Email: testEmail, Password: testPassword})
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if lr.Token == "" {
		t.Fatal("login returned empty token")
	}
	return lr.Token
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(loginRequest{Email: testEmail, Password: "wrong"})
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestUnauthenticatedMutationRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", "", productRequest{Name: "Croissant", Price: "12,50"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestProductCRUDFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	// Create.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", token, productRequest{
		Name:        "Croissant",
		Description: "Massa folhada",
		Price:       "12,50",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created productResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created product: %v", err)
	}
	resp.Body.Close()
	if created.ID == "" {
		t.Fatal("created product has empty id")
	}
	if created.Price != "12,50" {
		t.Errorf("created price = %q, want %q", created.Price, "12,50")
	}

	// List includes it.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/products", "", nil)
	var list []productResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode product list: %v", err)
	}
	resp.Body.Close()
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v, want single product %s", list, created.ID)
	}

	// Update.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/products/"+created.ID, token, productRequest{
		Name:        "Croissant Integral",
		Description: "Massa folhada integral",
		Price:       "14,00",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var updated productResponse
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated product: %v", err)
	}
	resp.Body.Close()
	if updated.Name != "Croissant Integral" || updated.Price != "14,00" {
		t.Errorf("updated = %+v", updated)
	}

	// Delete.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/products/"+created.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/products/"+created.ID, "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestInvalidPriceRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	for _, price := range []string{"", "-5", "abc", "1,234"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", token, productRequest{Name: "Bolo", Price: price})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("price %q: status = %d, want %d", price, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/products", token, productRequest{Name: "Bolo", Price: "10,00"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("mutation after logout status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestChangePassword(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/auth/password", token, changePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong current password status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/auth/password", token, changePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "new password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("change password status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	body, _ := json.Marshal(loginRequest{Email: testEmail, Password: "new password"})
	loginResp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Errorf("login with new password status = %d, want %d", loginResp.StatusCode, http.StatusOK)
	}
}
