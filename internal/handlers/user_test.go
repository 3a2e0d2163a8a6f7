package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/neonpay/neonpay-gobackend/internal/services"
	"github.com/neonpay/neonpay-gobackend/internal/store"
)

func newUserRouter() *mux.Router {
	userService := services.NewUserService(store.NewMemoryUserStore())
	userHandler := NewUserHandler(userService, testSecret)

	router := mux.NewRouter()
	router.HandleFunc("/api/auth/signup", userHandler.Signup).Methods("POST")
	router.HandleFunc("/api/auth/login", userHandler.Login).Methods("POST")
	router.HandleFunc("/api/user/profile", userHandler.GetProfile).Methods("GET")
	router.HandleFunc("/api/user/profile", userHandler.UpdateProfile).Methods("PUT")
	return router
}

func doJSON(router *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestSignupLoginProfileFlow(t *testing.T) {
	router := newUserRouter()

	w := doJSON(router, "POST", "/api/auth/signup", "", `{"username":"alice","password":"hunter2"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var signup struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &signup)
	if signup.Token == "" || signup.User.ID == "" {
		t.Fatalf("expected token and user in response, got %s", w.Body.String())
	}

	t.Run("duplicate signup", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/signup", "", `{"username":"alice","password":"hunter2"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("login", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/login", "", `{"username":"alice","password":"hunter2"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("login wrong password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/login", "", `{"username":"alice","password":"nope"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("profile", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/user/profile", signup.Token, "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "password") {
			t.Error("profile response must not leak the password hash")
		}
	})

	t.Run("update profile", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/user/profile", signup.Token, `{"username":"alicia"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "alicia") {
			t.Errorf("expected updated username in response, got %s", w.Body.String())
		}
	})

	t.Run("profile without token", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/user/profile", "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}
