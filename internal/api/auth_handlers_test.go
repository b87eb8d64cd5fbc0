package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/testutil"
)

func TestAuthHandlers_Register(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	post := func(payload string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Successful Registration", func(t *testing.T) {
		rr := post(`{"username":"newuser", "email":"new@example.com", "password":"password123"}`)
		if status := rr.Code; status != http.StatusCreated {
			t.Fatalf("handler returned wrong status code: got %v want %v %s", status, http.StatusCreated, rr.Body.String())
		}
		var body struct {
			Message string `json:"message"`
			UserID  int64  `json:"user_id"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if body.UserID == 0 {
			t.Error("Expected a user_id in the response")
		}

		user, err := server.Store().GetUserByID(body.UserID)
		if err != nil {
			t.Fatalf("Registered user not found in store: %v", err)
		}
		if user.IsVerified {
			t.Error("Fresh accounts should start unverified")
		}
		if len(user.VerificationCode) != 6 {
			t.Errorf("Expected a 6-digit verification code, got '%s'", user.VerificationCode)
		}
	})

	t.Run("Short Username", func(t *testing.T) {
		rr := post(`{"username":"ab", "email":"ab@example.com", "password":"password123"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("Invalid Email", func(t *testing.T) {
		rr := post(`{"username":"bademail", "email":"not-an-email", "password":"password123"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("Short Password", func(t *testing.T) {
		rr := post(`{"username":"shortpw", "email":"shortpw@example.com", "password":"123"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		rr := post(`{"username":"newuser", "email":"another@example.com", "password":"password123"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for a duplicate username, got %d", rr.Code)
		}
		var body struct {
			Error string `json:"error"`
		}
		json.Unmarshal(rr.Body.Bytes(), &body)
		if body.Error != "Username already exists" {
			t.Errorf("Unexpected error message: '%s'", body.Error)
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		rr := post(`{"username":"thirduser", "email":"new@example.com", "password":"password123"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for a duplicate email, got %d", rr.Code)
		}
	})
}

func TestAuthHandlers_Verification(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	registerPayload := `{"username":"verifyme", "email":"verifyme@example.com", "password":"password123"}`
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(registerPayload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Registration failed: %s", rr.Body.String())
	}
	var registered struct {
		UserID int64 `json:"user_id"`
	}
	json.Unmarshal(rr.Body.Bytes(), &registered)

	verify := func(userID int64, code string) *httptest.ResponseRecorder {
		payload := fmt.Sprintf(`{"user_id":%d, "verification_code":"%s"}`, userID, code)
		req, _ := http.NewRequest("POST", "/api/auth/verify", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Wrong Code", func(t *testing.T) {
		user, _ := server.Store().GetUserByID(registered.UserID)
		wrong := "000000"
		if user.VerificationCode == wrong {
			wrong = "999999"
		}
		rr := verify(registered.UserID, wrong)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for a wrong code, got %d", rr.Code)
		}
	})

	t.Run("Correct Code", func(t *testing.T) {
		user, _ := server.Store().GetUserByID(registered.UserID)
		rr := verify(registered.UserID, user.VerificationCode)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		updated, _ := server.Store().GetUserByID(registered.UserID)
		if !updated.IsVerified {
			t.Error("User should be verified after submitting the correct code")
		}
	})

	t.Run("Verifying Again Is Idempotent", func(t *testing.T) {
		rr := verify(registered.UserID, "any-code")
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200 for an already verified account, got %d", rr.Code)
		}
	})

	t.Run("Unknown User", func(t *testing.T) {
		rr := verify(99999, "123456")
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rr.Code)
		}
	})

	t.Run("Resend Rotates the Code", func(t *testing.T) {
		// A fresh unverified account.
		payload := `{"username":"resendme", "email":"resendme@example.com", "password":"password123"}`
		req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("Registration failed: %s", rr.Body.String())
		}

		req, _ = http.NewRequest("POST", "/api/auth/resend-verification", bytes.NewBufferString(`{"email":"resendme@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		user, _ := server.Store().GetUserByEmail("resendme@example.com")
		if len(user.VerificationCode) != 6 {
			t.Errorf("Expected a fresh 6-digit code, got '%s'", user.VerificationCode)
		}
	})
}

func TestAuthHandlers_Login(t *testing.T) {
	server, db := testutil.SetupTestServer(t)
	router := server.Router()

	testutil.CreateUser(t, server, db, "loginuser", "login@example.com", "password123", false, false)

	login := func(payload string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Successful Login", func(t *testing.T) {
		rr := login(`{"email":"login@example.com", "password":"password123"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var body struct {
			AccessToken string `json:"access_token"`
			User        struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if body.AccessToken == "" {
			t.Error("Expected an access token")
		}
		if body.User.Username != "loginuser" {
			t.Errorf("Expected the user in the response, got '%s'", body.User.Username)
		}
		// Sensitive fields never leak into the response.
		if bytes.Contains(rr.Body.Bytes(), []byte("password_hash")) ||
			bytes.Contains(rr.Body.Bytes(), []byte("verification_code")) {
			t.Error("Response leaks sensitive user fields")
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		rr := login(`{"email":"login@example.com", "password":"wrongpassword"}`)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("Unknown Email", func(t *testing.T) {
		rr := login(`{"email":"ghost@example.com", "password":"password123"}`)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("Banned User Cannot Log In", func(t *testing.T) {
		banned := testutil.CreateUser(t, server, db, "banneduser", "banned@example.com", "password123", false, false)
		if _, err := server.Store().ToggleUserBan(banned.ID); err != nil {
			t.Fatalf("ToggleUserBan failed: %v", err)
		}
		rr := login(`{"email":"banned@example.com", "password":"password123"}`)
		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rr.Code)
		}
	})
}

func TestAuthHandlers_Profile(t *testing.T) {
	server, db := testutil.SetupTestServer(t)
	router := server.Router()

	token := testutil.BearerToken(t, server, db, "profileuser", "profile@example.com", "password123")

	t.Run("Get Profile", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/auth/profile", nil)
		req.Header.Set("Authorization", token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var body struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		json.Unmarshal(rr.Body.Bytes(), &body)
		if body.User.Username != "profileuser" {
			t.Errorf("Expected 'profileuser', got '%s'", body.User.Username)
		}
	})

	t.Run("Get Profile Unauthenticated", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/auth/profile", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("Get Profile with Garbage Token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("Update Profile", func(t *testing.T) {
		payload := `{"bio":"avid reader", "profile_image":"/img/me.png"}`
		req, _ := http.NewRequest("PUT", "/api/auth/profile", bytes.NewBufferString(payload))
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		user, _ := server.Store().GetUserByUsername("profileuser")
		if user.Bio != "avid reader" || user.ProfileImage != "/img/me.png" {
			t.Errorf("Profile was not updated: %+v", user)
		}
	})

	t.Run("Rename to Taken Username", func(t *testing.T) {
		testutil.CreateUser(t, server, db, "occupied", "occupied@example.com", "password123", false, false)
		payload := `{"username":"occupied"}`
		req, _ := http.NewRequest("PUT", "/api/auth/profile", bytes.NewBufferString(payload))
		req.Header.Set("Authorization", token)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})
}
