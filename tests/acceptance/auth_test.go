package acceptance

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/elakbay/elakbay/internal/dto"
)

const (
	settleTimeout = 3 * time.Second
	settleTick    = 50 * time.Millisecond
)

// currentSession polls /me until cond holds; session state lands through
// the auth-change subscription, so it settles shortly after the call.
func (s *Suite) currentSession(cond func(dto.SessionResponse) bool) dto.SessionResponse {
	var session dto.SessionResponse
	s.Require().Eventually(func() bool {
		_, body := s.getJSON("/api/v1/auth/me")
		if err := json.Unmarshal(body, &session); err != nil {
			return false
		}
		return cond(session)
	}, settleTimeout, settleTick, "session state did not settle")
	return session
}

func (s *Suite) TestLogin_Success() {
	s.Supabase.registerUser("juan@example.com", "Password123")

	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "Juan@Example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	session := s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.User != nil
	})
	s.Equal("juan@example.com", session.User.Email)
}

func (s *Suite) TestLogin_EnsuresProfileRow() {
	s.Supabase.registerUser("juan@example.com", "Password123")

	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	session := s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.Profile != nil
	})
	s.Equal(session.User.ID, session.Profile.ID)

	profiles := s.Supabase.rows("profiles")
	s.Require().Len(profiles, 1)
	s.Equal(session.User.ID, profiles[0]["id"])
}

func (s *Suite) TestLogin_ExistingProfileIsNotRecreated() {
	user := s.Supabase.registerUser("juan@example.com", "Password123")
	s.Supabase.seedRow("profiles", map[string]any{
		"id":        user.ID,
		"full_name": "Juan Dela Cruz",
		"role":      "traveler",
	})

	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	session := s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.Profile != nil
	})

	s.Require().NotNil(session.Profile.FullName)
	s.Equal("Juan Dela Cruz", *session.Profile.FullName)
	s.Len(s.Supabase.rows("profiles"), 1)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.Supabase.registerUser("juan@example.com", "Password123")

	resp, body := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "wrong",
	})

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Contains(errResp.Message, "Invalid login credentials")
}

func (s *Suite) TestLogin_InvalidEmailRejectedLocally() {
	resp, body := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "not-an-email",
		Password: "Password123",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Equal("Please enter a valid email address.", errResp.Message)
}

func (s *Suite) TestSignup_Success() {
	resp, _ := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:           "maria@example.com",
		Password:        "Password123",
		ConfirmPassword: "Password123",
		FullName:        "Maria Clara",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	session := s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.User != nil
	})
	s.Equal("maria@example.com", session.User.Email)

	// Signup upserts the profile explicitly.
	profiles := s.Supabase.rows("profiles")
	s.Require().Len(profiles, 1)
	s.Equal("Maria Clara", profiles[0]["full_name"])
}

func (s *Suite) TestSignup_ShortPassword() {
	resp, body := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:           "maria@example.com",
		Password:        "short",
		ConfirmPassword: "short",
		FullName:        "Maria Clara",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Equal("Password must be at least 6 characters.", errResp.Message)
	s.Empty(s.Supabase.rows("profiles"))
}

func (s *Suite) TestSignup_MismatchedConfirm() {
	resp, body := s.postJSON("/api/v1/auth/signup", dto.SignupRequest{
		Email:           "maria@example.com",
		Password:        "Password123",
		ConfirmPassword: "Password124",
		FullName:        "Maria Clara",
	})

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Equal("Passwords do not match.", errResp.Message)
}

func (s *Suite) TestLogout_ClearsSession() {
	s.Supabase.registerUser("juan@example.com", "Password123")

	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.User != nil
	})

	resp, _ = s.postJSON("/api/v1/auth/logout", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.User == nil
	})
}

func (s *Suite) TestGoogle_ReturnsAuthorizeURL() {
	resp, body := s.getJSON("/api/v1/auth/google")

	s.Equal(http.StatusOK, resp.StatusCode)

	var google dto.GoogleAuthResponse
	s.Require().NoError(json.Unmarshal(body, &google))
	s.Contains(google.URL, "/auth/v1/authorize?")
	s.Contains(google.URL, "provider=google")
}
