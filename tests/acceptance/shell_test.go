package acceptance

import (
	"encoding/json"
	"net/http"

	"github.com/elakbay/elakbay/internal/dto"
)

func (s *Suite) shellState() dto.ShellStateResponse {
	_, body := s.getJSON("/api/v1/shell")

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	return state
}

func (s *Suite) TestShell_ViewSwitchPersists() {
	resp, body := s.doJSON(http.MethodPut, "/api/v1/shell/view", dto.ShellViewRequest{View: "destinations"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("destinations", state.View)

	s.Equal("destinations", s.shellState().View)
}

func (s *Suite) TestShell_DashboardRequiresSession() {
	resp, body := s.doJSON(http.MethodPut, "/api/v1/shell/view", dto.ShellViewRequest{View: "dashboard"})
	s.Equal(http.StatusOK, resp.StatusCode)

	// Signed out, the invariant lands the shell on home instead.
	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("home", state.View)
}

func (s *Suite) TestShell_DashboardReachableSignedIn() {
	s.Supabase.registerUser("juan@example.com", "Password123")
	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.currentSession(func(sr dto.SessionResponse) bool { return sr.User != nil })

	resp, body := s.doJSON(http.MethodPut, "/api/v1/shell/view", dto.ShellViewRequest{View: "dashboard"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("dashboard", state.View)
}

func (s *Suite) TestShell_UnknownViewRejected() {
	resp, _ := s.doJSON(http.MethodPut, "/api/v1/shell/view", dto.ShellViewRequest{View: "settings"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestShell_ProfileSelection() {
	resp, body := s.doJSON(http.MethodPut, "/api/v1/shell/profile", dto.ShellProfileRequest{ProfileID: "muni-1"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("profile", state.View)
	s.Equal("muni-1", state.SelectedProfileID)

	// Clearing the selection sends the profile view home.
	resp, body = s.doJSON(http.MethodDelete, "/api/v1/shell/profile", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	state = dto.ShellStateResponse{}
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("home", state.View)
	s.Empty(state.SelectedProfileID)
}

func (s *Suite) TestShell_JumpForcesHomeAndResolvesAnchor() {
	resp, _ := s.doJSON(http.MethodPut, "/api/v1/shell/view", dto.ShellViewRequest{View: "products"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, body := s.doJSON(http.MethodPost, "/api/v1/shell/jump", dto.ShellJumpRequest{Section: "municipalities"})
	s.Equal(http.StatusAccepted, resp.StatusCode)

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.Equal("home", state.View)

	// The poller finds the section and clears the pending anchor.
	s.Require().Eventually(func() bool {
		return s.shellState().PendingAnchor == ""
	}, settleTimeout, settleTick, "pending anchor was not resolved")
}

func (s *Suite) TestShell_ScrollTogglesAffordance() {
	resp, body := s.doJSON(http.MethodPost, "/api/v1/shell/scroll", dto.ShellScrollRequest{OffsetY: 700})
	s.Equal(http.StatusOK, resp.StatusCode)

	var state dto.ShellStateResponse
	s.Require().NoError(json.Unmarshal(body, &state))
	s.True(state.ShowScrollTop)

	resp, body = s.doJSON(http.MethodPost, "/api/v1/shell/scroll", dto.ShellScrollRequest{OffsetY: 0})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &state))
	s.False(state.ShowScrollTop)
}
