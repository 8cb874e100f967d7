package acceptance

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Suite) TestHealthEndpoint() {
	resp, body := s.getJSON("/health")

	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]string
	s.Require().NoError(json.Unmarshal(body, &health))
	s.Equal("pass", health["status"])
	s.Equal("configured", health["backend"])
}

func (s *Suite) TestMetricsEndpoint() {
	resp, body := s.getJSON("/metrics")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.True(strings.Contains(string(body), "# ") || len(body) == 0,
		"expected prometheus exposition output")
}
