package acceptance

import (
	"net/http"

	"github.com/elakbay/elakbay/internal/dto"
)

func (s *Suite) TestEvents_PageViewRecorded() {
	resp, _ := s.postJSON("/api/v1/events", dto.EventRequest{
		Type:     "page_view",
		PagePath: "/accept-events-1",
	})
	s.Equal(http.StatusAccepted, resp.StatusCode)

	rows := s.Supabase.rows("analytics_events")
	s.Require().Len(rows, 1)
	s.Equal("page_view", rows[0]["event_name"])
	s.Equal("/accept-events-1", rows[0]["page_path"])
	s.Equal("direct", rows[0]["source"])
	s.NotEmpty(rows[0]["session_id"])
}

func (s *Suite) TestEvents_RepeatPageViewDeduplicated() {
	event := dto.EventRequest{Type: "page_view", PagePath: "/accept-events-2"}

	resp, _ := s.postJSON("/api/v1/events", event)
	s.Equal(http.StatusAccepted, resp.StatusCode)

	// The duplicate is still accepted but no second row lands.
	resp, _ = s.postJSON("/api/v1/events", event)
	s.Equal(http.StatusAccepted, resp.StatusCode)

	s.Len(s.Supabase.rows("analytics_events"), 1)
}

func (s *Suite) TestEvents_PrivatePathsNotRecorded() {
	resp, _ := s.postJSON("/api/v1/events", dto.EventRequest{
		Type:     "page_view",
		PagePath: "/dashboard/listings",
	})
	s.Equal(http.StatusAccepted, resp.StatusCode)

	s.Empty(s.Supabase.rows("analytics_events"))
}

func (s *Suite) TestEvents_SearchRecorded() {
	count := 7
	resp, _ := s.postJSON("/api/v1/events", dto.EventRequest{
		Type:        "search_performed",
		PagePath:    "/accept-events-3",
		Query:       "vigan",
		Scope:       "destinations",
		ResultCount: &count,
	})
	s.Equal(http.StatusAccepted, resp.StatusCode)

	rows := s.Supabase.rows("analytics_events")
	s.Require().Len(rows, 1)
	s.Equal("search_performed", rows[0]["event_name"])
	s.Equal("vigan", rows[0]["search_query"])
	s.Equal(7.0, rows[0]["search_result_count"])
}

func (s *Suite) TestEvents_UnknownTypeRejected() {
	resp, _ := s.postJSON("/api/v1/events", dto.EventRequest{
		Type:     "teleport",
		PagePath: "/somewhere",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
