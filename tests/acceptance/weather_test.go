package acceptance

import (
	"encoding/json"
	"net/http"
)

type weatherResponse struct {
	TempC        float64  `json:"temp_c"`
	Condition    string   `json:"condition"`
	Humidity     *int     `json:"humidity"`
	WindKph      *float64 `json:"wind_kph"`
	LocationName *string  `json:"location_name"`
}

func (s *Suite) TestWeather_ByCoordinates() {
	resp, body := s.getJSON("/api/v1/weather?lat=17.5747&lon=120.3869")
	s.Equal(http.StatusOK, resp.StatusCode)

	var current weatherResponse
	s.Require().NoError(json.Unmarshal(body, &current))
	s.InDelta(30.2, current.TempC, 1e-9)
	s.Equal("Scattered clouds", current.Condition)
	s.Require().NotNil(current.WindKph)
	s.InDelta(9.0, *current.WindKph, 1e-9)
	s.Require().NotNil(current.LocationName)
	s.Equal("Vigan", *current.LocationName)
}

func (s *Suite) TestWeather_CachesRepeatLookups() {
	before := s.Weather.callCount()

	resp, _ := s.getJSON("/api/v1/weather?municipality=Candon")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.getJSON("/api/v1/weather?municipality=Candon")
	s.Equal(http.StatusOK, resp.StatusCode)

	s.Equal(before+1, s.Weather.callCount(), "second lookup should be served from cache")
}

func (s *Suite) TestWeather_RejectsPartialCoordinates() {
	resp, _ := s.getJSON("/api/v1/weather?lat=17.5747")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestWeather_RequiresSomeLocation() {
	resp, _ := s.getJSON("/api/v1/weather")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
