package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elakbay/elakbay/internal/dto"
	"github.com/elakbay/elakbay/internal/weather"
)

// WeatherHandler serves current conditions through the caching client
type WeatherHandler struct {
	weather *weather.Client
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(weather *weather.Client) *WeatherHandler {
	return &WeatherHandler{
		weather: weather,
	}
}

// Current returns current conditions for lat/lon coordinates or a
// municipality name. Coordinates win when both are present.
func (h *WeatherHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()

	latParam, lonParam := c.Query("lat"), c.Query("lon")
	if latParam != "" || lonParam != "" {
		lat, latErr := strconv.ParseFloat(latParam, 64)
		lon, lonErr := strconv.ParseFloat(lonParam, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Message: "lat and lon must both be valid numbers",
			})
			return
		}

		current, err := h.weather.CurrentByCoordinates(ctx, lat, lon)
		h.respond(c, current, err)
		return
	}

	municipality := c.Query("municipality")
	if municipality == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "provide lat and lon, or a municipality",
		})
		return
	}

	current, err := h.weather.CurrentByMunicipality(ctx, municipality, c.Query("province"), c.Query("country"))
	h.respond(c, current, err)
}

func (h *WeatherHandler) respond(c *gin.Context, current *weather.Current, err error) {
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, weather.ErrMissingAPIKey) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   http.StatusText(status),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, current)
}
