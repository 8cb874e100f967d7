package acceptance

import (
	"encoding/json"
	"net/http"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/internal/dto"
)

func (s *Suite) seedDestination(id, name, userID, createdAt string) {
	s.Supabase.seedRow("destinations", map[string]any{
		"id":               id,
		"destination_name": name,
		"user_id":          userID,
		"created_at":       createdAt,
	})
}

func (s *Suite) TestDestinations_ListWithRatings() {
	user := s.Supabase.registerUser("juan@example.com", "Password123")
	s.Supabase.seedRow("profiles", map[string]any{
		"id":        user.ID,
		"full_name": "Juan Dela Cruz",
	})
	s.seedDestination("dest-1", "Calle Crisologo", user.ID, "2026-05-02T00:00:00Z")
	s.seedDestination("dest-2", "Bantay Bell Tower", user.ID, "2026-05-01T00:00:00Z")
	s.Supabase.seedRow("destination_ratings", map[string]any{"destination_id": "dest-1", "user_id": "other", "rating": 5.0})
	s.Supabase.seedRow("destination_ratings", map[string]any{"destination_id": "dest-1", "user_id": "another", "rating": 3.0})

	resp, body := s.getJSON("/api/v1/destinations")
	s.Equal(http.StatusOK, resp.StatusCode)

	var items []domain.CatalogItem
	s.Require().NoError(json.Unmarshal(body, &items))
	s.Require().Len(items, 2)

	// Newest first.
	s.Equal("Calle Crisologo", items[0].Name)
	s.Equal("Bantay Bell Tower", items[1].Name)

	s.Require().NotNil(items[0].RatingAvg)
	s.InDelta(4.0, *items[0].RatingAvg, 1e-9)
	s.Equal(2, items[0].RatingCount)
	s.Equal("Juan Dela Cruz", items[0].PostedByName)

	s.Nil(items[1].RatingAvg)
}

func (s *Suite) TestDestinations_CreatorFallsBackToTraveler() {
	s.seedDestination("dest-1", "Hidden Falls", "ghost-user", "2026-05-01T00:00:00Z")

	resp, body := s.getJSON("/api/v1/destinations")
	s.Equal(http.StatusOK, resp.StatusCode)

	var items []domain.CatalogItem
	s.Require().NoError(json.Unmarshal(body, &items))
	s.Require().Len(items, 1)
	s.Equal("Traveler", items[0].PostedByName)
}

func (s *Suite) TestCreateDestination_RequiresAuth() {
	resp, body := s.postJSON("/api/v1/destinations", dto.CreateItemRequest{Name: "Calle Crisologo"})

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Equal("Sign in to upload content.", errResp.Message)
	s.Empty(s.Supabase.rows("destinations"))
}

func (s *Suite) TestCreateDestination_SignedIn() {
	s.Supabase.registerUser("juan@example.com", "Password123")
	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	session := s.currentSession(func(sr dto.SessionResponse) bool {
		return sr.User != nil
	})

	resp, _ = s.postJSON("/api/v1/destinations", dto.CreateItemRequest{
		Name:        "Calle Crisologo",
		Description: "Cobblestone street",
		ImageURLs:   []string{"a.png"},
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	rows := s.Supabase.rows("destinations")
	s.Require().Len(rows, 1)
	s.Equal("Calle Crisologo", rows[0]["destination_name"])
	s.Equal(session.User.ID, rows[0]["user_id"])
}

func (s *Suite) TestRateDestination_UpsertsPerUser() {
	s.Supabase.registerUser("juan@example.com", "Password123")
	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.currentSession(func(sr dto.SessionResponse) bool { return sr.User != nil })

	resp, _ = s.postJSON("/api/v1/destinations/dest-1/rating", dto.RatingRequest{Value: 3})
	s.Equal(http.StatusOK, resp.StatusCode)

	// Rating again replaces the previous row rather than adding one.
	resp, _ = s.postJSON("/api/v1/destinations/dest-1/rating", dto.RatingRequest{Value: 5})
	s.Equal(http.StatusOK, resp.StatusCode)

	rows := s.Supabase.rows("destination_ratings")
	s.Require().Len(rows, 1)
	s.Equal(5.0, rows[0]["rating"])
}

func (s *Suite) TestRateDestination_RejectsOutOfRange() {
	s.Supabase.registerUser("juan@example.com", "Password123")
	resp, _ := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "juan@example.com",
		Password: "Password123",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.currentSession(func(sr dto.SessionResponse) bool { return sr.User != nil })

	resp, _ = s.postJSON("/api/v1/destinations/dest-1/rating", dto.RatingRequest{Value: 9})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Empty(s.Supabase.rows("destination_ratings"))
}

func (s *Suite) TestMunicipalities_ListsOnlyMunicipalityProfiles() {
	s.Supabase.seedRow("profiles", map[string]any{
		"id":         "muni-1",
		"full_name":  "Vigan City",
		"role":       "municipality",
		"img_url":    "https://img/vigan.png",
		"created_at": "2026-05-02T00:00:00Z",
	})
	s.Supabase.seedRow("profiles", map[string]any{
		"id":         "muni-2",
		"email":      "candon@example.com",
		"role":       "municipality",
		"created_at": "2026-05-01T00:00:00Z",
	})
	s.Supabase.seedRow("profiles", map[string]any{
		"id":        "user-9",
		"full_name": "Juan Dela Cruz",
		"role":      "traveler",
	})

	resp, body := s.getJSON("/api/v1/municipalities")
	s.Equal(http.StatusOK, resp.StatusCode)

	var items []domain.Municipality
	s.Require().NoError(json.Unmarshal(body, &items))
	s.Require().Len(items, 2)

	// Newest first, name falling back to email.
	s.Equal("Vigan City", items[0].Name)
	s.Require().NotNil(items[0].ImageURL)
	s.Equal("https://img/vigan.png", *items[0].ImageURL)
	s.Equal("candon@example.com", items[1].Name)
}

func (s *Suite) TestProducts_List() {
	s.Supabase.seedRow("products", map[string]any{
		"id":           "prod-1",
		"product_name": "Abel Blanket",
		"created_at":   "2026-05-01T00:00:00Z",
	})

	resp, body := s.getJSON("/api/v1/products")
	s.Equal(http.StatusOK, resp.StatusCode)

	var items []domain.CatalogItem
	s.Require().NoError(json.Unmarshal(body, &items))
	s.Require().Len(items, 1)
	s.Equal("Abel Blanket", items[0].Name)
}
