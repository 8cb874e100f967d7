// Package catalog reads destination and product listings from the backend
// and assembles the list-view projection: rows joined with client-side
// rating aggregates and creator attribution.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/elakbay/elakbay/internal/supabase"
)

const (
	destinationsTable       = "destinations"
	destinationRatingsTable = "destination_ratings"
	productsTable           = "products"
	productRatingsTable     = "product_ratings"
	profilesTable           = "profiles"

	fallbackCreatorName = "Traveler"
)

// RowAPI is the slice of the backend adapter the catalog needs.
type RowAPI interface {
	SelectList(ctx context.Context, table, columns string, filters url.Values, order string, out any) error
	Insert(ctx context.Context, table string, payload any) error
	Upsert(ctx context.Context, table, onConflict string, payload any) error
}

// Service exposes catalog reads and content actions over the backend rows.
type Service struct {
	rows RowAPI
}

// NewService wires a catalog service over the backend adapter.
func NewService(rows RowAPI) *Service {
	return &Service{rows: rows}
}

// CreateItemInput describes a new destination or product row.
type CreateItemInput struct {
	Name        string
	Description string
	ImageURLs   []string
	UserID      string
}

// row shape shared by destinations and products once column names are
// normalized
type itemRow struct {
	ID          string
	Name        string
	Description *string
	ImageURL    *string
	ImageURLs   []string
	CreatedAt   *string
	UserID      *string
}

type ratingAgg struct {
	total float64
	count int
}

type creatorRow struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	ImgURL   *string `json:"img_url"`
}

// ListDestinations returns all destinations, newest first, with rating
// aggregates and creator attribution attached.
func (s *Service) ListDestinations(ctx context.Context) ([]domain.CatalogItem, error) {
	var rows []domain.Destination
	err := s.rows.SelectList(ctx, destinationsTable,
		"id, destination_name, description, image_url, image_urls, created_at, user_id",
		nil, "created_at.desc", &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	items := make([]itemRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemRow{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			ImageURL:    row.ImageURL,
			ImageURLs:   row.ImageURLs,
			CreatedAt:   row.CreatedAt,
			UserID:      row.UserID,
		})
	}

	return s.assemble(ctx, items, destinationRatingsTable, "destination_id")
}

// ListProducts returns all products, newest first, with rating aggregates
// and creator attribution attached.
func (s *Service) ListProducts(ctx context.Context) ([]domain.CatalogItem, error) {
	var rows []domain.Product
	err := s.rows.SelectList(ctx, productsTable,
		"id, product_name, description, image_url, image_urls, created_at, user_id",
		nil, "created_at.desc", &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]itemRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemRow{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			ImageURL:    row.ImageURL,
			ImageURLs:   row.ImageURLs,
			CreatedAt:   row.CreatedAt,
			UserID:      row.UserID,
		})
	}

	return s.assemble(ctx, items, productRatingsTable, "product_id")
}

// ListMunicipalities returns the profiles carrying the municipality role,
// newest first, with the same display-name fallback creators get.
func (s *Service) ListMunicipalities(ctx context.Context) ([]domain.Municipality, error) {
	var rows []creatorRow
	err := s.rows.SelectList(ctx, profilesTable, "id, full_name, email, img_url, role",
		supabase.Eq("role", "municipality"), "created_at.desc", &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}

	out := make([]domain.Municipality, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Municipality{
			ID:       row.ID,
			Name:     creatorName(row),
			ImageURL: row.ImgURL,
		})
	}
	return out, nil
}

// SubmitDestinationRating records one user's rating of a destination,
// replacing any previous rating by the same user.
func (s *Service) SubmitDestinationRating(ctx context.Context, destinationID, userID string, value float64) error {
	if err := validateRating(destinationID, userID, value); err != nil {
		return err
	}

	payload := map[string]any{
		"destination_id": destinationID,
		"user_id":        userID,
		"rating":         value,
	}
	if err := s.rows.Upsert(ctx, destinationRatingsTable, "user_id,destination_id", payload); err != nil {
		return fmt.Errorf("failed to submit destination rating: %w", err)
	}
	return nil
}

// SubmitProductRating records one user's rating of a product, replacing
// any previous rating by the same user.
func (s *Service) SubmitProductRating(ctx context.Context, productID, userID string, value float64) error {
	if err := validateRating(productID, userID, value); err != nil {
		return err
	}

	payload := map[string]any{
		"product_id": productID,
		"user_id":    userID,
		"rating":     value,
	}
	if err := s.rows.Upsert(ctx, productRatingsTable, "user_id,product_id", payload); err != nil {
		return fmt.Errorf("failed to submit product rating: %w", err)
	}
	return nil
}

// CreateDestination inserts a destination row for an authenticated user.
func (s *Service) CreateDestination(ctx context.Context, input CreateItemInput) error {
	payload, err := buildItemPayload("destination_name", input)
	if err != nil {
		return err
	}
	if err := s.rows.Insert(ctx, destinationsTable, payload); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	return nil
}

// CreateProduct inserts a product row for an authenticated user.
func (s *Service) CreateProduct(ctx context.Context, input CreateItemInput) error {
	payload, err := buildItemPayload("product_name", input)
	if err != nil {
		return err
	}
	if err := s.rows.Insert(ctx, productsTable, payload); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// assemble joins items with their rating aggregates and creator profiles.
// Rating averages are computed here, never read from the backend.
func (s *Service) assemble(ctx context.Context, items []itemRow, ratingsTable, idColumn string) ([]domain.CatalogItem, error) {
	ratings, err := s.fetchRatings(ctx, ratingsTable, idColumn)
	if err != nil {
		return nil, err
	}

	creators, err := s.fetchCreators(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CatalogItem, 0, len(items))
	for _, row := range items {
		item := domain.CatalogItem{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			ImageURLs:    row.ImageURLs,
			CreatedAt:    row.CreatedAt,
			PostedByName: fallbackCreatorName,
		}

		// The first gallery image wins over the legacy single column.
		if len(row.ImageURLs) > 0 {
			first := row.ImageURLs[0]
			item.ImageURL = &first
		} else {
			item.ImageURL = row.ImageURL
		}

		if agg, ok := ratings[row.ID]; ok && agg.count > 0 {
			avg := agg.total / float64(agg.count)
			item.RatingAvg = &avg
			item.RatingCount = agg.count
		}

		if row.UserID != nil {
			if creator, ok := creators[*row.UserID]; ok {
				item.PostedByName = creatorName(creator)
				item.PostedByImageURL = creator.ImgURL
			}
		}

		out = append(out, item)
	}

	return out, nil
}

func (s *Service) fetchRatings(ctx context.Context, table, idColumn string) (map[string]ratingAgg, error) {
	var rows []map[string]any
	if err := s.rows.SelectList(ctx, table, idColumn+", rating", nil, "", &rows); err != nil {
		return nil, fmt.Errorf("failed to load ratings from %s: %w", table, err)
	}

	aggs := make(map[string]ratingAgg, len(rows))
	for _, row := range rows {
		id, _ := row[idColumn].(string)
		if id == "" {
			continue
		}
		value, _ := row["rating"].(float64)
		agg := aggs[id]
		agg.total += value
		agg.count++
		aggs[id] = agg
	}
	return aggs, nil
}

func (s *Service) fetchCreators(ctx context.Context, items []itemRow) (map[string]creatorRow, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(items))
	for _, row := range items {
		if row.UserID == nil || *row.UserID == "" {
			continue
		}
		if _, ok := seen[*row.UserID]; ok {
			continue
		}
		seen[*row.UserID] = struct{}{}
		ids = append(ids, *row.UserID)
	}

	creators := make(map[string]creatorRow, len(ids))
	if len(ids) == 0 {
		return creators, nil
	}

	var rows []creatorRow
	err := s.rows.SelectList(ctx, profilesTable, "id, full_name, email, img_url",
		supabase.In("id", ids), "", &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator profiles: %w", err)
	}

	for _, row := range rows {
		creators[row.ID] = row
	}
	return creators, nil
}

func creatorName(creator creatorRow) string {
	if creator.FullName != nil && strings.TrimSpace(*creator.FullName) != "" {
		return *creator.FullName
	}
	if creator.Email != nil && strings.TrimSpace(*creator.Email) != "" {
		return *creator.Email
	}
	return fallbackCreatorName
}

func validateRating(targetID, userID string, value float64) error {
	if targetID == "" || userID == "" {
		return fmt.Errorf("rating requires a target and an authenticated user")
	}
	if value < 1 || value > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %v", value)
	}
	return nil
}

func buildItemPayload(nameColumn string, input CreateItemInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.UserID == "" {
		return nil, fmt.Errorf("creating content requires an authenticated user")
	}

	payload := map[string]any{
		nameColumn: name,
		"user_id":  input.UserID,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		payload["description"] = desc
	}
	if len(input.ImageURLs) > 0 {
		payload["image_urls"] = input.ImageURLs
		payload["image_url"] = input.ImageURLs[0]
	}
	return payload, nil
}
