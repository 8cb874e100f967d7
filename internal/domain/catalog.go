package domain

// Destination is a row from the destinations table.
type Destination struct {
	ID          string   `json:"id"`
	Name        string   `json:"destination_name"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	ImageURLs   []string `json:"image_urls"`
	CreatedAt   *string  `json:"created_at"`
	UserID      *string  `json:"user_id"`
}

// Product is a row from the products table.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"product_name"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	ImageURLs   []string `json:"image_urls"`
	CreatedAt   *string  `json:"created_at"`
	UserID      *string  `json:"user_id"`
}

// Municipality is a profile row with the municipality role, projected to
// the chip the home page renders.
type Municipality struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

// Rating is one user's rating of a destination or product. Uniqueness per
// (user, target) is enforced by the backend, not here.
type Rating struct {
	TargetID string  `json:"target_id"`
	UserID   string  `json:"user_id"`
	Value    float64 `json:"rating"`
}

// CatalogItem is the list-view projection of a destination or product:
// the row joined with its aggregated rating and creator attribution.
// Ratings are derived client-side by averaging rating rows per target.
type CatalogItem struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	ImageURL         *string  `json:"image_url"`
	ImageURLs        []string `json:"image_urls"`
	CreatedAt        *string  `json:"created_at"`
	RatingAvg        *float64 `json:"rating_avg,omitempty"`
	RatingCount      int      `json:"rating_count"`
	PostedByName     string   `json:"posted_by_name"`
	PostedByImageURL *string  `json:"posted_by_image_url"`
}
