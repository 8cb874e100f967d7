// Package analytics emits best-effort, deduplicated usage events to the
// backend. Nothing here may fail a caller: errors are logged and dropped.
package analytics

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/elakbay/elakbay/pkg/storage"
	"go.uber.org/zap"
)

const (
	eventsTable       = "analytics_events"
	sessionStorageKey = "elakbay-analytics-session-id"
	landingStorageKey = "elakbay-analytics-landing-path"
)

var profilePathRegex = regexp.MustCompile(`^/profile/([^/]+)$`)

// EventWriter inserts one analytics row. The backend adapter satisfies it.
type EventWriter interface {
	Insert(ctx context.Context, table string, payload any) error
}

// event categories with independent dedup keys
type category int

const (
	categoryPageView category = iota
	categorySearch
	categoryFilter
	categoryContentView
)

// PageView describes one page-view event.
type PageView struct {
	UserID   string
	PagePath string
	Source   string
	Medium   string
}

// Search describes one performed search.
type Search struct {
	UserID      string
	PagePath    string
	Query       string
	Scope       string
	ResultCount *int
	Filters     map[string]any
}

// Filter describes one filter interaction.
type Filter struct {
	UserID      string
	PagePath    string
	Scope       string
	FilterName  string
	FilterValue string
	Filters     map[string]any
}

// ContentView describes a destination, product or profile being opened.
type ContentView struct {
	UserID      string
	PagePath    string
	ContentType string
	ContentID   string
	OwnerID     string
}

// Reporter tracks events with per-category dedup keys held on the
// instance (process lifetime, not persisted). Emission is fire and
// forget; a network failure never reaches the caller.
type Reporter struct {
	writer          EventWriter
	store           storage.Store
	logger          *zap.Logger
	privatePrefixes []string

	mu       sync.Mutex
	lastKeys map[category]string
}

// NewReporter wires a reporter. privatePrefixes are page-path prefixes
// that are never tracked (the dashboard and admin surfaces).
func NewReporter(writer EventWriter, store storage.Store, logger *zap.Logger, privatePrefixes []string) *Reporter {
	if len(privatePrefixes) == 0 {
		privatePrefixes = []string{"/dashboard", "/admin"}
	}

	return &Reporter{
		writer:          writer,
		store:           store,
		logger:          logger,
		privatePrefixes: privatePrefixes,
		lastKeys:        make(map[category]string),
	}
}

// TrackPageView records a page view unless the path is private, the page
// is the viewer's own profile, or the event repeats the previous one.
func (r *Reporter) TrackPageView(ctx context.Context, view PageView) {
	path := view.PagePath
	if path == "" {
		path = "/"
	}
	if !r.shouldTrackPath(path, view.UserID) {
		return
	}

	source, medium := view.Source, view.Medium
	if source == "" {
		source = "direct"
	}
	if medium == "" {
		medium = "none"
	}

	key := path + "|" + source + "|" + medium
	if !r.claimKey(categoryPageView, key) {
		return
	}

	r.emit(ctx, map[string]any{
		"session_id":   r.sessionID(),
		"user_id":      nullable(view.UserID),
		"event_name":   "page_view",
		"page_path":    path,
		"source":       source,
		"medium":       medium,
		"landing_path": r.landingPath(path),
	})
}

// TrackSearch records a performed search; empty queries are dropped.
func (r *Reporter) TrackSearch(ctx context.Context, search Search) {
	query := strings.TrimSpace(search.Query)
	if query == "" {
		return
	}

	count := ""
	if search.ResultCount != nil {
		count = strconv.Itoa(*search.ResultCount)
	}

	key := search.Scope + "|" + strings.ToLower(query) + "|" + count + "|" + search.PagePath
	if !r.claimKey(categorySearch, key) {
		return
	}

	filters := search.Filters
	if filters == nil {
		filters = map[string]any{}
	}

	r.emit(ctx, map[string]any{
		"session_id":          r.sessionID(),
		"user_id":             nullable(search.UserID),
		"event_name":          "search_performed",
		"page_path":           nullable(search.PagePath),
		"search_query":        query,
		"search_scope":        search.Scope,
		"search_result_count": search.ResultCount,
		"filters":             filters,
	})
}

// TrackFilter records a filter interaction.
func (r *Reporter) TrackFilter(ctx context.Context, filter Filter) {
	key := filter.Scope + "|" + filter.FilterName + "|" + filter.FilterValue + "|" + filter.PagePath
	if !r.claimKey(categoryFilter, key) {
		return
	}

	merged := map[string]any{
		"filter_name":  filter.FilterName,
		"filter_value": nullable(filter.FilterValue),
	}
	for k, v := range filter.Filters {
		merged[k] = v
	}

	r.emit(ctx, map[string]any{
		"session_id":   r.sessionID(),
		"user_id":      nullable(filter.UserID),
		"event_name":   "filter_used",
		"page_path":    nullable(filter.PagePath),
		"search_scope": filter.Scope,
		"filters":      merged,
	})
}

// TrackContentView records a destination/product/profile being opened.
// A user viewing their own content is never tracked.
func (r *Reporter) TrackContentView(ctx context.Context, view ContentView) {
	if isOwnerView(view.OwnerID, view.UserID) {
		return
	}

	viewer := view.UserID
	if viewer == "" {
		viewer = "anon"
	}

	key := view.ContentType + "|" + view.ContentID + "|" + viewer
	if !r.claimKey(categoryContentView, key) {
		return
	}

	pagePath := view.PagePath
	if pagePath == "" {
		pagePath = "modal:" + view.ContentType + ":" + view.ContentID
	}

	r.emit(ctx, map[string]any{
		"session_id":   r.sessionID(),
		"user_id":      nullable(view.UserID),
		"event_name":   "page_view",
		"page_path":    pagePath,
		"landing_path": nullable(view.PagePath),
		"metadata": map[string]any{
			"content_type": view.ContentType,
			"content_id":   view.ContentID,
			"owner_id":     nullable(view.OwnerID),
		},
	})
}

// TrackProfileView records a profile page view, skipping self-views.
func (r *Reporter) TrackProfileView(ctx context.Context, profileID, userID string) {
	if isOwnerView(profileID, userID) {
		return
	}

	viewer := userID
	if viewer == "" {
		viewer = "anon"
	}

	key := "profile|" + profileID + "|" + viewer
	if !r.claimKey(categoryContentView, key) {
		return
	}

	path := "/profile/" + profileID

	r.emit(ctx, map[string]any{
		"session_id":   r.sessionID(),
		"user_id":      nullable(userID),
		"event_name":   "page_view",
		"page_path":    path,
		"landing_path": path,
		"metadata": map[string]any{
			"content_type": "profile",
			"content_id":   profileID,
			"owner_id":     profileID,
		},
	})
}

// ResolveSourceMedium derives traffic attribution: UTM parameters win,
// then a cross-host referrer counts as a referral, else direct.
func ResolveSourceMedium(utmSource, utmMedium, referrer, currentHost string) (string, string) {
	utmSource = strings.TrimSpace(utmSource)
	utmMedium = strings.TrimSpace(utmMedium)

	if utmSource != "" || utmMedium != "" {
		source := utmSource
		if source == "" {
			source = "campaign"
		}
		medium := utmMedium
		if medium == "" {
			medium = "unknown"
		}
		return source, medium
	}

	if referrer == "" {
		return "direct", "none"
	}

	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" || parsed.Hostname() == currentHost {
		return "direct", "none"
	}

	return parsed.Hostname(), "referral"
}

// shouldTrackPath gates page views: private prefixes and a user's own
// profile page are never tracked.
func (r *Reporter) shouldTrackPath(path, userID string) bool {
	clean := path
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}

	for _, prefix := range r.privatePrefixes {
		if strings.HasPrefix(clean, prefix) {
			return false
		}
	}

	if match := profilePathRegex.FindStringSubmatch(clean); match != nil {
		if userID != "" && match[1] == userID {
			return false
		}
	}

	return true
}

// claimKey reports whether the event is new for its category, recording
// the key when it is. An identical immediate repeat is dropped.
func (r *Reporter) claimKey(cat category, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastKeys[cat] == key {
		return false
	}
	r.lastKeys[cat] = key
	return true
}

// sessionID returns the persisted analytics session id, minting one on
// first use.
func (r *Reporter) sessionID() string {
	if existing, ok := r.store.Get(sessionStorageKey); ok && existing != "" {
		return existing
	}

	id := uuid.New().String()
	if err := r.store.Set(sessionStorageKey, id); err != nil {
		r.logger.Warn("Failed to persist analytics session id", zap.Error(err))
	}
	return id
}

// landingPath returns the first path this session saw, recording the
// current one when none is stored yet.
func (r *Reporter) landingPath(currentPath string) string {
	if existing, ok := r.store.Get(landingStorageKey); ok && existing != "" {
		return existing
	}

	if err := r.store.Set(landingStorageKey, currentPath); err != nil {
		r.logger.Warn("Failed to persist landing path", zap.Error(err))
	}
	return currentPath
}

func (r *Reporter) emit(ctx context.Context, payload map[string]any) {
	if err := r.writer.Insert(ctx, eventsTable, payload); err != nil {
		r.logger.Error("Failed to insert analytics event",
			zap.String("event_name", payload["event_name"].(string)),
			zap.Error(err),
		)
	}
}

func isOwnerView(ownerID, userID string) bool {
	return ownerID != "" && userID != "" && ownerID == userID
}

// nullable maps "" to nil so the row stores NULL rather than an empty string.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
