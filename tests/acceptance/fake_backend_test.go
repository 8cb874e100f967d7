package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const fakeJWTSecret = "acceptance-signing-secret"

type fakeUser struct {
	ID       string
	Email    string
	Password string
	Metadata map[string]any
}

// fakeSupabase imitates the slice of the hosted backend the client uses:
// GoTrue password/signup/logout endpoints and PostgREST row endpoints
// with eq/in filters, object Accept negotiation and merge upserts.
type fakeSupabase struct {
	mu       sync.Mutex
	users    map[string]*fakeUser
	refresh  map[string]string
	tables   map[string][]map[string]any
	nextID   int
	authDown bool
}

func newFakeSupabase() *fakeSupabase {
	f := &fakeSupabase{}
	f.reset()
	return f
}

func (f *fakeSupabase) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = make(map[string]*fakeUser)
	f.refresh = make(map[string]string)
	f.tables = make(map[string][]map[string]any)
	f.nextID = 1
	f.authDown = false
}

func (f *fakeSupabase) registerUser(email, password string) *fakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password, nil)
}

func (f *fakeSupabase) addUserLocked(email, password string, metadata map[string]any) *fakeUser {
	user := &fakeUser{
		ID:       fmt.Sprintf("user-%d", f.nextID),
		Email:    email,
		Password: password,
		Metadata: metadata,
	}
	f.nextID++
	f.users[email] = user
	return user
}

func (f *fakeSupabase) seedRow(table string, row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], row)
}

func (f *fakeSupabase) rows(table string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.tables[table]))
	copy(out, f.tables[table])
	return out
}

func (f *fakeSupabase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/auth/v1/"):
		f.serveAuth(w, r)
	case strings.HasPrefix(r.URL.Path, "/rest/v1/"):
		f.serveRows(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSupabase) serveAuth(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/auth/v1/") {
	case "health":
		writeJSON(w, http.StatusOK, map[string]any{"name": "GoTrue"})
	case "logout":
		w.WriteHeader(http.StatusNoContent)
	case "token":
		f.serveToken(w, r)
	case "signup":
		f.serveSignup(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSupabase) serveToken(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.authDown {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": "auth service unavailable"})
		return
	}

	switch r.URL.Query().Get("grant_type") {
	case "password":
		user, ok := f.users[body["email"]]
		if !ok || user.Password != body["password"] {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
			return
		}
		f.writeTokenLocked(w, user)
	case "refresh_token":
		email, ok := f.refresh[body["refresh_token"]]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":             "invalid_grant",
				"error_description": "Invalid Refresh Token",
			})
			return
		}
		f.writeTokenLocked(w, f.users[email])
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "unsupported grant type"})
	}
}

func (f *fakeSupabase) serveSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Data     map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.users[body.Email]; exists {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"msg": "User already registered"})
		return
	}

	user := f.addUserLocked(body.Email, body.Password, body.Data)
	f.writeTokenLocked(w, user)
}

func (f *fakeSupabase) writeTokenLocked(w http.ResponseWriter, user *fakeUser) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if user.Metadata != nil {
		claims["user_metadata"] = user.Metadata
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(fakeJWTSecret))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"msg": err.Error()})
		return
	}

	refreshToken := fmt.Sprintf("refresh-%s-%d", user.ID, len(f.refresh))
	f.refresh[refreshToken] = user.Email

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  token,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
		"expires_in":    3600,
		"user": map[string]any{
			"id":            user.ID,
			"email":         user.Email,
			"user_metadata": user.Metadata,
		},
	})
}

func (f *fakeSupabase) serveRows(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

	switch r.Method {
	case http.MethodGet:
		f.serveSelect(w, r, table)
	case http.MethodPost:
		f.serveWrite(w, r, table)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeSupabase) serveSelect(w http.ResponseWriter, r *http.Request, table string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]map[string]any, 0)
rows:
	for _, row := range f.tables[table] {
		for key, values := range r.URL.Query() {
			if key == "select" || key == "order" || key == "on_conflict" {
				continue
			}
			if !matchFilter(row[key], values[0]) {
				continue rows
			}
		}
		matched = append(matched, row)
	}

	if order := r.URL.Query().Get("order"); strings.HasSuffix(order, ".desc") {
		column := strings.TrimSuffix(order, ".desc")
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := matched[i][column].(string)
			b, _ := matched[j][column].(string)
			return a > b
		})
	}

	if strings.Contains(r.Header.Get("Accept"), "vnd.pgrst.object") {
		if len(matched) != 1 {
			writeJSON(w, http.StatusNotAcceptable, map[string]any{
				"code":    "PGRST116",
				"message": "JSON object requested, multiple (or no) rows returned",
			})
			return
		}
		writeJSON(w, http.StatusOK, matched[0])
		return
	}

	writeJSON(w, http.StatusOK, matched)
}

func (f *fakeSupabase) serveWrite(w http.ResponseWriter, r *http.Request, table string) {
	var row map[string]any
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.Contains(r.Header.Get("Prefer"), "merge-duplicates") {
		conflictCols := strings.Split(r.URL.Query().Get("on_conflict"), ",")
		for i, existing := range f.tables[table] {
			if rowsMatch(existing, row, conflictCols) {
				for k, v := range row {
					f.tables[table][i][k] = v
				}
				w.WriteHeader(http.StatusCreated)
				return
			}
		}
	}

	f.tables[table] = append(f.tables[table], row)
	w.WriteHeader(http.StatusCreated)
}

func matchFilter(value any, filter string) bool {
	str := fmt.Sprintf("%v", value)
	switch {
	case strings.HasPrefix(filter, "eq."):
		return str == strings.TrimPrefix(filter, "eq.")
	case strings.HasPrefix(filter, "in.("):
		inner := strings.TrimSuffix(strings.TrimPrefix(filter, "in.("), ")")
		for _, candidate := range strings.Split(inner, ",") {
			if str == candidate {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func rowsMatch(a, b map[string]any, columns []string) bool {
	for _, col := range columns {
		if fmt.Sprintf("%v", a[col]) != fmt.Sprintf("%v", b[col]) {
			return false
		}
	}
	return len(columns) > 0
}

// fakeWeather serves a fixed OpenWeather-shaped payload.
type fakeWeather struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeWeather) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if r.URL.Query().Get("appid") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid API key"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"weather": []map[string]any{{"main": "Clouds", "description": "scattered clouds", "icon": "03d"}},
		"main":    map[string]any{"temp": 30.2, "humidity": 70},
		"wind":    map[string]any{"speed": 2.5},
		"name":    "Vigan",
	})
}

func (f *fakeWeather) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
