package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/Pk1316/slot-swapper-backend/notify"
	"github.com/Pk1316/slot-swapper-backend/repositories"
	"github.com/Pk1316/slot-swapper-backend/services"
)

const testPassword = "Sup3r-secret-pass!"

func newTestHandler(t *testing.T, stats StatsStore) http.Handler {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	store := repositories.NewStore(db, log)
	slots := repositories.NewSlotRepository(store, log)
	swaps := repositories.NewSwapRequestRepository(store, log)
	users := repositories.NewUserRepository(store)

	fanout := notify.NewFanout(log, &notify.NopMailer{})
	coordinator := services.NewSwapCoordinator(store, slots, swaps, users, fanout, log)
	server := NewServer(
		log,
		services.NewAuthService(users, time.Hour),
		services.NewSlotService(slots, log),
		coordinator,
		fanout,
	)
	return server.Handler(NewLimiterStore(1000, 1000), stats)
}

func do(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.RemoteAddr = "10.0.0.1:55000"
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func signup(t *testing.T, handler http.Handler, name, email string) authResponse {
	t.Helper()
	rec := do(t, handler, http.MethodPost, "/api/auth/signup", "", signupRequest{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authResponse](t, rec)
}

func createSlot(t *testing.T, handler http.Handler, token, title, status string) slotResponse {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Second)
	rec := do(t, handler, http.MethodPost, "/api/events", token, createSlotRequest{
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[slotResponse](t, rec)
}

func TestAPI_Auth(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	alice := signup(t, handler, "Alice", "alice@test.com")
	req.NotEmpty(alice.Token)
	req.Equal("alice@test.com", alice.User.Email)

	rec := do(t, handler, http.MethodPost, "/api/auth/signup", "", signupRequest{
		Name: "Impostor", Email: "alice@test.com", Password: testPassword,
	})
	req.Equal(http.StatusConflict, rec.Code)

	rec = do(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email: "alice@test.com", Password: testPassword,
	})
	req.Equal(http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email: "alice@test.com", Password: "Wrong-passw0rd!!",
	})
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestAPI_RequiresToken(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)

	rec := do(t, handler, http.MethodGet, "/api/events", "", nil)
	req.Equal(http.StatusUnauthorized, rec.Code)

	rec = do(t, handler, http.MethodGet, "/api/events", "not-a-token", nil)
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestAPI_SlotLifecycle(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)
	alice := signup(t, handler, "Alice", "alice@test.com")
	bob := signup(t, handler, "Bob", "bob@test.com")

	slot := createSlot(t, handler, alice.Token, "Team Sync", "")
	req.Equal("BUSY", slot.Status)

	// Toggle to swappable.
	rec := do(t, handler, http.MethodPatch, "/api/events/"+slot.ID, alice.Token, map[string]any{
		"status": "SWAPPABLE",
	})
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("SWAPPABLE", decode[slotResponse](t, rec).Status)

	// Nobody else may touch it.
	rec = do(t, handler, http.MethodPatch, "/api/events/"+slot.ID, bob.Token, map[string]any{
		"title": "Hijacked",
	})
	req.Equal(http.StatusForbidden, rec.Code)

	// The lock status is not settable over the API.
	rec = do(t, handler, http.MethodPatch, "/api/events/"+slot.ID, alice.Token, map[string]any{
		"status": "SWAP_PENDING",
	})
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = do(t, handler, http.MethodGet, "/api/events", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Len(decode[[]slotResponse](t, rec), 1)

	rec = do(t, handler, http.MethodDelete, "/api/events/"+slot.ID, alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodDelete, "/api/events/"+slot.ID, alice.Token, nil)
	req.Equal(http.StatusNotFound, rec.Code)
}

func TestAPI_SwapFlow(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)
	alice := signup(t, handler, "Alice", "alice@test.com")
	bob := signup(t, handler, "Bob", "bob@test.com")

	slotA := createSlot(t, handler, alice.Token, "Team Sync", "SWAPPABLE")
	slotB := createSlot(t, handler, bob.Token, "Focus Block", "SWAPPABLE")

	// Alice only sees Bob's offer, not her own.
	rec := do(t, handler, http.MethodGet, "/api/swap/swappable-slots", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	offers := decode[[]slotResponse](t, rec)
	req.Len(offers, 1)
	req.Equal(slotB.ID, offers[0].ID)

	rec = do(t, handler, http.MethodPost, "/api/swap/swap-request", alice.Token, proposeSwapRequest{
		MySlotID:    slotA.ID,
		TheirSlotID: slotB.ID,
	})
	req.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[swapResponse](t, rec)
	req.Equal("PENDING", record.Status)

	// Both slots are locked now; owner edits bounce off.
	rec = do(t, handler, http.MethodPatch, "/api/events/"+slotA.ID, alice.Token, map[string]any{
		"title": "Renamed",
	})
	req.Equal(http.StatusConflict, rec.Code)

	// Locked slots leave the marketplace.
	rec = do(t, handler, http.MethodGet, "/api/swap/swappable-slots", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Empty(decode[[]slotResponse](t, rec))

	// Only Bob may answer.
	rec = do(t, handler, http.MethodPost, "/api/swap/swap-response/"+record.ID, alice.Token, respondToSwapRequest{Accept: true})
	req.Equal(http.StatusForbidden, rec.Code)

	rec = do(t, handler, http.MethodPost, "/api/swap/swap-response/"+record.ID, bob.Token, respondToSwapRequest{Accept: true})
	req.Equal(http.StatusOK, rec.Code, rec.Body.String())
	resolved := decode[swapResponse](t, rec)
	req.Equal("ACCEPTED", resolved.Status)
	req.NotNil(resolved.ResolvedAt)

	// Ownership switched: Alice now holds Bob's old slot.
	rec = do(t, handler, http.MethodGet, "/api/events", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	mine := decode[[]slotResponse](t, rec)
	req.Len(mine, 1)
	req.Equal(slotB.ID, mine[0].ID)
	req.Equal("BUSY", mine[0].Status)

	// Answering twice is refused.
	rec = do(t, handler, http.MethodPost, "/api/swap/swap-response/"+record.ID, bob.Token, respondToSwapRequest{Accept: false})
	req.Equal(http.StatusConflict, rec.Code)

	// The resolved request shows up for both parties.
	rec = do(t, handler, http.MethodGet, "/api/swap/my-requests", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	requests := decode[myRequestsResponse](t, rec)
	req.Len(requests.Outgoing, 1)
	req.Empty(requests.Incoming)
	req.Equal("ACCEPTED", requests.Outgoing[0].Status)

	rec = do(t, handler, http.MethodGet, "/api/swap/my-requests", bob.Token, nil)
	req.Equal(http.StatusOK, rec.Code)
	requests = decode[myRequestsResponse](t, rec)
	req.Len(requests.Incoming, 1)
	req.Empty(requests.Outgoing)
}

func TestAPI_RateLimitKeying(t *testing.T) {
	req := require.New(t)
	stats := newMemoryStats()
	handler := newTestHandler(t, stats)
	alice := signup(t, handler, "Alice", "alice@test.com")

	rec := do(t, handler, http.MethodGet, "/api/events", alice.Token, nil)
	req.Equal(http.StatusOK, rec.Code)

	// The authenticated request is counted against the user, not the IP the
	// anonymous signup came from.
	req.Equal(1, stats.allowed[alice.User.ID])
	req.Equal(1, stats.allowed["10.0.0.1"], "only the signup itself is keyed by IP")
}

func TestAPI_ProposeValidation(t *testing.T) {
	req := require.New(t)
	handler := newTestHandler(t, nil)
	alice := signup(t, handler, "Alice", "alice@test.com")

	rec := do(t, handler, http.MethodPost, "/api/swap/swap-request", alice.Token, proposeSwapRequest{})
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = do(t, handler, http.MethodPost, "/api/swap/swap-request", alice.Token, proposeSwapRequest{
		MySlotID:    "ghost-a",
		TheirSlotID: "ghost-b",
	})
	req.Equal(http.StatusNotFound, rec.Code)
}
