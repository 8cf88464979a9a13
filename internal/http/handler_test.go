package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parking-gate-service/internal/auth"
	"parking-gate-service/internal/config"
	"parking-gate-service/internal/domain/parking"
	"parking-gate-service/internal/repository"
	"parking-gate-service/internal/service"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	cfg := &config.Config{
		Parking: config.ParkingConfig{
			FreeParkingRatio: 4,
			Fee:              20000,
			Capacity:         50,
			SeatFeePerTable:  200000,
			DepositPerTable:  20000,
		},
	}
	admissionCfg := service.AdmissionConfig{
		FreeParkingRatio: cfg.Parking.FreeParkingRatio,
		Fee:              cfg.Parking.Fee,
		SeatFeePerTable:  cfg.Parking.SeatFeePerTable,
		DepositPerTable:  cfg.Parking.DepositPerTable,
	}
	admissions := service.NewAdmissionService(store, admissionCfg, zerolog.Nop())
	stats := service.NewStatsService(store, store, zerolog.Nop())

	r := gin.New()
	handler := NewHandler(admissions, stats, cfg, zerolog.Nop())
	handler.Register(r, OperatorAuth(testSecret))
	return r, store
}

func operatorToken(t *testing.T) string {
	t.Helper()
	token, err := auth.MintOperatorToken(testSecret, "op-1", time.Hour)
	if err != nil {
		t.Fatalf("MintOperatorToken: %v", err)
	}
	return token
}

func seedTestReservation(t *testing.T, store *repository.MemoryStore, id string, guests int, plates ...string) {
	t.Helper()
	err := store.CreateReservation(context.Background(), &parking.Reservation{
		ID:          id,
		GuestName:   "guest-" + id,
		GuestCount:  guests,
		Plates:      plates,
		CheckInDate: "2026-08-29",
	})
	if err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListAndSearchReservations(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 8, "12가3456")
	seedTestReservation(t, store, "res-2", 4, "78나9999")

	w := doJSON(t, r, http.MethodGet, "/api/v1/reservations", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var listResp struct {
		Data []parking.Reservation `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Data) != 2 {
		t.Errorf("listed %d reservations, want 2", len(listResp.Data))
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/reservations?plate=3456", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	var searchResp struct {
		Data []parking.Reservation `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &searchResp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(searchResp.Data) != 1 || searchResp.Data[0].ID != "res-1" {
		t.Errorf("search matched %+v, want res-1", searchResp.Data)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 9, "12가3456")

	w := doJSON(t, r, http.MethodGet, "/api/v1/admissions/decision?plate=3456", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data parking.AdmissionDecision `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Classification != parking.ClassFree || resp.Data.Allowance != 3 {
		t.Errorf("decision = %s/%d, want FREE/3", resp.Data.Classification, resp.Data.Allowance)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/admissions/decision?plate=0000", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Classification != parking.ClassWalkIn {
		t.Errorf("classification = %s, want WALK_IN", resp.Data.Classification)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/admissions/decision", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing plate status = %d, want 400", w.Code)
	}
}

func TestAdmitRequiresOperatorToken(t *testing.T) {
	r, _ := newTestRouter(t)

	body := map[string]interface{}{"plate": "12가3456", "charge_fee": true}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", "", body); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", "garbage", body); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestAdmitEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 8, "12가3456")
	token := operatorToken(t)

	body := map[string]interface{}{
		"reservation_id": "res-1",
		"plate":          "12가3456",
		"charge_fee":     false,
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data parking.AdmissionRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.HandledBy != "op-1" {
		t.Errorf("handled by = %q, want op-1 from token", resp.Data.HandledBy)
	}

	res, _ := store.GetReservation(context.Background(), "res-1")
	if res.ParkedCarCount != 1 {
		t.Errorf("parked car count = %d, want 1", res.ParkedCarCount)
	}
}

func TestAdmitVanishedReservationConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	token := operatorToken(t)

	body := map[string]interface{}{
		"reservation_id": "ghost",
		"plate":          "12가3456",
		"charge_fee":     false,
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", token, body)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestReservationHistoryEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 8, "12가3456")
	token := operatorToken(t)

	body := map[string]interface{}{"reservation_id": "res-1", "plate": "12가3456"}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", token, body); w.Code != http.StatusCreated {
		t.Fatalf("admit status = %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/reservations/res-1/admissions", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data []parking.AdmissionRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Plate != "12가3456" {
		t.Errorf("history = %+v", resp.Data)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/v1/reservations/ghost/admissions", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown reservation status = %d, want 404", w.Code)
	}
}

func TestRecentAdmissionsLimit(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 12, "12가3456")
	token := operatorToken(t)

	for _, plate := range []string{"12가3456", "34나5678", "56다7890"} {
		body := map[string]interface{}{"reservation_id": "res-1", "plate": plate}
		if w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", token, body); w.Code != http.StatusCreated {
			t.Fatalf("admit status = %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/admissions?limit=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data []parking.AdmissionRecord `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d records, want 2", len(resp.Data))
	}
	if resp.Data[0].Plate != "56다7890" {
		t.Errorf("not newest first: %+v", resp.Data)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	seedTestReservation(t, store, "res-1", 8, "12가3456")
	token := operatorToken(t)

	body := map[string]interface{}{"plate": "33마4444", "charge_fee": true}
	if w := doJSON(t, r, http.MethodPost, "/api/v1/admissions", token, body); w.Code != http.StatusCreated {
		t.Fatalf("admit status = %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data             parking.DailyStats `json:"data"`
		Capacity         int                `json:"capacity"`
		OccupancyPercent int                `json:"occupancy_percent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.CurrentParked != 1 || resp.Data.TotalRevenue != 20000 {
		t.Errorf("stats = %+v", resp.Data)
	}
	if resp.Capacity != 50 || resp.OccupancyPercent != 2 {
		t.Errorf("capacity/occupancy = %d/%d, want 50/2", resp.Capacity, resp.OccupancyPercent)
	}
}

func TestProvisionReservationEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	token := operatorToken(t)

	body := map[string]interface{}{
		"guest_name":  "박영희",
		"guest_count": 9,
		"plates":      []string{"12가3456"},
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/reservations", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data parking.Reservation `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID == "" || resp.Data.TableCount != 3 {
		t.Errorf("provisioned = %+v", resp.Data)
	}

	list, _ := store.ListReservations(context.Background())
	if len(list) != 1 {
		t.Errorf("roster size = %d, want 1", len(list))
	}

	if w := doJSON(t, r, http.MethodPost, "/api/v1/reservations", "", body); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
}
