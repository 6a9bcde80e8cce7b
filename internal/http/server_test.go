package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financesense/internal/advisor"
	"financesense/internal/events"
	"financesense/internal/services"
	"financesense/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := events.NewBus()
	finance := services.NewFinanceService(memory.New(), bus, nil)
	advisory := advisor.NewService(nil, 0)
	srv := NewServer(":0", finance, advisory, bus)
	t.Cleanup(func() {
		srv.rateLimiter.stop()
		srv.stopCacheSweep()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestAddTransactionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Success
	rr := doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"Gastei R$80,50 no mercado"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var tx transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Amount.Cents != 8050 || tx.Category != "Alimentação" || tx.Type != "expense" {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if tx.Amount.Formatted != "R$ 80,50" {
		t.Errorf("formatted = %q", tx.Amount.Formatted)
	}

	// No amount in input: rejected with guidance
	rr = doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"gastei no mercado"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "valor") {
		t.Errorf("422 body should carry phrasing guidance: %s", rr.Body.String())
	}

	// Malformed JSON
	rr = doJSON(t, srv, http.MethodPost, "/transactions", `{`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// Empty input
	rr = doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// Wrong method on the collection
	rr = doJSON(t, srv, http.MethodDelete, "/transactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"mercado 50"}`)
	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"recebi 3000 de salário"}`)

	rr := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != 200 {
		t.Fatalf("transactions status=%d", rr.Code)
	}
	var txs []transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Errorf("len(transactions) = %d, want 2", len(txs))
	}

	rr = doJSON(t, srv, http.MethodGet, "/categories", "")
	if rr.Code != 200 {
		t.Fatalf("categories status=%d", rr.Code)
	}
	var cats []categoryJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Alimentação" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Empty store serves the illustrative placeholder.
	rr := doJSON(t, srv, http.MethodGet, "/dashboard", "")
	if rr.Code != 200 {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	var dash dashboardJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatal(err)
	}
	if !dash.Placeholder {
		t.Error("empty store must serve placeholder dashboard")
	}
	if len(dash.DailyTrend) != 7 || len(dash.Alerts) == 0 {
		t.Errorf("trend=%d alerts=%d", len(dash.DailyTrend), len(dash.Alerts))
	}

	// A write invalidates the cached view via the bus.
	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"recebi 3000 de salário"}`)

	rr = doJSON(t, srv, http.MethodGet, "/dashboard", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatal(err)
	}
	if dash.Placeholder {
		t.Error("dashboard must switch to real data after a write")
	}
	if dash.Summary.TotalIncome.Cents != 3000_00 {
		t.Errorf("income = %d, want 300000", dash.Summary.TotalIncome.Cents)
	}
}

func TestGoalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/goals", `{"title":"Viagem","targetAmountCents":500000,"targetDate":"01/06/2026"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var goal goalJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatal(err)
	}
	if goal.ID == "" || goal.TargetAmount.Cents != 500000 {
		t.Errorf("goal = %+v", goal)
	}

	// Progress update, clamped at the target.
	rr = doJSON(t, srv, http.MethodPost, "/goals/"+goal.ID+"/progress", `{"amountCents":600000}`)
	if rr.Code != 200 {
		t.Fatalf("progress status=%d: %s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatal(err)
	}
	if goal.CurrentAmount.Cents != 500000 {
		t.Errorf("progress = %d, want clamp at 500000", goal.CurrentAmount.Cents)
	}

	// Unknown goal
	rr = doJSON(t, srv, http.MethodPost, "/goals/nope/progress", `{"amountCents":1}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	// Invalid goal payload
	rr = doJSON(t, srv, http.MethodPost, "/goals", `{"title":"","targetAmountCents":100}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/goals", "")
	var goals []goalJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &goals); err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 {
		t.Errorf("goals = %d, want 1", len(goals))
	}

	rr = doJSON(t, srv, http.MethodGet, "/goals/suggested", "")
	if rr.Code != 200 {
		t.Fatalf("suggested goals status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Fundo de emergência") {
		t.Error("suggested goals catalog missing")
	}
}

func TestSuggestionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/suggestions", "")
	var suggestions []suggestionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &suggestions); err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(suggestions))
	}

	rr = doJSON(t, srv, http.MethodPost, "/suggestions/1/apply", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var goal goalJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatal(err)
	}
	if !goal.IsFromSuggestion || goal.TargetAmount.Cents != 15000*12 {
		t.Errorf("goal = %+v", goal)
	}

	// Applying twice conflicts.
	rr = doJSON(t, srv, http.MethodPost, "/suggestions/1/apply", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	// Unknown and malformed IDs.
	rr = doJSON(t, srv, http.MethodPost, "/suggestions/99/apply", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, "/suggestions/abc/apply", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/suggestions", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &suggestions); err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 2 {
		t.Errorf("suggestions after apply = %d, want 2", len(suggestions))
	}
}

func TestInsightsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"recebi 5000 de salário"}`)
	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"mercado 300"}`)

	rr := doJSON(t, srv, http.MethodGet, "/insights/analysis", "")
	if rr.Code != 200 {
		t.Fatalf("analysis status=%d", rr.Code)
	}
	var analysis advisor.Analysis
	if err := json.Unmarshal(rr.Body.Bytes(), &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Score < 0 || analysis.Score > 100 || !analysis.RiskLevel.IsValid() {
		t.Errorf("analysis = %+v", analysis)
	}

	rr = doJSON(t, srv, http.MethodGet, "/insights/anomalies", "")
	if rr.Code != 200 {
		t.Fatalf("anomalies status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/insights/predictions?months=3", "")
	if rr.Code != 200 {
		t.Fatalf("predictions status=%d", rr.Code)
	}
	var preds []advisor.ExpensePrediction
	if err := json.Unmarshal(rr.Body.Bytes(), &preds); err != nil {
		t.Fatal(err)
	}
	if len(preds) != 3 {
		t.Errorf("predictions = %d, want 3", len(preds))
	}

	rr = doJSON(t, srv, http.MethodPost, "/insights/investments", `{"profile":"conservador","amountCents":1000000,"horizon":"1 ano"}`)
	if rr.Code != 200 {
		t.Fatalf("investments status=%d", rr.Code)
	}
	var recs []advisor.InvestmentRecommendation
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, r := range recs {
		total += r.Allocation
	}
	if total != 100 {
		t.Errorf("allocations sum = %d, want 100", total)
	}

	rr = doJSON(t, srv, http.MethodPost, "/insights/report", "")
	if rr.Code != 200 {
		t.Fatalf("report status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Relatório") {
		t.Error("report body missing")
	}

	rr = doJSON(t, srv, http.MethodPost, "/insights/chat", `{"message":"como economizar?"}`)
	if rr.Code != 200 {
		t.Fatalf("chat status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "reply") {
		t.Error("chat reply missing")
	}
}

func TestClearDataEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/transactions", `{"input":"mercado 50"}`)

	rr := doJSON(t, srv, http.MethodDelete, "/data", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	var txs []transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("transactions after clear = %d, want 0", len(txs))
	}
}

func TestAddTransactionLongDescription(t *testing.T) {
	srv := newTestServer(t)

	input := "Gastei R$45,90 no mercado " + strings.Repeat("comprando mantimentos para a semana ", 10)
	input = strings.TrimSpace(input)
	body, _ := json.Marshal(map[string]string{"input": input})
	rr := doJSON(t, srv, http.MethodPost, "/transactions", string(body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var tx transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tx.Description != input {
		t.Errorf("description not kept verbatim: %q", tx.Description)
	}
}
