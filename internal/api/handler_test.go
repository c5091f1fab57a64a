package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/engine"
	"github.com/bwiize/dashboard/internal/snapshot"
)

// immediate runs delayed work inline so handlers observe resolved state.
type immediate struct{}

func (immediate) After(_ time.Duration, fn func()) { fn() }

type mockExporter struct {
	calls int
	err   error
}

func (m *mockExporter) Export(_ context.Context, _ domain.Snapshot) error {
	m.calls++
	return m.err
}

type testEnv struct {
	engine  *engine.Engine
	journal *snapshot.Service
	router  http.Handler
}

func newTestEnv(t *testing.T, adminKey string, exporter Exporter) testEnv {
	t.Helper()
	e := engine.New(engine.Options{Scheduler: immediate{}, DedupChallenges: true})
	journal := snapshot.NewService(e, snapshot.NewMemoryRepository())
	return testEnv{
		engine:  e,
		journal: journal,
		router:  NewRouter(NewHandler(e, journal, exporter), adminKey, nil),
	}
}

func loadedEnv(t *testing.T) testEnv {
	t.Helper()
	env := newTestEnv(t, "", nil)
	env.engine.Load()
	if !env.engine.Snapshot().Loaded {
		t.Fatal("engine did not load")
	}
	return env
}

func (env testEnv) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestGetStateBeforeAndAfterLoad(t *testing.T) {
	env := newTestEnv(t, "", nil)

	state := decode[map[string]any](t, env.do(t, http.MethodGet, "/api/v1/state", ""))
	if state["isLoaded"] != false {
		t.Errorf("isLoaded = %v, want false", state["isLoaded"])
	}

	env.engine.Load()
	w := env.do(t, http.MethodGet, "/api/v1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	state = decode[map[string]any](t, w)
	accounts, ok := state["bankAccounts"].(map[string]any)
	if !ok {
		t.Fatalf("bankAccounts = %T", state["bankAccounts"])
	}
	if accounts["totalDisplay"] != "$325.50" {
		t.Errorf("totalDisplay = %v, want $325.50", accounts["totalDisplay"])
	}
	wallet := state["wallet"].(map[string]any)
	if wallet["phase"] != "disconnected" || wallet["xrp"] != "0" {
		t.Errorf("wallet = %v, want disconnected with no visible balance", wallet)
	}
}

func TestMutationsBeforeLoadConflict(t *testing.T) {
	env := newTestEnv(t, "", nil)
	w := env.do(t, http.MethodPost, "/api/v1/accounts", `{"provider":"Chase"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestLinkAccount(t *testing.T) {
	env := loadedEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/accounts", `{"provider":"Venmo"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	acct := decode[domain.Account](t, w)
	if acct.Category != domain.AccountCategoryWallet {
		t.Errorf("category = %s, want wallet", acct.Category)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/accounts", `{"provider":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank provider status = %d, want 400", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/accounts", `{`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}

	list := decode[map[string]any](t, env.do(t, http.MethodGet, "/api/v1/accounts", ""))
	if got := len(list["accounts"].([]any)); got != 3 {
		t.Errorf("accounts = %d, want 3", got)
	}

	wallets := decode[map[string]any](t, env.do(t, http.MethodGet, "/api/v1/accounts?type=wallet", ""))
	if got := len(wallets["accounts"].([]any)); got != 2 {
		t.Errorf("wallet accounts = %d, want 2", got)
	}

	w = env.do(t, http.MethodGet, "/api/v1/accounts/"+acct.ID, "")
	if w.Code != http.StatusOK {
		t.Errorf("get linked account status = %d, want 200", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/accounts/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("get missing account status = %d, want 404", w.Code)
	}
}

func TestListProviders(t *testing.T) {
	env := newTestEnv(t, "", nil)
	providers := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/v1/providers", ""))
	if len(providers) != 5 {
		t.Errorf("providers = %d, want 5", len(providers))
	}
}

func TestWalletFlow(t *testing.T) {
	env := loadedEnv(t)

	if w := env.do(t, http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"10"}`); w.Code != http.StatusConflict {
		t.Errorf("deposit while disconnected status = %d, want 409", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/wallet/connect", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("connect status = %d, want 202", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/wallet/deposit", `{"amount":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("deposit status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	wallet := decode[map[string]any](t, w)
	if wallet["xrp"] != "60" || wallet["usdDisplay"] != "$30.00" {
		t.Errorf("wallet = %v, want 60 XRP worth $30.00", wallet)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/wallet/deposit", `{"amount":"-5"}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative deposit status = %d, want 400", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/wallet/disconnect", ""); w.Code != http.StatusOK {
		t.Errorf("disconnect status = %d, want 200", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/wallet/disconnect", ""); w.Code != http.StatusConflict {
		t.Errorf("second disconnect status = %d, want 409", w.Code)
	}
}

func TestEscrowFlow(t *testing.T) {
	env := loadedEnv(t)

	if w := env.do(t, http.MethodPost, "/api/v1/escrow/release", ""); w.Code != http.StatusConflict {
		t.Errorf("release while Locked status = %d, want 409", w.Code)
	}

	for _, id := range []string{"dc1", "dc2", "dc3"} {
		if w := env.do(t, http.MethodPost, "/api/v1/challenges/"+id+"/complete", ""); w.Code != http.StatusOK {
			t.Fatalf("complete %s status = %d, want 200", id, w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/v1/escrow/release", "")
	if w.Code != http.StatusOK {
		t.Fatalf("release status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	resp := decode[map[string]any](t, w)
	if resp["released"] != "30" {
		t.Errorf("released = %v, want 30", resp["released"])
	}

	notes := decode[[]domain.Notification](t, env.do(t, http.MethodGet, "/api/v1/notifications", ""))
	var ready, released int
	for _, n := range notes {
		switch n.Kind {
		case domain.NotifyEscrowReady:
			ready++
		case domain.NotifyEscrowReleased:
			released++
		}
	}
	if ready != 1 || released != 1 {
		t.Errorf("ready/released notifications = %d/%d, want 1/1", ready, released)
	}

	w = env.do(t, http.MethodPost, "/api/v1/escrow", `{"amount":"40","condition":"3 more challenges"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	created := decode[map[string]any](t, w)
	if created["condition"] != "3 more challenges" {
		t.Errorf("condition = %v", created["condition"])
	}

	if w := env.do(t, http.MethodPost, "/api/v1/escrow", `{"amount":"40"}`); w.Code != http.StatusConflict {
		t.Errorf("create over live escrow status = %d, want 409", w.Code)
	}
}

func TestCarouselEndpoints(t *testing.T) {
	env := newTestEnv(t, "", nil)

	resp := decode[map[string]any](t, env.do(t, http.MethodPost, "/api/v1/carousel/scroll", `{"offset":560,"viewportWidth":400}`))
	if resp["panel"] != "savings" {
		t.Errorf("panel after scroll = %v, want savings", resp["panel"])
	}

	resp = decode[map[string]any](t, env.do(t, http.MethodPost, "/api/v1/carousel/goto", `{"index":9}`))
	if resp["targetOffset"] != 1200.0 {
		t.Errorf("targetOffset = %v, want 1200", resp["targetOffset"])
	}

	resp = decode[map[string]any](t, env.do(t, http.MethodPost, "/api/v1/carousel/touch", `{"startX":100,"endX":300}`))
	if resp["changed"] != true || resp["panel"] != "wallet" {
		t.Errorf("touch = %v, want changed to wallet", resp)
	}

	resp = decode[map[string]any](t, env.do(t, http.MethodPost, "/api/v1/carousel/prev", ""))
	if resp["panel"] != "savings" {
		t.Errorf("panel after prev = %v, want savings", resp["panel"])
	}
	resp = decode[map[string]any](t, env.do(t, http.MethodPost, "/api/v1/carousel/next", ""))
	if resp["panel"] != "wallet" {
		t.Errorf("panel after next = %v, want wallet", resp["panel"])
	}
}

func TestSetSavingsRate(t *testing.T) {
	env := loadedEnv(t)
	w := env.do(t, http.MethodPut, "/api/v1/savings/rate", `{"rate":50}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode[domain.Savings](t, w); got.Rate != domain.MaxSavingsRate {
		t.Errorf("rate = %d, want %d", got.Rate, domain.MaxSavingsRate)
	}
}

func TestNotificationsEmptyArray(t *testing.T) {
	env := newTestEnv(t, "", nil)
	w := env.do(t, http.MethodGet, "/api/v1/notifications", "")
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestJournalEndpoints(t *testing.T) {
	env := loadedEnv(t)

	if w := env.do(t, http.MethodGet, "/api/v1/journal/latest", ""); w.Code != http.StatusNotFound {
		t.Errorf("latest on empty journal status = %d, want 404", w.Code)
	}

	if _, _, err := env.journal.Record(context.Background()); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/api/v1/journal/latest", "")
	if w.Code != http.StatusOK {
		t.Fatalf("latest status = %d, want 200", w.Code)
	}
	entry := decode[snapshot.Entry](t, w)
	if entry.Version != env.engine.Snapshot().Version {
		t.Errorf("entry version = %d, want %d", entry.Version, env.engine.Snapshot().Version)
	}

	entries := decode[[]snapshot.Entry](t, env.do(t, http.MethodGet, "/api/v1/journal?limit=abc", ""))
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestExportRequiresAuth(t *testing.T) {
	exp := &mockExporter{}
	env := newTestEnv(t, "secret-key", exp)

	if w := env.do(t, http.MethodPost, "/api/v1/export", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	w := env.do(t, http.MethodPost, "/api/v1/export", "", "Authorization", "Bearer secret-key")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if exp.calls != 1 {
		t.Errorf("export calls = %d, want 1", exp.calls)
	}
}

func TestExportFailures(t *testing.T) {
	env := newTestEnv(t, "", nil)
	if w := env.do(t, http.MethodPost, "/api/v1/export", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured export status = %d, want 503", w.Code)
	}

	env = newTestEnv(t, "", &mockExporter{err: errors.New("quota exceeded")})
	if w := env.do(t, http.MethodPost, "/api/v1/export", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("failing export status = %d, want 500", w.Code)
	}
}
