package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu        sync.Mutex
	responses map[string]string // keyed by Query.String()
	failing   map[string]error
	queries   []string
	posts     []postedCall
	postOut   string
}

type postedCall struct {
	path string
	body json.RawMessage
}

func (b *stubBackend) Post(_ context.Context, path string, body, out any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	b.posts = append(b.posts, postedCall{path: path, body: raw})
	if err, ok := b.failing[path]; ok {
		return err
	}
	if out == nil {
		return nil
	}
	resp := b.postOut
	if resp == "" {
		resp = "{}"
	}
	return json.Unmarshal([]byte(resp), out)
}

func (b *stubBackend) Get(_ context.Context, q ports.Query, out any) error {
	key := q.String()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, key)
	if err, ok := b.failing[key]; ok {
		return err
	}
	body, ok := b.responses[key]
	if !ok {
		body = "[]"
	}
	return json.Unmarshal([]byte(body), out)
}

func (b *stubBackend) touched(prefix string) bool {
	for _, q := range b.queries {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func customerScope(t *testing.T) domain.Scope {
	t.Helper()
	scope, err := domain.ResolveScope(domain.AuthenticatedSnapshot(customer(t)), domain.AdminFilter{CustomerID: 2002, Search: "smith"})
	if err != nil {
		t.Fatalf("resolving customer scope: %v", err)
	}
	return scope
}

func adminScope(t *testing.T, filter domain.AdminFilter) domain.Scope {
	t.Helper()
	scope, err := domain.ResolveScope(domain.AuthenticatedSnapshot(admin(t)), filter)
	if err != nil {
		t.Fatalf("resolving admin scope: %v", err)
	}
	return scope
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestScreens_CustomerOnlyReachesOwnRecords(t *testing.T) {
	scope := customerScope(t)
	b := &stubBackend{}
	svc := NewScreenService(b, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Accounts(ctx, scope); err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if _, err := svc.Cards(ctx, scope); err != nil {
		t.Fatalf("cards: %v", err)
	}
	if _, err := svc.Transactions(ctx, scope); err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if _, err := svc.BillPayments(ctx, scope); err != nil {
		t.Fatalf("bill payments: %v", err)
	}
	for _, view := range []ports.AuthorizationView{ports.AuthorizationViewAll, ports.AuthorizationViewFraud, ports.AuthorizationViewHighRisk} {
		if _, err := svc.Authorizations(ctx, scope, view); err != nil {
			t.Fatalf("authorizations(%s): %v", view, err)
		}
	}

	for _, q := range b.queries {
		if !strings.Contains(q, "/customer/1001") {
			t.Errorf("customer scope issued a query outside its own records: %s", q)
		}
		if strings.Contains(q, "2002") || strings.Contains(q, "smith") {
			t.Errorf("customer-supplied filter leaked into query: %s", q)
		}
	}
}

func TestScreens_CustomerCannotOpenReports(t *testing.T) {
	b := &stubBackend{}
	svc := NewScreenService(b, zerolog.Nop())

	_, err := svc.Reports(context.Background(), customerScope(t))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(b.queries) != 0 {
		t.Fatalf("no backend call expected, got %v", b.queries)
	}
}

func TestAccounts_AdminUnfilteredIsPaged(t *testing.T) {
	b := &stubBackend{responses: map[string]string{
		"/api/v1/accounts?page=2&size=50": `{"content":[{"accountId":1}]}`,
		"/api/v1/accounts/summary":        `{"totalAccounts":42}`,
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.Accounts(context.Background(), adminScope(t, domain.AdminFilter{Page: 2, Size: 50}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Sections["accounts"]) != `{"content":[{"accountId":1}]}` {
		t.Errorf("unexpected accounts section: %s", res.Sections["accounts"])
	}
	if string(res.Sections["summary"]) != `{"totalAccounts":42}` {
		t.Errorf("unexpected summary section: %s", res.Sections["summary"])
	}
}

func TestAccounts_AdminSearchAndCustomerFilter(t *testing.T) {
	b := &stubBackend{}
	svc := NewScreenService(b, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Accounts(ctx, adminScope(t, domain.AdminFilter{Search: " smith "})); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !b.touched("/api/v1/accounts/search?name=smith") {
		t.Errorf("expected search query, got %v", b.queries)
	}

	if _, err := svc.Accounts(ctx, adminScope(t, domain.AdminFilter{CustomerID: 2002})); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !b.touched("/api/v1/accounts/customer/2002") {
		t.Errorf("expected customer query, got %v", b.queries)
	}
}

func TestTransactions_SearchUsesTermParam(t *testing.T) {
	b := &stubBackend{}
	svc := NewScreenService(b, zerolog.Nop())

	if _, err := svc.Transactions(context.Background(), adminScope(t, domain.AdminFilter{Search: "coffee"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.touched("/api/v1/transactions/search?term=coffee") {
		t.Fatalf("expected term search, got %v", b.queries)
	}
}

func TestOptionalSectionFailureIsDropped(t *testing.T) {
	b := &stubBackend{failing: map[string]error{
		"/api/v1/accounts/summary": errors.New("summary down"),
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.Accounts(context.Background(), adminScope(t, domain.AdminFilter{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Sections["summary"]; ok {
		t.Fatal("failed optional section must be omitted")
	}
	if _, ok := res.Sections["accounts"]; !ok {
		t.Fatal("accounts section missing")
	}
}

func TestRequiredSectionFailurePropagates(t *testing.T) {
	boom := errors.New("backend down")
	b := &stubBackend{failing: map[string]error{
		"/api/v1/cards/customer/1001": boom,
	}}
	svc := NewScreenService(b, zerolog.Nop())

	if _, err := svc.Cards(context.Background(), customerScope(t)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestBillPayments_AdminNeedsCustomerFilter(t *testing.T) {
	b := &stubBackend{}
	svc := NewScreenService(b, zerolog.Nop())

	_, err := svc.BillPayments(context.Background(), adminScope(t, domain.AdminFilter{}))
	if !errors.Is(err, domain.ErrCustomerFilterRequired) {
		t.Fatalf("expected ErrCustomerFilterRequired, got %v", err)
	}

	res, err := svc.BillPayments(context.Background(), adminScope(t, domain.AdminFilter{CustomerID: 7}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"payees", "payments", "scheduled", "accounts"} {
		if _, ok := res.Sections[name]; !ok {
			t.Errorf("missing section %q", name)
		}
	}
	if !b.touched("/api/v1/bill-payments/scheduled/customer/7") {
		t.Errorf("expected scheduled payments query, got %v", b.queries)
	}
}

func TestBillPayments_ScheduledIsOptional(t *testing.T) {
	b := &stubBackend{failing: map[string]error{
		"/api/v1/bill-payments/scheduled/customer/1001": errors.New("not deployed"),
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.BillPayments(context.Background(), customerScope(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Sections["scheduled"]; ok {
		t.Fatal("failed scheduled section must be omitted")
	}
	if _, ok := res.Sections["payees"]; !ok {
		t.Fatal("payees section missing")
	}
}

const pendingList = `[
	{"authId":1,"riskScore":10,"isFraudAlert":false},
	{"authId":2,"riskScore":85,"isFraudAlert":false},
	{"authId":3,"riskScore":70,"isFraudAlert":true}
]`

func authIDs(t *testing.T, raw json.RawMessage) []int {
	t.Helper()
	var items []struct {
		AuthID int `json:"authId"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decoding pending section: %v", err)
	}
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.AuthID)
	}
	return ids
}

func TestAuthorizations_CustomerFraudViewIsLocal(t *testing.T) {
	b := &stubBackend{responses: map[string]string{
		"/api/v1/authorizations/pending/customer/1001": pendingList,
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.Authorizations(context.Background(), customerScope(t), ports.AuthorizationViewFraud)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.touched("/api/v1/authorizations/fraud-alerts") {
		t.Fatal("customer must never read the global fraud-alert list")
	}
	if ids := authIDs(t, res.Sections["pending"]); len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("expected only the flagged authorization, got %v", ids)
	}
}

func TestAuthorizations_HighRiskThreshold(t *testing.T) {
	b := &stubBackend{responses: map[string]string{
		"/api/v1/authorizations/pending": pendingList,
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.Authorizations(context.Background(), adminScope(t, domain.AdminFilter{}), ports.AuthorizationViewHighRisk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := authIDs(t, res.Sections["pending"])
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("expected authorizations 2 and 3, got %v", ids)
	}
	if !b.touched("/api/v1/authorizations/stats") {
		t.Error("expected global stats for admin")
	}
}

func TestAuthorizations_AdminFraudUsesAlertList(t *testing.T) {
	b := &stubBackend{responses: map[string]string{
		"/api/v1/authorizations/fraud-alerts": `[{"authId":9,"isFraudAlert":true}]`,
	}}
	svc := NewScreenService(b, zerolog.Nop())

	res, err := svc.Authorizations(context.Background(), adminScope(t, domain.AdminFilter{}), ports.AuthorizationViewFraud)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := authIDs(t, res.Sections["pending"]); len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("unexpected pending section: %s", res.Sections["pending"])
	}
}

func TestAuthorizations_UnknownView(t *testing.T) {
	svc := NewScreenService(&stubBackend{}, zerolog.Nop())
	if _, err := svc.Authorizations(context.Background(), customerScope(t), "everything"); err == nil {
		t.Fatal("expected error for unknown view")
	}
}
