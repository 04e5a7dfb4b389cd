package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

// HighRiskThreshold is the risk score from which a pending authorization is
// listed in the high-risk view.
const HighRiskThreshold = 70

// maxSectionFetches bounds concurrent backend calls per screen.
const maxSectionFetches = 4

const (
	accountsPath       = "/api/v1/accounts"
	cardsPath          = "/api/v1/cards"
	transactionsPath   = "/api/v1/transactions"
	billPaymentsPath   = "/api/v1/bill-payments"
	authorizationsPath = "/api/v1/authorizations"
)

// section is one backend read feeding a named part of a screen. Optional
// sections are dropped from the result when the read fails.
type section struct {
	name     string
	query    ports.Query
	optional bool
}

type screenService struct {
	backend ports.Backend
	log     zerolog.Logger
}

// NewScreenService returns a ScreenService reading through backend.
func NewScreenService(backend ports.Backend, log zerolog.Logger) ports.ScreenService {
	return &screenService{
		backend: backend,
		log:     log.With().Str("component", "screens").Logger(),
	}
}

func (s *screenService) Accounts(ctx context.Context, scope domain.Scope) (*ports.ScreenResult, error) {
	return s.load(ctx, scope, "accounts", accountSections(scope))
}

func (s *screenService) Cards(ctx context.Context, scope domain.Scope) (*ports.ScreenResult, error) {
	return s.load(ctx, scope, "cards", cardSections(scope))
}

func (s *screenService) Transactions(ctx context.Context, scope domain.Scope) (*ports.ScreenResult, error) {
	return s.load(ctx, scope, "transactions", transactionSections(scope))
}

func (s *screenService) BillPayments(ctx context.Context, scope domain.Scope) (*ports.ScreenResult, error) {
	secs, err := billPaymentSections(scope)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, scope, "bill-payments", secs)
}

func (s *screenService) Reports(ctx context.Context, scope domain.Scope) (*ports.ScreenResult, error) {
	if scope.Owned() {
		return nil, domain.ErrForbidden
	}
	return s.load(ctx, scope, "reports", []section{
		{name: "transactionSummary", query: ports.Query{Path: transactionsPath + "/summary"}},
		{name: "accountSummary", query: ports.Query{Path: accountsPath + "/summary"}},
	})
}

func (s *screenService) Authorizations(ctx context.Context, scope domain.Scope, view ports.AuthorizationView) (*ports.ScreenResult, error) {
	secs, err := authorizationSections(scope, view)
	if err != nil {
		return nil, err
	}
	res, err := s.load(ctx, scope, "authorizations", secs)
	if err != nil {
		return nil, err
	}

	keep := authorizationFilter(scope, view)
	if keep == nil {
		return res, nil
	}
	filtered, err := filterAuthorizations(res.Sections["pending"], keep)
	if err != nil {
		return nil, fmt.Errorf("filtering pending authorizations: %w", err)
	}
	res.Sections["pending"] = filtered
	return res, nil
}

func (s *screenService) load(ctx context.Context, scope domain.Scope, screen string, secs []section) (*ports.ScreenResult, error) {
	raws := make([]json.RawMessage, len(secs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSectionFetches)
	for i, sec := range secs {
		i, sec := i, sec
		g.Go(func() error {
			var raw json.RawMessage
			if err := s.backend.Get(gctx, sec.query, &raw); err != nil {
				if sec.optional {
					s.log.Warn().Err(err).Str("screen", screen).Str("section", sec.name).Msg("optional section unavailable")
					return nil
				}
				return fmt.Errorf("%s: loading %s: %w", screen, sec.name, err)
			}
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &ports.ScreenResult{
		Scope:    scope.String(),
		Sections: make(map[string]json.RawMessage, len(secs)),
	}
	for i, sec := range secs {
		if raws[i] != nil {
			res.Sections[sec.name] = raws[i]
		}
	}
	s.log.Debug().Str("screen", screen).Str("scope", res.Scope).Int("sections", len(res.Sections)).Msg("screen loaded")
	return res, nil
}

// ── Query builders ────────────────────────────────────────────────────────────
//
// Each builder is a function of the scope alone. An own scope always resolves
// to the customer-keyed endpoint; nothing else can reach another customer's
// records.

func customerPath(base string, customerID int64) string {
	return base + "/customer/" + strconv.FormatInt(customerID, 10)
}

func pageParams(scope domain.Scope) url.Values {
	return url.Values{
		"page": {strconv.Itoa(scope.Page())},
		"size": {strconv.Itoa(scope.Size())},
	}
}

// listSections covers the shared shape of the account, card and transaction
// lists: customer-keyed when narrowed, search when the admin typed one,
// paged otherwise.
func listSections(name, base, searchParam string, scope domain.Scope) []section {
	if cid, ok := scope.CustomerID(); ok {
		return []section{{name: name, query: ports.Query{Path: customerPath(base, cid)}}}
	}
	if q := scope.Search(); q != "" {
		return []section{{name: name, query: ports.Query{
			Path:   base + "/search",
			Params: url.Values{searchParam: {q}},
		}}}
	}
	return []section{{name: name, query: ports.Query{Path: base, Params: pageParams(scope)}}}
}

func accountSections(scope domain.Scope) []section {
	secs := listSections("accounts", accountsPath, "name", scope)
	if !scope.Owned() {
		secs = append(secs, section{name: "summary", query: ports.Query{Path: accountsPath + "/summary"}, optional: true})
	}
	return secs
}

func cardSections(scope domain.Scope) []section {
	return listSections("cards", cardsPath, "name", scope)
}

func transactionSections(scope domain.Scope) []section {
	secs := listSections("transactions", transactionsPath, "term", scope)
	if !scope.Owned() {
		secs = append(secs, section{name: "summary", query: ports.Query{Path: transactionsPath + "/summary"}, optional: true})
	}
	return secs
}

func billPaymentSections(scope domain.Scope) ([]section, error) {
	cid, ok := scope.CustomerID()
	if !ok {
		return nil, domain.ErrCustomerFilterRequired
	}
	return []section{
		{name: "payees", query: payeesQuery(cid)},
		{name: "payments", query: paymentsQuery(cid)},
		{name: "scheduled", query: ports.Query{Path: billPaymentsPath + "/scheduled/customer/" + strconv.FormatInt(cid, 10)}, optional: true},
		{name: "accounts", query: ports.Query{Path: customerPath(accountsPath, cid)}},
	}, nil
}

func payeesQuery(cid int64) ports.Query {
	return ports.Query{Path: billPaymentsPath + "/payees/customer/" + strconv.FormatInt(cid, 10)}
}

func paymentsQuery(cid int64) ports.Query {
	return ports.Query{Path: customerPath(billPaymentsPath, cid)}
}

func authorizationSections(scope domain.Scope, view ports.AuthorizationView) ([]section, error) {
	var pending, stats ports.Query
	if cid, ok := scope.CustomerID(); ok {
		id := strconv.FormatInt(cid, 10)
		pending = ports.Query{Path: authorizationsPath + "/pending/customer/" + id}
		stats = ports.Query{Path: authorizationsPath + "/stats/customer/" + id}
	} else {
		pending = ports.Query{Path: authorizationsPath + "/pending"}
		stats = ports.Query{Path: authorizationsPath + "/stats"}
	}

	switch view {
	case ports.AuthorizationViewAll, ports.AuthorizationViewHighRisk:
	case ports.AuthorizationViewFraud:
		// The global fraud-alert list is only valid for an unnarrowed admin
		// scope; anything narrower filters its own pending list instead.
		if _, narrowed := scope.CustomerID(); !narrowed {
			pending = ports.Query{Path: authorizationsPath + "/fraud-alerts"}
		}
	default:
		return nil, fmt.Errorf("unknown authorization view %q", view)
	}

	return []section{
		{name: "pending", query: pending},
		{name: "stats", query: stats, optional: true},
	}, nil
}

// pendingFlags are the fields of a pending authorization the views filter on.
type pendingFlags struct {
	RiskScore    int  `json:"riskScore"`
	IsFraudAlert bool `json:"isFraudAlert"`
}

func authorizationFilter(scope domain.Scope, view ports.AuthorizationView) func(pendingFlags) bool {
	_, narrowed := scope.CustomerID()
	switch {
	case view == ports.AuthorizationViewHighRisk:
		return func(p pendingFlags) bool { return p.RiskScore >= HighRiskThreshold }
	case view == ports.AuthorizationViewFraud && narrowed:
		return func(p pendingFlags) bool { return p.IsFraudAlert }
	default:
		return nil
	}
}

func filterAuthorizations(raw json.RawMessage, keep func(pendingFlags) bool) (json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var f pendingFlags
		if err := json.Unmarshal(item, &f); err != nil {
			return nil, err
		}
		if keep(f) {
			out = append(out, item)
		}
	}
	return json.Marshal(out)
}
