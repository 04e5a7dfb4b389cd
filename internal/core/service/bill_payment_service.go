package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

type billPaymentService struct {
	backend ports.Backend
	log     zerolog.Logger
}

// NewBillPaymentService returns a BillPaymentService writing through backend.
func NewBillPaymentService(backend ports.Backend, log zerolog.Logger) ports.BillPaymentService {
	return &billPaymentService{
		backend: backend,
		log:     log.With().Str("component", "bill-payments").Logger(),
	}
}

// AddPayee registers a payee for the scope's customer. Whatever customer id
// the caller put in payee is replaced.
func (s *billPaymentService) AddPayee(ctx context.Context, scope domain.Scope, payee ports.NewPayee) (json.RawMessage, error) {
	cid, ok := scope.CustomerID()
	if !ok {
		return nil, domain.ErrCustomerFilterRequired
	}
	if payee.CustomerID != 0 && payee.CustomerID != cid {
		s.log.Warn().Int64("requested", payee.CustomerID).Int64("customer_id", cid).Msg("payee customer id overridden by scope")
	}
	payee.CustomerID = cid

	var out json.RawMessage
	if err := s.backend.Post(ctx, billPaymentsPath+"/payees", payee, &out); err != nil {
		return nil, fmt.Errorf("adding payee: %w", err)
	}
	s.log.Info().Int64("customer_id", cid).Str("scope", scope.String()).Msg("payee added")
	return out, nil
}

// PayBill schedules a payment. The source account and the payee must both
// belong to the scope's customer.
func (s *billPaymentService) PayBill(ctx context.Context, scope domain.Scope, payment ports.NewPayment) (json.RawMessage, error) {
	cid, ok := scope.CustomerID()
	if !ok {
		return nil, domain.ErrCustomerFilterRequired
	}

	var payees, accounts json.RawMessage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.backend.Get(gctx, payeesQuery(cid), &payees) })
	g.Go(func() error { return s.backend.Get(gctx, ports.Query{Path: customerPath(accountsPath, cid)}, &accounts) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("checking payment ownership: %w", err)
	}
	if err := s.owned(payees, "payeeId", payment.PayeeID, cid); err != nil {
		return nil, err
	}
	if err := s.owned(accounts, "accountId", payment.AccountID, cid); err != nil {
		return nil, err
	}

	var out json.RawMessage
	if err := s.backend.Post(ctx, billPaymentsPath, payment, &out); err != nil {
		return nil, fmt.Errorf("scheduling payment: %w", err)
	}
	s.log.Info().Int64("customer_id", cid).Int64("payee_id", payment.PayeeID).Msg("payment scheduled")
	return out, nil
}

// CancelPayment cancels one of the scope's customer's payments.
func (s *billPaymentService) CancelPayment(ctx context.Context, scope domain.Scope, paymentID int64) error {
	cid, ok := scope.CustomerID()
	if !ok {
		return domain.ErrCustomerFilterRequired
	}

	var payments json.RawMessage
	if err := s.backend.Get(ctx, paymentsQuery(cid), &payments); err != nil {
		return fmt.Errorf("checking payment ownership: %w", err)
	}
	if err := s.owned(payments, "paymentId", paymentID, cid); err != nil {
		return err
	}

	path := billPaymentsPath + "/" + strconv.FormatInt(paymentID, 10) + "/cancel"
	if err := s.backend.Post(ctx, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("cancelling payment: %w", err)
	}
	s.log.Info().Int64("customer_id", cid).Int64("payment_id", paymentID).Msg("payment cancelled")
	return nil
}

// owned returns domain.ErrForbidden unless list holds a record whose field
// equals id.
func (s *billPaymentService) owned(list json.RawMessage, field string, id, cid int64) error {
	found, err := containsID(list, field, id)
	if err != nil {
		return fmt.Errorf("reading %s list: %w", field, err)
	}
	if !found {
		s.log.Warn().Str("field", field).Int64("id", id).Int64("customer_id", cid).Msg("record outside scope")
		return domain.ErrForbidden
	}
	return nil
}

func containsID(list json.RawMessage, field string, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return false, err
	}
	for _, item := range items {
		raw, ok := item[field]
		if !ok {
			continue
		}
		var n json.Number
		if json.Unmarshal(raw, &n) != nil {
			continue
		}
		if v, err := n.Int64(); err == nil && v == id {
			return true, nil
		}
	}
	return false, nil
}
