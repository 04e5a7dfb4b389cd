package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carddemo/portal/internal/core/ports"
)

// payeeRequest is the add-payee form. CustomerID only narrows an admin's
// request; for customers it is ignored.
type payeeRequest struct {
	CustomerID         int64  `json:"customerId"`
	PayeeName          string `json:"payeeName"          validate:"required,max=100"`
	PayeeType          string `json:"payeeType"          validate:"required,oneof=UTILITY CREDIT_CARD LOAN INSURANCE TELECOM OTHER"`
	PayeeAccountNumber string `json:"payeeAccountNumber" validate:"max=50"`
	Nickname           string `json:"nickname"           validate:"max=50"`
}

type paymentRequest struct {
	AccountID          int64   `json:"accountId"          validate:"required,gt=0"`
	PayeeID            int64   `json:"payeeId"            validate:"required,gt=0"`
	Amount             float64 `json:"amount"             validate:"required,gt=0"`
	PaymentDate        string  `json:"paymentDate"        validate:"required,datetime=2006-01-02"`
	Memo               string  `json:"memo"               validate:"max=100"`
	IsRecurring        bool    `json:"isRecurring"`
	RecurringFrequency string  `json:"recurringFrequency" validate:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY QUARTERLY YEARLY"`
}

// BillPaymentHandler serves the bill-payment writes.
type BillPaymentHandler struct {
	bills ports.BillPaymentService
}

func NewBillPaymentHandler(bills ports.BillPaymentService) *BillPaymentHandler {
	return &BillPaymentHandler{bills: bills}
}

// AddPayee registers a payee for the signed-in customer, or for the customer
// an admin names.
//
// @Summary      Add payee
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        customerId  query     int           false  "Admin only: target customer"
// @Param        body        body      payeeRequest  true   "Payee"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Router       /bill-payments/payees [post]
func (h *BillPaymentHandler) AddPayee(c echo.Context) error {
	var req payeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	filter := adminFilter(c)
	if filter.CustomerID == 0 {
		filter.CustomerID = req.CustomerID
	}
	scope, err := resolveScope(c, "bill-payments", filter)
	if err != nil {
		return err
	}

	out, err := h.bills.AddPayee(c.Request().Context(), scope, ports.NewPayee{
		PayeeName:          req.PayeeName,
		PayeeType:          req.PayeeType,
		PayeeAccountNumber: req.PayeeAccountNumber,
		Nickname:           req.Nickname,
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusCreated, out)
}

// PayBill schedules a payment between records of the scope's customer.
//
// @Summary      Pay bill
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        customerId  query     int             false  "Admin only: target customer"
// @Param        body        body      paymentRequest  true   "Payment"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /bill-payments [post]
func (h *BillPaymentHandler) PayBill(c echo.Context) error {
	var req paymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	scope, err := resolveScope(c, "bill-payments", adminFilter(c))
	if err != nil {
		return err
	}

	payment := ports.NewPayment{
		AccountID:   req.AccountID,
		PayeeID:     req.PayeeID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Memo:        req.Memo,
		IsRecurring: req.IsRecurring,
	}
	if req.IsRecurring {
		payment.RecurringFrequency = req.RecurringFrequency
		if payment.RecurringFrequency == "" {
			payment.RecurringFrequency = "MONTHLY"
		}
	}
	out, err := h.bills.PayBill(c.Request().Context(), scope, payment)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusCreated, out)
}

// CancelPayment cancels a scheduled payment of the scope's customer.
//
// @Summary      Cancel payment
// @Tags         bill-payments
// @Produce      json
// @Param        id          path      int  true   "Payment id"
// @Param        customerId  query     int  false  "Admin only: target customer"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /bill-payments/{id}/cancel [post]
func (h *BillPaymentHandler) CancelPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}
	scope, err := resolveScope(c, "bill-payments", adminFilter(c))
	if err != nil {
		return err
	}
	if err := h.bills.CancelPayment(c.Request().Context(), scope, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
