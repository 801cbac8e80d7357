package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Dospalko/roomsplit/internal/middleware"
	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/service"
)

// BillHandler serves bills and share payment state.
type BillHandler struct {
	bills    *service.BillService
	payments *service.PaymentTracker
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(bills *service.BillService, payments *service.PaymentTracker) *BillHandler {
	return &BillHandler{bills: bills, payments: payments}
}

type createBillRequest struct {
	Title string `json:"title"`

	// Amount is the full bill amount in major units, e.g. "123.40".
	// decimal.Decimal unmarshals both JSON numbers and strings.
	Amount decimal.Decimal `json:"amount"`

	Period     string                     `json:"period"`
	Rule       string                     `json:"rule"`
	RuleParams map[string]decimal.Decimal `json:"rule_params,omitempty"`
}

func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req createBillRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	amountCents, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	bill, err := h.bills.Create(r.Context(), userID, r.PathValue("roomID"), service.CreateBillInput{
		Title:       req.Title,
		AmountCents: amountCents,
		Period:      req.Period,
		Rule:        models.SplitRule(req.Rule),
		RuleParams:  req.RuleParams,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewBill(bill))
}

func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	bills, err := h.bills.List(r.Context(), userID, r.PathValue("roomID"), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBills(bills))
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	bill, err := h.bills.Get(r.Context(), userID, r.PathValue("billID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBill(bill))
}

func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.bills.Delete(r.Context(), userID, r.PathValue("billID")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

func (h *BillHandler) SetSharePaid(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req setPaidRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	share, err := h.payments.SetPaid(r.Context(), userID, r.PathValue("shareID"), req.Paid)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewShare(*share))
}
