package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/auth"
	"github.com/borctakip/debt-tracker/internal/domain"
	"github.com/borctakip/debt-tracker/internal/service"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
	"github.com/borctakip/debt-tracker/pkg/response"
)

type DebtHandler struct {
	service   *service.DebtService
	validator *validator.Validate
}

func NewDebtHandler(service *service.DebtService) *DebtHandler {
	return &DebtHandler{
		service:   service,
		validator: newValidator(),
	}
}

// newValidator teaches the validator to treat decimal fields as numbers so
// tags like required work on them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (h *DebtHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var request domain.CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validate(&request); err != nil {
		response.BusinessError(w, err)
		return
	}

	debt, err := h.service.CreateDebt(r.Context(), ownerID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, debt)
}

func (h *DebtHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	debts, err := h.service.ListDebts(r.Context(), ownerID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debts)
}

func (h *DebtHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	debt, err := h.service.GetDebt(r.Context(), ownerID, debtID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var request domain.UpdateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	debt, err := h.service.UpdateDebt(r.Context(), ownerID, debtID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDebt(r.Context(), ownerID, debtID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "debt deleted"})
}

func (h *DebtHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	debt, err := h.service.MarkPaid(r.Context(), ownerID, debtID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	debt, err := h.service.MarkUnpaid(r.Context(), ownerID, debtID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validate(&request); err != nil {
		response.BusinessError(w, err)
		return
	}

	debt, err := h.service.RecordPayment(r.Context(), ownerID, debtID, request.Amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, debt)
}

func (h *DebtHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ownerID, debtID, ok := h.identify(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), ownerID, debtID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *DebtHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	stats, err := h.service.ComputeStats(r.Context(), ownerID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, stats)
}

// identify resolves the authenticated owner and the debt id path variable.
func (h *DebtHandler) identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	debtID, err := uuid.Parse(mux.Vars(r)["debtId"])
	if err != nil {
		response.BusinessError(w, customError.WrapValidation("debt_id", "must be a valid UUID"))
		return uuid.Nil, uuid.Nil, false
	}

	return ownerID, debtID, true
}

// validate runs struct validation and converts the first failure into the
// field-naming validation error the API promises.
func (h *DebtHandler) validate(request interface{}) error {
	err := h.validator.Struct(request)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		return customError.WrapValidation(field, "failed on rule "+verrs[0].Tag())
	}

	return customError.WrapValidation("request", err.Error())
}
