package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/borctakip/debt-tracker/internal/domain"
	"github.com/borctakip/debt-tracker/internal/service"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
	"github.com/borctakip/debt-tracker/pkg/response"
)

type AuthHandler struct {
	service   *service.AuthService
	validator *validator.Validate
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validate(&request); err != nil {
		response.BusinessError(w, err)
		return
	}

	token, err := h.service.Register(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validate(&request); err != nil {
		response.BusinessError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, token)
}

func (h *AuthHandler) validate(request interface{}) error {
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
