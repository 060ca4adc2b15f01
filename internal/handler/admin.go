package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/response"
)

// AdminHandler serves user moderation and the settings panel. Loan review lives on LendingHandler.
type AdminHandler struct {
	users     UserService
	settings  SettingsService
	validator *validator.Validate
}

func NewAdminHandler(users UserService, settings SettingsService) *AdminHandler {
	return &AdminHandler{
		users:     users,
		settings:  settings,
		validator: NewValidator(),
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, users)
}

func (h *AdminHandler) SetBanned(w http.ResponseWriter, r *http.Request) {
	var request domain.BanUserRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	user, err := h.users.SetBanned(r.Context(), CurrentUser(r.Context()).ID, mux.Vars(r)["userId"], request.Banned)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) SetMembership(w http.ResponseWriter, r *http.Request) {
	var request domain.MembershipRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	user, err := h.users.SetMembership(r.Context(), CurrentUser(r.Context()).ID, mux.Vars(r)["userId"], request.Paid)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) AdjustXP(w http.ResponseWriter, r *http.Request) {
	var request domain.AdjustXPRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	user, err := h.users.AdjustXP(r.Context(), CurrentUser(r.Context()).ID, mux.Vars(r)["userId"], request.XPChange)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, settings)
}

func (h *AdminHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, setting)
}

// UpdateSetting stores an override; an empty value falls back to the built-in default.
func (h *AdminHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	var request domain.UpdateSettingRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	setting, err := h.settings.Set(r.Context(), request.Key, request.Value, CurrentUser(r.Context()).ID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, setting)
}
