package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/response"
)

type LendingHandler struct {
	service   LendingService
	validator *validator.Validate
}

func NewLendingHandler(service LendingService) *LendingHandler {
	return &LendingHandler{
		service:   service,
		validator: NewValidator(),
	}
}

// Me returns the caller's profile with a freshly computed credit snapshot.
func (h *LendingHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	profile, err := h.service.CreditSnapshot(r.Context(), user.ID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, profile)
}

func (h *LendingHandler) CalculateTerms(w http.ResponseWriter, r *http.Request) {
	var request domain.CalculateTermsRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	terms, err := h.service.CalculateTerms(r.Context(), CurrentUser(r.Context()).ID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, terms)
}

func (h *LendingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	loan, err := h.service.RequestLoan(r.Context(), CurrentUser(r.Context()).ID, &request)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LendingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LendingHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	user := CurrentUser(r.Context())
	loan, err := h.service.GetLoan(r.Context(), loanID, user.ID, user.IsAdmin)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LendingHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	loan, err := h.service.RepayLoan(r.Context(), CurrentUser(r.Context()).ID, loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LendingHandler) ListAllLoans(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	loans, err := h.service.ListAllLoans(r.Context(), limit, offset)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LendingHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	var request domain.ApproveLoanRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	var notes *string
	if trimmed := strings.TrimSpace(request.Notes); trimmed != "" {
		notes = &trimmed
	}

	loan, err := h.service.ApproveLoan(r.Context(), loanID, CurrentUser(r.Context()).ID, notes)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LendingHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	var request domain.RejectLoanRequest
	if err := decode(r, h.validator, &request); err != nil {
		response.BusinessError(w, err)
		return
	}

	loan, err := h.service.RejectLoan(r.Context(), loanID, CurrentUser(r.Context()).ID, request.Reason)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}
