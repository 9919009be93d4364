package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/tellerdesk/internal/customer"
	"github.com/hitoshi/tellerdesk/internal/metrics"
	"github.com/hitoshi/tellerdesk/internal/model"
)

// PersonalServiceInterface は個人顧客ハンドラーが必要とするサービスインターフェース。
type PersonalServiceInterface interface {
	Create(ctx context.Context, input customer.PersonalInput) (*model.PersonalCustomer, error)
	Get(ctx context.Context, id string) (*model.PersonalCustomer, error)
	GetByCustomerNumber(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error)
	List(ctx context.Context, limit int) ([]*model.PersonalCustomer, error)
	Update(ctx context.Context, id string, input customer.PersonalUpdateInput) (*model.PersonalCustomer, error)
	Replace(ctx context.Context, id string, input customer.PersonalInput) (*model.PersonalCustomer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerHandler は個人顧客管理のHTTPハンドラー。
type CustomerHandler struct {
	service PersonalServiceInterface
	metrics metrics.MetricsCollector
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(service PersonalServiceInterface, collector metrics.MetricsCollector) *CustomerHandler {
	return &CustomerHandler{service: service, metrics: collector}
}

// personalCustomerRequest は個人顧客の登録・全量更新リクエストのボディ。
// 数値・日付は登録フォームから文字列で届く。
type personalCustomerRequest struct {
	ID               string `json:"id"`
	CustomerNumber   string `json:"customerNumber"`
	TinNumber        string `json:"tinNumber"`
	FirstName        string `json:"firstName"`
	MiddleName       string `json:"middleName"`
	LastName         string `json:"lastName"`
	MothersName      string `json:"mothersName"`
	Gender           string `json:"gender"`
	MaritalStatus    string `json:"maritalStatus"`
	DateOfBirth      string `json:"dateOfBirth"`
	NationalID       string `json:"nationalId"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Region           string `json:"region"`
	Zone             string `json:"zone"`
	City             string `json:"city"`
	Subcity          string `json:"subcity"`
	Woreda           string `json:"woreda"`
	MonthlyIncome    string `json:"monthlyIncome"`
	AccountType      string `json:"accountType"`
	Status           string `json:"status"`
	NationalIDURL    string `json:"nationalIdUrl"`
	AgreementFormURL string `json:"agreementFormUrl"`
}

// personalCustomerPatchRequest は個人顧客の部分更新リクエストのボディ。
// 未指定フィールドは変更しない。
type personalCustomerPatchRequest struct {
	ID               string  `json:"id"`
	TinNumber        *string `json:"tinNumber"`
	FirstName        *string `json:"firstName"`
	MiddleName       *string `json:"middleName"`
	LastName         *string `json:"lastName"`
	MothersName      *string `json:"mothersName"`
	Gender           *string `json:"gender"`
	MaritalStatus    *string `json:"maritalStatus"`
	DateOfBirth      *string `json:"dateOfBirth"`
	NationalID       *string `json:"nationalId"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email"`
	Region           *string `json:"region"`
	Zone             *string `json:"zone"`
	City             *string `json:"city"`
	Subcity          *string `json:"subcity"`
	Woreda           *string `json:"woreda"`
	MonthlyIncome    *string `json:"monthlyIncome"`
	AccountType      *string `json:"accountType"`
	Status           *string `json:"status"`
	NationalIDURL    *string `json:"nationalIdUrl"`
	AgreementFormURL *string `json:"agreementFormUrl"`
}

// personalCustomerResponse は個人顧客のAPIレスポンス。
type personalCustomerResponse struct {
	ID               string  `json:"id"`
	CustomerNumber   string  `json:"customerNumber"`
	TinNumber        string  `json:"tinNumber,omitempty"`
	FirstName        string  `json:"firstName"`
	MiddleName       string  `json:"middleName,omitempty"`
	LastName         string  `json:"lastName"`
	MothersName      string  `json:"mothersName,omitempty"`
	Gender           string  `json:"gender"`
	MaritalStatus    string  `json:"maritalStatus,omitempty"`
	DateOfBirth      string  `json:"dateOfBirth"`
	NationalID       string  `json:"nationalId"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email,omitempty"`
	Region           string  `json:"region,omitempty"`
	Zone             string  `json:"zone,omitempty"`
	City             string  `json:"city,omitempty"`
	Subcity          string  `json:"subcity,omitempty"`
	Woreda           string  `json:"woreda,omitempty"`
	MonthlyIncome    float64 `json:"monthlyIncome"`
	AccountType      string  `json:"accountType"`
	Status           string  `json:"status"`
	NationalIDURL    string  `json:"nationalIdUrl,omitempty"`
	AgreementFormURL string  `json:"agreementFormUrl,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// toPersonalCustomerResponse はドメインモデルからAPIレスポンスに変換する。
func toPersonalCustomerResponse(c *model.PersonalCustomer) personalCustomerResponse {
	dob := ""
	if !c.DateOfBirth.IsZero() {
		dob = c.DateOfBirth.Format("2006-01-02")
	}
	return personalCustomerResponse{
		ID:               c.ID,
		CustomerNumber:   c.CustomerNumber,
		TinNumber:        c.TinNumber,
		FirstName:        c.FirstName,
		MiddleName:       c.MiddleName,
		LastName:         c.LastName,
		MothersName:      c.MothersName,
		Gender:           c.Gender,
		MaritalStatus:    c.MaritalStatus,
		DateOfBirth:      dob,
		NationalID:       c.NationalID,
		Phone:            c.Phone,
		Email:            c.Email,
		Region:           c.Region,
		Zone:             c.Zone,
		City:             c.City,
		Subcity:          c.Subcity,
		Woreda:           c.Woreda,
		MonthlyIncome:    c.MonthlyIncome,
		AccountType:      c.AccountType,
		Status:           c.Status,
		NationalIDURL:    c.NationalIDURL,
		AgreementFormURL: c.AgreementFormURL,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
}

// toPersonalInput はリクエストボディをサービス入力に変換する。
func toPersonalInput(req personalCustomerRequest) customer.PersonalInput {
	return customer.PersonalInput{
		CustomerNumber:   req.CustomerNumber,
		TinNumber:        req.TinNumber,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		LastName:         req.LastName,
		MothersName:      req.MothersName,
		Gender:           req.Gender,
		MaritalStatus:    req.MaritalStatus,
		DateOfBirth:      req.DateOfBirth,
		NationalID:       req.NationalID,
		Phone:            req.Phone,
		Email:            req.Email,
		Region:           req.Region,
		Zone:             req.Zone,
		City:             req.City,
		Subcity:          req.Subcity,
		Woreda:           req.Woreda,
		MonthlyIncome:    req.MonthlyIncome,
		AccountType:      req.AccountType,
		Status:           req.Status,
		NationalIDURL:    req.NationalIDURL,
		AgreementFormURL: req.AgreementFormURL,
	}
}

// parseLimitQuery は?limit=クエリを解析する。未指定・不正な値は0を返し、
// サービス層で上限に丸められる。
func parseLimitQuery(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

// CreateCustomer は個人顧客を登録する。
// POST /api/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req personalCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.Create(r.Context(), toPersonalInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCustomerCreated("personal")
	}

	writeJSON(w, http.StatusCreated, toPersonalCustomerResponse(c))
}

// GetCustomers は個人顧客の一覧または顧客番号による検索結果を返す。
// GET /api/customers?customerNumber=&limit=
func (h *CustomerHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	if customerNumber := r.URL.Query().Get("customerNumber"); customerNumber != "" {
		c, err := h.service.GetByCustomerNumber(r.Context(), customerNumber)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPersonalCustomerResponse(c))
		return
	}

	customers, err := h.service.List(r.Context(), parseLimitQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]personalCustomerResponse, 0, len(customers))
	for _, c := range customers {
		responses = append(responses, toPersonalCustomerResponse(c))
	}

	writeJSON(w, http.StatusOK, responses)
}

// ReplaceCustomer は個人顧客を全量上書き更新する。
// PUT /api/customers（ボディに{id, ...}を含む）
func (h *CustomerHandler) ReplaceCustomer(w http.ResponseWriter, r *http.Request) {
	var req personalCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは必須です"))
		return
	}

	c, err := h.service.Replace(r.Context(), req.ID, toPersonalInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPersonalCustomerResponse(c))
}

// UpdateCustomer は個人顧客を部分更新する。
// PATCH /api/customers（ボディに{id, ...}を含む）
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req personalCustomerPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは必須です"))
		return
	}

	c, err := h.service.Update(r.Context(), req.ID, customer.PersonalUpdateInput{
		TinNumber:        req.TinNumber,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		LastName:         req.LastName,
		MothersName:      req.MothersName,
		Gender:           req.Gender,
		MaritalStatus:    req.MaritalStatus,
		DateOfBirth:      req.DateOfBirth,
		NationalID:       req.NationalID,
		Phone:            req.Phone,
		Email:            req.Email,
		Region:           req.Region,
		Zone:             req.Zone,
		City:             req.City,
		Subcity:          req.Subcity,
		Woreda:           req.Woreda,
		MonthlyIncome:    req.MonthlyIncome,
		AccountType:      req.AccountType,
		Status:           req.Status,
		NationalIDURL:    req.NationalIDURL,
		AgreementFormURL: req.AgreementFormURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPersonalCustomerResponse(c))
}

// DeleteCustomer は個人顧客を削除する。
// DELETE /api/customers?id=
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは必須です"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
