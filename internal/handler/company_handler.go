package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/tellerdesk/internal/customer"
	"github.com/hitoshi/tellerdesk/internal/metrics"
	"github.com/hitoshi/tellerdesk/internal/model"
)

// CompanyServiceInterface は法人顧客ハンドラーが必要とするサービスインターフェース。
type CompanyServiceInterface interface {
	Create(ctx context.Context, input customer.CompanyInput) (*model.CompanyCustomer, error)
	Get(ctx context.Context, id string) (*model.CompanyCustomer, error)
	GetByCustomerNumber(ctx context.Context, customerNumber string) (*model.CompanyCustomer, error)
	GetByTinNumber(ctx context.Context, tinNumber string) (*model.CompanyCustomer, error)
	SearchByName(ctx context.Context, companyName string, limit int) ([]*model.CompanyCustomer, error)
	List(ctx context.Context, limit int) ([]*model.CompanyCustomer, error)
	Update(ctx context.Context, id string, input customer.CompanyUpdateInput) (*model.CompanyCustomer, error)
	Replace(ctx context.Context, id string, input customer.CompanyInput) (*model.CompanyCustomer, error)
	Delete(ctx context.Context, id string) error
}

// CompanyHandler は法人顧客管理のHTTPハンドラー。
// 融資審査向けの公開参照（CompanyLoan）も同じサービスを使う。
type CompanyHandler struct {
	service CompanyServiceInterface
	metrics metrics.MetricsCollector
}

// NewCompanyHandler はCompanyHandlerを生成する。
func NewCompanyHandler(service CompanyServiceInterface, collector metrics.MetricsCollector) *CompanyHandler {
	return &CompanyHandler{service: service, metrics: collector}
}

// companyCustomerRequest は法人顧客の登録・全量更新リクエストのボディ。
type companyCustomerRequest struct {
	ID                    string `json:"id"`
	CustomerNumber        string `json:"customerNumber"`
	TinNumber             string `json:"tinNumber"`
	CompanyName           string `json:"companyName"`
	BusinessType          string `json:"businessType"`
	RegistrationNumber    string `json:"registrationNumber"`
	RegistrationDate      string `json:"registrationDate"`
	NumberOfEmployees     string `json:"numberOfEmployees"`
	ContactPersonName     string `json:"contactPersonName"`
	ContactPersonPosition string `json:"contactPersonPosition"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Region                string `json:"region"`
	Zone                  string `json:"zone"`
	City                  string `json:"city"`
	Subcity               string `json:"subcity"`
	Woreda                string `json:"woreda"`
	AnnualRevenue         string `json:"annualRevenue"`
	AccountType           string `json:"accountType"`
	Status                string `json:"status"`
	BusinessLicenseURL    string `json:"businessLicenseUrl"`
	AgreementFormURL      string `json:"agreementFormUrl"`
}

// companyCustomerPatchRequest は法人顧客の部分更新リクエストのボディ。
type companyCustomerPatchRequest struct {
	ID                    string  `json:"id"`
	TinNumber             *string `json:"tinNumber"`
	CompanyName           *string `json:"companyName"`
	BusinessType          *string `json:"businessType"`
	RegistrationNumber    *string `json:"registrationNumber"`
	RegistrationDate      *string `json:"registrationDate"`
	NumberOfEmployees     *string `json:"numberOfEmployees"`
	ContactPersonName     *string `json:"contactPersonName"`
	ContactPersonPosition *string `json:"contactPersonPosition"`
	Phone                 *string `json:"phone"`
	Email                 *string `json:"email"`
	Region                *string `json:"region"`
	Zone                  *string `json:"zone"`
	City                  *string `json:"city"`
	Subcity               *string `json:"subcity"`
	Woreda                *string `json:"woreda"`
	AnnualRevenue         *string `json:"annualRevenue"`
	AccountType           *string `json:"accountType"`
	Status                *string `json:"status"`
	BusinessLicenseURL    *string `json:"businessLicenseUrl"`
	AgreementFormURL      *string `json:"agreementFormUrl"`
}

// companyCustomerResponse は法人顧客のAPIレスポンス。
type companyCustomerResponse struct {
	ID                    string  `json:"id"`
	CustomerNumber        string  `json:"customerNumber"`
	TinNumber             string  `json:"tinNumber"`
	CompanyName           string  `json:"companyName"`
	BusinessType          string  `json:"businessType,omitempty"`
	RegistrationNumber    string  `json:"registrationNumber"`
	RegistrationDate      string  `json:"registrationDate,omitempty"`
	NumberOfEmployees     int     `json:"numberOfEmployees"`
	ContactPersonName     string  `json:"contactPersonName"`
	ContactPersonPosition string  `json:"contactPersonPosition,omitempty"`
	Phone                 string  `json:"phone"`
	Email                 string  `json:"email,omitempty"`
	Region                string  `json:"region,omitempty"`
	Zone                  string  `json:"zone,omitempty"`
	City                  string  `json:"city,omitempty"`
	Subcity               string  `json:"subcity,omitempty"`
	Woreda                string  `json:"woreda,omitempty"`
	AnnualRevenue         float64 `json:"annualRevenue"`
	AccountType           string  `json:"accountType"`
	Status                string  `json:"status"`
	BusinessLicenseURL    string  `json:"businessLicenseUrl,omitempty"`
	AgreementFormURL      string  `json:"agreementFormUrl,omitempty"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

// toCompanyCustomerResponse はドメインモデルからAPIレスポンスに変換する。
func toCompanyCustomerResponse(c *model.CompanyCustomer) companyCustomerResponse {
	registrationDate := ""
	if !c.RegistrationDate.IsZero() {
		registrationDate = c.RegistrationDate.Format("2006-01-02")
	}
	return companyCustomerResponse{
		ID:                    c.ID,
		CustomerNumber:        c.CustomerNumber,
		TinNumber:             c.TinNumber,
		CompanyName:           c.CompanyName,
		BusinessType:          c.BusinessType,
		RegistrationNumber:    c.RegistrationNumber,
		RegistrationDate:      registrationDate,
		NumberOfEmployees:     c.NumberOfEmployees,
		ContactPersonName:     c.ContactPersonName,
		ContactPersonPosition: c.ContactPersonPosition,
		Phone:                 c.Phone,
		Email:                 c.Email,
		Region:                c.Region,
		Zone:                  c.Zone,
		City:                  c.City,
		Subcity:               c.Subcity,
		Woreda:                c.Woreda,
		AnnualRevenue:         c.AnnualRevenue,
		AccountType:           c.AccountType,
		Status:                c.Status,
		BusinessLicenseURL:    c.BusinessLicenseURL,
		AgreementFormURL:      c.AgreementFormURL,
		CreatedAt:             c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             c.UpdatedAt.Format(time.RFC3339),
	}
}

// toCompanyInput はリクエストボディをサービス入力に変換する。
func toCompanyInput(req companyCustomerRequest) customer.CompanyInput {
	return customer.CompanyInput{
		CustomerNumber:        req.CustomerNumber,
		TinNumber:             req.TinNumber,
		CompanyName:           req.CompanyName,
		BusinessType:          req.BusinessType,
		RegistrationNumber:    req.RegistrationNumber,
		RegistrationDate:      req.RegistrationDate,
		NumberOfEmployees:     req.NumberOfEmployees,
		ContactPersonName:     req.ContactPersonName,
		ContactPersonPosition: req.ContactPersonPosition,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Region:                req.Region,
		Zone:                  req.Zone,
		City:                  req.City,
		Subcity:               req.Subcity,
		Woreda:                req.Woreda,
		AnnualRevenue:         req.AnnualRevenue,
		AccountType:           req.AccountType,
		Status:                req.Status,
		BusinessLicenseURL:    req.BusinessLicenseURL,
		AgreementFormURL:      req.AgreementFormURL,
	}
}

// CreateCompanyCustomer は法人顧客を登録する。
// POST /api/company-customers
func (h *CompanyHandler) CreateCompanyCustomer(w http.ResponseWriter, r *http.Request) {
	var req companyCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.Create(r.Context(), toCompanyInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCustomerCreated("company")
	}

	writeJSON(w, http.StatusCreated, toCompanyCustomerResponse(c))
}

// GetCompanyCustomers は法人顧客の一覧または検索結果を返す。
// GET /api/company-customers?customerNumber=|companyName=|tinNumber=&limit=
func (h *CompanyHandler) GetCompanyCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if customerNumber := query.Get("customerNumber"); customerNumber != "" {
		c, err := h.service.GetByCustomerNumber(r.Context(), customerNumber)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCompanyCustomerResponse(c))
		return
	}

	if tinNumber := query.Get("tinNumber"); tinNumber != "" {
		c, err := h.service.GetByTinNumber(r.Context(), tinNumber)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCompanyCustomerResponse(c))
		return
	}

	if companyName := query.Get("companyName"); companyName != "" {
		customers, err := h.service.SearchByName(r.Context(), companyName, parseLimitQuery(r))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCompanyCustomerResponses(customers))
		return
	}

	customers, err := h.service.List(r.Context(), parseLimitQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyCustomerResponses(customers))
}

func toCompanyCustomerResponses(customers []*model.CompanyCustomer) []companyCustomerResponse {
	responses := make([]companyCustomerResponse, 0, len(customers))
	for _, c := range customers {
		responses = append(responses, toCompanyCustomerResponse(c))
	}
	return responses
}

// ReplaceCompanyCustomer は法人顧客を全量上書き更新する。
// PUT /api/company-customers（ボディに{id, ...}を含む）
func (h *CompanyHandler) ReplaceCompanyCustomer(w http.ResponseWriter, r *http.Request) {
	var req companyCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは必須です"))
		return
	}

	c, err := h.service.Replace(r.Context(), req.ID, toCompanyInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyCustomerResponse(c))
}

// UpdateCompanyCustomer は法人顧客を部分更新する。
// PATCH /api/company-customers（ボディに{id, ...}を含む）
func (h *CompanyHandler) UpdateCompanyCustomer(w http.ResponseWriter, r *http.Request) {
	var req companyCustomerPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.ID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは必須です"))
		return
	}

	c, err := h.service.Update(r.Context(), req.ID, customer.CompanyUpdateInput{
		TinNumber:             req.TinNumber,
		CompanyName:           req.CompanyName,
		BusinessType:          req.BusinessType,
		RegistrationNumber:    req.RegistrationNumber,
		RegistrationDate:      req.RegistrationDate,
		NumberOfEmployees:     req.NumberOfEmployees,
		ContactPersonName:     req.ContactPersonName,
		ContactPersonPosition: req.ContactPersonPosition,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Region:                req.Region,
		Zone:                  req.Zone,
		City:                  req.City,
		Subcity:               req.Subcity,
		Woreda:                req.Woreda,
		AnnualRevenue:         req.AnnualRevenue,
		AccountType:           req.AccountType,
		Status:                req.Status,
		BusinessLicenseURL:    req.BusinessLicenseURL,
		AgreementFormURL:      req.AgreementFormURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyCustomerResponse(c))
}

// DeleteCompanyCustomer は法人顧客を削除する。
// DELETE /api/company-customers?id=
func (h *CompanyHandler) DeleteCompanyCustomer(w http.ResponseWriter, r *http.Request) {
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

// CompanyLoan は融資審査システム向けに法人顧客を顧客番号で参照する。
// 認証なしの公開エンドポイントで、返す項目を審査に必要な範囲に絞る。
// GET /api/company-loan?customerNumber=
func (h *CompanyHandler) CompanyLoan(w http.ResponseWriter, r *http.Request) {
	customerNumber := r.URL.Query().Get("customerNumber")
	if customerNumber == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("顧客番号は必須です"))
		return
	}

	c, err := h.service.GetByCustomerNumber(r.Context(), customerNumber)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	registrationDate := ""
	if !c.RegistrationDate.IsZero() {
		registrationDate = c.RegistrationDate.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customerNumber":   c.CustomerNumber,
		"companyName":      c.CompanyName,
		"tinNumber":        c.TinNumber,
		"registrationDate": registrationDate,
		"annualRevenue":    c.AnnualRevenue,
		"accountType":      c.AccountType,
		"status":           c.Status,
	})
}
