package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/repository"
)

// CompanyInput は法人顧客の登録・全量更新の入力。
type CompanyInput struct {
	CustomerNumber        string
	TinNumber             string
	CompanyName           string
	BusinessType          string
	RegistrationNumber    string
	RegistrationDate      string
	NumberOfEmployees     string
	ContactPersonName     string
	ContactPersonPosition string
	Phone                 string
	Email                 string
	Region                string
	Zone                  string
	City                  string
	Subcity               string
	Woreda                string
	AnnualRevenue         string
	AccountType           string
	Status                string
	BusinessLicenseURL    string
	AgreementFormURL      string
}

// CompanyUpdateInput は法人顧客の部分更新の入力。nilのフィールドは変更しない。
type CompanyUpdateInput struct {
	TinNumber             *string
	CompanyName           *string
	BusinessType          *string
	RegistrationNumber    *string
	RegistrationDate      *string
	NumberOfEmployees     *string
	ContactPersonName     *string
	ContactPersonPosition *string
	Phone                 *string
	Email                 *string
	Region                *string
	Zone                  *string
	City                  *string
	Subcity               *string
	Woreda                *string
	AnnualRevenue         *string
	AccountType           *string
	Status                *string
	BusinessLicenseURL    *string
	AgreementFormURL      *string
}

// CompanyService は法人顧客のビジネスロジックを提供する。
type CompanyService struct {
	repo   repository.CompanyCustomerRepository
	config ServiceConfig
}

// NewCompanyService はCompanyServiceを生成する。
func NewCompanyService(repo repository.CompanyCustomerRepository, config ServiceConfig) *CompanyService {
	return &CompanyService{repo: repo, config: config}
}

// Create は法人顧客を登録する。
func (s *CompanyService) Create(ctx context.Context, input CompanyInput) (*model.CompanyCustomer, error) {
	c, err := buildCompanyCustomer(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・納税者番号・登記番号のいずれか")
		}
		return nil, fmt.Errorf("failed to create company customer: %w", err)
	}

	slog.Info("company customer created",
		slog.String("customer_id", c.ID),
		slog.String("customer_number", c.CustomerNumber),
		slog.String("company_name", c.CompanyName),
	)

	return c, nil
}

// Get はID指定で法人顧客を取得する。
func (s *CompanyService) Get(ctx context.Context, id string) (*model.CompanyCustomer, error) {
	if id == "" {
		return nil, model.NewValidationError("IDは必須です")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("指定したIDの法人顧客")
	}
	return c, nil
}

// GetByCustomerNumber は顧客番号で法人顧客を取得する。
func (s *CompanyService) GetByCustomerNumber(ctx context.Context, customerNumber string) (*model.CompanyCustomer, error) {
	if customerNumber == "" {
		return nil, model.NewValidationError("顧客番号は必須です")
	}
	c, err := s.repo.FindByCustomerNumber(ctx, customerNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("指定した顧客番号の法人顧客")
	}
	return c, nil
}

// GetByTinNumber は納税者番号（TIN）で法人顧客を取得する。
func (s *CompanyService) GetByTinNumber(ctx context.Context, tinNumber string) (*model.CompanyCustomer, error) {
	if tinNumber == "" {
		return nil, model.NewValidationError("納税者番号は必須です")
	}
	c, err := s.repo.FindByTinNumber(ctx, tinNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("指定した納税者番号の法人顧客")
	}
	return c, nil
}

// SearchByName は会社名の部分一致検索を行う。limitは上限件数に丸められる。
func (s *CompanyService) SearchByName(ctx context.Context, companyName string, limit int) ([]*model.CompanyCustomer, error) {
	if strings.TrimSpace(companyName) == "" {
		return nil, model.NewValidationError("検索する会社名は必須です")
	}
	customers, err := s.repo.SearchByCompanyName(ctx, strings.TrimSpace(companyName), clampLimit(limit, s.config.SearchPageCap))
	if err != nil {
		return nil, fmt.Errorf("failed to search company customers: %w", err)
	}
	return customers, nil
}

// List は法人顧客を作成日時の降順で返す。limitは上限件数に丸められる。
func (s *CompanyService) List(ctx context.Context, limit int) ([]*model.CompanyCustomer, error) {
	customers, err := s.repo.List(ctx, clampLimit(limit, s.config.ListPageCap))
	if err != nil {
		return nil, fmt.Errorf("failed to list company customers: %w", err)
	}
	return customers, nil
}

// Update は法人顧客を部分更新する。設定されたフィールドのみ反映する。
func (s *CompanyService) Update(ctx context.Context, id string, input CompanyUpdateInput) (*model.CompanyCustomer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyCompanyUpdate(c, input); err != nil {
		return nil, err
	}

	if !documentURLsConsistent(c.BusinessLicenseURL, c.AgreementFormURL) {
		return nil, model.NewValidationError("提出書類は営業許可証・同意書の両方を揃えてください")
	}

	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・納税者番号・登記番号のいずれか")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したIDの法人顧客")
		}
		return nil, fmt.Errorf("failed to update company customer: %w", err)
	}

	return c, nil
}

// Replace は法人顧客を全量上書き更新する。
func (s *CompanyService) Replace(ctx context.Context, id string, input CompanyInput) (*model.CompanyCustomer, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := buildCompanyCustomer(input)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・納税者番号・登記番号のいずれか")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したIDの法人顧客")
		}
		return nil, fmt.Errorf("failed to replace company customer: %w", err)
	}

	return c, nil
}

// Delete は法人顧客を削除する。
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.NewValidationError("IDは必須です")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError("指定したIDの法人顧客")
		}
		return fmt.Errorf("failed to delete company customer: %w", err)
	}

	slog.Info("company customer deleted", slog.String("customer_id", id))
	return nil
}

// buildCompanyCustomer は入力を検証しドメインモデルを組み立てる。
func buildCompanyCustomer(input CompanyInput) (*model.CompanyCustomer, error) {
	required := map[string]string{
		"顧客番号":   input.CustomerNumber,
		"納税者番号":  input.TinNumber,
		"会社名":    input.CompanyName,
		"登記番号":   input.RegistrationNumber,
		"担当者名":   input.ContactPersonName,
		"電話番号":   input.Phone,
		"口座種別":   input.AccountType,
	}
	for label, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, model.NewValidationError(label + "は必須です")
		}
	}

	regDate, ok := parseDate(input.RegistrationDate)
	if !ok {
		return nil, model.NewValidationError("登記日はYYYY-MM-DD形式で指定してください")
	}

	employees, ok := parseCount(input.NumberOfEmployees)
	if !ok {
		return nil, model.NewValidationError("従業員数は0以上の整数で指定してください")
	}

	revenue, ok := parseMoney(input.AnnualRevenue)
	if !ok {
		return nil, model.NewValidationError("年商は0以上の数値で指定してください")
	}

	if !documentURLsConsistent(input.BusinessLicenseURL, input.AgreementFormURL) {
		return nil, model.NewValidationError("提出書類は営業許可証・同意書の両方を揃えてください")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "PENDING"
	}

	return &model.CompanyCustomer{
		CustomerNumber:        strings.TrimSpace(input.CustomerNumber),
		TinNumber:             strings.TrimSpace(input.TinNumber),
		CompanyName:           strings.TrimSpace(input.CompanyName),
		BusinessType:          strings.TrimSpace(input.BusinessType),
		RegistrationNumber:    strings.TrimSpace(input.RegistrationNumber),
		RegistrationDate:      regDate,
		NumberOfEmployees:     employees,
		ContactPersonName:     strings.TrimSpace(input.ContactPersonName),
		ContactPersonPosition: strings.TrimSpace(input.ContactPersonPosition),
		Phone:                 strings.TrimSpace(input.Phone),
		Email:                 strings.TrimSpace(input.Email),
		Region:                strings.TrimSpace(input.Region),
		Zone:                  strings.TrimSpace(input.Zone),
		City:                  strings.TrimSpace(input.City),
		Subcity:               strings.TrimSpace(input.Subcity),
		Woreda:                strings.TrimSpace(input.Woreda),
		AnnualRevenue:         revenue,
		AccountType:           strings.TrimSpace(input.AccountType),
		Status:                status,
		BusinessLicenseURL:    strings.TrimSpace(input.BusinessLicenseURL),
		AgreementFormURL:      strings.TrimSpace(input.AgreementFormURL),
	}, nil
}

// applyCompanyUpdate は部分更新の入力を既存レコードに反映する。
func applyCompanyUpdate(c *model.CompanyCustomer, input CompanyUpdateInput) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	setString(&c.TinNumber, input.TinNumber)
	setString(&c.CompanyName, input.CompanyName)
	setString(&c.BusinessType, input.BusinessType)
	setString(&c.RegistrationNumber, input.RegistrationNumber)
	setString(&c.ContactPersonName, input.ContactPersonName)
	setString(&c.ContactPersonPosition, input.ContactPersonPosition)
	setString(&c.Phone, input.Phone)
	setString(&c.Email, input.Email)
	setString(&c.Region, input.Region)
	setString(&c.Zone, input.Zone)
	setString(&c.City, input.City)
	setString(&c.Subcity, input.Subcity)
	setString(&c.Woreda, input.Woreda)
	setString(&c.AccountType, input.AccountType)
	setString(&c.Status, input.Status)
	setString(&c.BusinessLicenseURL, input.BusinessLicenseURL)
	setString(&c.AgreementFormURL, input.AgreementFormURL)

	if input.RegistrationDate != nil {
		regDate, ok := parseDate(*input.RegistrationDate)
		if !ok {
			return model.NewValidationError("登記日はYYYY-MM-DD形式で指定してください")
		}
		c.RegistrationDate = regDate
	}

	if input.NumberOfEmployees != nil {
		employees, ok := parseCount(*input.NumberOfEmployees)
		if !ok {
			return model.NewValidationError("従業員数は0以上の整数で指定してください")
		}
		c.NumberOfEmployees = employees
	}

	if input.AnnualRevenue != nil {
		revenue, ok := parseMoney(*input.AnnualRevenue)
		if !ok {
			return model.NewValidationError("年商は0以上の数値で指定してください")
		}
		c.AnnualRevenue = revenue
	}

	return nil
}
