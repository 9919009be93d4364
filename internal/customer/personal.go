// Package customer は個人・法人顧客登録のドメインロジックを提供する。
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

// ServiceConfig は顧客サービスの設定。
type ServiceConfig struct {
	ListPageCap   int // 一覧取得の最大件数
	SearchPageCap int // 名前検索の最大件数
}

// PersonalInput は個人顧客の登録・全量更新の入力。
// 数値・日付フィールドは登録フォームから文字列で届く。
type PersonalInput struct {
	CustomerNumber   string
	TinNumber        string
	FirstName        string
	MiddleName       string
	LastName         string
	MothersName      string
	Gender           string
	MaritalStatus    string
	DateOfBirth      string
	NationalID       string
	Phone            string
	Email            string
	Region           string
	Zone             string
	City             string
	Subcity          string
	Woreda           string
	MonthlyIncome    string
	AccountType      string
	Status           string
	NationalIDURL    string
	AgreementFormURL string
}

// PersonalUpdateInput は個人顧客の部分更新の入力。
// nilのフィールドは変更しない。
type PersonalUpdateInput struct {
	TinNumber        *string
	FirstName        *string
	MiddleName       *string
	LastName         *string
	MothersName      *string
	Gender           *string
	MaritalStatus    *string
	DateOfBirth      *string
	NationalID       *string
	Phone            *string
	Email            *string
	Region           *string
	Zone             *string
	City             *string
	Subcity          *string
	Woreda           *string
	MonthlyIncome    *string
	AccountType      *string
	Status           *string
	NationalIDURL    *string
	AgreementFormURL *string
}

// PersonalService は個人顧客のビジネスロジックを提供する。
type PersonalService struct {
	repo   repository.PersonalCustomerRepository
	config ServiceConfig
}

// NewPersonalService はPersonalServiceを生成する。
func NewPersonalService(repo repository.PersonalCustomerRepository, config ServiceConfig) *PersonalService {
	return &PersonalService{repo: repo, config: config}
}

// Create は個人顧客を登録する。
func (s *PersonalService) Create(ctx context.Context, input PersonalInput) (*model.PersonalCustomer, error) {
	c, err := buildPersonalCustomer(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・国民ID・電話番号・メールアドレスのいずれか")
		}
		return nil, fmt.Errorf("failed to create personal customer: %w", err)
	}

	slog.Info("personal customer created",
		slog.String("customer_id", c.ID),
		slog.String("customer_number", c.CustomerNumber),
	)

	return c, nil
}

// Get はID指定で個人顧客を取得する。
func (s *PersonalService) Get(ctx context.Context, id string) (*model.PersonalCustomer, error) {
	if id == "" {
		return nil, model.NewValidationError("IDは必須です")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find personal customer: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("指定したIDの個人顧客")
	}
	return c, nil
}

// GetByCustomerNumber は顧客番号で個人顧客を取得する。
func (s *PersonalService) GetByCustomerNumber(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error) {
	if customerNumber == "" {
		return nil, model.NewValidationError("顧客番号は必須です")
	}
	c, err := s.repo.FindByCustomerNumber(ctx, customerNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find personal customer: %w", err)
	}
	if c == nil {
		return nil, model.NewNotFoundError("指定した顧客番号の個人顧客")
	}
	return c, nil
}

// List は個人顧客を作成日時の降順で返す。limitは上限件数に丸められる。
func (s *PersonalService) List(ctx context.Context, limit int) ([]*model.PersonalCustomer, error) {
	customers, err := s.repo.List(ctx, clampLimit(limit, s.config.ListPageCap))
	if err != nil {
		return nil, fmt.Errorf("failed to list personal customers: %w", err)
	}
	return customers, nil
}

// Update は個人顧客を部分更新する。設定されたフィールドのみ反映する。
func (s *PersonalService) Update(ctx context.Context, id string, input PersonalUpdateInput) (*model.PersonalCustomer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyPersonalUpdate(c, input); err != nil {
		return nil, err
	}

	if !documentURLsConsistent(c.NationalIDURL, c.AgreementFormURL) {
		return nil, model.NewValidationError("提出書類は国民ID・同意書の両方を揃えてください")
	}

	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・国民ID・電話番号・メールアドレスのいずれか")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したIDの個人顧客")
		}
		return nil, fmt.Errorf("failed to update personal customer: %w", err)
	}

	return c, nil
}

// Replace は個人顧客を全量上書き更新する。
func (s *PersonalService) Replace(ctx context.Context, id string, input PersonalInput) (*model.PersonalCustomer, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := buildPersonalCustomer(input)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateKeyError("顧客番号・国民ID・電話番号・メールアドレスのいずれか")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFoundError("指定したIDの個人顧客")
		}
		return nil, fmt.Errorf("failed to replace personal customer: %w", err)
	}

	return c, nil
}

// Delete は個人顧客を削除する。
func (s *PersonalService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.NewValidationError("IDは必須です")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNotFoundError("指定したIDの個人顧客")
		}
		return fmt.Errorf("failed to delete personal customer: %w", err)
	}

	slog.Info("personal customer deleted", slog.String("customer_id", id))
	return nil
}

// buildPersonalCustomer は入力を検証しドメインモデルを組み立てる。
func buildPersonalCustomer(input PersonalInput) (*model.PersonalCustomer, error) {
	required := map[string]string{
		"顧客番号":  input.CustomerNumber,
		"名":     input.FirstName,
		"姓":     input.LastName,
		"性別":    input.Gender,
		"国民ID":  input.NationalID,
		"電話番号":  input.Phone,
		"口座種別":  input.AccountType,
		"生年月日":  input.DateOfBirth,
	}
	for label, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, model.NewValidationError(label + "は必須です")
		}
	}

	dob, ok := parseDate(input.DateOfBirth)
	if !ok {
		return nil, model.NewValidationError("生年月日はYYYY-MM-DD形式で指定してください")
	}

	income, ok := parseMoney(input.MonthlyIncome)
	if !ok {
		return nil, model.NewValidationError("月収は0以上の数値で指定してください")
	}

	if !documentURLsConsistent(input.NationalIDURL, input.AgreementFormURL) {
		return nil, model.NewValidationError("提出書類は国民ID・同意書の両方を揃えてください")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = "PENDING"
	}

	return &model.PersonalCustomer{
		CustomerNumber:   strings.TrimSpace(input.CustomerNumber),
		TinNumber:        strings.TrimSpace(input.TinNumber),
		FirstName:        strings.TrimSpace(input.FirstName),
		MiddleName:       strings.TrimSpace(input.MiddleName),
		LastName:         strings.TrimSpace(input.LastName),
		MothersName:      strings.TrimSpace(input.MothersName),
		Gender:           strings.TrimSpace(input.Gender),
		MaritalStatus:    strings.TrimSpace(input.MaritalStatus),
		DateOfBirth:      dob,
		NationalID:       strings.TrimSpace(input.NationalID),
		Phone:            strings.TrimSpace(input.Phone),
		Email:            strings.TrimSpace(input.Email),
		Region:           strings.TrimSpace(input.Region),
		Zone:             strings.TrimSpace(input.Zone),
		City:             strings.TrimSpace(input.City),
		Subcity:          strings.TrimSpace(input.Subcity),
		Woreda:           strings.TrimSpace(input.Woreda),
		MonthlyIncome:    income,
		AccountType:      strings.TrimSpace(input.AccountType),
		Status:           status,
		NationalIDURL:    strings.TrimSpace(input.NationalIDURL),
		AgreementFormURL: strings.TrimSpace(input.AgreementFormURL),
	}, nil
}

// applyPersonalUpdate は部分更新の入力を既存レコードに反映する。
func applyPersonalUpdate(c *model.PersonalCustomer, input PersonalUpdateInput) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	setString(&c.TinNumber, input.TinNumber)
	setString(&c.FirstName, input.FirstName)
	setString(&c.MiddleName, input.MiddleName)
	setString(&c.LastName, input.LastName)
	setString(&c.MothersName, input.MothersName)
	setString(&c.Gender, input.Gender)
	setString(&c.MaritalStatus, input.MaritalStatus)
	setString(&c.NationalID, input.NationalID)
	setString(&c.Phone, input.Phone)
	setString(&c.Email, input.Email)
	setString(&c.Region, input.Region)
	setString(&c.Zone, input.Zone)
	setString(&c.City, input.City)
	setString(&c.Subcity, input.Subcity)
	setString(&c.Woreda, input.Woreda)
	setString(&c.AccountType, input.AccountType)
	setString(&c.Status, input.Status)
	setString(&c.NationalIDURL, input.NationalIDURL)
	setString(&c.AgreementFormURL, input.AgreementFormURL)

	if input.DateOfBirth != nil {
		dob, ok := parseDate(*input.DateOfBirth)
		if !ok {
			return model.NewValidationError("生年月日はYYYY-MM-DD形式で指定してください")
		}
		c.DateOfBirth = dob
	}

	if input.MonthlyIncome != nil {
		income, ok := parseMoney(*input.MonthlyIncome)
		if !ok {
			return model.NewValidationError("月収は0以上の数値で指定してください")
		}
		c.MonthlyIncome = income
	}

	return nil
}
