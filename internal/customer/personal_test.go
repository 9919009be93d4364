package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/repository"
)

// --- モック定義 ---

type mockPersonalRepo struct {
	createFn               func(ctx context.Context, c *model.PersonalCustomer) error
	findByIDFn             func(ctx context.Context, id string) (*model.PersonalCustomer, error)
	findByCustomerNumberFn func(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error)
	listFn                 func(ctx context.Context, limit int) ([]*model.PersonalCustomer, error)
	updateFn               func(ctx context.Context, c *model.PersonalCustomer) error
	deleteFn               func(ctx context.Context, id string) error
}

func (m *mockPersonalRepo) Create(ctx context.Context, c *model.PersonalCustomer) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockPersonalRepo) FindByID(ctx context.Context, id string) (*model.PersonalCustomer, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPersonalRepo) FindByCustomerNumber(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error) {
	if m.findByCustomerNumberFn != nil {
		return m.findByCustomerNumberFn(ctx, customerNumber)
	}
	return nil, nil
}

func (m *mockPersonalRepo) List(ctx context.Context, limit int) ([]*model.PersonalCustomer, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPersonalRepo) Update(ctx context.Context, c *model.PersonalCustomer) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return nil
}

func (m *mockPersonalRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.PersonalCustomerRepository = (*mockPersonalRepo)(nil)

func testServiceConfig() ServiceConfig {
	return ServiceConfig{ListPageCap: 100, SearchPageCap: 50}
}

func validPersonalInput() PersonalInput {
	return PersonalInput{
		CustomerNumber: "CUST1712000000123",
		FirstName:      "Abel",
		MiddleName:     "Girma",
		LastName:       "Tesfaye",
		Gender:         "MALE",
		MaritalStatus:  "SINGLE",
		DateOfBirth:    "1990-05-14",
		NationalID:     "NID-0012345",
		Phone:          "+251911000000",
		Email:          "abel@example.com",
		Region:         "Addis Ababa",
		MonthlyIncome:  "15000.50",
		AccountType:    "SAVINGS",
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

// --- テスト ---

func TestPersonalCreate_ValidInput_PersistsCustomer(t *testing.T) {
	ctx := context.Background()

	var created *model.PersonalCustomer
	repo := &mockPersonalRepo{
		createFn: func(ctx context.Context, c *model.PersonalCustomer) error {
			created = c
			return nil
		},
	}
	svc := NewPersonalService(repo, testServiceConfig())

	c, err := svc.Create(ctx, validPersonalInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.ID == "" {
		t.Error("expected generated ID")
	}
	if c.CustomerNumber != "CUST1712000000123" {
		t.Errorf("customer number = %q, want %q", c.CustomerNumber, "CUST1712000000123")
	}
	if c.MonthlyIncome != 15000.50 {
		t.Errorf("monthly income = %v, want 15000.50", c.MonthlyIncome)
	}
	wantDOB := time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)
	if !c.DateOfBirth.Equal(wantDOB) {
		t.Errorf("date of birth = %v, want %v", c.DateOfBirth, wantDOB)
	}
	if c.Status != "PENDING" {
		t.Errorf("status = %q, want PENDING default", c.Status)
	}
	if created == nil {
		t.Fatal("expected customer to be persisted")
	}
}

func TestPersonalCreate_MissingRequiredField_ValidationError(t *testing.T) {
	svc := NewPersonalService(&mockPersonalRepo{}, testServiceConfig())

	input := validPersonalInput()
	input.NationalID = ""

	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertValidationError(t, err)
}

func TestPersonalCreate_MalformedDate_ValidationError(t *testing.T) {
	svc := NewPersonalService(&mockPersonalRepo{}, testServiceConfig())

	input := validPersonalInput()
	input.DateOfBirth = "14/05/1990"

	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertValidationError(t, err)
}

func TestPersonalCreate_MalformedIncome_ValidationError(t *testing.T) {
	svc := NewPersonalService(&mockPersonalRepo{}, testServiceConfig())

	input := validPersonalInput()
	input.MonthlyIncome = "abc"

	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertValidationError(t, err)
}

func TestPersonalCreate_SingleDocumentURL_ValidationError(t *testing.T) {
	svc := NewPersonalService(&mockPersonalRepo{}, testServiceConfig())

	input := validPersonalInput()
	input.NationalIDURL = "https://storage.example.com/object/public/CBS/doc.pdf"
	// AgreementFormURLは空のまま

	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error for incomplete document pair")
	}
	assertValidationError(t, err)
}

func TestPersonalCreate_Duplicate_DuplicateKeyError(t *testing.T) {
	repo := &mockPersonalRepo{
		createFn: func(ctx context.Context, c *model.PersonalCustomer) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewPersonalService(repo, testServiceConfig())

	_, err := svc.Create(context.Background(), validPersonalInput())
	if err == nil {
		t.Fatal("expected duplicate key error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateKey {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateKey)
	}
}

func TestPersonalGet_NotFound(t *testing.T) {
	svc := NewPersonalService(&mockPersonalRepo{}, testServiceConfig())

	_, err := svc.Get(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("expected not found error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}

func TestPersonalList_LimitClampedToCap(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"over cap clamped", 1000, 100},
		{"zero defaults to cap", 0, 100},
		{"negative defaults to cap", -5, 100},
		{"within cap passed through", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			repo := &mockPersonalRepo{
				listFn: func(ctx context.Context, limit int) ([]*model.PersonalCustomer, error) {
					gotLimit = limit
					return nil, nil
				},
			}
			svc := NewPersonalService(repo, testServiceConfig())

			if _, err := svc.List(context.Background(), tt.requested); err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if gotLimit != tt.want {
				t.Errorf("limit = %d, want %d", gotLimit, tt.want)
			}
		})
	}
}

func TestPersonalUpdate_PartialFields_OnlySetFieldsChange(t *testing.T) {
	ctx := context.Background()

	existing := &model.PersonalCustomer{
		ID:             "cust-1",
		CustomerNumber: "CUST1712000000123",
		FirstName:      "Abel",
		LastName:       "Tesfaye",
		Phone:          "+251911000000",
		MonthlyIncome:  10000,
	}

	var updated *model.PersonalCustomer
	repo := &mockPersonalRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalCustomer, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, c *model.PersonalCustomer) error {
			updated = c
			return nil
		},
	}
	svc := NewPersonalService(repo, testServiceConfig())

	newPhone := "+251922000000"
	newIncome := "20000"
	c, err := svc.Update(ctx, "cust-1", PersonalUpdateInput{
		Phone:         &newPhone,
		MonthlyIncome: &newIncome,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if c.Phone != "+251922000000" {
		t.Errorf("phone = %q, want %q", c.Phone, "+251922000000")
	}
	if c.MonthlyIncome != 20000 {
		t.Errorf("monthly income = %v, want 20000", c.MonthlyIncome)
	}
	// 未指定フィールドは変更されないこと
	if c.FirstName != "Abel" || c.LastName != "Tesfaye" {
		t.Errorf("unset fields changed: %+v", c)
	}
	if updated == nil {
		t.Fatal("expected update to be persisted")
	}
}

func TestPersonalUpdate_MalformedDate_ValidationError(t *testing.T) {
	repo := &mockPersonalRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.PersonalCustomer, error) {
			return &model.PersonalCustomer{ID: id}, nil
		},
	}
	svc := NewPersonalService(repo, testServiceConfig())

	bad := "not-a-date"
	_, err := svc.Update(context.Background(), "cust-1", PersonalUpdateInput{DateOfBirth: &bad})
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertValidationError(t, err)
}

func TestPersonalDelete_NotFound(t *testing.T) {
	repo := &mockPersonalRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return repository.ErrNotFound
		},
	}
	svc := NewPersonalService(repo, testServiceConfig())

	err := svc.Delete(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("expected not found error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}
