package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tellerdesk/internal/model"
)

// PostgresCompanyCustomerRepo はPostgreSQLを使用した法人顧客リポジトリ。
type PostgresCompanyCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCompanyCustomerRepo はPostgresCompanyCustomerRepoを生成する。
func NewPostgresCompanyCustomerRepo(db *sql.DB) *PostgresCompanyCustomerRepo {
	return &PostgresCompanyCustomerRepo{db: db}
}

const companyCustomerColumns = `id, customer_number, tin_number, company_name, business_type,
	registration_number, registration_date, number_of_employees,
	contact_person_name, contact_person_position, phone, email,
	region, zone, city, subcity, woreda, annual_revenue, account_type, status,
	business_license_url, agreement_form_url, created_at, updated_at`

// scanCompanyCustomer は1行をmodel.CompanyCustomerに読み取る。
func scanCompanyCustomer(row interface{ Scan(...any) error }) (*model.CompanyCustomer, error) {
	c := &model.CompanyCustomer{}
	err := row.Scan(
		&c.ID, &c.CustomerNumber, &c.TinNumber, &c.CompanyName, &c.BusinessType,
		&c.RegistrationNumber, &c.RegistrationDate, &c.NumberOfEmployees,
		&c.ContactPersonName, &c.ContactPersonPosition, &c.Phone, &c.Email,
		&c.Region, &c.Zone, &c.City, &c.Subcity, &c.Woreda, &c.AnnualRevenue, &c.AccountType, &c.Status,
		&c.BusinessLicenseURL, &c.AgreementFormURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create は法人顧客を作成する。一意制約違反時はErrDuplicateを返す。
func (r *PostgresCompanyCustomerRepo) Create(ctx context.Context, c *model.CompanyCustomer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_customers (`+companyCustomerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		         $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		c.ID, c.CustomerNumber, c.TinNumber, c.CompanyName, c.BusinessType,
		c.RegistrationNumber, c.RegistrationDate, c.NumberOfEmployees,
		c.ContactPersonName, c.ContactPersonPosition, c.Phone, c.Email,
		c.Region, c.Zone, c.City, c.Subcity, c.Woreda, c.AnnualRevenue, c.AccountType, c.Status,
		c.BusinessLicenseURL, c.AgreementFormURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation(err, "failed to insert company customer")
	}
	return nil
}

// FindByID は指定IDの法人顧客を取得する。見つからない場合はnilを返す。
func (r *PostgresCompanyCustomerRepo) FindByID(ctx context.Context, id string) (*model.CompanyCustomer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyCustomerColumns+` FROM company_customers WHERE id = $1`,
		id,
	)
	c, err := scanCompanyCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer by ID: %w", err)
	}
	return c, nil
}

// FindByCustomerNumber は顧客番号で法人顧客を検索する。見つからない場合はnilを返す。
func (r *PostgresCompanyCustomerRepo) FindByCustomerNumber(ctx context.Context, customerNumber string) (*model.CompanyCustomer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyCustomerColumns+` FROM company_customers WHERE customer_number = $1`,
		customerNumber,
	)
	c, err := scanCompanyCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer by customer number: %w", err)
	}
	return c, nil
}

// FindByTinNumber は納税者番号（TIN）で法人顧客を検索する。見つからない場合はnilを返す。
func (r *PostgresCompanyCustomerRepo) FindByTinNumber(ctx context.Context, tinNumber string) (*model.CompanyCustomer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyCustomerColumns+` FROM company_customers WHERE tin_number = $1`,
		tinNumber,
	)
	c, err := scanCompanyCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company customer by TIN: %w", err)
	}
	return c, nil
}

// SearchByCompanyName は会社名の大文字小文字を区別しない部分一致検索を行う。
func (r *PostgresCompanyCustomerRepo) SearchByCompanyName(ctx context.Context, companyName string, limit int) ([]*model.CompanyCustomer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyCustomerColumns+` FROM company_customers
		 WHERE company_name ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC
		 LIMIT $2`,
		companyName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search company customers: %w", err)
	}
	defer rows.Close()

	return collectCompanyCustomers(rows)
}

// List は法人顧客を作成日時の降順で最大limit件返す。
func (r *PostgresCompanyCustomerRepo) List(ctx context.Context, limit int) ([]*model.CompanyCustomer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyCustomerColumns+` FROM company_customers
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list company customers: %w", err)
	}
	defer rows.Close()

	return collectCompanyCustomers(rows)
}

// collectCompanyCustomers は結果セットをスライスに読み取る。
func collectCompanyCustomers(rows *sql.Rows) ([]*model.CompanyCustomer, error) {
	var customers []*model.CompanyCustomer
	for rows.Next() {
		c, err := scanCompanyCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate company customers: %w", err)
	}
	return customers, nil
}

// Update は法人顧客を全量上書き更新する。対象が存在しない場合はErrNotFound。
func (r *PostgresCompanyCustomerRepo) Update(ctx context.Context, c *model.CompanyCustomer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE company_customers SET
		   customer_number = $2, tin_number = $3, company_name = $4, business_type = $5,
		   registration_number = $6, registration_date = $7, number_of_employees = $8,
		   contact_person_name = $9, contact_person_position = $10, phone = $11, email = $12,
		   region = $13, zone = $14, city = $15, subcity = $16, woreda = $17,
		   annual_revenue = $18, account_type = $19, status = $20,
		   business_license_url = $21, agreement_form_url = $22, updated_at = $23
		 WHERE id = $1`,
		c.ID, c.CustomerNumber, c.TinNumber, c.CompanyName, c.BusinessType,
		c.RegistrationNumber, c.RegistrationDate, c.NumberOfEmployees,
		c.ContactPersonName, c.ContactPersonPosition, c.Phone, c.Email,
		c.Region, c.Zone, c.City, c.Subcity, c.Woreda,
		c.AnnualRevenue, c.AccountType, c.Status,
		c.BusinessLicenseURL, c.AgreementFormURL, c.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation(err, "failed to update company customer")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete は指定IDの法人顧客を削除する。対象が存在しない場合はErrNotFound。
func (r *PostgresCompanyCustomerRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM company_customers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete company customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ CompanyCustomerRepository = (*PostgresCompanyCustomerRepo)(nil)
