package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tellerdesk/internal/model"
)

// PostgresPersonalCustomerRepo はPostgreSQLを使用した個人顧客リポジトリ。
type PostgresPersonalCustomerRepo struct {
	db *sql.DB
}

// NewPostgresPersonalCustomerRepo はPostgresPersonalCustomerRepoを生成する。
func NewPostgresPersonalCustomerRepo(db *sql.DB) *PostgresPersonalCustomerRepo {
	return &PostgresPersonalCustomerRepo{db: db}
}

const personalCustomerColumns = `id, customer_number, tin_number, first_name, middle_name, last_name,
	mothers_name, gender, marital_status, date_of_birth, national_id, phone, email,
	region, zone, city, subcity, woreda, monthly_income, account_type, status,
	national_id_url, agreement_form_url, created_at, updated_at`

// scanPersonalCustomer は1行をmodel.PersonalCustomerに読み取る。
// tin_numberとemailはNULL許容のためsql.NullStringで受ける。
func scanPersonalCustomer(row interface{ Scan(...any) error }) (*model.PersonalCustomer, error) {
	c := &model.PersonalCustomer{}
	var tin, email sql.NullString
	err := row.Scan(
		&c.ID, &c.CustomerNumber, &tin, &c.FirstName, &c.MiddleName, &c.LastName,
		&c.MothersName, &c.Gender, &c.MaritalStatus, &c.DateOfBirth, &c.NationalID, &c.Phone, &email,
		&c.Region, &c.Zone, &c.City, &c.Subcity, &c.Woreda, &c.MonthlyIncome, &c.AccountType, &c.Status,
		&c.NationalIDURL, &c.AgreementFormURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TinNumber = tin.String
	c.Email = email.String
	return c, nil
}

// nullIfEmpty は空文字列をNULLとして保存するための変換。
// email・TINの一意制約を空値同士で衝突させないために必要。
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create は個人顧客を作成する。一意制約違反時はErrDuplicateを返す。
func (r *PostgresPersonalCustomerRepo) Create(ctx context.Context, c *model.PersonalCustomer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO personal_customers (`+personalCustomerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		         $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		c.ID, c.CustomerNumber, nullIfEmpty(c.TinNumber), c.FirstName, c.MiddleName, c.LastName,
		c.MothersName, c.Gender, c.MaritalStatus, c.DateOfBirth, c.NationalID, c.Phone, nullIfEmpty(c.Email),
		c.Region, c.Zone, c.City, c.Subcity, c.Woreda, c.MonthlyIncome, c.AccountType, c.Status,
		c.NationalIDURL, c.AgreementFormURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation(err, "failed to insert personal customer")
	}
	return nil
}

// FindByID は指定IDの個人顧客を取得する。見つからない場合はnilを返す。
func (r *PostgresPersonalCustomerRepo) FindByID(ctx context.Context, id string) (*model.PersonalCustomer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+personalCustomerColumns+` FROM personal_customers WHERE id = $1`,
		id,
	)
	c, err := scanPersonalCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find personal customer by ID: %w", err)
	}
	return c, nil
}

// FindByCustomerNumber は顧客番号で個人顧客を検索する。見つからない場合はnilを返す。
func (r *PostgresPersonalCustomerRepo) FindByCustomerNumber(ctx context.Context, customerNumber string) (*model.PersonalCustomer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+personalCustomerColumns+` FROM personal_customers WHERE customer_number = $1`,
		customerNumber,
	)
	c, err := scanPersonalCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find personal customer by customer number: %w", err)
	}
	return c, nil
}

// List は個人顧客を作成日時の降順で最大limit件返す。
func (r *PostgresPersonalCustomerRepo) List(ctx context.Context, limit int) ([]*model.PersonalCustomer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+personalCustomerColumns+` FROM personal_customers
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal customers: %w", err)
	}
	defer rows.Close()

	var customers []*model.PersonalCustomer
	for rows.Next() {
		c, err := scanPersonalCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personal customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personal customers: %w", err)
	}
	return customers, nil
}

// Update は個人顧客を全量上書き更新する。対象が存在しない場合はErrNotFound。
func (r *PostgresPersonalCustomerRepo) Update(ctx context.Context, c *model.PersonalCustomer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE personal_customers SET
		   customer_number = $2, tin_number = $3, first_name = $4, middle_name = $5,
		   last_name = $6, mothers_name = $7, gender = $8, marital_status = $9,
		   date_of_birth = $10, national_id = $11, phone = $12, email = $13,
		   region = $14, zone = $15, city = $16, subcity = $17, woreda = $18,
		   monthly_income = $19, account_type = $20, status = $21,
		   national_id_url = $22, agreement_form_url = $23, updated_at = $24
		 WHERE id = $1`,
		c.ID, c.CustomerNumber, nullIfEmpty(c.TinNumber), c.FirstName, c.MiddleName,
		c.LastName, c.MothersName, c.Gender, c.MaritalStatus,
		c.DateOfBirth, c.NationalID, c.Phone, nullIfEmpty(c.Email),
		c.Region, c.Zone, c.City, c.Subcity, c.Woreda,
		c.MonthlyIncome, c.AccountType, c.Status,
		c.NationalIDURL, c.AgreementFormURL, c.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation(err, "failed to update personal customer")
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

// Delete は指定IDの個人顧客を削除する。対象が存在しない場合はErrNotFound。
func (r *PostgresPersonalCustomerRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM personal_customers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete personal customer: %w", err)
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
var _ PersonalCustomerRepository = (*PostgresPersonalCustomerRepo)(nil)
