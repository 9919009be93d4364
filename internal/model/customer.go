package model

import "time"

// PersonalCustomer は個人顧客の登録レコードを表す。
// CustomerNumberは登録フォーム側で生成される人間向け識別子で、
// 内部IDとは別に一意制約を持つ。
type PersonalCustomer struct {
	ID             string
	CustomerNumber string
	TinNumber      string // 個人の場合は任意
	FirstName      string
	MiddleName     string
	LastName       string
	MothersName    string
	Gender         string
	MaritalStatus  string
	DateOfBirth    time.Time
	NationalID     string
	Phone          string
	Email          string
	Region         string
	Zone           string
	City           string
	Subcity        string
	Woreda         string
	MonthlyIncome  float64
	AccountType    string
	Status         string

	// 提出書類の公開URL。登録成功時は両方揃っているか、両方空のいずれか。
	NationalIDURL    string
	AgreementFormURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyCustomer は法人顧客の登録レコードを表す。
// customerNumber / tinNumber / registrationNumber がそれぞれ一意。
type CompanyCustomer struct {
	ID                    string
	CustomerNumber        string
	TinNumber             string
	CompanyName           string
	BusinessType          string
	RegistrationNumber    string
	RegistrationDate      time.Time
	NumberOfEmployees     int
	ContactPersonName     string
	ContactPersonPosition string
	Phone                 string
	Email                 string
	Region                string
	Zone                  string
	City                  string
	Subcity               string
	Woreda                string
	AnnualRevenue         float64
	AccountType           string
	Status                string

	BusinessLicenseURL string
	AgreementFormURL   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
