package bamboo

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Bank is an institution listed in the comparator.
type Bank struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name,omitempty"`
	Logo     string `json:"logo,omitempty"`
	Color    string `json:"color,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CompareRequest is the normalized payload of a multi-bank credit comparison.
type CompareRequest struct {
	CreditType    string `json:"credit_type"`
	Amount        int64  `json:"amount"`
	Duration      int    `json:"duration"`
	MonthlyIncome int64  `json:"monthly_income"`
	CurrentDebts  int64  `json:"current_debts"`
}

// OfferBank identifies the bank of an offer.
type OfferBank struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// OfferProduct is the credit product an offer is based on.
type OfferProduct struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Rate           float64 `json:"rate"`
	ProcessingTime int     `json:"processing_time"` // hours
}

// BankOffer is one bank's quoted terms. It is never modified after decoding.
type BankOffer struct {
	Bank           OfferBank       `json:"bank"`
	Product        OfferProduct    `json:"product"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	DebtRatio      float64         `json:"debt_ratio"`
	Eligible       bool            `json:"eligible"`
}

// CompareResponse is the comparison endpoint answer.
type CompareResponse struct {
	Comparisons   []BankOffer `json:"comparisons"`
	BestRate      *BankOffer  `json:"best_rate,omitempty"`
	LowestPayment *BankOffer  `json:"lowest_payment,omitempty"`
}

// AdminUser is an administrator account. Permissions are kept raw: the
// payload comes in two shapes and is decoded by the caller.
type AdminUser struct {
	ID                       string          `json:"id"`
	Username                 string          `json:"username"`
	Email                    string          `json:"email"`
	FirstName                string          `json:"first_name,omitempty"`
	LastName                 string          `json:"last_name,omitempty"`
	Role                     string          `json:"role"`
	Permissions              json.RawMessage `json:"permissions,omitempty"`
	IsActive                 bool            `json:"is_active"`
	LastLogin                string          `json:"last_login,omitempty"`
	AssignedBank             *Institution    `json:"assigned_bank,omitempty"`
	AssignedInsuranceCompany *Institution    `json:"assigned_insurance_company,omitempty"`
	CreatedAt                string          `json:"created_at,omitempty"`
	UpdatedAt                string          `json:"updated_at,omitempty"`
}

// AdminLoginRequest is the admin credential payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginResponse is returned by a successful admin login.
type AdminLoginResponse struct {
	Success bool      `json:"success"`
	User    AdminUser `json:"user"`
	Token   string    `json:"token"`
	Message string    `json:"message,omitempty"`
}

// User is a customer account.
type User struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	DateOfBirth        string          `json:"date_of_birth,omitempty"`
	Gender             string          `json:"gender,omitempty"`
	Profession         string          `json:"profession,omitempty"`
	MonthlyIncome      *int64          `json:"monthly_income,omitempty"`
	City               string          `json:"city,omitempty"`
	Address            string          `json:"address,omitempty"`
	RegistrationMethod string          `json:"registration_method"`
	EmailVerified      bool            `json:"email_verified"`
	PhoneVerified      bool            `json:"phone_verified"`
	IsActive           bool            `json:"is_active"`
	LastLogin          string          `json:"last_login,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
	Preferences        json.RawMessage `json:"preferences,omitempty"`
}

// UserLoginRequest carries either Email or Phone.
type UserLoginRequest struct {
	Email      string         `json:"email,omitempty"`
	Phone      string         `json:"phone,omitempty"`
	Password   string         `json:"password"`
	RememberMe bool           `json:"remember_me,omitempty"`
	DeviceInfo map[string]any `json:"device_info,omitempty"`
}

// UserLoginResponse is returned by login and verify.
type UserLoginResponse struct {
	Success      bool   `json:"success"`
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Message      string `json:"message,omitempty"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	RegistrationMethod string          `json:"registration_method"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	DateOfBirth        string          `json:"date_of_birth,omitempty"`
	Gender             string          `json:"gender,omitempty"`
	Profession         string          `json:"profession,omitempty"`
	MonthlyIncome      *int64          `json:"monthly_income,omitempty"`
	City               string          `json:"city,omitempty"`
	Address            string          `json:"address,omitempty"`
	Password           string          `json:"password,omitempty"`
	Preferences        json.RawMessage `json:"preferences,omitempty"`
}

// RegistrationResponse is returned by register.
type RegistrationResponse struct {
	Success              bool   `json:"success"`
	User                 User   `json:"user"`
	VerificationRequired bool   `json:"verification_required"`
	VerificationMethod   string `json:"verification_method,omitempty"`
	Message              string `json:"message"`
}

// VerificationRequest confirms a registration code.
type VerificationRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Code  string `json:"code"`
}

// ContactRequest addresses a customer by email or phone.
type ContactRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PasswordResetConfirmRequest sets a new password with a reset code.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest changes the password of the current account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenValidity is the validate-token answer.
type TokenValidity struct {
	Valid bool `json:"valid"`
}

// SimulationParameters are the inputs of a saved simulation.
type SimulationParameters struct {
	Amount         *int64  `json:"amount,omitempty"`
	Duration       *int    `json:"duration,omitempty"`
	MonthlyIncome  *int64  `json:"monthly_income,omitempty"`
	DownPayment    *int64  `json:"down_payment,omitempty"`
	CurrentDebts   *int64  `json:"current_debts,omitempty"`
	MonthlyAmount  *int64  `json:"monthly_amount,omitempty"`
	InitialAmount  *int64  `json:"initial_amount,omitempty"`
	Goal           string  `json:"goal,omitempty"`
	CoverageType   string  `json:"coverage_type,omitempty"`
	CoverageAmount *int64  `json:"coverage_amount,omitempty"`
	Deductible     *int64  `json:"deductible,omitempty"`
	Age            *int    `json:"age,omitempty"`
	InterestRate   float64 `json:"interest_rate,omitempty"`
}

// UserSimulation is a simulation saved by a customer.
type UserSimulation struct {
	ID                string               `json:"id"`
	Type              string               `json:"type"`
	Status            string               `json:"status"`
	Name              string               `json:"name,omitempty"`
	ProductName       string               `json:"product_name"`
	BankOrCompanyName string               `json:"bank_or_company_name"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at,omitempty"`
	Parameters        SimulationParameters `json:"parameters"`
	ResultSummary     json.RawMessage      `json:"result_summary,omitempty"`
	Recommendations   []string             `json:"recommendations,omitempty"`
}

// SaveSimulationRequest bookmarks a simulation for the current customer.
type SaveSimulationRequest struct {
	SimulationID   string `json:"simulation_id"`
	SimulationType string `json:"simulation_type"`
	Name           string `json:"name"`
}

// UserApplication is a credit, savings or insurance application.
type UserApplication struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	ProductName       string          `json:"product_name"`
	BankOrCompanyName string          `json:"bank_or_company_name"`
	Amount            *int64          `json:"amount,omitempty"`
	Duration          *int            `json:"duration,omitempty"`
	ReferenceNumber   string          `json:"reference_number,omitempty"`
	MonthlyPayment    *int64          `json:"monthly_payment,omitempty"`
	MonthlyAmount     *int64          `json:"monthly_amount,omitempty"`
	CoverageType      string          `json:"coverage_type,omitempty"`
	MonthlyPremium    *int64          `json:"monthly_premium,omitempty"`
	CoverageAmount    *int64          `json:"coverage_amount,omitempty"`
	Documents         json.RawMessage `json:"documents,omitempty"`
	SubmittedAt       string          `json:"submitted_at"`
	UpdatedAt         string          `json:"updated_at"`
}

// ApplicationStatusUpdate moves an application through review.
type ApplicationStatusUpdate struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// UserNotification is a server side notification for a customer.
type UserNotification struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	Title             string `json:"title"`
	Message           string `json:"message"`
	RelatedEntityType string `json:"related_entity_type,omitempty"`
	RelatedEntityID   string `json:"related_entity_id,omitempty"`
	IsRead            bool   `json:"is_read"`
	Priority          string `json:"priority"`
	CreatedAt         string `json:"created_at"`
}

// DashboardStats are the counters on the customer dashboard.
type DashboardStats struct {
	TotalCreditSimulations     int `json:"total_credit_simulations"`
	TotalSavingsSimulations    int `json:"total_savings_simulations"`
	TotalInsuranceQuotes       int `json:"total_insurance_quotes"`
	TotalCreditApplications    int `json:"total_credit_applications"`
	TotalSavingsApplications   int `json:"total_savings_applications"`
	TotalInsuranceApplications int `json:"total_insurance_applications"`
	UnreadNotifications        int `json:"unread_notifications"`
}

// UserDashboard aggregates a customer's activity.
type UserDashboard struct {
	User               User               `json:"user"`
	Stats              DashboardStats     `json:"stats"`
	RecentSimulations  []UserSimulation   `json:"recent_simulations"`
	RecentApplications []UserApplication  `json:"recent_applications"`
	Notifications      []UserNotification `json:"notifications"`
}

// Institution is a bank or insurance company an admin can be assigned to.
type Institution struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Type     string `json:"type,omitempty"`
}

// InstitutionsResponse lists assignable institutions.
type InstitutionsResponse struct {
	Banks              []Institution `json:"banks"`
	InsuranceCompanies []Institution `json:"insurance_companies"`
	TotalBanks         int           `json:"total_banks"`
	TotalInsurance     int           `json:"total_insurance"`
}

// AdminListResponse is a page of admin accounts.
type AdminListResponse struct {
	Admins []AdminUser `json:"admins"`
	Total  int         `json:"total"`
	Skip   int         `json:"skip"`
	Limit  int         `json:"limit"`
}

// AdminListParams filters the admin list.
type AdminListParams struct {
	Skip            *int
	Limit           *int
	Search          string
	Role            string
	InstitutionType string
	IsActive        *bool
}

// AdminStats summarises admin accounts.
type AdminStats struct {
	TotalAdmins    int `json:"total_admins"`
	ActiveAdmins   int `json:"active_admins"`
	InactiveAdmins int `json:"inactive_admins"`
	ByRole         struct {
		BankAdmins      int `json:"bank_admins"`
		InsuranceAdmins int `json:"insurance_admins"`
		Moderators      int `json:"moderators"`
	} `json:"by_role"`
	RecentAdmins int `json:"recent_admins"`
}

// AdminCreateRequest creates an admin account.
type AdminCreateRequest struct {
	Username                   string `json:"username"`
	Email                      string `json:"email"`
	Password                   string `json:"password"`
	FirstName                  string `json:"first_name"`
	LastName                   string `json:"last_name"`
	Role                       string `json:"role"`
	AssignedBankID             string `json:"assigned_bank_id,omitempty"`
	AssignedInsuranceCompanyID string `json:"assigned_insurance_company_id,omitempty"`
	CanCreateProducts          bool   `json:"can_create_products"`
	CanEditProducts            bool   `json:"can_edit_products"`
	CanDeleteProducts          bool   `json:"can_delete_products"`
	CanViewSimulations         bool   `json:"can_view_simulations"`
	CanManageApplications      bool   `json:"can_manage_applications"`
	IsActive                   bool   `json:"is_active"`
}

// AdminUpdateRequest updates an admin account; nil fields are left unchanged.
type AdminUpdateRequest struct {
	Email                      *string `json:"email,omitempty"`
	FirstName                  *string `json:"first_name,omitempty"`
	LastName                   *string `json:"last_name,omitempty"`
	Password                   *string `json:"password,omitempty"`
	Role                       *string `json:"role,omitempty"`
	AssignedBankID             *string `json:"assigned_bank_id,omitempty"`
	AssignedInsuranceCompanyID *string `json:"assigned_insurance_company_id,omitempty"`
	CanCreateProducts          *bool   `json:"can_create_products,omitempty"`
	CanEditProducts            *bool   `json:"can_edit_products,omitempty"`
	CanDeleteProducts          *bool   `json:"can_delete_products,omitempty"`
	CanViewSimulations         *bool   `json:"can_view_simulations,omitempty"`
	CanManageApplications      *bool   `json:"can_manage_applications,omitempty"`
	IsActive                   *bool   `json:"is_active,omitempty"`
}

// Availability answers the username and email uniqueness checks.
type Availability struct {
	Available bool `json:"available"`
}
