package comparator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// Applicant types.
const (
	ClientIndividual = "particulier"
	ClientBusiness   = "entreprise"
)

// Bounds of the comparison form.
const (
	MinAmount           int64 = 100_000
	MaxAmount           int64 = 100_000_000
	MinDuration               = 6
	MaxDuration               = 60
	MinIncomeIndividual int64 = 200_000
	MinIncomeBusiness   int64 = 500_000
)

// CreditType is a credit product family offered by the comparator.
type CreditType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreditTypes lists the credit families in display order.
var CreditTypes = []CreditType{
	{ID: "consommation", Name: "Crédit Consommation", Description: "Pour vos achats personnels"},
	{ID: "auto", Name: "Crédit Auto", Description: "Financement véhicule"},
	{ID: "immobilier", Name: "Crédit Immobilier", Description: "Achat ou construction"},
	{ID: "investissement", Name: "Crédit Investissement", Description: "Projets d'entreprise"},
	{ID: "equipement", Name: "Crédit Équipement", Description: "Matériel professionnel"},
	{ID: "travaux", Name: "Crédit Travaux", Description: "Rénovation et amélioration"},
}

// Durations lists the selectable durations in months.
var Durations = []int{6, 12, 18, 24, 36, 48, 60}

// Form is the applicant input as entered in the comparator.
type Form struct {
	ClientType      string `json:"client_type" validate:"required,oneof=particulier entreprise"`
	FullName        string `json:"full_name" validate:"required,min=3"`
	PhoneNumber     string `json:"phone_number" validate:"required,gabonphone"`
	Email           string `json:"email" validate:"omitempty,email"`
	MonthlyIncome   int64  `json:"monthly_income" validate:"required"`
	Profession      string `json:"profession"`
	CreditType      string `json:"credit_type" validate:"required,oneof=consommation auto immobilier investissement equipement travaux"`
	RequestedAmount int64  `json:"requested_amount" validate:"required,min=100000,max=100000000"`
	Duration        int    `json:"duration" validate:"required,min=6,max=60"`
	CurrentDebts    int64  `json:"current_debts" validate:"min=0"`
	Purpose         string `json:"purpose" validate:"required"`
}

// DefaultForm returns the values the comparator starts with and resets to.
func DefaultForm() Form {
	return Form{
		ClientType:      ClientIndividual,
		MonthlyIncome:   750_000,
		CreditType:      "consommation",
		RequestedAmount: 2_000_000,
		Duration:        24,
	}
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// ErrInvalidForm is returned when a form has field errors.
var ErrInvalidForm = errors.New("INVALID_FORM")

// ValidationError carries the field errors of a rejected form.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid form: %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidForm }

var phonePattern = regexp.MustCompile(`^(\+241|241)?[0-9]{8}$`)

// Builder validates forms and normalizes them into comparison requests.
type Builder struct {
	validate *validator.Validate
}

// NewBuilder creates a Builder with the comparator rules registered.
func NewBuilder() *Builder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("gabonphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(applicantRules, Form{})
	return &Builder{validate: v}
}

// applicantRules applies the income floor and profession rule of the
// applicant type.
func applicantRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(Form)
	floor := MinIncomeIndividual
	if f.ClientType == ClientBusiness {
		floor = MinIncomeBusiness
		if strings.TrimSpace(f.Profession) == "" {
			sl.ReportError(f.Profession, "profession", "Profession", "required", "")
		}
	}
	if f.MonthlyIncome != 0 && f.MonthlyIncome < floor {
		sl.ReportError(f.MonthlyIncome, "monthly_income", "MonthlyIncome", "min", fmt.Sprint(floor))
	}
}

// Validate returns the field errors of f, or nil when f is valid.
func (b *Builder) Validate(f Form) FieldErrors {
	err := b.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// Build validates f and returns the normalized request.
func (b *Builder) Build(f Form) (bamboo.CompareRequest, error) {
	if fields := b.Validate(f); len(fields) > 0 {
		return bamboo.CompareRequest{}, &ValidationError{Fields: fields}
	}
	return bamboo.CompareRequest{
		CreditType:    f.CreditType,
		Amount:        f.RequestedAmount,
		Duration:      f.Duration,
		MonthlyIncome: f.MonthlyIncome,
		CurrentDebts:  f.CurrentDebts,
	}, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "email":
		return "Format d'email invalide"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Minimum %s caractères", fe.Param())
		}
		return fmt.Sprintf("Valeur minimum: %s", fe.Param())
	case "max":
		return fmt.Sprintf("Valeur maximum: %s", fe.Param())
	case "gabonphone", "oneof":
		return "Format invalide"
	}
	return "Valeur invalide"
}
