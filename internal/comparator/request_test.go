package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	f := DefaultForm()
	f.FullName = "Jean Mba"
	f.PhoneNumber = "+24107123456"
	f.Purpose = "Achat d'équipement"
	return f
}

func TestBuildValidForm(t *testing.T) {
	b := NewBuilder()

	req, err := b.Build(validForm())
	require.NoError(t, err)
	assert.Equal(t, "consommation", req.CreditType)
	assert.Equal(t, int64(2_000_000), req.Amount)
	assert.Equal(t, 24, req.Duration)
	assert.Equal(t, int64(750_000), req.MonthlyIncome)
	assert.Equal(t, int64(0), req.CurrentDebts)
}

func TestBuildRejectsOutOfBounds(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name  string
		edit  func(*Form)
		field string
		msg   string
	}{
		{"amount below minimum", func(f *Form) { f.RequestedAmount = 50_000 }, "requested_amount", "Valeur minimum: 100000"},
		{"amount above maximum", func(f *Form) { f.RequestedAmount = 200_000_000 }, "requested_amount", "Valeur maximum: 100000000"},
		{"duration too short", func(f *Form) { f.Duration = 3 }, "duration", "Valeur minimum: 6"},
		{"duration too long", func(f *Form) { f.Duration = 72 }, "duration", "Valeur maximum: 60"},
		{"income below individual floor", func(f *Form) { f.MonthlyIncome = 150_000 }, "monthly_income", "Valeur minimum: 200000"},
		{"short name", func(f *Form) { f.FullName = "Jo" }, "full_name", "Minimum 3 caractères"},
		{"bad phone", func(f *Form) { f.PhoneNumber = "0712" }, "phone_number", "Format invalide"},
		{"bad email", func(f *Form) { f.Email = "jean@" }, "email", "Format d'email invalide"},
		{"unknown credit type", func(f *Form) { f.CreditType = "crypto" }, "credit_type", "Format invalide"},
		{"missing purpose", func(f *Form) { f.Purpose = "" }, "purpose", "Ce champ est requis"},
		{"negative debts", func(f *Form) { f.CurrentDebts = -1 }, "current_debts", "Valeur minimum: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)

			_, err := b.Build(f)
			require.ErrorIs(t, err, ErrInvalidForm)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
		})
	}
}

func TestBuildBusinessRules(t *testing.T) {
	b := NewBuilder()

	f := validForm()
	f.ClientType = ClientBusiness
	f.MonthlyIncome = 300_000

	fields := b.Validate(f)
	assert.Equal(t, "Valeur minimum: 500000", fields["monthly_income"])
	assert.Equal(t, "Ce champ est requis", fields["profession"])

	f.MonthlyIncome = 600_000
	f.Profession = "Commerçant"
	assert.Empty(t, b.Validate(f))
}

func TestPhoneFormats(t *testing.T) {
	b := NewBuilder()
	for _, phone := range []string{"07123456", "24107123456", "+24107123456"} {
		f := validForm()
		f.PhoneNumber = phone
		assert.Empty(t, b.Validate(f), phone)
	}
}
