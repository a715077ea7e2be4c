package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BothShapes(t *testing.T) {
	raw := []byte(`{
		"banks": ["read", "update"],
		"products": {"create": true, "delete": false, "read": true},
		"audit": null
	}`)

	set, err := Parse(raw)

	require.NoError(t, err)
	assert.Equal(t, []string{"read", "update"}, set.Actions("banks"))
	assert.Equal(t, []string{"create", "read"}, set.Actions("products"))
	assert.False(t, set.Has("products", "delete"))
	assert.Equal(t, []string{"banks", "products"}, set.Resources())
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	set, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, set)

	set, err = Parse([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, set)

	_, err = Parse([]byte(`["read"]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"banks": "read"}`))
	assert.Error(t, err)
}

func TestSet_JSONRoundTripUsesArrayForm(t *testing.T) {
	set := New(map[string][]string{"simulations": {"read"}})

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"simulations":["read"]}`, string(data))

	var back Set
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Has("simulations", "read"))
}

func TestAllows(t *testing.T) {
	grants := New(map[string][]string{"simulations": {"read"}})

	assert.True(t, Allows(RoleSuperAdmin, nil, "anything", "delete"))
	assert.True(t, Allows(RoleModerator, grants, "simulations", "read"))
	assert.False(t, Allows(RoleModerator, grants, "simulations", "delete"))

	// role fallbacks
	assert.True(t, Allows(RoleBankAdmin, Set{}, "credit_products", "update"))
	assert.False(t, Allows(RoleBankAdmin, Set{}, "credit_products", "delete"))
	assert.True(t, Allows(RoleInsuranceAdmin, Set{}, "quotes", "read"))
	assert.False(t, Allows(RoleInsuranceAdmin, Set{}, "banks", "read"))
	assert.False(t, Allows(RoleReadonly, Set{}, "banks", "read"))
}

func TestDefaultForAndLabels(t *testing.T) {
	bank := DefaultFor(RoleBankAdmin)
	assert.True(t, bank.Has("applications", ActionManage))
	assert.Equal(t,
		[]string{"Créer produits", "Modifier produits", "Supprimer produits", "Voir simulations", "Gérer demandes"},
		Labels(bank))

	assert.Empty(t, DefaultFor("unknown"))
	assert.Equal(t, []string{"Voir devis"}, Labels(New(map[string][]string{"quotes": {"read"}})))
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Admin Bancaire", RoleLabel(RoleBankAdmin))
	assert.Equal(t, "custom", RoleLabel("custom"))
	assert.True(t, IsAdmin(RoleAdmin))
	assert.False(t, IsAdmin(RoleModerator))
}
