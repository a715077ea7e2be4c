// Package permission holds the single permission representation used by the
// portal: a mapping from resource name to the set of allowed actions.
package permission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Roles known to the portal.
const (
	RoleSuperAdmin     = "super_admin"
	RoleAdmin          = "admin"
	RoleBankAdmin      = "bank_admin"
	RoleInsuranceAdmin = "insurance_admin"
	RoleModerator      = "moderator"
	RoleReadonly       = "readonly"
)

// Actions known to the portal.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Set maps a resource to its allowed actions.
type Set map[string]map[string]struct{}

// New builds a Set from resource -> actions.
func New(grants map[string][]string) Set {
	s := Set{}
	for resource, actions := range grants {
		s.Grant(resource, actions...)
	}
	return s
}

// Grant adds actions on resource.
func (s Set) Grant(resource string, actions ...string) {
	if len(actions) == 0 {
		return
	}
	if s[resource] == nil {
		s[resource] = map[string]struct{}{}
	}
	for _, a := range actions {
		s[resource][a] = struct{}{}
	}
}

// Has reports an explicit grant.
func (s Set) Has(resource, action string) bool {
	_, ok := s[resource][action]
	return ok
}

// Actions returns the sorted actions granted on resource.
func (s Set) Actions(resource string) []string {
	out := make([]string, 0, len(s[resource]))
	for a := range s[resource] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Resources returns the sorted resource names.
func (s Set) Resources() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON writes the array form: {"banks":["read","update"]}.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(s))
	for r := range s {
		out[r] = s.Actions(r)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both payload shapes sent by the API: arrays of action
// names and objects of action -> bool. False flags grant nothing.
func (s *Set) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse decodes a raw permission payload. Empty input and null give an empty set.
func Parse(data []byte) (Set, error) {
	set := Set{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return set, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("permissions must be an object: %w", err)
	}

	for resource, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 {
			continue
		}
		switch value[0] {
		case '[':
			var actions []string
			if err := json.Unmarshal(value, &actions); err != nil {
				return nil, fmt.Errorf("permissions %q: %w", resource, err)
			}
			set.Grant(resource, actions...)
		case '{':
			var flags map[string]bool
			if err := json.Unmarshal(value, &flags); err != nil {
				return nil, fmt.Errorf("permissions %q: %w", resource, err)
			}
			for action, ok := range flags {
				if ok {
					set.Grant(resource, action)
				}
			}
		case 'n':
			// null resource
		default:
			return nil, fmt.Errorf("permissions %q: unsupported value", resource)
		}
	}
	return set, nil
}

var roleFallbacks = map[string]struct {
	resources []string
	actions   []string
}{
	RoleBankAdmin: {
		resources: []string{"banks", "credit_products", "savings_products"},
		actions:   []string{ActionRead, ActionCreate, ActionUpdate},
	},
	RoleInsuranceAdmin: {
		resources: []string{"insurance_products", "quotes"},
		actions:   []string{ActionRead, ActionCreate, ActionUpdate},
	},
}

// Allows decides whether role with grants may perform action on resource.
func Allows(role string, grants Set, resource, action string) bool {
	if role == RoleSuperAdmin {
		return true
	}
	if grants.Has(resource, action) {
		return true
	}
	fb, ok := roleFallbacks[role]
	if !ok {
		return false
	}
	return contains(fb.resources, resource) && contains(fb.actions, action)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// DefaultFor returns the default grants of a role. Unknown roles get nothing.
func DefaultFor(role string) Set {
	crud := []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	switch role {
	case RoleSuperAdmin:
		return New(map[string][]string{
			"banks":               crud,
			"insurance_companies": crud,
			"credit_products":     crud,
			"savings_products":    crud,
			"insurance_products":  crud,
			"simulations":         {ActionRead, ActionDelete},
			"applications":        {ActionRead, ActionUpdate, ActionDelete},
			"users":               crud,
			"audit":               {ActionRead},
		})
	case RoleBankAdmin:
		return New(map[string][]string{
			"products":     crud,
			"simulations":  {ActionRead},
			"applications": {ActionManage},
			"bank":         {ActionRead},
		})
	case RoleInsuranceAdmin:
		return New(map[string][]string{
			"products":          crud,
			"quotes":            {ActionRead},
			"applications":      {ActionManage},
			"insurance_company": {ActionRead},
		})
	case RoleModerator:
		return New(map[string][]string{
			"products":     {ActionRead, ActionUpdate},
			"simulations":  {ActionRead},
			"applications": {ActionRead, ActionUpdate},
		})
	}
	return Set{}
}

// Labels renders the grants that matter on the admin list.
func Labels(s Set) []string {
	var out []string
	if s.Has("products", ActionCreate) {
		out = append(out, "Créer produits")
	}
	if s.Has("products", ActionUpdate) || s.Has("products", "edit") {
		out = append(out, "Modifier produits")
	}
	if s.Has("products", ActionDelete) {
		out = append(out, "Supprimer produits")
	}
	if s.Has("simulations", ActionRead) {
		out = append(out, "Voir simulations")
	}
	if s.Has("applications", ActionManage) {
		out = append(out, "Gérer demandes")
	}
	if s.Has("quotes", ActionRead) {
		out = append(out, "Voir devis")
	}
	return out
}

var roleLabels = map[string]string{
	RoleSuperAdmin:     "Super Administrateur",
	RoleAdmin:          "Administrateur",
	RoleBankAdmin:      "Admin Bancaire",
	RoleInsuranceAdmin: "Admin Assurance",
	RoleModerator:      "Modérateur",
	RoleReadonly:       "Lecture seule",
}

// RoleLabel returns the display name of a role, or the role itself.
func RoleLabel(role string) string {
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return role
}

// IsAdmin reports the two general administrator roles.
func IsAdmin(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}
