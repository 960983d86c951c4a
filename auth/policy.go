package auth

import "restaurant-api/models"

func IsAuthenticated(p *Principal) bool {
	return p != nil && p.ID != ""
}

func (p *Principal) HasRole(name models.RoleName) bool {
	return IsAuthenticated(p) && p.Roles.Has(name)
}

func (p *Principal) HasAnyRole(names ...models.RoleName) bool {
	for _, n := range names {
		if p.HasRole(n) {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// Is reports whether key designates the principal itself.
func (p *Principal) Is(key LookupKey) bool {
	if !IsAuthenticated(p) {
		return false
	}
	if key.Kind == KeyEmail {
		return p.Email == key.Value
	}
	return p.ID == key.Value
}

func (p *Principal) IsOwnerOrAdmin(key LookupKey) bool {
	return p.Is(key) || p.IsAdmin()
}

// CanManageOrders is true for roles that work on every order, not just their own.
func (p *Principal) CanManageOrders() bool {
	return p.HasAnyRole(models.RoleAdmin, models.RoleChef)
}

// CanAccessOrder applies order scoping: managers see all orders, others only their own.
func (p *Principal) CanAccessOrder(ownerID string) bool {
	return p.CanManageOrders() || p.Is(LookupKey{Kind: KeyID, Value: ownerID})
}

// CanDeleteOrder allows the order's owner or an admin.
func (p *Principal) CanDeleteOrder(ownerID string) bool {
	return p.IsOwnerOrAdmin(LookupKey{Kind: KeyID, Value: ownerID})
}
