// Package permissions holds the closed role set and the capability table
// used by every protected operation. Controllers never compare role
// strings directly; they go through Allowed or CanTransitionItem.
package permissions

import "resto-pos/models"

const (
	RoleWaiter  = "waiter"
	RoleChef    = "chef"
	RoleBarista = "barista"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

type Capability string

const (
	CapOpenSession       Capability = "session:open"
	CapCloseSession      Capability = "session:close"
	CapRequestBill       Capability = "session:request_bill"
	CapCreateOrder       Capability = "order:create"
	CapAddItem           Capability = "order:add_item"
	CapUpdateFoodStatus  Capability = "item:update_food"
	CapUpdateDrinkStatus Capability = "item:update_drink"
	CapDeleteItem        Capability = "item:delete"
	CapViewKitchen       Capability = "station:kitchen"
	CapViewBar           Capability = "station:bar"
	CapViewBilling       Capability = "billing:view"
	CapCreateInvoice     Capability = "billing:create_invoice"
	CapMarkPaid          Capability = "billing:mark_paid"
	CapManageSettings    Capability = "settings:manage"
	CapManageMenu        Capability = "menu:manage"
	CapManageTables      Capability = "tables:manage"
	CapManageUsers       Capability = "users:manage"
)

var roleCaps = map[string]map[Capability]bool{
	RoleWaiter: {
		CapOpenSession:       true,
		CapRequestBill:       true,
		CapCreateOrder:       true,
		CapAddItem:           true,
		CapUpdateFoodStatus:  true,
		CapUpdateDrinkStatus: true,
	},
	RoleChef: {
		CapUpdateFoodStatus: true,
		CapViewKitchen:      true,
	},
	RoleBarista: {
		CapUpdateDrinkStatus: true,
		CapViewBar:           true,
	},
	RoleCashier: {
		CapCloseSession:  true,
		CapViewBilling:   true,
		CapCreateInvoice: true,
		CapMarkPaid:      true,
	},
}

// Allowed reports whether a principal with the given role may exercise
// cap. The admin flag grants everything; unknown role names grant
// nothing.
func Allowed(role string, isAdmin bool, cap Capability) bool {
	if isAdmin || role == RoleAdmin {
		return true
	}
	return roleCaps[role][cap]
}

// CanTransitionItem is the category-scoped predicate for order-item
// status updates: chefs touch food only, baristas drinks only, waiters
// and admins either.
func CanTransitionItem(role string, isAdmin bool, itemType string) bool {
	switch itemType {
	case models.ItemTypeFood:
		return Allowed(role, isAdmin, CapUpdateFoodStatus)
	case models.ItemTypeDrink:
		return Allowed(role, isAdmin, CapUpdateDrinkStatus)
	}
	return false
}
