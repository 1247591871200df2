package authz

import "fmt"

// Role is the closed set of roles the gateway may attach to a request.
type Role string

const (
	RoleAdministrador Role = "ADMINISTRADOR"
	RoleContador      Role = "CONTADOR"
	RoleVentas        Role = "VENTAS"
	RoleCompras       Role = "COMPRAS"
	RoleAlmacen       Role = "ALMACEN"
	RoleAuditor       Role = "AUDITOR"
)

// Roles enumerates every known role.
func Roles() []Role {
	return []Role{RoleAdministrador, RoleContador, RoleVentas, RoleCompras, RoleAlmacen, RoleAuditor}
}

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdministrador, RoleContador, RoleVentas, RoleCompras, RoleAlmacen, RoleAuditor:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("authz: unknown role %q", raw)
	}
}

// PermissionsFor maps a role to its fixed permission set. The switch is
// exhaustive over the Role constants; an unknown role is an error, never an
// empty set. ADMINISTRADOR carries every permission.
func PermissionsFor(role Role) ([]string, error) {
	switch role {
	case RoleAdministrador:
		return AllPermissions(), nil
	case RoleContador:
		return []string{
			PermCatalogRead,
			PermBillingIssue,
			PermAccountingEntries,
			PermAccountingBooks,
			PermAuditTrail,
		}, nil
	case RoleVentas:
		return []string{
			PermCatalogRead,
			PermInventoryRead,
			PermSalesOrders,
			PermSalesDeliveries,
		}, nil
	case RoleCompras:
		return []string{
			PermCatalogRead,
			PermInventoryRead,
			PermPurchaseOrders,
			PermPurchaseReceipts,
		}, nil
	case RoleAlmacen:
		return []string{
			PermCatalogRead,
			PermInventoryRead,
			PermInventoryMove,
			PermInventoryTransfer,
		}, nil
	case RoleAuditor:
		return []string{
			PermCatalogRead,
			PermInventoryRead,
			PermAccountingBooks,
			PermAuditTrail,
		}, nil
	default:
		return nil, fmt.Errorf("authz: unknown role %q", role)
	}
}
