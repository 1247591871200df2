package authz

// Permission tags, grouped by module.
const (
	PermCatalogRead = "catalogos:leer"
	PermCatalogEdit = "catalogos:editar"

	PermInventoryRead     = "inventario:consultar"
	PermInventoryMove     = "inventario:movimientos"
	PermInventoryTransfer = "inventario:transferencias"

	PermPurchaseOrders   = "compras:ordenes"
	PermPurchaseReceipts = "compras:recepciones"

	PermSalesOrders     = "ventas:ordenes"
	PermSalesDeliveries = "ventas:entregas"

	PermBillingIssue = "facturacion:emitir"

	PermAccountingEntries = "contabilidad:asientos"
	PermAccountingBooks   = "contabilidad:libros"

	PermAuditTrail = "auditoria:bitacora"
)

// AllPermissions lists every permission tag the application knows about.
func AllPermissions() []string {
	return []string{
		PermCatalogRead,
		PermCatalogEdit,
		PermInventoryRead,
		PermInventoryMove,
		PermInventoryTransfer,
		PermPurchaseOrders,
		PermPurchaseReceipts,
		PermSalesOrders,
		PermSalesDeliveries,
		PermBillingIssue,
		PermAccountingEntries,
		PermAccountingBooks,
		PermAuditTrail,
	}
}
