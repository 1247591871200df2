package masterdata

// SupplierRequest is the JSON payload for supplier create/update.
type SupplierRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"required,max=20"`
	Address string `json:"address" validate:"max=300"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
}

// ClientRequest is the JSON payload for client creation.
type ClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"required,max=20"`
	Address string `json:"address" validate:"max=300"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=30"`
}

// ProductRequest is the JSON payload for product creation.
type ProductRequest struct {
	SKU  string `json:"sku" validate:"required,max=40"`
	Name string `json:"name" validate:"required,max=200"`
	Unit string `json:"unit" validate:"required,max=10"`
}

// WarehouseRequest is the JSON payload for warehouse creation.
type WarehouseRequest struct {
	Code    string `json:"code" validate:"required,max=20"`
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=300"`
}
