package inventory

// TransferLineRequest is one line of a transfer request.
type TransferLineRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Qty       float64 `json:"qty" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
}

// TransferRequest is the JSON payload for POST /inventory/transfers.
type TransferRequest struct {
	SourceWarehouse int64                 `json:"source_warehouse" validate:"required,gt=0"`
	DestWarehouse   int64                 `json:"dest_warehouse" validate:"required,gt=0"`
	Reason          string                `json:"reason" validate:"required,max=500"`
	Lines           []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// AdjustmentRequest is the JSON payload for POST /inventory/adjustments.
type AdjustmentRequest struct {
	WarehouseID int64   `json:"warehouse_id" validate:"required,gt=0"`
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	QtyDelta    float64 `json:"qty_delta" validate:"required"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	Reason      string  `json:"reason" validate:"required,max=500"`
}
