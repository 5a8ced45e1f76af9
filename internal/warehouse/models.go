package warehouse

// Star-schema tables. Dates are stored as TEXT in the canonical YYYY-MM-DD
// form (empty when unknown) so the database stays portable and trivially
// queryable; amounts that were null in the cleaned extract stay NULL rather
// than being coerced to zero.

// DimCustomer is one row of the customer dimension.
type DimCustomer struct {
	CustomerID int64  `gorm:"column:customer_id;primaryKey"`
	Name       string `gorm:"column:name"`
	Region     string `gorm:"column:region"`
	JoinDate   string `gorm:"column:join_date"`
}

// TableName overrides the gorm default.
func (DimCustomer) TableName() string { return "dim_customer" }

// DimProduct is one row of the product dimension.
type DimProduct struct {
	ProductID   int64    `gorm:"column:product_id;primaryKey"`
	ProductName string   `gorm:"column:product_name"`
	Category    string   `gorm:"column:category"`
	UnitPrice   *float64 `gorm:"column:unit_price"`
}

// TableName overrides the gorm default.
func (DimProduct) TableName() string { return "dim_product" }

// FactSale is one row of the sales fact table, keyed by transaction and
// referencing both dimensions. The association fields exist so migration
// declares real FOREIGN KEY constraints; the loader never populates them
// (rows are inserted with associations omitted, integrity is checked against
// the in-memory dimension key sets before insert).
type FactSale struct {
	SaleID     int64    `gorm:"column:sale_id;primaryKey"`
	CustomerID int64    `gorm:"column:customer_id;index"`
	ProductID  int64    `gorm:"column:product_id;index"`
	SaleAmount *float64 `gorm:"column:sale_amount"`
	SaleDate   string   `gorm:"column:sale_date"`

	Customer *DimCustomer `gorm:"foreignKey:CustomerID;references:CustomerID"`
	Product  *DimProduct  `gorm:"foreignKey:ProductID;references:ProductID"`
}

// TableName overrides the gorm default.
func (FactSale) TableName() string { return "fact_sales" }
