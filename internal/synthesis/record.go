package synthesis

// ParentMeta describes the parent product family new items are created under.
type ParentMeta struct {
	ID         int    `json:"id"`
	ParentNoDE string `json:"parent_no_de"`
	NameEN     string `json:"parent_name_en"`
	NameDE     string `json:"parent_name_de"`
	NameCN     string `json:"parent_name_cn"`
}

// SupplierMeta is the supplier and customs data shared by the items of a
// parent.
type SupplierMeta struct {
	SupplierID int    `json:"supplier_id"`
	SuppCat    string `json:"supp_cat"`
	TariffCode string `json:"tariff_code"`
	TaricID    string `json:"taric_id"`
}

type SupplierItem struct {
	SupplierID int    `json:"supplier_id"`
	URL        string `json:"url"`
	PriceRMB   string `json:"price_rmb"`
}

type TItem struct {
	ParentID   int     `json:"parent_id"`
	ItemIDDE   string  `json:"itemID_DE"`
	ParentNoDE string  `json:"parent_no_de"`
	SuppCat    string  `json:"supp_cat"`
	EAN        string  `json:"ean"`
	TariffCode string  `json:"tariff_code"`
	TaricID    string  `json:"taric_id"`
	Weight     float64 `json:"weight"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Length     float64 `json:"length"`
	ItemNameCN string  `json:"item_name_cn"`
	ItemNameDE string  `json:"item_name_de"`
	ItemName   string  `json:"item_name"`
	RMBPrice   string  `json:"RMB_Price"`
}

type VariationValues struct {
	ItemIDDE string `json:"item_id_de"`
	ItemNoDE int    `json:"item_no_de"`
	ValueDE  string `json:"value_de"`
	ValueDE2 string `json:"value_de_2"`
	ValueDE3 string `json:"value_de_3"`
	ValueEN  string `json:"value_en"`
	ValueEN2 string `json:"value_en_2"`
	ValueEN3 string `json:"value_en_3"`
}

// Record is everything written for one new item.
type Record struct {
	SupplierItem    SupplierItem    `json:"supplierItemData"`
	TItem           TItem           `json:"titemData"`
	VariationValues VariationValues `json:"variationValuesData"`
}

// DimensionOperations holds one formula per dimension field. Empty formulas
// leave the field unchanged.
type DimensionOperations struct {
	Weight string `json:"weight"`
	Height string `json:"height"`
	Length string `json:"length"`
	Width  string `json:"width"`
}

func (d DimensionOperations) IsZero() bool {
	return d == DimensionOperations{}
}
