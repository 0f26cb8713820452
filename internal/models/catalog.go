package models

import "database/sql"

// ItemRecord is a sellable menu item
type ItemRecord struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Image string  `db:"image" json:"image"`
	Price float64 `db:"price" json:"price"`
}

// Placeholder metadata used when an item cannot be resolved
const UnknownName = "Unknown"

// UnknownItem returns the placeholder record for an unresolved item id
func UnknownItem(id string) ItemRecord {
	return ItemRecord{ID: id, Name: UnknownName}
}

// RecipeRecord is the bill of materials of one item
type RecipeRecord struct {
	FoodID      string            `db:"food_id" json:"foodId"`
	Ingredients RecipeIngredients `db:"ingredients" json:"ingredients"`
}

// RecipeIngredient is one line of a recipe
type RecipeIngredient struct {
	IngredientID   DocID   `json:"ingredientId"`
	QuantityNeeded float64 `json:"quantityNeeded"`
	Unit           string  `json:"unit"`
}

// RecipeIngredients is the jsonb ingredients column of a recipe
type RecipeIngredients []RecipeIngredient

// Scan implements sql.Scanner
func (r *RecipeIngredients) Scan(src interface{}) error {
	return scanJSON(src, r)
}

// StockRecord is the quantity on hand of an ingredient at one location
type StockRecord struct {
	IngredientID string         `db:"ingredient_id" json:"ingredientId"`
	BranchID     sql.NullString `db:"branch_id" json:"-"`
	Quantity     float64        `db:"quantity" json:"quantity"`
	MinThreshold float64        `db:"min_threshold" json:"minThreshold"`
}

// IsCentral reports whether the stock belongs to the central warehouse
func (s StockRecord) IsCentral() bool {
	return !s.BranchID.Valid
}

// IngredientRecord is an entry of the ingredient catalog
type IngredientRecord struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}
