package models

import "time"

// Nutrition is embedded in a pastry document.
type Nutrition struct {
	Calories  float64  `json:"calories" bson:"calories"`
	Protein   float64  `json:"protein" bson:"protein"`
	Carbs     float64  `json:"carbs" bson:"carbs"`
	Fat       float64  `json:"fat" bson:"fat"`
	Allergens []string `json:"allergens" bson:"allergens"`
}

type Pastry struct {
	PastryID        string    `json:"id" bson:"pastryid"`
	Name            string    `json:"name" bson:"name"`
	Slug            string    `json:"slug" bson:"slug"`
	Description     string    `json:"description" bson:"description"`
	Price           float64   `json:"price" bson:"price"`
	Images          []string  `json:"images" bson:"images"`
	CategoryID      string    `json:"categoryId" bson:"categoryId"`
	CategoryName    string    `json:"category,omitempty" bson:"-"`
	SubCategory     string    `json:"subCategory,omitempty" bson:"subCategory,omitempty"`
	DietIDs         []string  `json:"dietIds" bson:"dietIds"`
	Tags            []string  `json:"tags" bson:"tags"`
	Ingredients     []string  `json:"ingredients" bson:"ingredients"`
	Nutrition       Nutrition `json:"nutrition" bson:"nutrition"`
	StockCount      int       `json:"stockCount" bson:"stockCount"`
	InStock         bool      `json:"inStock" bson:"inStock"`
	OnSale          bool      `json:"onSale" bson:"onSale"`
	AvailableDays   []string  `json:"availableDays,omitempty" bson:"availableDays,omitempty"`
	PreparationTime int       `json:"preparationTime,omitempty" bson:"preparationTime,omitempty"`
	SearchKeywords  []string  `json:"searchKeywords,omitempty" bson:"searchKeywords,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Category and Diet are small reference documents, cached in memory at boot.
type Category struct {
	CategoryID string `json:"id" bson:"categoryid"`
	Name       string `json:"name" bson:"name"`
}

type Diet struct {
	DietID string `json:"id" bson:"dietid"`
	Name   string `json:"name" bson:"name"`
}
