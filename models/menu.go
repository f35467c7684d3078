package models

// MenuItem represents a single item on the cafe menu.
type MenuItem struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Category string  `bson:"category" json:"category"`           // e.g. "hot drinks", "pastries"
	VideoURL string  `bson:"video_url" json:"video_url"`         // BSL signing demo for the item
	Popular  bool    `bson:"popular,omitempty" json:"popular"`   // Featured on the home page
	InStock  bool    `bson:"in_stock,omitempty" json:"in_stock"` // Currently orderable
}
