package domain

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryLaptops     Category = "Laptops"
	CategorySmartphones Category = "Smartphones"
	CategoryTablets     Category = "Tablets"
	CategoryAccessories Category = "Accessories"
	CategoryAudio       Category = "Audio"
	CategoryGaming      Category = "Gaming"
	CategoryWearables   Category = "Wearables"
	CategoryCameras     Category = "Cameras"
)

// Categories lists the fixed catalog categories in display order.
var Categories = []Category{
	CategoryLaptops, CategorySmartphones, CategoryTablets, CategoryAccessories,
	CategoryAudio, CategoryGaming, CategoryWearables, CategoryCameras,
}

func (c Category) Valid() bool {
	for _, x := range Categories {
		if x == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID       int64           `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	ImageURL string          `db:"image_url" json:"imageUrl"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Category Category        `db:"category" json:"category"`

	// Client-side only; never sent over the wire.
	InCart      int  `db:"-" json:"-"`
	ImageFailed bool `db:"-" json:"-"`
}
