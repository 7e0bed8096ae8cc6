package catalog

import "github.com/shopspring/decimal"

type Energy string

const (
	EnergyMedium Energy = "Medium"
	EnergyHigh   Energy = "High"
	EnergyUltra  Energy = "Ultra"
)

func (e Energy) Valid() bool {
	switch e {
	case EnergyMedium, EnergyHigh, EnergyUltra:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Flavor      string          `json:"flavor"`
	Energy      Energy          `json:"energy"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Category    string          `json:"category"`
}

type Flavor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tagline     string          `json:"tagline"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Color       string          `json:"color"`
	Ingredients []string        `json:"ingredients"`
	EnergyLevel Energy          `json:"energy_level"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Price       decimal.Decimal `json:"price"`
	Featured    bool            `json:"featured,omitempty"`
}

// DefaultProducts is the launch line-up installed by Seed.
func DefaultProducts() []Product {
	return []Product{{
		ID:          "mango-bluster",
		Name:        "Mango Bluster",
		Price:       decimal.RequireFromString("4.99"),
		Image:       "🥭",
		Description: "Tropical mango energy with a wild twist. Unleash your inner jungle cat with this exotic blend.",
		Flavor:      "Mango Tropical",
		Energy:      EnergyHigh,
		Rating:      4.8,
		Reviews:     1247,
		Category:    "tropical",
	}}
}

func DefaultFlavors() []Flavor {
	return []Flavor{{
		ID:          "mango-bluster",
		Name:        "Mango Bluster",
		Tagline:     "Tropical Thunder Unleashed",
		Description: "Experience the explosive taste of tropical mango combined with our signature energy blend.",
		Image:       "🥭",
		Color:       "from-orange-400 via-yellow-500 to-red-500",
		Ingredients: []string{
			"Natural Mango Extract",
			"Taurine",
			"B-Vitamins",
			"Natural Caffeine",
			"Ginseng Root",
			"Electrolytes",
		},
		EnergyLevel: EnergyHigh,
		Rating:      4.8,
		Reviews:     1247,
		Price:       decimal.RequireFromString("4.99"),
		Featured:    true,
	}}
}
