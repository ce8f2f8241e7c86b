package model

// Rank maps a rating band to a display title and icon. Bands do not overlap.
type Rank struct {
	ID        string `json:"id"`
	Title     string `json:"rank_title"`
	MinRating int    `json:"minimum_rating"`
	MaxRating int    `json:"maximum_rating"`
	Icon      string `json:"rank_icon"`
}
