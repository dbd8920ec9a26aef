package domain

// Niche is a static content-category taxonomy entry. Topic is the hashtag
// submitted to the provider when no dynamic override is configured.
type Niche struct {
	ID    int
	Name  string
	Topic string
}

// Niches is the fixed taxonomy. IDs are stable; the store references them
// without a backing table.
var Niches = map[int]Niche{
	1: {ID: 1, Name: "Beauty", Topic: "skincare"},
	2: {ID: 2, Name: "Technology", Topic: "tech"},
	3: {ID: 3, Name: "Fitness", Topic: "gymtok"},
	4: {ID: 4, Name: "Food", Topic: "foodtok"},
	5: {ID: 5, Name: "Fashion", Topic: "outfitinspo"},
	6: {ID: 6, Name: "Travel", Topic: "traveltok"},
	7: {ID: 7, Name: "Gaming", Topic: "gamingsetup"},
	8: {ID: 8, Name: "Finance", Topic: "moneytok"},
}

// DefaultTopic is the hashtag used when neither a dynamic setting nor a
// niche mapping resolves.
const DefaultTopic = "skincare"

// NicheByID looks up a taxonomy entry.
func NicheByID(id int) (Niche, bool) {
	n, ok := Niches[id]
	return n, ok
}
