package model

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cocktail categories
const (
	CategorySignature = "signature"
	CategoryClassics  = "classics"
	CategorySeasonal  = "seasonal"
	CategoryTropical  = "tropical"
	CategoryWinter    = "winter"
	CategorySummer    = "summer"
)

// Alcohol content levels
const (
	AlcoholNone   = "non_alcoholic"
	AlcoholLight  = "light"
	AlcoholMedium = "medium"
	AlcoholStrong = "strong"
)

// Flavor profiles
const (
	FlavorSweet  = "sweet"
	FlavorSour   = "sour"
	FlavorBitter = "bitter"
	FlavorSpicy  = "spicy"
	FlavorFruity = "fruity"
	FlavorHerbal = "herbal"
)

type Ingredient struct {
	Name     string `bson:"name" json:"name"`
	Amount   string `bson:"amount" json:"amount"`
	Unit     string `bson:"unit" json:"unit"`
	Optional bool   `bson:"optional" json:"optional"`
}

type Instruction struct {
	Step        int    `bson:"step" json:"step"`
	Description string `bson:"description" json:"description"`
}

type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"public_id"`
}

// Like is an embedded like entry. A user appears at most once in the
// likes array; the like endpoint toggles membership.
type Like struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// Rating is an embedded rating entry. A user appears at most once in the
// ratings array; re-submitting overwrites the value in place.
type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"` // 1..5
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// Comment is an embedded append-only comment entry.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

type Cocktail struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`
	PrepTime       int                `bson:"prepTime" json:"prep_time"` // minutes
	Servings       int                `bson:"servings" json:"servings"`
	GlassType      string             `bson:"glassType" json:"glass_type"`
	AlcoholContent string             `bson:"alcoholContent" json:"alcohol_content"`
	Flavor         string             `bson:"flavor" json:"flavor"`
	Image          *Image             `bson:"image,omitempty" json:"image,omitempty"`
	Ingredients    []Ingredient       `bson:"ingredients" json:"ingredients"`
	Instructions   []Instruction      `bson:"instructions" json:"instructions"`

	Likes    []Like    `bson:"likes" json:"likes,omitempty"`
	Ratings  []Rating  `bson:"ratings" json:"ratings,omitempty"`
	Comments []Comment `bson:"comments" json:"comments,omitempty"`

	// Denormalized aggregates, maintained on every engagement write so
	// reads can filter and sort without recomputation.
	AverageRating float64 `bson:"averageRating" json:"average_rating"`
	LikesCount    int     `bson:"likesCount" json:"likes_count"`

	IsApproved bool `bson:"isApproved" json:"is_approved"`
	IsFeatured bool `bson:"isFeatured" json:"is_featured"`
	Views      int  `bson:"views" json:"views"`

	CreatedBy primitive.ObjectID `bson:"createdBy" json:"created_by"`
	Creator   *PublicUser        `bson:"creator,omitempty" json:"creator,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// ComputeAverageRating returns the arithmetic mean of the embedded
// ratings rounded to one decimal, or 0 when there are none.
func (c *Cocktail) ComputeAverageRating() float64 {
	return AverageOfRatings(c.Ratings)
}

// AverageOfRatings is the shared rounding rule for rating aggregates.
// Halves round to even, matching the store's $round operator.
func AverageOfRatings(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return math.RoundToEven(float64(sum)/float64(len(ratings))*10) / 10
}

// LikedBy reports whether the user has an entry in the likes array.
func (c *Cocktail) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range c.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

// RatingBy returns the user's rating value, or 0 when absent.
func (c *Cocktail) RatingBy(userID primitive.ObjectID) int {
	for _, r := range c.Ratings {
		if r.User == userID {
			return r.Rating
		}
	}
	return 0
}

// ValidCategory reports whether s is one of the cocktail categories.
func ValidCategory(s string) bool {
	switch s {
	case CategorySignature, CategoryClassics, CategorySeasonal,
		CategoryTropical, CategoryWinter, CategorySummer:
		return true
	}
	return false
}

// ValidAlcoholContent reports whether s is a known alcohol level.
func ValidAlcoholContent(s string) bool {
	switch s {
	case AlcoholNone, AlcoholLight, AlcoholMedium, AlcoholStrong:
		return true
	}
	return false
}

// ValidFlavor reports whether s is a known flavor profile.
func ValidFlavor(s string) bool {
	switch s {
	case FlavorSweet, FlavorSour, FlavorBitter, FlavorSpicy,
		FlavorFruity, FlavorHerbal:
		return true
	}
	return false
}
