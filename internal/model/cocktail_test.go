package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAverageOfRatings(t *testing.T) {
	u := primitive.NewObjectID

	tests := []struct {
		name    string
		ratings []Rating
		want    float64
	}{
		{"no ratings", nil, 0},
		{"single rating", []Rating{{User: u(), Rating: 4}}, 4},
		{"rounds to one decimal", []Rating{{User: u(), Rating: 5}, {User: u(), Rating: 4}, {User: u(), Rating: 4}}, 4.3},
		{"exact half", []Rating{{User: u(), Rating: 4}, {User: u(), Rating: 5}}, 4.5},
		{"half rounds down to even", []Rating{{User: u(), Rating: 4}, {User: u(), Rating: 4}, {User: u(), Rating: 4}, {User: u(), Rating: 5}}, 4.2},
		{"half rounds up to even", []Rating{{User: u(), Rating: 5}, {User: u(), Rating: 5}, {User: u(), Rating: 5}, {User: u(), Rating: 4}}, 4.8},
		{"all minimum", []Rating{{User: u(), Rating: 1}, {User: u(), Rating: 1}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageOfRatings(tt.ratings))
		})
	}
}

func TestAverageOfRatingsStaysInRange(t *testing.T) {
	var ratings []Rating
	for i := 0; i < 100; i++ {
		ratings = append(ratings, Rating{Rating: 1 + i%5})
	}
	avg := AverageOfRatings(ratings)
	assert.GreaterOrEqual(t, avg, 1.0)
	assert.LessOrEqual(t, avg, 5.0)
}

func TestLikedBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	c := &Cocktail{Likes: []Like{{User: alice}}}

	assert.True(t, c.LikedBy(alice))
	assert.False(t, c.LikedBy(bob))
}

func TestRatingBy(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	c := &Cocktail{Ratings: []Rating{{User: alice, Rating: 3}}}

	assert.Equal(t, 3, c.RatingBy(alice))
	assert.Equal(t, 0, c.RatingBy(bob))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategorySignature))
	assert.True(t, ValidCategory(CategoryWinter))
	assert.False(t, ValidCategory("brunch"))
	assert.False(t, ValidCategory(""))
}

func TestValidAlcoholContent(t *testing.T) {
	assert.True(t, ValidAlcoholContent(AlcoholNone))
	assert.True(t, ValidAlcoholContent(AlcoholStrong))
	assert.False(t, ValidAlcoholContent("extreme"))
}

func TestValidFlavor(t *testing.T) {
	assert.True(t, ValidFlavor(FlavorSour))
	assert.False(t, ValidFlavor("umami"))
}
