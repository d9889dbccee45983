package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity_NormalizedEqual(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Email Address", "email_address"))
	assert.Equal(t, 1.0, NameSimilarity(`"FirstName"`, "firstname"))
}

func TestNameSimilarity_Ordering(t *testing.T) {
	assert.Greater(t, NameSimilarity("email", "email_address"), NameSimilarity("email", "phone_number"))
	assert.Greater(t, NameSimilarity("donor_first_name", "first_name"), NameSimilarity("donor_first_name", "last_name"))
}

func TestNameSimilarity_KnownValue(t *testing.T) {
	// dice: 4 shared of 4+12 bigrams → 0.5; jaccard: 1/2; substring bonus.
	assert.InDelta(t, 0.5*0.5+0.4*0.5+0.1*0.8, NameSimilarity("email", "email_address"), 1e-9)
}

func TestNameSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"},
		{"", "x"},
		{"zip", "postal_code"},
		{"amount", "amount_total_amount"},
	}
	for _, p := range pairs {
		s := NameSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0, p)
		assert.LessOrEqual(t, s, 1.0, p)
		assert.Equal(t, s, NameSimilarity(p[1], p[0]), "symmetric for %v", p)
	}
}

func TestDice(t *testing.T) {
	assert.InDelta(t, 0.25, dice("night", "nacht"), 1e-9)
	// Repeated bigrams only match as often as they occur on both sides.
	assert.InDelta(t, 2.0/3.0, dice("aaa", "aa"), 1e-9)
	assert.Equal(t, 0.0, dice("a", "a"))
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
	assert.Equal(t, 1.0, jaccard([]string{"a", "a"}, []string{"a"}))
	assert.Equal(t, 0.0, jaccard(nil, nil))
}
