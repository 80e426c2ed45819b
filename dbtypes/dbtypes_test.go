package dbtypes

import "testing"

func TestValidMeal(t *testing.T) {
	for _, meal := range Meals {
		if !ValidMeal(meal) {
			t.Errorf("ValidMeal(%q) = false; want true", meal)
		}
	}

	for _, meal := range []string{"", "brunch", "Breakfast", "BREAKFAST", "snack "} {
		if ValidMeal(meal) {
			t.Errorf("ValidMeal(%q) = true; want false", meal)
		}
	}
}
