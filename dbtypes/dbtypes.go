package dbtypes

import (
	"time"

	"cloud.google.com/go/firestore"
)

// User represents one registered account.
//
// A user owns zero or more Food entries, linked by Food.UserID.  Email is
// intended to be unique, but uniqueness is only enforced by an
// application-level pre-check at registration time.
type User struct {
	// ID is the Firestore document ID.  It is populated from the document
	// ref when a user is loaded, and is never stored as a field.
	ID string `firestore:"-"`

	FullName     string    `firestore:"fullname"`
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"password"`
	Gender       string    `firestore:"gender"`
	ImageURL     string    `firestore:"user_image_url"`
	CreateAt     time.Time `firestore:"create_at,serverTimestamp"`
	UpdateAt     time.Time `firestore:"update_at,serverTimestamp"`
}

// Food represents one logged meal.
type Food struct {
	ID string `firestore:"-"`

	// UserID links the entry to its owning User.  Not enforced by the
	// store; the web layer checks it on every read and mutation.
	UserID string `firestore:"user_id"`

	Name string `firestore:"foodname"`
	Meal string `firestore:"meal"`

	// Date is the free-form text submitted by the date picker.  It is not
	// range-validated, only required to be non-empty.
	Date string `firestore:"fooddate_at"`

	ImageURL string    `firestore:"food_image_url"`
	CreateAt time.Time `firestore:"create_at,serverTimestamp"`
	UpdateAt time.Time `firestore:"update_at,serverTimestamp"`
}

// Session represents a log-in session for a User.
type Session struct {
	Cookie  string                 `firestore:"cookie"`
	User    *firestore.DocumentRef `firestore:"user"`
	Expires time.Time              `firestore:"expires"`
}

// The fixed set of meal categories.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// Meals lists the valid meal categories in display order.
var Meals = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ValidMeal reports whether meal is one of the fixed meal categories.
func ValidMeal(meal string) bool {
	for _, m := range Meals {
		if m == meal {
			return true
		}
	}
	return false
}
