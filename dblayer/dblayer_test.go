package dblayer

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/go-cmp/cmp"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "secret1" {
		t.Errorf("HashPassword returned the plaintext unchanged")
	}

	if !CheckPassword("secret1", hash) {
		t.Errorf("CheckPassword rejected the correct password")
	}

	if CheckPassword("secret2", hash) {
		t.Errorf("CheckPassword accepted the wrong password")
	}
}

func TestRegisterUserRequiredFields(t *testing.T) {
	// Required-field checks fire before any store access.
	db := New(nil)
	ctx := context.Background()

	_, err := db.RegisterUser(ctx, RegisterUserParams{Password: "secret1"})
	if !errors.Is(err, ErrEmailMustNotBeEmpty) {
		t.Errorf("RegisterUser with empty email returned %v; want ErrEmailMustNotBeEmpty", err)
	}

	_, err = db.RegisterUser(ctx, RegisterUserParams{Email: "a@x.com"})
	if !errors.Is(err, ErrPasswordMustNotBeEmpty) {
		t.Errorf("RegisterUser with empty password returned %v; want ErrPasswordMustNotBeEmpty", err)
	}
}

func TestSessionFromPasswordRequiredFields(t *testing.T) {
	db := New(nil)
	ctx := context.Background()

	_, err := db.SessionFromPassword(ctx, "", "secret1")
	if !errors.Is(err, ErrEmailMustNotBeEmpty) {
		t.Errorf("SessionFromPassword with empty email returned %v; want ErrEmailMustNotBeEmpty", err)
	}

	_, err = db.SessionFromPassword(ctx, "a@x.com", "")
	if !errors.Is(err, ErrPasswordMustNotBeEmpty) {
		t.Errorf("SessionFromPassword with empty password returned %v; want ErrPasswordMustNotBeEmpty", err)
	}
}

func strptr(s string) *string {
	return &s
}

func TestUserUpdateUpdates(t *testing.T) {
	testCases := []struct {
		name string
		upd  UserUpdate
		want []firestore.Update
	}{
		{
			name: "empty update still touches update_at",
			upd:  UserUpdate{},
			want: []firestore.Update{
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
		{
			name: "only set fields are written",
			upd: UserUpdate{
				FullName: strptr("Somchai"),
				ImageURL: strptr(""),
			},
			want: []firestore.Update{
				{Path: "fullname", Value: "Somchai"},
				{Path: "user_image_url", Value: ""},
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
		{
			name: "all fields",
			upd: UserUpdate{
				FullName:     strptr("Somchai"),
				Email:        strptr("a@x.com"),
				PasswordHash: strptr("$2a$10$hash"),
				Gender:       strptr("ชาย"),
				ImageURL:     strptr("https://storage.googleapis.com/user_bk/u1-1.jpg"),
			},
			want: []firestore.Update{
				{Path: "fullname", Value: "Somchai"},
				{Path: "email", Value: "a@x.com"},
				{Path: "password", Value: "$2a$10$hash"},
				{Path: "gender", Value: "ชาย"},
				{Path: "user_image_url", Value: "https://storage.googleapis.com/user_bk/u1-1.jpg"},
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.upd.Updates()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Updates() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFoodUpdateUpdates(t *testing.T) {
	testCases := []struct {
		name string
		upd  FoodUpdate
		want []firestore.Update
	}{
		{
			name: "empty update still touches update_at",
			upd:  FoodUpdate{},
			want: []firestore.Update{
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
		{
			name: "text fields without image",
			upd: FoodUpdate{
				Name: strptr("Pad Thai"),
				Meal: strptr("lunch"),
				Date: strptr("2024-05-01"),
			},
			want: []firestore.Update{
				{Path: "foodname", Value: "Pad Thai"},
				{Path: "meal", Value: "lunch"},
				{Path: "fooddate_at", Value: "2024-05-01"},
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
		{
			name: "image swap",
			upd: FoodUpdate{
				ImageURL: strptr("https://storage.googleapis.com/food_bk/u1_2.jpg"),
			},
			want: []firestore.Update{
				{Path: "food_image_url", Value: "https://storage.googleapis.com/food_bk/u1_2.jpg"},
				{Path: "update_at", Value: firestore.ServerTimestamp},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.upd.Updates()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Updates() returned unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}
