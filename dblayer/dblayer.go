// Package dblayer packages up all Firestore accesses for FoodTracker.
package dblayer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodtracker/dbtypes"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

// Collection names in the backing document store.
const (
	userCollection    = "user"
	foodCollection    = "food"
	sessionCollection = "session"
)

const sessionLifetime = 18 * time.Hour

type DB struct {
	firestoreClient *firestore.Client
}

func New(firestoreClient *firestore.Client) *DB {
	return &DB{
		firestoreClient: firestoreClient,
	}
}

var (
	ErrEmailMustNotBeEmpty    = errors.New("email must not be empty")
	ErrPasswordMustNotBeEmpty = errors.New("password must not be empty")
	ErrUnknownUser            = errors.New("no account with that email")
	ErrWrongPassword          = errors.New("wrong password")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidMeal            = errors.New("meal must be breakfast, lunch, dinner, or snack")
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
// Only the hash is ever stored; plaintext never reaches the document store.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("while hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored bcrypt hash.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// LookupUserByEmail returns the first user whose email field equals email, or
// nil if there is none.  The match is exact: no case folding, no whitespace
// trimming.
func (db *DB) LookupUserByEmail(ctx context.Context, email string) (*dbtypes.User, error) {
	var userSnapshot *firestore.DocumentSnapshot
	userIter := db.firestoreClient.Collection(userCollection).Where("email", "==", email).Documents(ctx)
	defer userIter.Stop()
	for {
		var err error
		userSnapshot, err = userIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up user with email %q: %w", email, err)
		}

		// We only consider a single user.
		break
	}

	if userSnapshot == nil {
		return nil, nil
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %q: %w", email, err)
	}
	user.ID = userSnapshot.Ref.ID

	return user, nil
}

// RegisterUserParams carries the fields collected by the registration screen.
// Password is plaintext here; RegisterUser hashes it before anything is
// written.
type RegisterUserParams struct {
	FullName string
	Email    string
	Password string
	Gender   string
	ImageURL string
}

// RegisterUser creates a new user document and returns its ID.
//
// The duplicate-email check is a read-then-write with no transaction: two
// concurrent registrations with the same email can both pass the check.  This
// matches the store's lack of a uniqueness constraint and is accepted risk.
func (db *DB) RegisterUser(ctx context.Context, params RegisterUserParams) (string, error) {
	if params.Email == "" {
		return "", ErrEmailMustNotBeEmpty
	}
	if params.Password == "" {
		return "", ErrPasswordMustNotBeEmpty
	}

	existing, err := db.LookupUserByEmail(ctx, params.Email)
	if err != nil {
		return "", fmt.Errorf("while checking for existing user: %w", err)
	}
	if existing != nil {
		return "", ErrEmailAlreadyRegistered
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return "", err
	}

	newUserRef := db.firestoreClient.Collection(userCollection).NewDoc()
	user := &dbtypes.User{
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: hash,
		Gender:       params.Gender,
		ImageURL:     params.ImageURL,
	}
	if _, err := newUserRef.Create(ctx, user); err != nil {
		return "", fmt.Errorf("while creating user: %w", err)
	}

	return newUserRef.ID, nil
}

// GetUser loads a user document by ID.
func (db *DB) GetUser(ctx context.Context, id string) (*dbtypes.User, error) {
	docSnap, err := db.firestoreClient.Collection(userCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("while retrieving user %s: %w", id, err)
	}

	user := &dbtypes.User{}
	if err := docSnap.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %s: %w", id, err)
	}
	user.ID = docSnap.Ref.ID

	return user, nil
}

// UserUpdate enumerates the mutable fields of a user document.  A nil field
// is left untouched.  PasswordHash must already be hashed.
type UserUpdate struct {
	FullName     *string
	Email        *string
	PasswordHash *string
	Gender       *string
	ImageURL     *string
}

// Updates compiles the update into Firestore field updates.  The update_at
// field is always refreshed with the server timestamp.
func (u UserUpdate) Updates() []firestore.Update {
	var updates []firestore.Update
	if u.FullName != nil {
		updates = append(updates, firestore.Update{Path: "fullname", Value: *u.FullName})
	}
	if u.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *u.Email})
	}
	if u.PasswordHash != nil {
		updates = append(updates, firestore.Update{Path: "password", Value: *u.PasswordHash})
	}
	if u.Gender != nil {
		updates = append(updates, firestore.Update{Path: "gender", Value: *u.Gender})
	}
	if u.ImageURL != nil {
		updates = append(updates, firestore.Update{Path: "user_image_url", Value: *u.ImageURL})
	}
	updates = append(updates, firestore.Update{Path: "update_at", Value: firestore.ServerTimestamp})
	return updates
}

// UpdateUser applies a partial update to a user document.
func (db *DB) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	docRef := db.firestoreClient.Collection(userCollection).Doc(id)
	if _, err := docRef.Update(ctx, upd.Updates()); err != nil {
		return fmt.Errorf("while updating user %s: %w", id, err)
	}
	return nil
}

// SessionFromPassword runs the password-based login process for a given user,
// returning a stored session or an error.
func (db *DB) SessionFromPassword(ctx context.Context, email, password string) (*dbtypes.Session, error) {
	if email == "" {
		return nil, ErrEmailMustNotBeEmpty
	}
	if password == "" {
		return nil, ErrPasswordMustNotBeEmpty
	}

	var userSnapshot *firestore.DocumentSnapshot
	userIter := db.firestoreClient.Collection(userCollection).Where("email", "==", email).Documents(ctx)
	defer userIter.Stop()
	for {
		var err error
		userSnapshot, err = userIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up user with email %q: %w", email, err)
		}

		// We only consider a single user.
		break
	}

	if userSnapshot == nil {
		return nil, ErrUnknownUser
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user %q: %w", email, err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	sessionCookieBytes := make([]byte, 32)
	if _, err := rand.Read(sessionCookieBytes); err != nil {
		return nil, fmt.Errorf("while generating session cookie: %w", err)
	}

	sessionCookie := base64.StdEncoding.EncodeToString(sessionCookieBytes)

	session := &dbtypes.Session{
		Cookie:  sessionCookie,
		User:    userSnapshot.Ref,
		Expires: time.Now().Add(sessionLifetime),
	}
	if _, _, err := db.firestoreClient.Collection(sessionCollection).Add(ctx, session); err != nil {
		return nil, fmt.Errorf("while storing session cookie: %w", err)
	}

	return session, nil
}

// DeleteSession deletes a session by its cookie.
func (db *DB) DeleteSession(ctx context.Context, cookie string) error {
	sessionIter := db.firestoreClient.Collection(sessionCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while looking up session: %w", err)
		}

		_, err = sessionSnapshot.Ref.Delete(ctx, firestore.LastUpdateTime(sessionSnapshot.UpdateTime))
		if err != nil {
			return fmt.Errorf("while deleting session: %w", err)
		}
	}

	return nil
}

// UserFromSessionCookie looks up a session from its cookie, and then returns
// the corresponding user.  A missing or expired session yields (nil, nil):
// the caller treats that as "not logged in", not as a failure.
func (db *DB) UserFromSessionCookie(ctx context.Context, cookie string) (*dbtypes.User, error) {
	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := db.firestoreClient.Collection(sessionCollection).Where("cookie", "==", cookie).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		// Session object must have been cleaned up due to expiration; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because there was no session object corresponding to the cookie in the database.")
		return nil, nil
	}

	session := &dbtypes.Session{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return nil, fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		// Session object is expired; user is not logged in.
		slog.InfoContext(ctx, "No logged-in user because the session object in the database was expired.")
		return nil, nil
	}

	userSnapshot, err := session.User.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("while getting user linked from session: %w", err)
	}

	user := &dbtypes.User{}
	if err := userSnapshot.DataTo(user); err != nil {
		return nil, fmt.Errorf("while unmarshaling user: %w", err)
	}
	user.ID = userSnapshot.Ref.ID

	return user, nil
}

// ListFoodsByOwner returns all food entries whose user_id field equals
// ownerID.  Order is whatever the store returns; the dashboard does any
// filtering locally.
func (db *DB) ListFoodsByOwner(ctx context.Context, ownerID string) ([]*dbtypes.Food, error) {
	var foods []*dbtypes.Food

	foodIter := db.firestoreClient.Collection(foodCollection).Where("user_id", "==", ownerID).Documents(ctx)
	defer foodIter.Stop()
	for {
		foodSnapshot, err := foodIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating foods owned by user %s: %w", ownerID, err)
		}

		food := &dbtypes.Food{}
		if err := foodSnapshot.DataTo(food); err != nil {
			return nil, fmt.Errorf("while unmarshaling food %s: %w", foodSnapshot.Ref.ID, err)
		}
		food.ID = foodSnapshot.Ref.ID

		foods = append(foods, food)
	}

	return foods, nil
}

// GetFood loads a food document by ID.
func (db *DB) GetFood(ctx context.Context, id string) (*dbtypes.Food, error) {
	docSnap, err := db.firestoreClient.Collection(foodCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("while retrieving food %s: %w", id, err)
	}

	food := &dbtypes.Food{}
	if err := docSnap.DataTo(food); err != nil {
		return nil, fmt.Errorf("while unmarshaling food %s: %w", id, err)
	}
	food.ID = docSnap.Ref.ID

	return food, nil
}

// CreateFood creates a new food document and returns its ID.
func (db *DB) CreateFood(ctx context.Context, food *dbtypes.Food) (string, error) {
	if !dbtypes.ValidMeal(food.Meal) {
		return "", ErrInvalidMeal
	}

	newFoodRef := db.firestoreClient.Collection(foodCollection).NewDoc()
	if _, err := newFoodRef.Create(ctx, food); err != nil {
		return "", fmt.Errorf("while creating food: %w", err)
	}

	return newFoodRef.ID, nil
}

// FoodUpdate enumerates the mutable fields of a food document.  A nil field
// is left untouched.
type FoodUpdate struct {
	Name     *string
	Meal     *string
	Date     *string
	ImageURL *string
}

// Updates compiles the update into Firestore field updates.  The update_at
// field is always refreshed with the server timestamp.
func (u FoodUpdate) Updates() []firestore.Update {
	var updates []firestore.Update
	if u.Name != nil {
		updates = append(updates, firestore.Update{Path: "foodname", Value: *u.Name})
	}
	if u.Meal != nil {
		updates = append(updates, firestore.Update{Path: "meal", Value: *u.Meal})
	}
	if u.Date != nil {
		updates = append(updates, firestore.Update{Path: "fooddate_at", Value: *u.Date})
	}
	if u.ImageURL != nil {
		updates = append(updates, firestore.Update{Path: "food_image_url", Value: *u.ImageURL})
	}
	updates = append(updates, firestore.Update{Path: "update_at", Value: firestore.ServerTimestamp})
	return updates
}

// UpdateFood applies a partial update to a food document.
func (db *DB) UpdateFood(ctx context.Context, id string, upd FoodUpdate) error {
	if upd.Meal != nil && !dbtypes.ValidMeal(*upd.Meal) {
		return ErrInvalidMeal
	}

	docRef := db.firestoreClient.Collection(foodCollection).Doc(id)
	if _, err := docRef.Update(ctx, upd.Updates()); err != nil {
		return fmt.Errorf("while updating food %s: %w", id, err)
	}
	return nil
}

// DeleteFood deletes a food document by ID.
func (db *DB) DeleteFood(ctx context.Context, id string) error {
	docRef := db.firestoreClient.Collection(foodCollection).Doc(id)
	if _, err := docRef.Delete(ctx); err != nil {
		return fmt.Errorf("while deleting food %s: %w", id, err)
	}
	return nil
}
