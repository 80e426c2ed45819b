package webui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"foodtracker/dbtypes"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAddFoodValidationTouchesNoAdapters(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	images := &fakeImages{}
	mux := newTestMux(store, images)

	// Meal is missing; only the session lookup may touch the store.
	body, contentType := multipartBody(t, map[string]string{
		"food-name": "Pad Thai",
		"food-date": "2024-05-01",
	})
	r := withSession(httptest.NewRequest(http.MethodPost, "/add-food", body))
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("POST /add-food returned status %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Please choose a meal") {
		t.Errorf("POST /add-food response did not carry the validation message")
	}
	if store.calls != 1 {
		t.Errorf("POST /add-food made %d store calls; want 1 (session lookup only)", store.calls)
	}
	if len(images.uploads) != 0 {
		t.Errorf("POST /add-food uploaded %d objects; want 0", len(images.uploads))
	}
}

func TestAddFoodCreatesEntry(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	mux := newTestMux(store, &fakeImages{})

	body, contentType := multipartBody(t, map[string]string{
		"food-name": "Pad Thai",
		"meal":      "lunch",
		"food-date": "2024-05-01",
	})
	r := withSession(httptest.NewRequest(http.MethodPost, "/add-food", body))
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("POST /add-food returned status %d; want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/dashboard" {
		t.Errorf("POST /add-food redirected to %q; want /dashboard", got)
	}

	want := []*dbtypes.Food{
		{
			UserID: "u1",
			Name:   "Pad Thai",
			Meal:   "lunch",
			Date:   "2024-05-01",
		},
	}
	if diff := cmp.Diff(want, store.createdFoods, cmpopts.IgnoreFields(dbtypes.Food{}, "ID")); diff != "" {
		t.Errorf("Created foods have unexpected diff (-want +got):\n%s", diff)
	}
}

func TestAddThenDashboardRoundTrip(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	mux := newTestMux(store, &fakeImages{})

	body, contentType := multipartBody(t, map[string]string{
		"food-name": "Green Curry",
		"meal":      "dinner",
		"food-date": "2024-05-02",
	})
	r := withSession(httptest.NewRequest(http.MethodPost, "/add-food", body))
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	if w.Code != http.StatusFound {
		t.Fatalf("POST /add-food returned status %d; want 302", w.Code)
	}

	r = withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /dashboard returned status %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Green Curry") {
		t.Errorf("GET /dashboard response does not contain the created entry")
	}
}

func TestUpdateFoodOwnership(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	store.foods["food-1"] = &dbtypes.Food{ID: "food-1", UserID: "u2", Name: "Pad Thai", Meal: "lunch", Date: "2024-05-01"}
	mux := newTestMux(store, &fakeImages{})

	r := withSession(httptest.NewRequest(http.MethodGet, "/update-food?id=food-1", nil))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /update-food for a foreign entry returned status %d; want 404", w.Code)
	}

	body, contentType := multipartBody(t, map[string]string{
		"id":        "food-1",
		"food-name": "Mine Now",
		"meal":      "lunch",
		"food-date": "2024-05-01",
	})
	r = withSession(httptest.NewRequest(http.MethodPost, "/update-food", body))
	r.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("POST /update-food for a foreign entry returned status %d; want 404", w.Code)
	}
	if len(store.foodUpdates) != 0 {
		t.Errorf("Foreign entry received %d updates; want 0", len(store.foodUpdates))
	}
}

func TestUpdateFoodResetRendersStoredSnapshot(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	store.foods["food-1"] = &dbtypes.Food{
		ID:       "food-1",
		UserID:   "u1",
		Name:     "Pad Thai",
		Meal:     "lunch",
		Date:     "2024-05-01",
		ImageURL: "https://storage.googleapis.com/food_bk/u1_1714500000000.jpg",
	}
	mux := newTestMux(store, &fakeImages{})

	// A fresh GET is the reset path: whatever was typed into the form before
	// is gone, and the screen carries exactly the stored snapshot, image
	// preview included.
	r := withSession(httptest.NewRequest(http.MethodGet, "/update-food?id=food-1", nil))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /update-food returned status %d; want 200", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{
		`value="Pad Thai"`,
		`value="lunch" selected`,
		`value="2024-05-01"`,
		`src="https://storage.googleapis.com/food_bk/u1_1714500000000.jpg"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /update-food response does not contain %s", want)
		}
	}
}

func TestUpdateFoodKeepsImageWhenNoneUploaded(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	store.foods["food-1"] = &dbtypes.Food{
		ID:       "food-1",
		UserID:   "u1",
		Name:     "Pad Thai",
		Meal:     "lunch",
		Date:     "2024-05-01",
		ImageURL: "https://storage.googleapis.com/food_bk/u1_1714500000000.jpg",
	}
	images := &fakeImages{}
	mux := newTestMux(store, images)

	body, contentType := multipartBody(t, map[string]string{
		"id":        "food-1",
		"food-name": "Pad Thai Special",
		"meal":      "dinner",
		"food-date": "2024-05-03",
	})
	r := withSession(httptest.NewRequest(http.MethodPost, "/update-food", body))
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("POST /update-food returned status %d; want 302", w.Code)
	}

	upd, ok := store.foodUpdates["food-1"]
	if !ok {
		t.Fatalf("POST /update-food did not update the entry")
	}
	if upd.ImageURL != nil {
		t.Errorf("Update without a new image touched the image URL")
	}
	if upd.Name == nil || *upd.Name != "Pad Thai Special" {
		t.Errorf("Name update is %v; want Pad Thai Special", upd.Name)
	}
	if len(images.removes) != 0 {
		t.Errorf("Update without a new image removed %d objects; want 0", len(images.removes))
	}
}

func TestDeleteFoodConfirmPageOnGet(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	store.foods["food-1"] = &dbtypes.Food{ID: "food-1", UserID: "u1", Name: "Pad Thai", Meal: "lunch", Date: "2024-05-01"}
	mux := newTestMux(store, &fakeImages{})

	r := withSession(httptest.NewRequest(http.MethodGet, "/delete-food?id=food-1", nil))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /delete-food returned status %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Pad Thai") {
		t.Errorf("Confirmation page does not name the entry")
	}
	if len(store.deletedFoods) != 0 {
		t.Errorf("GET /delete-food deleted %d entries; want 0", len(store.deletedFoods))
	}
}

func TestDeleteFoodProceedsWhenImageRemovalFails(t *testing.T) {
	store := newFakeStore()
	addActiveUser(store)
	store.foods["food-1"] = &dbtypes.Food{
		ID:       "food-1",
		UserID:   "u1",
		Name:     "Pad Thai",
		Meal:     "lunch",
		Date:     "2024-05-01",
		ImageURL: "https://storage.googleapis.com/food_bk/u1_1714500000000.jpg",
	}
	images := &fakeImages{removeErr: errors.New("bucket is down")}
	mux := newTestMux(store, images)

	form := url.Values{}
	form.Add("id", "food-1")
	r := withSession(httptest.NewRequest(http.MethodPost, "/delete-food", strings.NewReader(form.Encode())))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusFound {
		t.Fatalf("POST /delete-food returned status %d; want 302", w.Code)
	}
	if diff := cmp.Diff([]string{"food-1"}, store.deletedFoods); diff != "" {
		t.Errorf("Deleted foods have unexpected diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"food_bk/u1_1714500000000.jpg"}, images.removes); diff != "" {
		t.Errorf("Removed objects have unexpected diff (-want +got):\n%s", diff)
	}
}
