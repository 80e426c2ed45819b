package webui

import (
	"net/http"
	"net/url"
	"strings"

	"foodtracker/dblayer"
	"foodtracker/dbtypes"
	"foodtracker/imagestore"
	"foodtracker/webui/uitemplates"

	"github.com/golang/glog"
)

func updateFoodLink(id string) string {
	q := url.Values{}
	q.Add("id", id)
	link := &url.URL{
		Path:     "/update-food",
		RawQuery: q.Encode(),
	}
	return link.String()
}

func deleteFoodLink(id string) string {
	q := url.Values{}
	q.Add("id", id)
	link := &url.URL{
		Path:     "/delete-food",
		RawQuery: q.Encode(),
	}
	return link.String()
}

// dashboardHandler renders the logged-in user's food list.
//
// The user record and the food list come from two independent reads; if the
// food list read fails, the failure is logged and the screen still renders
// with the data it has.
func (u *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/dashboard" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	params := &uitemplates.DashboardParams{
		ActiveUser: uitemplates.ActiveUserParams{LoggedIn: true, Email: user.Email},
		FullName:   user.FullName,
		ImageURL:   user.ImageURL,
		SearchTerm: r.URL.Query().Get("q"),
	}

	foods, err := u.store.ListFoodsByOwner(ctx, user.ID)
	if err != nil {
		glog.Errorf("Error while listing foods for user %s: %v", user.ID, err)
		params.LoadError = "Could not load your food entries"
	}

	// Free-text search happens locally; the store only filters by owner.
	needle := strings.ToLower(params.SearchTerm)
	for _, food := range foods {
		if needle != "" && !strings.Contains(strings.ToLower(food.Name), needle) {
			continue
		}
		params.Foods = append(params.Foods, uitemplates.DashboardFood{
			Date:           food.Date,
			Name:           food.Name,
			Meal:           food.Meal,
			ImageURL:       food.ImageURL,
			UpdateFoodLink: updateFoodLink(food.ID),
			DeleteFoodLink: deleteFoodLink(food.ID),
		})
	}

	content, err := uitemplates.DashboardPage(params)
	writePage(w, content, err)
}

// foodFormError returns the message for the first failing required field, or
// "" if the submission is valid.  Nothing is checked against the store here.
func foodFormError(name, meal, date string) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "Food name must not be empty"
	case !dbtypes.ValidMeal(meal):
		return "Please choose a meal"
	case date == "":
		return "Please choose a date"
	}
	return ""
}

func (u *WebUI) addFoodHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/add-food" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	if r.Method != http.MethodPost {
		content, err := uitemplates.AddFoodPage(&uitemplates.AddFoodParams{Meals: dbtypes.Meals})
		writePage(w, content, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.AddFoodParams{
		FoodName: r.PostFormValue("food-name"),
		Meal:     r.PostFormValue("meal"),
		FoodDate: r.PostFormValue("food-date"),
		Meals:    dbtypes.Meals,
	}

	if userErr := foodFormError(params.FoodName, params.Meal, params.FoodDate); userErr != "" {
		params.UserError = userErr
		content, err := uitemplates.AddFoodPage(params)
		writePage(w, content, err)
		return
	}

	imageURL := ""
	file, header, err := r.FormFile("food-image")
	if err == nil {
		defer file.Close()

		object := imagestore.FoodObjectName(user.ID, header.Filename)
		if err := u.images.Upload(ctx, u.foodImageBucket, object, file); err != nil {
			glog.Errorf("Error while uploading food image: %v", err)
			params.UserError = "Could not upload the food image"
			content, tmplErr := uitemplates.AddFoodPage(params)
			writePage(w, content, tmplErr)
			return
		}
		imageURL = u.images.PublicURL(u.foodImageBucket, object)
	} else if err != http.ErrMissingFile {
		glog.Errorf("Error while reading food image from form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	_, err = u.store.CreateFood(ctx, &dbtypes.Food{
		UserID:   user.ID,
		Name:     params.FoodName,
		Meal:     params.Meal,
		Date:     params.FoodDate,
		ImageURL: imageURL,
	})
	if err != nil {
		glog.Errorf("Error while creating food: %v", err)
		params.UserError = "Could not save the food entry"
		content, tmplErr := uitemplates.AddFoodPage(params)
		writePage(w, content, tmplErr)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// loadOwnedFood loads a food entry and checks that it belongs to user.  On
// failure it writes the response and returns nil.
func (u *WebUI) loadOwnedFood(w http.ResponseWriter, r *http.Request, user *dbtypes.User, id string) *dbtypes.Food {
	food, err := u.store.GetFood(r.Context(), id)
	if err != nil {
		glog.Errorf("Error while retrieving food %s: %v", id, err)
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}

	// Permissions check --- is the user allowed to touch this entry?
	if food.UserID != user.ID {
		glog.Errorf("User %s is not allowed to access food %s", user.ID, food.ID)
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil
	}

	return food
}

func (u *WebUI) updateFoodHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/update-food" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	if r.Method != http.MethodPost {
		foodID := r.URL.Query().Get("id")
		food := u.loadOwnedFood(w, r, user, foodID)
		if food == nil {
			return
		}

		// A plain GET doubles as the reset path: it re-renders the
		// last-saved snapshot, image preview included.
		content, err := uitemplates.UpdateFoodPage(&uitemplates.UpdateFoodParams{
			FoodID:   food.ID,
			FoodName: food.Name,
			Meal:     food.Meal,
			Meals:    dbtypes.Meals,
			FoodDate: food.Date,
			ImageURL: food.ImageURL,
			SelfLink: updateFoodLink(food.ID),
		})
		writePage(w, content, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	foodID := r.PostFormValue("id")
	if foodID == "" {
		foodID = r.URL.Query().Get("id")
	}

	food := u.loadOwnedFood(w, r, user, foodID)
	if food == nil {
		return
	}

	params := &uitemplates.UpdateFoodParams{
		FoodID:   food.ID,
		FoodName: r.PostFormValue("food-name"),
		Meal:     r.PostFormValue("meal"),
		Meals:    dbtypes.Meals,
		FoodDate: r.PostFormValue("food-date"),
		ImageURL: food.ImageURL,
		SelfLink: updateFoodLink(food.ID),
	}

	if userErr := foodFormError(params.FoodName, params.Meal, params.FoodDate); userErr != "" {
		params.UserError = userErr
		content, err := uitemplates.UpdateFoodPage(params)
		writePage(w, content, err)
		return
	}

	upd := dblayer.FoodUpdate{
		Name: &params.FoodName,
		Meal: &params.Meal,
		Date: &params.FoodDate,
	}

	file, header, err := r.FormFile("food-image")
	if err == nil {
		defer file.Close()

		// Swap the image: remove the old object first (best effort), then
		// upload the new one.  The two steps are not transactional; if the
		// upload fails after the removal succeeded, the entry is left
		// without a stored image.
		if food.ImageURL != "" {
			if object, ok := imagestore.ObjectFromURL(food.ImageURL, u.foodImageBucket); ok {
				if err := u.images.Remove(ctx, u.foodImageBucket, object); err != nil {
					glog.Errorf("Error while removing old food image %s: %v", object, err)
				}
			}
		}

		object := imagestore.FoodObjectName(user.ID, header.Filename)
		if err := u.images.Upload(ctx, u.foodImageBucket, object, file); err != nil {
			glog.Errorf("Error while uploading food image: %v", err)
			params.UserError = "Could not upload the food image"
			content, tmplErr := uitemplates.UpdateFoodPage(params)
			writePage(w, content, tmplErr)
			return
		}
		imageURL := u.images.PublicURL(u.foodImageBucket, object)
		upd.ImageURL = &imageURL
	} else if err != http.ErrMissingFile {
		glog.Errorf("Error while reading food image from form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if err := u.store.UpdateFood(ctx, food.ID, upd); err != nil {
		glog.Errorf("Error while updating food %s: %v", food.ID, err)
		params.UserError = "Could not save the food entry"
		content, tmplErr := uitemplates.UpdateFoodPage(params)
		writePage(w, content, tmplErr)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (u *WebUI) deleteFoodHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/delete-food" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	foodID := r.Form.Get("id")
	food := u.loadOwnedFood(w, r, user, foodID)
	if food == nil {
		return
	}

	if r.Method != http.MethodPost {
		content, err := uitemplates.DeleteFoodPage(&uitemplates.DeleteFoodParams{
			FoodID:   food.ID,
			FoodName: food.Name,
			SelfLink: deleteFoodLink(food.ID),
		})
		writePage(w, content, err)
		return
	}

	// Remove the stored image first, best effort: the database delete goes
	// ahead even if the object removal fails.
	if food.ImageURL != "" {
		if object, ok := imagestore.ObjectFromURL(food.ImageURL, u.foodImageBucket); ok {
			if err := u.images.Remove(ctx, u.foodImageBucket, object); err != nil {
				glog.Errorf("Error while removing image for food %s: %v", food.ID, err)
			}
		}
	}

	if err := u.store.DeleteFood(ctx, food.ID); err != nil {
		glog.Errorf("Error while deleting food %s: %v", food.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
