package webui

import (
	"net/http"

	"foodtracker/dblayer"
	"foodtracker/imagestore"
	"foodtracker/webui/uitemplates"

	"github.com/golang/glog"
)

func (u *WebUI) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/profile" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	if r.Method != http.MethodPost {
		// A plain GET doubles as the reset path: it re-renders the stored
		// record, image preview included.
		content, err := uitemplates.ProfilePage(&uitemplates.ProfileParams{
			FullName: user.FullName,
			Email:    user.Email,
			Gender:   user.Gender,
			Genders:  genders,
			ImageURL: user.ImageURL,
		})
		writePage(w, content, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.ProfileParams{
		FullName: r.PostFormValue("full-name"),
		Email:    r.PostFormValue("email"),
		Gender:   r.PostFormValue("gender"),
		Genders:  genders,
		ImageURL: user.ImageURL,
	}
	password := r.PostFormValue("password")

	if params.Email == "" {
		params.UserError = "Email must not be empty"
		content, err := uitemplates.ProfilePage(params)
		writePage(w, content, err)
		return
	}

	upd := dblayer.UserUpdate{
		FullName: &params.FullName,
		Email:    &params.Email,
		Gender:   &params.Gender,
	}

	// An empty password field means "keep the current password".  A new
	// password is hashed here; plaintext never reaches the store.
	if password != "" {
		hash, err := dblayer.HashPassword(password)
		if err != nil {
			glog.Errorf("Error while hashing password: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		upd.PasswordHash = &hash
	}

	file, header, err := r.FormFile("profile-image")
	if err == nil {
		defer file.Close()

		if user.ImageURL != "" {
			if object, ok := imagestore.ObjectFromURL(user.ImageURL, u.userImageBucket); ok {
				if err := u.images.Remove(ctx, u.userImageBucket, object); err != nil {
					glog.Errorf("Error while removing old profile image %s: %v", object, err)
				}
			}
		}

		object := imagestore.ProfileObjectName(user.ID, header.Filename)
		if err := u.images.Upload(ctx, u.userImageBucket, object, file); err != nil {
			glog.Errorf("Error while uploading profile image: %v", err)
			params.UserError = "Could not upload the profile image"
			content, tmplErr := uitemplates.ProfilePage(params)
			writePage(w, content, tmplErr)
			return
		}
		imageURL := u.images.PublicURL(u.userImageBucket, object)
		upd.ImageURL = &imageURL
	} else if err != http.ErrMissingFile {
		glog.Errorf("Error while reading profile image from form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	if err := u.store.UpdateUser(ctx, user.ID, upd); err != nil {
		glog.Errorf("Error while updating user %s: %v", user.ID, err)
		params.UserError = "Could not save your profile"
		content, tmplErr := uitemplates.ProfilePage(params)
		writePage(w, content, tmplErr)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// removeProfileImageHandler deletes the stored profile image and clears the
// image URL on the user record.
func (u *WebUI) removeProfileImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/profile/remove-image" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	user := u.checkSession(ctx, w, r)
	if user == nil {
		return
	}

	// Object removal is best effort; the record update goes ahead even if
	// it fails.
	if user.ImageURL != "" {
		if object, ok := imagestore.ObjectFromURL(user.ImageURL, u.userImageBucket); ok {
			if err := u.images.Remove(ctx, u.userImageBucket, object); err != nil {
				glog.Errorf("Error while removing profile image %s: %v", object, err)
			}
		}
	}

	cleared := ""
	if err := u.store.UpdateUser(ctx, user.ID, dblayer.UserUpdate{ImageURL: &cleared}); err != nil {
		glog.Errorf("Error while clearing profile image for user %s: %v", user.ID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile", http.StatusFound)
}
