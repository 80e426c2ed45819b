// Package webui implements the FoodTracker screens.
package webui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"foodtracker/dblayer"
	"foodtracker/dbtypes"
	"foodtracker/imagestore"
	"foodtracker/webui/uitemplates"

	"github.com/golang/glog"
)

const sessionCookieName = "FoodTracker-Session"

// Upload size cap for the multipart forms that carry an image.
const maxUploadBytes = 10 << 20

// Gender options offered by the registration and profile forms.  The store
// treats gender as free text, so these are only form choices, not an enum.
var genders = []string{"ชาย", "หญิง", "อื่นๆ"}

// Store is the slice of dblayer.DB that the screens use.
type Store interface {
	RegisterUser(ctx context.Context, params dblayer.RegisterUserParams) (string, error)
	SessionFromPassword(ctx context.Context, email, password string) (*dbtypes.Session, error)
	DeleteSession(ctx context.Context, cookie string) error
	UserFromSessionCookie(ctx context.Context, cookie string) (*dbtypes.User, error)
	UpdateUser(ctx context.Context, id string, upd dblayer.UserUpdate) error
	ListFoodsByOwner(ctx context.Context, ownerID string) ([]*dbtypes.Food, error)
	GetFood(ctx context.Context, id string) (*dbtypes.Food, error)
	CreateFood(ctx context.Context, food *dbtypes.Food) (string, error)
	UpdateFood(ctx context.Context, id string, upd dblayer.FoodUpdate) error
	DeleteFood(ctx context.Context, id string) error
}

// Images is the slice of imagestore.Store that the screens use.
type Images interface {
	Upload(ctx context.Context, bucket, object string, r io.Reader) error
	Remove(ctx context.Context, bucket string, objects ...string) error
	PublicURL(bucket, object string) string
}

type WebUI struct {
	store  Store
	images Images

	userImageBucket string
	foodImageBucket string
}

func New(store Store, images Images, userImageBucket, foodImageBucket string) *WebUI {
	return &WebUI{
		store:           store,
		images:          images,
		userImageBucket: userImageBucket,
		foodImageBucket: foodImageBucket,
	}
}

func (u *WebUI) Register(m *http.ServeMux) {
	m.HandleFunc("/", u.homeHandler)
	m.HandleFunc("/log-in", u.logInHandler)
	m.HandleFunc("/log-out", u.logOutHandler)
	m.HandleFunc("/register", u.registerHandler)
	m.HandleFunc("/dashboard", u.dashboardHandler)
	m.HandleFunc("/add-food", u.addFoodHandler)
	m.HandleFunc("/update-food", u.updateFoodHandler)
	m.HandleFunc("/delete-food", u.deleteFoodHandler)
	m.HandleFunc("/profile", u.profileHandler)
	m.HandleFunc("/profile/remove-image", u.removeProfileImageHandler)
}

// getLoggedInUser loads the user associated with the session cookie in the
// request, if it exists.
func (u *WebUI) getLoggedInUser(ctx context.Context, r *http.Request) (*dbtypes.User, error) {
	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		// No session cookie; user is not logged in.
		return nil, nil
	}

	user, err := u.store.UserFromSessionCookie(ctx, sessionCookie.Value)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// checkSession resolves the session cookie to a user.  If the user is not
// logged in, it redirects to the login screen and returns nil; the caller
// must return without touching any adapter.
func (u *WebUI) checkSession(ctx context.Context, w http.ResponseWriter, r *http.Request) *dbtypes.User {
	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		// User is not logged in.  Send them to log in.
		glog.Infof("No logged-in user because there was no session cookie.  Redirecting to login.")
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return nil
	}

	user, err := u.store.UserFromSessionCookie(ctx, sessionCookie.Value)
	if err != nil {
		glog.Errorf("Error while validating session cookie: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return nil
	}
	if user == nil {
		// There was a session cookie, but it corresponds to a missing or
		// expired session.
		glog.Infof("Session cookie didn't correspond to an active session.")
		http.Redirect(w, r, "/log-in", http.StatusFound)
		return nil
	}

	return user
}

func writePage(w http.ResponseWriter, content []byte, err error) {
	if err != nil {
		glog.Errorf("Error while executing template: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(content); err != nil {
		// It's too late to write an error to the HTTP response.
		glog.Errorf("Error while writing output: %v", err)
		return
	}
}

// homeHandler renders the home page.
func (u *WebUI) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	params := &uitemplates.HomeParams{}

	user, err := u.getLoggedInUser(r.Context(), r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user != nil {
		params.ActiveUser.LoggedIn = true
		params.ActiveUser.Email = user.Email
	}

	content, err := uitemplates.HomePage(params)
	writePage(w, content, err)
}

func (u *WebUI) logInHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-in" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user, err := u.getLoggedInUser(ctx, r)
	if err != nil {
		glog.Errorf("Error while getting logged-in user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	if user != nil {
		// User is already logged in.  Send them to the dashboard.
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		email := r.PostForm.Get("email")
		password := r.PostForm.Get("password")

		session, err := u.store.SessionFromPassword(ctx, email, password)
		if err != nil {
			userErr := logInUserError(err)
			if userErr == "" {
				glog.Errorf("Error while processing log in form: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			content, tmplErr := uitemplates.LogInPage(&uitemplates.LogInParams{
				Email:     email,
				UserError: userErr,
			})
			writePage(w, content, tmplErr)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    session.Cookie,
			SameSite: http.SameSiteStrictMode,
			Expires:  session.Expires,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	content, err := uitemplates.LogInPage(&uitemplates.LogInParams{})
	writePage(w, content, err)
}

// logInUserError maps login failures that are the user's fault to a message
// for the form.  Anything else returns "" and is treated as an internal
// error.
func logInUserError(err error) string {
	switch {
	case errors.Is(err, dblayer.ErrEmailMustNotBeEmpty):
		return "Email must not be empty"
	case errors.Is(err, dblayer.ErrPasswordMustNotBeEmpty):
		return "Password must not be empty"
	case errors.Is(err, dblayer.ErrUnknownUser):
		return "No account with that email"
	case errors.Is(err, dblayer.ErrWrongPassword):
		return "Wrong password"
	}
	return ""
}

func (u *WebUI) logOutHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/log-out" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	if r.Method == http.MethodPost {
		for _, cookie := range r.Cookies() {
			if cookie.Name != sessionCookieName {
				continue
			}
			if err := u.store.DeleteSession(ctx, cookie.Value); err != nil {
				glog.Errorf("Error while deleting session: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:    sessionCookieName,
			Value:   "",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		})
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	content, err := uitemplates.LogOutPage(&uitemplates.LogOutParams{})
	writePage(w, content, err)
}

func (u *WebUI) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/register" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	if r.Method != http.MethodPost {
		content, err := uitemplates.RegisterPage(&uitemplates.RegisterParams{Genders: genders})
		writePage(w, content, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.RegisterParams{
		FullName: r.PostFormValue("full-name"),
		Email:    r.PostFormValue("email"),
		Gender:   r.PostFormValue("gender"),
		Genders:  genders,
	}
	password := r.PostFormValue("password")

	// All required fields are checked before any adapter is contacted.
	userErr := ""
	switch {
	case params.FullName == "":
		userErr = "Full name must not be empty"
	case params.Email == "":
		userErr = "Email must not be empty"
	case password == "":
		userErr = "Password must not be empty"
	case params.Gender == "":
		userErr = "Please choose a gender"
	}
	if userErr != "" {
		params.UserError = userErr
		content, err := uitemplates.RegisterPage(params)
		writePage(w, content, err)
		return
	}

	imageURL := ""
	file, header, err := r.FormFile("profile-image")
	if err == nil {
		defer file.Close()

		object := imagestore.RegisterObjectName(header.Filename)
		if err := u.images.Upload(ctx, u.userImageBucket, object, file); err != nil {
			glog.Errorf("Error while uploading profile image: %v", err)
			params.UserError = "Could not upload the profile image"
			content, tmplErr := uitemplates.RegisterPage(params)
			writePage(w, content, tmplErr)
			return
		}
		imageURL = u.images.PublicURL(u.userImageBucket, object)
	} else if err != http.ErrMissingFile {
		glog.Errorf("Error while reading profile image from form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	// If the create fails after a successful upload, the uploaded object is
	// orphaned; the poller sweeps those up.
	_, err = u.store.RegisterUser(ctx, dblayer.RegisterUserParams{
		FullName: params.FullName,
		Email:    params.Email,
		Password: password,
		Gender:   params.Gender,
		ImageURL: imageURL,
	})
	if err != nil {
		if errors.Is(err, dblayer.ErrEmailAlreadyRegistered) {
			params.UserError = "That email is already registered"
			content, tmplErr := uitemplates.RegisterPage(params)
			writePage(w, content, tmplErr)
			return
		}
		glog.Errorf("Error while registering user: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
