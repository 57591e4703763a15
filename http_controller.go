package users

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// Image MIME types accepted for profile uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UserController exposes the user management routes on a fiber router.
type UserController struct {
	Auth      *Authenticator
	Tokens    *TokenService
	Repo      Users
	Passwords PasswordAuthenticator
	Mailer    Mailer
	Images    ProfileImageStore
	BaseURL   string
	Logger    Logger

	httpClient *http.Client
	clock      func() time.Time
}

// NewUserController will create a new UserController
func NewUserController(auth *Authenticator, tokens *TokenService, repo Users, mailer Mailer, images ProfileImageStore, baseURL string, logger Logger) *UserController {
	if logger == nil {
		logger = defLogger{}
	}
	return &UserController{
		Auth:       auth,
		Tokens:     tokens,
		Repo:       repo,
		Passwords:  NewPasswordAuthenticator(),
		Mailer:     mailer,
		Images:     images,
		BaseURL:    baseURL,
		Logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		clock:      time.Now,
	}
}

// RegisterRoutes mounts the controller under /user on the given router.
func (ctrl *UserController) RegisterRoutes(app fiber.Router) {
	group := app.Group("/user")

	group.Post("/login", ctrl.Login)
	group.Post("/register", ctrl.Register)
	group.Get("/reset-password/:email", ctrl.ResetPassword)
	group.Get("/image/:username/:filename", ctrl.ProfileImage)
	group.Get("/image/profile/:username", ctrl.TempProfileImage)

	group.Get("/list", RequireAuthority(AuthorityUserRead), ctrl.List)
	group.Get("/find/:username", RequireAuthority(AuthorityUserRead), ctrl.Find)
	group.Post("/add", RequireAuthority(AuthorityUserCreate), ctrl.Add)
	group.Post("/update", RequireAuthority(AuthorityUserUpdate), ctrl.Update)
	group.Post("/update-profile-image", RequireAuthority(AuthorityUserUpdate), ctrl.UpdateProfileImage)
	group.Delete("/delete/:id", RequireAuthority(AuthorityUserDelete), ctrl.Delete)
}

// LoginPayload is the JSON body for POST /user/login.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// Login authenticates the credentials and returns the user record with a
// fresh token in the Jwt-Token response header.
func (ctrl *UserController) Login(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid login payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "login validation failed").
			WithCode(errors.CodeBadRequest)
	}

	user, token, err := ctrl.Auth.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	c.Set(JWTTokenHeader, token)

	return c.JSON(user)
}

// RegisterPayload is the JSON body for POST /user/register.
type RegisterPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Validate checks the payload
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required),
		validation.Field(&p.LastName, validation.Required),
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// Register self-registers a ROLE_USER account. The account password is
// generated server side and emailed to the new user; it never appears in
// the response.
func (ctrl *UserController) Register(c *fiber.Ctx) error {
	payload := RegisterPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid register payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "register validation failed").
			WithCode(errors.CodeBadRequest)
	}

	ctx := c.UserContext()

	if _, err := ctrl.validateNewUsernameAndEmail(ctx, "", payload.Username, payload.Email); err != nil {
		return err
	}

	password := GeneratePassword()
	hash, err := ctrl.Passwords.HashPassword(password)
	if err != nil {
		return err
	}

	userID, err := ctrl.newUserID(ctx)
	if err != nil {
		return err
	}

	now := ctrl.clock()
	user := &User{
		UserID:          userID,
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Username:        payload.Username,
		Email:           payload.Email,
		PasswordHash:    hash,
		ProfileImageURL: TempProfileImageURL(payload.Username),
		IsActive:        true,
		IsNotLocked:     true,
		JoinedAt:        &now,
	}
	user.AssignRole(RoleUser)

	user, err = ctrl.Repo.Save(ctx, user)
	if err != nil {
		return err
	}

	if err := ctrl.Mailer.SendNewPassword(ctx, user.FirstName, password, user.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Add creates a user on behalf of an administrator. Accepts a multipart
// form so a profile image can be attached in the same request.
func (ctrl *UserController) Add(c *fiber.Ctx) error {
	form, err := parseUserForm(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	if _, err := ctrl.validateNewUsernameAndEmail(ctx, "", form.Username, form.Email); err != nil {
		return err
	}

	password := GeneratePassword()
	hash, err := ctrl.Passwords.HashPassword(password)
	if err != nil {
		return err
	}

	userID, err := ctrl.newUserID(ctx)
	if err != nil {
		return err
	}

	now := ctrl.clock()
	user := &User{
		UserID:          userID,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Username:        form.Username,
		Email:           form.Email,
		PasswordHash:    hash,
		ProfileImageURL: TempProfileImageURL(form.Username),
		IsActive:        form.IsActive,
		IsNotLocked:     form.IsNotLocked,
		JoinedAt:        &now,
	}
	user.AssignRole(form.Role)

	user, err = ctrl.Repo.Save(ctx, user)
	if err != nil {
		return err
	}

	if form.ProfileImage != nil {
		if user, err = ctrl.saveProfileImage(ctx, user, form.ProfileImage); err != nil {
			return err
		}
	}

	if err := ctrl.Mailer.SendNewPassword(ctx, user.FirstName, password, user.Email); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Update modifies an existing user identified by the currentUsername form
// field. Username and email changes are validated against other accounts.
func (ctrl *UserController) Update(c *fiber.Ctx) error {
	currentUsername := c.FormValue("currentUsername")
	if currentUsername == "" {
		return errors.New("currentUsername is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	form, err := parseUserForm(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	user, err := ctrl.validateNewUsernameAndEmail(ctx, currentUsername, form.Username, form.Email)
	if err != nil {
		return err
	}

	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Username = form.Username
	user.Email = form.Email
	user.IsActive = form.IsActive
	user.IsNotLocked = form.IsNotLocked
	user.AssignRole(form.Role)

	user, err = ctrl.Repo.Save(ctx, user)
	if err != nil {
		return err
	}

	if form.ProfileImage != nil {
		if user, err = ctrl.saveProfileImage(ctx, user, form.ProfileImage); err != nil {
			return err
		}
	}

	return c.JSON(user)
}

// Find returns a single user by username.
func (ctrl *UserController) Find(c *fiber.Ctx) error {
	user, err := ctrl.Repo.FindByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// List returns every user, ordered by username.
func (ctrl *UserController) List(c *fiber.Ctx) error {
	records, err := ctrl.Repo.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(records)
}

// Delete removes a user by public identifier.
func (ctrl *UserController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Repo.DeleteByUserID(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return WriteHTTPResponse(c, fiber.StatusOK, "user deleted successfully")
}

// ResetPassword generates a new password for the account matching the email
// address and mails it out.
func (ctrl *UserController) ResetPassword(c *fiber.Ctx) error {
	email := c.Params("email")
	ctx := c.UserContext()

	user, err := ctrl.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return err
	}

	password := GeneratePassword()
	hash, err := ctrl.Passwords.HashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if _, err := ctrl.Repo.Save(ctx, user); err != nil {
		return err
	}

	if err := ctrl.Mailer.SendNewPassword(ctx, user.FirstName, password, user.Email); err != nil {
		return err
	}

	return WriteHTTPResponse(c, fiber.StatusOK, "an email with a new password was sent to: "+email)
}

// UpdateProfileImage replaces the profile image of the user named in the
// username form field.
func (ctrl *UserController) UpdateProfileImage(c *fiber.Ctx) error {
	username := c.FormValue("username")
	if username == "" {
		return errors.New("username is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	file, err := c.FormFile("profileImage")
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "profileImage file is required").
			WithCode(errors.CodeBadRequest)
	}

	ctx := c.UserContext()

	user, err := ctrl.Repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if user, err = ctrl.saveProfileImage(ctx, user, file); err != nil {
		return err
	}

	return c.JSON(user)
}

// ProfileImage serves a previously uploaded image from disk.
func (ctrl *UserController) ProfileImage(c *fiber.Ctx) error {
	username := c.Params("username")
	return c.SendFile(ctrl.Images.Path(username))
}

// TempProfileImage proxies the generated placeholder avatar so clients only
// ever talk to this service.
func (ctrl *UserController) TempProfileImage(c *fiber.Ctx) error {
	username := c.Params("username")

	res, err := ctrl.httpClient.Get(TempProfileImageURL(username))
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to fetch placeholder avatar")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read placeholder avatar")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

// validateNewUsernameAndEmail enforces username and email uniqueness. With a
// blank currentUsername it validates a brand new account and returns nil;
// otherwise it resolves the existing account, confirms the proposed values
// do not belong to anyone else, and returns the record.
func (ctrl *UserController) validateNewUsernameAndEmail(ctx context.Context, currentUsername, newUsername, newEmail string) (*User, error) {
	byUsername, err := ctrl.findOrNil(ctx, func() (*User, error) {
		return ctrl.Repo.FindByUsername(ctx, newUsername)
	})
	if err != nil {
		return nil, err
	}

	byEmail, err := ctrl.findOrNil(ctx, func() (*User, error) {
		return ctrl.Repo.FindByEmail(ctx, newEmail)
	})
	if err != nil {
		return nil, err
	}

	if currentUsername == "" {
		if byUsername != nil {
			return nil, ErrUsernameExists
		}
		if byEmail != nil {
			return nil, ErrEmailExists
		}
		return nil, nil
	}

	current, err := ctrl.Repo.FindByUsername(ctx, currentUsername)
	if err != nil {
		return nil, err
	}

	if byUsername != nil && byUsername.ID != current.ID {
		return nil, ErrUsernameExists
	}
	if byEmail != nil && byEmail.ID != current.ID {
		return nil, ErrEmailExists
	}

	return current, nil
}

func (ctrl *UserController) findOrNil(ctx context.Context, find func() (*User, error)) (*User, error) {
	user, err := find()
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// newUserID generates public identifiers until one is unused. Collisions on
// ten random digits are vanishingly rare so this loop almost never repeats.
func (ctrl *UserController) newUserID(ctx context.Context) (string, error) {
	for {
		candidate := GenerateUserID()
		_, err := ctrl.Repo.FindByUserID(ctx, candidate)
		if errors.Is(err, ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (ctrl *UserController) saveProfileImage(ctx context.Context, user *User, file *multipart.FileHeader) (*User, error) {
	if !allowedImageTypes[file.Header.Get(fiber.HeaderContentType)] {
		return nil, ErrNotAnImage
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to open uploaded file").
			WithCode(errors.CodeBadRequest)
	}
	defer src.Close()

	if _, err := ctrl.Images.Save(user.Username, src); err != nil {
		return nil, err
	}

	user.ProfileImageURL = ProfileImageURL(ctrl.BaseURL, user.Username)

	return ctrl.Repo.Save(ctx, user)
}

// userForm carries the multipart fields shared by Add and Update.
type userForm struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Role         Role
	IsActive     bool
	IsNotLocked  bool
	ProfileImage *multipart.FileHeader
}

// Validate checks the form
func (f userForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.FirstName, validation.Required),
		validation.Field(&f.LastName, validation.Required),
		validation.Field(&f.Username, validation.Required),
		validation.Field(&f.Email, validation.Required, is.Email),
	)
}

func parseUserForm(c *fiber.Ctx) (*userForm, error) {
	role, ok := ParseRole(c.FormValue("role"))
	if !ok {
		return nil, errors.New("invalid role: "+c.FormValue("role"), errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	form := &userForm{
		FirstName:   c.FormValue("firstName"),
		LastName:    c.FormValue("lastName"),
		Username:    c.FormValue("username"),
		Email:       c.FormValue("email"),
		Role:        role,
		IsActive:    c.FormValue("isActive") == "true",
		IsNotLocked: c.FormValue("isNonLocked") == "true",
	}

	if err := form.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "user form validation failed").
			WithCode(errors.CodeBadRequest)
	}

	if file, err := c.FormFile("profileImage"); err == nil {
		form.ProfileImage = file
	}

	return form, nil
}

// ErrorHandler translates errors raised by routes into the HTTPResponse
// envelope. Rich errors carry their own status code; anything unexpected
// becomes a 500 with a generic message.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			status := richErr.Code
			if status == 0 {
				status = fiber.StatusInternalServerError
			}
			return WriteHTTPResponse(c, status, richErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code == fiber.StatusMethodNotAllowed {
				return WriteHTTPResponse(c, fiberErr.Code, "this request method is not allowed on this endpoint")
			}
			return WriteHTTPResponse(c, fiberErr.Code, fiberErr.Message)
		}

		logger.Error("unhandled error: %v", err)

		return WriteHTTPResponse(c, fiber.StatusInternalServerError, "an error occurred while processing the request")
	}
}
