package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/daybreakhq/accounts/social/google"
)

// Controller exposes the account backend over HTTP. Everything it needs is
// injected; RegisterRoutes mounts the API under /api/v1.
type Controller struct {
	Auth     *AuthFlows
	Accounts *AccountFlows
	Gate     *Gate
	Tokens   TokenService
	Google   *google.Provider
	Logger   Logger
}

// ControllerOption customizes controller construction.
type ControllerOption func(*Controller)

// WithControllerLogger overrides the default logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithGoogleProvider enables the Google login route.
func WithGoogleProvider(provider *google.Provider) ControllerOption {
	return func(c *Controller) {
		c.Google = provider
	}
}

// NewController builds the HTTP controller.
func NewController(auth *AuthFlows, accounts *AccountFlows, gate *Gate, tokens TokenService, opts ...ControllerOption) *Controller {
	c := &Controller{
		Auth:     auth,
		Accounts: accounts,
		Gate:     gate,
		Tokens:   tokens,
		Logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// RegisterRoutes mounts the API. Route guards mirror the original surface:
// the listing is admin-only, profile mutation and logout are self-only with
// an admin override, and sign-up plus both logins are public.
func (ctrl *Controller) RegisterRoutes(app *fiber.App) {
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ctrl.Login)
	if ctrl.Google != nil {
		authGroup.Get("/google/login", ctrl.GoogleLogin)
	}

	users := app.Group("/api/v1/users")
	users.Post("/", ctrl.SignUp)
	users.Get("/", ctrl.Gate.Protect(Policy{RequiredRole: RoleAdmin}, nil), ctrl.List)
	users.Put("/", ctrl.Gate.Protect(Policy{RequiredRole: RoleNormal, SelfOnly: true}, TargetFromBody), ctrl.Update)
	users.Delete("/", ctrl.Gate.Protect(Policy{RequiredRole: RoleNormal, SelfOnly: true}, TargetFromBody), ctrl.Exit)
	users.Delete("/logout", ctrl.Gate.Protect(Policy{RequiredRole: RoleNormal, SelfOnly: true}, TargetFromBody), ctrl.Logout)
	users.Post("/dormancy/release", ctrl.ReleaseDormancy)
	users.Put("/:id/stop", ctrl.Gate.Protect(Policy{RequiredRole: RoleAdmin}, nil), ctrl.Stop)
	users.Put("/:id/unstop", ctrl.Gate.Protect(Policy{RequiredRole: RoleAdmin}, nil), ctrl.Unstop)
}

// LoginPayload is the local login form.
type LoginPayload struct {
	Email    string `json:"user_email" form:"user_email"`
	Password string `json:"user_password" form:"user_password"`
}

// Validate checks the login form.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// Login handles POST /api/v1/auth/login.
func (ctrl *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "failed to parse login form")
	}
	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	result, err := ctrl.Auth.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	if result.Dormant {
		return c.Status(fiber.StatusFound).JSON(fiber.Map{
			"err":          "please release dormant condition",
			"code":         fiber.StatusFound,
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
			"user_id":      result.AccountID,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":          "login success",
		"code":         fiber.StatusOK,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"user_id":      result.AccountID,
	})
}

// GoogleLogin handles GET /api/v1/auth/google/login?code=...
func (ctrl *Controller) GoogleLogin(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return badRequest(nil, "authorization code is required")
	}

	profile, err := ctrl.Google.Exchange(c.UserContext(), code)
	if err != nil {
		ctrl.Logger.Error("google exchange failed", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryAuth, "social login failed").
			WithCode(goerrors.CodeUnauthorized)
	}

	result, err := ctrl.Auth.SocialLogin(c.UserContext(), SocialProfile{
		Email: profile.Email,
		Name:  profile.Name,
	}, ctrl.Google.Name())
	if err != nil {
		return err
	}

	switch {
	case result.FirstLogin:
		return c.Status(fiber.StatusMovedPermanently).JSON(fiber.Map{
			"err":          "sign-up complete, please insert additional information",
			"code":         fiber.StatusMovedPermanently,
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
			"user_id":      result.AccountID,
		})
	case result.Dormant:
		return c.Status(fiber.StatusFound).JSON(fiber.Map{
			"err":          "please release dormant condition",
			"code":         fiber.StatusFound,
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
			"user_id":      result.AccountID,
		})
	default:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"msg":          "login success",
			"code":         fiber.StatusOK,
			"accessToken":  result.AccessToken,
			"refreshToken": result.RefreshToken,
			"user_id":      result.AccountID,
		})
	}
}

// SignUpPayload is the registration form.
type SignUpPayload struct {
	Email    string `json:"user_email" form:"user_email"`
	Password string `json:"user_password" form:"user_password"`
	Name     string `json:"user_name" form:"user_name"`
}

// Validate checks the registration form: well-formed email, password of at
// least 8 characters, name of at least 2.
func (p SignUpPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Name, validation.Required, validation.Length(2, 100)),
	)
}

// SignUp handles POST /api/v1/users.
func (ctrl *Controller) SignUp(c *fiber.Ctx) error {
	payload := new(SignUpPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "failed to parse registration form")
	}
	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	if _, err := ctrl.Accounts.SignUp(c.UserContext(), SignUpInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "sign-up complete",
		"code": fiber.StatusOK,
	})
}

// List handles GET /api/v1/users (admin only).
func (ctrl *Controller) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	result, err := ctrl.Accounts.List(c.UserContext(), c.Query("user_email"), page)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "success",
		"code": fiber.StatusOK,
		"data": fiber.Map{
			"userList": result.Accounts,
			"total":    result.Total,
			"page":     result.Page,
		},
	})
}

// UpdatePayload is the profile update form. user_id names the target
// account; the gate has already checked ownership against it.
type UpdatePayload struct {
	UserID   int64  `json:"user_id" form:"user_id"`
	Name     string `json:"user_name" form:"user_name"`
	Password string `json:"user_password" form:"user_password"`
}

// Validate checks the update form; empty fields mean "leave untouched".
func (p UpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserID, validation.Required),
		validation.Field(&p.Name, validation.Length(2, 100)),
		validation.Field(&p.Password, validation.Length(8, 100)),
	)
}

// Update handles PUT /api/v1/users (self or admin).
func (ctrl *Controller) Update(c *fiber.Ctx) error {
	payload := new(UpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "failed to parse update form")
	}
	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	if err := ctrl.Accounts.Update(c.UserContext(), UpdateInput{
		ID:       payload.UserID,
		Name:     payload.Name,
		Password: payload.Password,
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "update success",
		"code": fiber.StatusOK,
	})
}

// Exit handles DELETE /api/v1/users (self or admin): soft delete plus
// revocation of any outstanding refresh token.
func (ctrl *Controller) Exit(c *fiber.Ctx) error {
	target := TargetFromBody(c)

	if err := ctrl.Accounts.Exit(c.UserContext(), target); err != nil {
		return err
	}

	if err := ctrl.Auth.Logout(c.UserContext(), target); err != nil {
		ctrl.Logger.Warn("exit could not revoke session", "account_id", target, "error", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "exit success",
		"code": fiber.StatusOK,
	})
}

// Logout handles DELETE /api/v1/users/logout (self or admin).
func (ctrl *Controller) Logout(c *fiber.Ctx) error {
	if err := ctrl.Auth.Logout(c.UserContext(), TargetFromBody(c)); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "logout success",
		"code": fiber.StatusOK,
	})
}

// ReleaseDormancy handles POST /api/v1/users/dormancy/release. The gate
// middleware would bounce a dormant claim set straight back to this very
// step, so the route verifies the access token itself and releases the
// caller's own account.
func (ctrl *Controller) ReleaseDormancy(c *fiber.Ctx) error {
	raw, err := ParseBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	claims, err := ctrl.Tokens.Verify(raw)
	if err != nil {
		return err
	}
	if claims.Kind != TokenAccess {
		return ErrInvalidToken
	}

	if err := ctrl.Accounts.ReleaseDormancy(c.UserContext(), claims.AccountID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "dormancy released",
		"code": fiber.StatusOK,
	})
}

// Stop handles PUT /api/v1/users/:id/stop (admin only).
func (ctrl *Controller) Stop(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(err, "account id must be a positive number")
	}

	if err := ctrl.Accounts.Stop(c.UserContext(), int64(id)); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "account stopped",
		"code": fiber.StatusOK,
	})
}

// Unstop handles PUT /api/v1/users/:id/unstop (admin only).
func (ctrl *Controller) Unstop(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return badRequest(err, "account id must be a positive number")
	}

	if err := ctrl.Accounts.Unstop(c.UserContext(), int64(id)); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"msg":  "account unstopped",
		"code": fiber.StatusOK,
	})
}

func badRequest(err error, message string) error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryBadInput).WithCode(goerrors.CodeBadRequest)
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, message).WithCode(goerrors.CodeBadRequest)
}
