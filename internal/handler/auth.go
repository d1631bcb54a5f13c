package handler

import (
    "context"   // provides context with cancellation for DB calls
    "errors"    // sentinel comparison for repository errors
    "net/http"  // HTTP status codes and primitives
    "strings"   // string trimming
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/config"     // app configuration
    "github.com/serandib/plaza/internal/model"      // principal models and role tags
    "github.com/serandib/plaza/internal/repository" // DB repositories
    "github.com/serandib/plaza/internal/utils"      // hashing and token issuing
)

// genericLoginError is the single failure body for every login failure.
// Unknown email and wrong password must be indistinguishable to a caller,
// for either principal space, so there is exactly one message.
const genericLoginError = "invalid email or password"

// AuthHandler bundles dependencies for registration, login and profile
// endpoints. Users and Shops are the two principal spaces sharing the email
// login namespace; Login probes them in that fixed order.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Shops *repository.ShopRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.ShopRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Shops: s}
}

// ----- DTOs -----

type registerUserReq struct {
	Fullname           string `json:"fullname"`
	Email              string `json:"email"`
	DOB                string `json:"dob"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	ShoppingPreference string `json:"shopping_preference"`
	Password           string `json:"password"`
}

type registerShopReq struct {
	OwnerName          string `json:"fullname"`
	OwnerEmail         string `json:"owner_email"`
	OwnerContact       string `json:"owner_contact"`
	Password           string `json:"password"`
	NIC                string `json:"nic"`
	BusinessRegNo      string `json:"business_reg_no"`
	TaxID              string `json:"tax_id"`
	ShopName           string `json:"shop_name"`
	Email              string `json:"email"`
	BusinessType       string `json:"business_type"`
	Category           string `json:"category"`
	Description        string `json:"description"`
	OperatingHoursFrom string `json:"operating_hrs_from"`
	OperatingHoursTo   string `json:"operating_hrs_to"`
	Location           string `json:"shop_location"`
	Contact            string `json:"shop_contact"`
	LogoURL            string `json:"logo_url"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID                 uint64 `json:"id"`
	Fullname           string `json:"fullname"`
	Email              string `json:"email"`
	DOB                string `json:"dob,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Address            string `json:"address,omitempty"`
	ShoppingPreference string `json:"shopping_preference,omitempty"`
	PhotoURL           string `json:"photo_url,omitempty"`
	Role               int    `json:"role"`
}

type shopPart struct {
	ID           uint64 `json:"id"`
	ShopName     string `json:"shop_name"`
	Email        string `json:"email"`
	OwnerName    string `json:"owner_name"`
	Category     string `json:"category"`
	Description  string `json:"description,omitempty"`
	Location     string `json:"location,omitempty"`
	Contact      string `json:"contact,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID: u.ID, Fullname: u.Fullname, Email: u.Email, DOB: u.DOB, Phone: u.Phone,
		Address: u.Address, ShoppingPreference: u.ShoppingPreference,
		PhotoURL: u.PhotoURL, Role: u.Role,
	}
}

func toShopPart(s model.Shop) shopPart {
	return shopPart{
		ID: s.ID, ShopName: s.ShopName, Email: s.Email, OwnerName: s.OwnerName,
		Category: s.Category, Description: s.Description, Location: s.Location,
		Contact: s.Contact, LogoURL: s.LogoURL,
	}
}

// RegisterUser creates an end-user principal. Validation failures name the
// missing field; a duplicate email is a 409.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req registerUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case strings.TrimSpace(req.Fullname) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full name is required"})
	case req.Email == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	case strings.TrimSpace(req.DOB) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date of birth is required"})
	case strings.TrimSpace(req.Phone) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone number is required"})
	case strings.TrimSpace(req.Address) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address is required"})
	case req.Password == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	case len(req.Password) < 8:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.User{
		Fullname:           req.Fullname,
		Email:              req.Email,
		DOB:                req.DOB,
		Phone:              req.Phone,
		Address:            req.Address,
		ShoppingPreference: req.ShoppingPreference,
		Role:               model.RoleUser,
	}
	uid, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered, please login"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u.ID = uid

	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u)})
}

// RegisterShop creates a shop-owner principal together with its storefront
// profile. The login email shares a namespace with user emails but is only
// unique within the shops table.
func (h *AuthHandler) RegisterShop(c echo.Context) error {
	var req registerShopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case strings.TrimSpace(req.OwnerName) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner name is required"})
	case req.Email == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	case strings.TrimSpace(req.ShopName) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop name is required"})
	case req.Password == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	case len(req.Password) < 8:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := model.Shop{
		OwnerName:          req.OwnerName,
		OwnerEmail:         req.OwnerEmail,
		OwnerContact:       req.OwnerContact,
		NIC:                req.NIC,
		BusinessRegNo:      req.BusinessRegNo,
		TaxID:              req.TaxID,
		ShopName:           req.ShopName,
		Email:              req.Email,
		BusinessType:       req.BusinessType,
		Category:           req.Category,
		Description:        req.Description,
		OperatingHoursFrom: req.OperatingHoursFrom,
		OperatingHoursTo:   req.OperatingHoursTo,
		Location:           req.Location,
		Contact:            req.Contact,
		LogoURL:            req.LogoURL,
	}
	sid, err := h.Shops.Create(ctx, s, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered, please login"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create shop failed"})
	}
	s.ID = sid

	return c.JSON(http.StatusCreated, echo.Map{"shop": toShopPart(s)})
}

// Login resolves a credential pair against both principal spaces: users
// first, then shops. The password is compared only when a row exists, and
// the first space that both exists and verifies wins, so an email
// registered in both always authenticates as the user. Every failure path
// returns the same status and body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if utils.VerifyPassword(u.PasswordHash, req.Password) {
			tok, terr := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.SessionTTLDays)
			if terr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
			}
			return c.JSON(http.StatusOK, echo.Map{
				"token": tok.Token,
				"role":  u.Role,
				"user":  toUserPart(u),
			})
		}
		// fall through to the shop space: the same email may exist there
		// with the password being tried.
	case !errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s, err := h.Shops.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if utils.VerifyPassword(s.PasswordHash, req.Password) {
			tok, terr := utils.NewSessionToken(h.Cfg.JWTSecret, s.ID, model.RoleShopOwner, h.Cfg.SessionTTLDays)
			if terr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
			}
			return c.JSON(http.StatusOK, echo.Map{
				"token": tok.Token,
				"role":  model.RoleShopOwner,
				"shop":  toShopPart(s),
			})
		}
	case !errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": genericLoginError})
}

// Me returns the authenticated principal's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

type updateUserReq struct {
	Fullname           string `json:"fullname"`
	Email              string `json:"email"`
	DOB                string `json:"dob"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	ShoppingPreference string `json:"shopping_preference"`
	Password           string `json:"password"`
}

// UpdateUserProfile updates the authenticated user's profile. Empty fields
// keep their current value; a non-empty password must be at least 8
// characters and is re-hashed.
func (h *AuthHandler) UpdateUserProfile(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password != "" && len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Fullname != "" {
		u.Fullname = req.Fullname
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.DOB != "" {
		u.DOB = req.DOB
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Address != "" {
		u.Address = req.Address
	}
	if req.ShoppingPreference != "" {
		u.ShoppingPreference = req.ShoppingPreference
	}

	var newHash string
	if req.Password != "" {
		newHash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
	}
	if err := h.Users.UpdateProfile(ctx, uid, u, newHash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// DeleteUserProfile removes the authenticated user's account.
func (h *AuthHandler) DeleteUserProfile(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// UpdateShopProfile updates the authenticated shop owner's storefront.
func (h *AuthHandler) UpdateShopProfile(c echo.Context) error {
	sid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req registerShopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password != "" && len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Shops.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.OwnerName != "" {
		s.OwnerName = req.OwnerName
	}
	if req.OwnerEmail != "" {
		s.OwnerEmail = req.OwnerEmail
	}
	if req.OwnerContact != "" {
		s.OwnerContact = req.OwnerContact
	}
	if req.NIC != "" {
		s.NIC = req.NIC
	}
	if req.BusinessRegNo != "" {
		s.BusinessRegNo = req.BusinessRegNo
	}
	if req.TaxID != "" {
		s.TaxID = req.TaxID
	}
	if req.ShopName != "" {
		s.ShopName = req.ShopName
	}
	if req.Email != "" {
		s.Email = req.Email
	}
	if req.BusinessType != "" {
		s.BusinessType = req.BusinessType
	}
	if req.Category != "" {
		s.Category = req.Category
	}
	if req.Description != "" {
		s.Description = req.Description
	}
	if req.OperatingHoursFrom != "" {
		s.OperatingHoursFrom = req.OperatingHoursFrom
	}
	if req.OperatingHoursTo != "" {
		s.OperatingHoursTo = req.OperatingHoursTo
	}
	if req.Location != "" {
		s.Location = req.Location
	}
	if req.Contact != "" {
		s.Contact = req.Contact
	}
	if req.LogoURL != "" {
		s.LogoURL = req.LogoURL
	}

	var newHash string
	if req.Password != "" {
		newHash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
	}
	if err := h.Shops.UpdateProfile(ctx, sid, s, newHash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shop": toShopPart(s)})
}

// DeleteShopProfile removes the authenticated shop owner's account.
func (h *AuthHandler) DeleteShopProfile(c echo.Context) error {
	sid, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Shops.Delete(ctx, sid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shop deleted"})
}
