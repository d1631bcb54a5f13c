package handler

import (
    "context"   // provides context with cancellation for DB calls
    "errors"    // sentinel comparison for repository errors
    "fmt"       // reset link formatting
    "log"       // best-effort failure logging
    "net/http"  // HTTP status codes and primitives
    "strings"   // string trimming
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/config"     // app configuration
    "github.com/serandib/plaza/internal/repository" // DB repositories
    "github.com/serandib/plaza/internal/utils"      // token minting and digesting
)

// ResetMailer delivers a password-reset link out of band. The production
// implementation publishes to the mail queue; tests substitute a stub that
// captures the link.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// resetRequestOK is the one body every reset request returns, whether or
// not the email matched an account. Returning anything else would let a
// caller enumerate registered addresses.
const resetRequestOK = "if the email exists, a reset link has been sent"

// ResetHandler covers the forgot/reset password flow for both principal
// spaces. A raw token is minted only when the email matches a row; only
// its SHA-256 digest is ever stored.
type ResetHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Shops  *repository.ShopRepo
	Mailer ResetMailer
}

func NewResetHandler(cfg config.Config, u *repository.UserRepo, s *repository.ShopRepo, m ResetMailer) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Users: u, Shops: s, Mailer: m}
}

type resetRequestReq struct {
	Email string `json:"email"`
}

type resetPerformReq struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Request begins the reset flow. The response is the same 200 for known
// and unknown emails; the account probe, token mint and mail dispatch all
// happen behind it. Users are probed before shops, mirroring login.
func (h *ResetHandler) Request(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if u, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		h.issue(ctx, u.ID, req.Email, h.Users.SetResetToken)
	} else if s, err := h.Shops.GetByEmail(ctx, req.Email); err == nil {
		h.issue(ctx, s.ID, req.Email, h.Shops.SetResetToken)
	}
	// Unknown emails fall through with no state change and no mail.

	return c.JSON(http.StatusOK, echo.Map{"message": resetRequestOK})
}

// issue mints a fresh token, stores its digest (overwriting any prior
// pending token) and hands the raw link to the mailer. Failures are logged
// and swallowed: the caller already committed to the generic 200.
func (h *ResetHandler) issue(ctx context.Context, id uint64, email string, store func(context.Context, uint64, string, time.Time) error) {
	tok, err := utils.NewResetToken(h.Cfg.ResetTTLMin)
	if err != nil {
		log.Printf("reset: mint token for %s: %v", email, err)
		return
	}
	if err := store(ctx, id, utils.HashResetRaw(tok.Raw), tok.Exp); err != nil {
		log.Printf("reset: store token for %s: %v", email, err)
		return
	}
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", h.Cfg.ClientURL, tok.Raw, email)
	if err := h.Mailer.SendPasswordReset(ctx, email, link); err != nil {
		log.Printf("reset: send mail to %s: %v", email, err)
		if h.Cfg.Env != "prod" {
			// dev fallback so the flow stays usable without a broker
			log.Printf("reset: fallback link for %s: %s", email, link)
		}
	}
}

// Perform redeems a reset token. All request-shape validation happens
// before any DB write; the redemption itself is a single conditional
// update keyed on email, token digest and expiry, so a token can only
// ever be consumed once even under concurrent attempts.
func (h *ResetHandler) Perform(c echo.Context) error {
	var req resetPerformReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Email == "" || req.Token == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and token are required"})
	case req.NewPassword == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password is required"})
	case len(req.NewPassword) < 8:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	case req.NewPassword != req.ConfirmPassword:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}

	newHash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	digest := utils.HashResetRaw(req.Token)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.RedeemResetToken(ctx, req.Email, digest, newHash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		err = h.Shops.RedeemResetToken(ctx, req.Email, digest, newHash)
	}
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
