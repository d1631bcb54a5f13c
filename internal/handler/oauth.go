package handler

import (
    "context"        // provides context with cancellation for HTTP and DB calls
    "crypto/rand"    // random state nonce
    "encoding/hex"   // state nonce encoding
    "encoding/json"  // decoding the userinfo response
    "errors"         // sentinel comparison for repository errors
    "fmt"            // redirect URL formatting
    "net/http"       // HTTP status codes and cookies
    "net/url"        // query escaping for the redirect
    "time"           // timeouts and cookie lifetimes

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "golang.org/x/oauth2"         // OAuth2 authorization-code flow
    "golang.org/x/oauth2/google"  // Google OAuth2 endpoint

    "github.com/serandib/plaza/internal/config"     // app configuration
    "github.com/serandib/plaza/internal/model"      // principal models
    "github.com/serandib/plaza/internal/repository" // DB repositories
    "github.com/serandib/plaza/internal/utils"      // session token issuing
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleProfile is the subset of Google's userinfo payload we consume.
type googleProfile struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// OAuthHandler implements federated login with Google. Federated identities
// land in the end-user space only; a Google email that matches an existing
// user logs into that account, otherwise a new account is created with an
// unguessable password so it stays federated-only until a reset.
type OAuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	conf  *oauth2.Config
}

func NewOAuthHandler(cfg config.Config, u *repository.UserRepo) *OAuthHandler {
	return &OAuthHandler{
		Cfg:   cfg,
		Users: u,
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Enabled reports whether Google credentials are configured. The router
// skips the federated routes entirely when they are not.
func (h *OAuthHandler) Enabled() bool {
	return h.Cfg.GoogleClientID != "" && h.Cfg.GoogleClientSecret != ""
}

// Redirect starts the authorization-code flow. A random state nonce is set
// as a short-lived cookie and must round-trip through Google untouched.
func (h *OAuthHandler) Redirect(c echo.Context) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "state generation failed"})
	}
	state := hex.EncodeToString(buf)

	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.conf.AuthCodeURL(state))
}

// Callback completes the flow: verify state, exchange the code, fetch the
// Google profile, then resolve or create the local account and hand the
// browser back to the front end with a session token in the query string.
func (h *OAuthHandler) Callback(c echo.Context) error {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || c.QueryParam("state") != stateCookie.Value {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state mismatch"})
	}
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing code"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tok, err := h.conf.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "code exchange failed"})
	}
	prof, err := fetchGoogleProfile(ctx, h.conf.Client(ctx, tok))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "profile fetch failed"})
	}
	if prof.Email == "" || !prof.VerifiedEmail {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "google account has no verified email"})
	}

	u, err := h.resolve(ctx, prof)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "account resolution failed"})
	}

	session, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	dest := fmt.Sprintf("%s/login?token=%s&user=%s",
		h.Cfg.ClientURL, url.QueryEscape(session.Token), url.QueryEscape(u.Email))
	return c.Redirect(http.StatusFound, dest)
}

// resolve maps a verified Google profile onto the users table. An existing
// row with the same email is reused as-is, which merges the federated
// identity into a password account sharing that address.
func (h *OAuthHandler) resolve(ctx context.Context, prof googleProfile) (model.User, error) {
	u, err := h.Users.GetByEmail(ctx, prof.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}
	id, err := h.Users.CreateFederated(ctx, prof.Name, prof.Email, prof.Picture, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// lost a race with a concurrent signup for the same address
			return h.Users.GetByEmail(ctx, prof.Email)
		}
		return model.User{}, err
	}
	return h.Users.GetByID(ctx, id)
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var prof googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&prof); err != nil {
		return googleProfile{}, err
	}
	return prof, nil
}
