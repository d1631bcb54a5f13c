package handler

import (
    "context"   // provides context with cancellation for DB calls
    "net/http"  // HTTP status codes and primitives
    "strings"   // string trimming
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/model"      // role constants
    "github.com/serandib/plaza/internal/repository" // DB repositories
)

// LostFoundHandler covers the lost-and-found board. Reports are filed by
// signed-in users, browsable by everyone, and deletable by their reporter
// or an admin. Claim notifications attach a finder's contact details to a
// report.
type LostFoundHandler struct {
	Items *repository.LostFoundRepo
	Users *repository.UserRepo
}

func NewLostFoundHandler(i *repository.LostFoundRepo, u *repository.UserRepo) *LostFoundHandler {
	return &LostFoundHandler{Items: i, Users: u}
}

type lostItemReq struct {
	ReporterName string `json:"reporter_name"`
	Phone        string `json:"phone"`
	ReporterRole string `json:"reporter_role"` // "lost" | "found"
	ItemName     string `json:"item_name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
}

// Create files a report. The reporter's email is taken from their account,
// not the request body, so deletion ownership can't be spoofed.
func (h *LostFoundHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req lostItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch {
	case strings.TrimSpace(req.ReporterName) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reporter name is required"})
	case strings.TrimSpace(req.ItemName) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item name is required"})
	case req.ReporterRole != "lost" && req.ReporterRole != "found":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reporter role must be lost or found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	it := &repository.LostItem{
		ReporterName: req.ReporterName,
		Phone:        req.Phone,
		ReporterRole: req.ReporterRole,
		Email:        u.Email,
		ItemName:     req.ItemName,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
	}
	if err := h.Items.Create(ctx, it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": it})
}

// List returns reports, optionally filtered by a keyword against the item
// name. Public.
func (h *LostFoundHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.ListAll(ctx, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one report with its claim notifications.
func (h *LostFoundHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	notifications, err := h.Items.ListNotify(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": it, "notifications": notifications})
}

// Delete removes a report. Admins may delete any report; other users only
// their own, matched by account email.
func (h *LostFoundHandler) Delete(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reporterEmail := ""
	if role, _ := c.Get("role").(int); role != model.RoleAdmin {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		reporterEmail = u.Email
	}

	if err := h.Items.Delete(ctx, id, reporterEmail); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your report"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "report deleted"})
}

type lostNotifyReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Notify attaches a claim notification to a report so the reporter can be
// contacted.
func (h *LostFoundHandler) Notify(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req lostNotifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch {
	case strings.TrimSpace(req.Name) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	case strings.TrimSpace(req.Email) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Items.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	n := &repository.LostItemNotify{
		LostItemID: id,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
	}
	if err := h.Items.AddNotify(ctx, n); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "notify failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "the reporter has been notified"})
}

// DeleteNotify removes one claim notification (admin only).
func (h *LostFoundHandler) DeleteNotify(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.DeleteNotify(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification deleted"})
}
