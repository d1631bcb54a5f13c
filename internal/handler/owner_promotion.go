package handler

import (
    "context"   // provides context with cancellation for DB calls
    "net/http"  // HTTP status codes and primitives
    "strings"   // string trimming
    "time"      // timeouts and date parsing

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/repository" // DB repositories
)

// OwnerPromotionHandler manages a shop owner's promotions. Like products,
// every write is scoped by the shop id from the session token.
type OwnerPromotionHandler struct {
	Promos *repository.PromotionRepo
}

func NewOwnerPromotionHandler(r *repository.PromotionRepo) *OwnerPromotionHandler {
	return &OwnerPromotionHandler{Promos: r}
}

type promotionReq struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DiscountType  string `json:"discount_type"`
	DiscountValue uint32 `json:"discount_value"`
	StartDate     string `json:"start_date"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`   // YYYY-MM-DD
	Terms         string `json:"terms"`
	PromoCode     string `json:"promo_code"`
	ImageURL      string `json:"image_url"`
	IsActive      *bool  `json:"is_active"`
}

// parse validates the request and converts it to a repository row. The
// date strings use the storefront's YYYY-MM-DD convention.
func (req *promotionReq) parse() (*repository.Promotion, string) {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return nil, "title is required"
	case req.DiscountType != "percentage" && req.DiscountType != "fixed":
		return nil, "discount type must be percentage or fixed"
	case req.DiscountValue == 0:
		return nil, "discount value is required"
	case req.DiscountType == "percentage" && req.DiscountValue > 100:
		return nil, "percentage discount cannot exceed 100"
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, "invalid start date"
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, "invalid end date"
	}
	if end.Before(start) {
		return nil, "end date must not be before start date"
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &repository.Promotion{
		Title:         req.Title,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		StartDate:     start,
		EndDate:       end,
		Terms:         req.Terms,
		PromoCode:     req.PromoCode,
		ImageURL:      req.ImageURL,
		IsActive:      active,
	}, ""
}

// Create adds a promotion for the authenticated shop.
func (h *OwnerPromotionHandler) Create(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req promotionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p.ShopID = shopID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Promos.Create(ctx, p); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a promotion with this title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"promotion": p})
}

// Update replaces a promotion's details.
func (h *OwnerPromotionHandler) Update(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req promotionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Promos.Update(ctx, id, shopID, p); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "promotion updated"})
}

// Delete removes a promotion from the authenticated shop.
func (h *OwnerPromotionHandler) Delete(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Promos.Delete(ctx, id, shopID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "promotion deleted"})
}

// ListMine returns the authenticated shop's promotions, active or not.
func (h *OwnerPromotionHandler) ListMine(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	promos, err := h.Promos.ListByShop(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": promos})
}
