package handler

import (
    "context"   // provides context with cancellation for DB calls
    "net/http"  // HTTP status codes and primitives
    "strings"   // string trimming
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/repository" // DB repositories
)

// OwnerProductHandler manages a shop owner's own inventory. The owning shop
// id always comes from the session token; write queries are additionally
// scoped by it in the repository, so a crafted id in the path can never
// touch another storefront's rows.
type OwnerProductHandler struct {
	Products *repository.ProductRepo
}

func NewOwnerProductHandler(r *repository.ProductRepo) *OwnerProductHandler {
	return &OwnerProductHandler{Products: r}
}

type productReq struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   uint64 `json:"price_cents"`
	CategoryID   uint64 `json:"category_id"`
	Quantity     uint32 `json:"quantity"`
	ReorderLevel uint32 `json:"reorder_level"`
	PhotoURL     string `json:"photo_url"`
}

func (req *productReq) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case req.PriceCents == 0:
		return "price is required"
	case req.CategoryID == 0:
		return "category is required"
	}
	return ""
}

// Create adds a product to the authenticated shop.
func (h *OwnerProductHandler) Create(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &repository.Product{
		ShopID:       shopID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		PhotoURL:     req.PhotoURL,
	}
	if err := h.Products.Create(ctx, p); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a product with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"product": p})
}

// Update replaces a product's details. Unknown ids and ids owned by other
// shops both come back as not found.
func (h *OwnerProductHandler) Update(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &repository.Product{
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		PhotoURL:     req.PhotoURL,
	}
	if err := h.Products.Update(ctx, id, shopID, p); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
}

type quantityReq struct {
	Quantity uint32 `json:"quantity"`
}

// UpdateQuantity adjusts stock on hand without touching the rest of the row.
func (h *OwnerProductHandler) UpdateQuantity(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req quantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.UpdateQuantity(ctx, id, shopID, req.Quantity); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "quantity updated"})
}

// Delete removes a product from the authenticated shop.
func (h *OwnerProductHandler) Delete(c echo.Context) error {
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

	if err := h.Products.Delete(ctx, id, shopID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// ListMine returns the authenticated shop's full inventory, including
// reorder levels the public listing omits.
func (h *OwnerProductHandler) ListMine(c echo.Context) error {
	shopID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ListByShop(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}
