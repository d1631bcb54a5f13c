package handler

import (
    "context"   // provides context with cancellation for DB calls
    "net/http"  // HTTP status codes and primitives
    "strconv"   // query-param parsing
    "strings"   // keyword and filter parsing
    "time"      // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/serandib/plaza/internal/repository" // DB repositories
)

// BrowseHandler serves the public storefront: paginated products, slug
// lookups, category/price filters, keyword search, shop directories and
// active promotions. Everything here is anonymous and cacheable.
type BrowseHandler struct {
	Products *repository.ProductRepo
	Shops    *repository.ShopRepo
	Promos   *repository.PromotionRepo
}

func NewBrowseHandler(p *repository.ProductRepo, s *repository.ShopRepo, pr *repository.PromotionRepo) *BrowseHandler {
	return &BrowseHandler{Products: p, Shops: s, Promos: pr}
}

// ListProducts returns one page of the catalog. Pages are 1-based and an
// absent or bad page parameter means page 1.
func (h *BrowseHandler) ListProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.ListPage(ctx, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	total, err := h.Products.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products":  products,
		"page":      page,
		"page_size": repository.ProductPageSize,
		"total":     total,
	})
}

// GetProduct looks a product up by slug and includes up to three related
// products from the same category.
func (h *BrowseHandler) GetProduct(c echo.Context) error {
	s := c.Param("slug")
	if s == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Products.GetBySlug(ctx, s)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	related, err := h.Products.Related(ctx, p.ID, p.CategoryID, 3)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p, "related": related})
}

// FilterProducts narrows the catalog by category ids and a price band.
// categories is a comma-separated id list; min/max are cents.
func (h *BrowseHandler) FilterProducts(c echo.Context) error {
	var categoryIDs []uint64
	if raw := c.QueryParam("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
			}
			categoryIDs = append(categoryIDs, id)
		}
	}
	minCents, _ := strconv.ParseUint(c.QueryParam("min"), 10, 64)
	maxCents, _ := strconv.ParseUint(c.QueryParam("max"), 10, 64)
	if maxCents > 0 && maxCents < minCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max must not be below min"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.Filter(ctx, categoryIDs, minCents, maxCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// SearchProducts does a keyword substring search against product names.
func (h *BrowseHandler) SearchProducts(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("q"))
	if keyword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "search keyword is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.Search(ctx, keyword)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// ListShops returns the public shop directory.
func (h *BrowseHandler) ListShops(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shops, err := h.Shops.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]shopPart, 0, len(shops))
	for _, s := range shops {
		out = append(out, toShopPart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"shops": out})
}

// GetShop returns one storefront plus its catalog.
func (h *BrowseHandler) GetShop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Shops.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	products, err := h.Products.ListByShop(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	promos, err := h.Promos.ListByShop(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"shop":       toShopPart(s),
		"products":   products,
		"promotions": promos,
	})
}

// ListPromotions returns promotions currently inside their validity window.
func (h *BrowseHandler) ListPromotions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	promos, err := h.Promos.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"promotions": promos})
}

// GetPromotion looks a promotion up by slug.
func (h *BrowseHandler) GetPromotion(c echo.Context) error {
	s := c.Param("slug")
	if s == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Promos.GetBySlug(ctx, s)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"promotion": p})
}
