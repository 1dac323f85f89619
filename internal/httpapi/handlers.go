package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"smart-grocery/internal/app"
	"smart-grocery/internal/datemath"
	"smart-grocery/internal/inventory"
	"smart-grocery/internal/recommend"
	"smart-grocery/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxReceiptBytes = 1 << 20

type handler struct {
	app    *app.App
	logger *logrus.Logger
}

type createItemRequest struct {
	Name          string `json:"name" binding:"required"`
	Category      string `json:"category"`
	PurchaseDate  string `json:"purchaseDate" binding:"required,isodate"`
	ShelfLifeDays *int   `json:"shelfLifeDays" binding:"omitempty,min=0"`
}

type updateItemRequest struct {
	Name          *string `json:"name"`
	Category      *string `json:"category"`
	PurchaseDate  *string `json:"purchaseDate" binding:"omitempty,isodate"`
	ShelfLifeDays *int    `json:"shelfLifeDays" binding:"omitempty,min=0"`
}

type historyRequest struct {
	Basket []string `json:"basket" binding:"required"`
}

type recommendationsRequest struct {
	Current []string `json:"current"`
	TopK    *int     `json:"topK"`
}

type shoppingRequest struct {
	Name              string `json:"name" binding:"required"`
	AcceptAlternative bool   `json:"acceptAlternative"`
}

type expiringItem struct {
	inventory.Item
	DaysLeft int `json:"daysLeft"`
}

func (h *handler) listItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Inventory.List())
}

func (h *handler) getItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.app.Inventory.Get(id)
	if err != nil {
		respondError(c, h.logger, "getItem", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *handler) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// Already checked by the isodate tag.
	purchase, _ := datemath.ParseDate(req.PurchaseDate)
	shelfLife := h.app.Config().DefaultShelfLifeDays
	if req.ShelfLifeDays != nil {
		shelfLife = *req.ShelfLifeDays
	}

	it, err := h.app.Inventory.Add(c.Request.Context(), req.Name, req.Category, purchase, shelfLife)
	if err != nil {
		respondError(c, h.logger, "createItem", err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h *handler) updateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := inventory.Patch{
		Name:          req.Name,
		Category:      req.Category,
		ShelfLifeDays: req.ShelfLifeDays,
	}
	if req.PurchaseDate != nil {
		d, _ := datemath.ParseDate(*req.PurchaseDate)
		patch.PurchaseDate = &d
	}

	it, err := h.app.Inventory.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "updateItem", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *handler) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.app.Inventory.Remove(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "deleteItem", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) expiring(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}
	items, err := h.app.Inventory.ExpiringWithin(days)
	if err != nil {
		respondError(c, h.logger, "expiring", err)
		return
	}

	out := make([]expiringItem, 0, len(items))
	for _, it := range items {
		out = append(out, expiringItem{Item: it, DaysLeft: h.app.Inventory.DaysLeft(it)})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "items": out})
}

func (h *handler) summary(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}
	s, err := h.app.Inventory.Summarize(days)
	if err != nil {
		respondError(c, h.logger, "summary", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) recordHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, err := h.app.Journal.Record(c.Request.Context(), req.Basket)
	if err != nil {
		respondError(c, h.logger, "recordHistory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

func (h *handler) recordReceipt(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxReceiptBytes)
	id, items, err := h.app.RecordReceipt(c.Request.Context(), body, c.Query("selector"))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "payload_too_large",
			Message: fmt.Sprintf("receipt body exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	if err != nil {
		respondError(c, h.logger, "recordReceipt", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id, "basket": items})
}

func (h *handler) recommendations(c *gin.Context) {
	var req recommendationsRequest
	// An empty body is the same as an empty basket.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	topK := h.app.Config().RecommendTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	recs, err := h.app.Recommender.Recommend(req.Current, topK)
	if err != nil {
		respondError(c, h.logger, "recommendations", err)
		return
	}
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *handler) healthySubs(c *gin.Context) {
	s, err := h.app.Resolver.Suggest(c.Request.Context(), c.Query("item"))
	if err != nil {
		respondError(c, h.logger, "healthySubs", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) listShopping(c *gin.Context) {
	entries, err := h.app.Shopping.Entries(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "listShopping", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handler) addShopping(c *gin.Context) {
	var req shoppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.app.Shopping.Add(c.Request.Context(), req.Name, req.AcceptAlternative)
	if err != nil {
		respondError(c, h.logger, "addShopping", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handler) removeShopping(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.app.Shopping.Remove(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "removeShopping", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Health())
}

// daysParam reads ?days=, defaulting to the configured horizon. Range
// checks are left to the store.
func (h *handler) daysParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return h.app.Config().ExpiryHorizonDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, h.logger, "daysParam", shared.NewValidationError("days", "must be an integer"))
		return 0, false
	}
	return days, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, nil, "pathID", shared.NewValidationError("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}
