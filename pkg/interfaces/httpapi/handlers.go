package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
)

const defaultTopPaths = 5

type handlers struct {
	po *orchestration.PlanningOrchestrator
}

type productionQuery struct {
	Quantity     string  `form:"quantity" json:"quantity" binding:"required,positive_decimal"`
	TechnologyID *int64  `form:"technology_id" json:"technology_id" binding:"omitempty,gt=0"`
	WarehouseIDs []int64 `form:"warehouse" json:"warehouse_ids" binding:"omitempty,dive,gt=0"`
	TopPaths     *int    `form:"top_paths" json:"top_paths" binding:"omitempty,gte=0"`
}

type forecastBody struct {
	Model      string  `json:"model" binding:"omitempty,model_type"`
	WeeksAhead int     `json:"weeks_ahead" binding:"omitempty,gte=1,lte=104"`
	ProductIDs []int64 `json:"product_ids" binding:"omitempty,dive,gt=0"`
	From       string  `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string  `json:"to" binding:"omitempty,datetime=2006-01-02"`
	Evaluate   bool    `json:"evaluate"`
}

type alertsQuery struct {
	IncludeAll   bool    `form:"include_all"`
	Explain      bool    `form:"explain"`
	WarehouseIDs []int64 `form:"warehouse" binding:"omitempty,dive,gt=0"`
}

type alertsResponse struct {
	Summary      alerts.Summary        `json:"summary"`
	Alerts       []entities.StockAlert `json:"alerts"`
	Brief        string                `json:"brief"`
	Explanation  string                `json:"explanation,omitempty"`
	LLMAvailable bool                  `json:"llm_available"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "supplyadvisor",
		"run_id":   h.po.Simulator().RunID(),
		"narrator": h.po.NarratorAvailable(),
	})
}

func (h *handlers) forecast(c *gin.Context) {
	var body forecastBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	req := orchestration.ForecastRequest{
		WeeksAhead: body.WeeksAhead,
		Evaluate:   body.Evaluate,
	}
	if body.Model != "" {
		req.Model, _ = entities.ParseModelType(body.Model)
	}
	for _, id := range body.ProductIDs {
		req.ProductIDs = append(req.ProductIDs, entities.ProductID(id))
	}
	req.From = parseOptionalDate(body.From)
	req.To = parseOptionalDate(body.To)

	result, err := h.po.Forecast(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) simulation(c *gin.Context) {
	req, _, ok := bindProduction(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	result, err := h.po.Simulate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":          result,
		"shortage_report": mrp.ShortageReport(*result),
		"recommendations": mrp.Recommendations(*result),
	})
}

func (h *handlers) deliverySimulation(c *gin.Context) {
	req, _, ok := bindProduction(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	result, err := h.po.SimulateWithDelivery(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":          result,
		"purchase_plan":   h.po.Simulator().PurchasePlan(result),
		"recommendations": mrp.DeliveryRecommendations(*result),
	})
}

func (h *handlers) substitutes(c *gin.Context) {
	req, _, ok := bindProduction(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	result, err := h.po.Substitutes(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) analysis(c *gin.Context) {
	req, topPaths, ok := bindProduction(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	result, err := h.po.RunCompletePlanning(c.Request.Context(), req, topPaths)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) bomTree(c *gin.Context) {
	req, _, ok := bindProduction(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	tree, err := h.po.BOMTree(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *handlers) advice(c *gin.Context) {
	req, _, ok := bindProduction(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	advice, err := h.po.Advise(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

func (h *handlers) stockAlerts(c *gin.Context) {
	var q alertsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	list, summary, err := h.po.StockAlerts(c.Request.Context(), q.WarehouseIDs, q.IncludeAll)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := alertsResponse{Summary: summary, Alerts: list}
	if q.Explain {
		resp.Brief, resp.Explanation, resp.LLMAvailable = h.po.ExplainAlerts(c.Request.Context(), list)
	} else {
		resp.Brief = alerts.Brief(list, time.Now())
	}
	c.JSON(http.StatusOK, resp)
}

// bindProduction reads the product id from the path and the remaining
// request fields with bind. The error response is written when ok is false.
func bindProduction(c *gin.Context, bind func(any) error) (req mrp.ProductionRequest, topPaths int, ok bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.ErrValidation("product id must be a positive integer").WithDetail("id", c.Param("id")))
		return req, 0, false
	}

	var q productionQuery
	if err := bind(&q); err != nil {
		_ = c.Error(bindingError(err))
		return req, 0, false
	}

	req = mrp.ProductionRequest{
		ProductID:    entities.ProductID(id),
		Quantity:     decimal.RequireFromString(q.Quantity),
		TechnologyID: q.TechnologyID,
		WarehouseIDs: q.WarehouseIDs,
	}
	topPaths = defaultTopPaths
	if q.TopPaths != nil {
		topPaths = *q.TopPaths
	}
	return req, topPaths, true
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
