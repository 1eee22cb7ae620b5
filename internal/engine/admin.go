package engine

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prepaid-accounting/internal/phone"
)

// AdminAPI exposes the accounting engine over HTTP for operators and test
// harnesses. Subscribers registered through the API get an auto-accepting
// scripted phone; real endpoints register in-process.
type AdminAPI struct {
	coord *Coordinator
}

func NewAdminAPI(coord *Coordinator) *AdminAPI {
	return &AdminAPI{coord: coord}
}

func (a *AdminAPI) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	// Metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// ─── Stats ───────────────────────────────────────────
	e.GET("/api/stats", a.getStats)

	// ─── Subscribers ─────────────────────────────────────
	e.GET("/api/subscribers", a.listSubscribers)
	e.POST("/api/subscribers", a.registerSubscriber)
	e.GET("/api/subscribers/:number", a.getSubscriber)
	e.POST("/api/subscribers/:number/credit", a.purchaseCredit)

	// ─── Calls ───────────────────────────────────────────
	e.GET("/api/calls/active", a.listActiveCalls)
	e.POST("/api/calls", a.placeCall)
	e.DELETE("/api/calls/:number", a.dropCall)

	// ─── Billing ─────────────────────────────────────────
	e.GET("/api/billing", a.getBilling)

	return e
}

func (a *AdminAPI) Start(addr string) error {
	return a.routes().Start(addr)
}

// ─── Stats ───────────────────────────────────────────────────────────────────
func (a *AdminAPI) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_calls":      len(a.coord.ActiveSessions()),
		"total_subscribers": len(a.coord.Subscribers()),
		"system_status":     "operational",
		"version":           Version,
	})
}

// ─── Subscribers ─────────────────────────────────────────────────────────────
func (a *AdminAPI) listSubscribers(c echo.Context) error {
	return c.JSON(http.StatusOK, a.coord.Subscribers())
}

func (a *AdminAPI) registerSubscriber(c echo.Context) error {
	var body struct {
		Number string `json:"number"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if body.Number == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "number is required"})
	}
	created := a.coord.Register(body.Number, phone.NewScriptedPhone(true))
	if !created {
		return c.JSON(http.StatusOK, map[string]string{"number": body.Number, "status": "already registered"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"number": body.Number, "status": "registered"})
}

func (a *AdminAPI) getSubscriber(c echo.Context) error {
	number := c.Param("number")
	balance, err := a.coord.RemainingCredit(number)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	connected, _ := a.coord.IsConnected(number)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"number":     number,
		"balance_ms": balance,
		"connected":  connected,
	})
}

func (a *AdminAPI) purchaseCredit(c echo.Context) error {
	number := c.Param("number")
	var body struct {
		AmountMs int64 `json:"amount_ms"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if body.AmountMs < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "amount_ms must be non-negative"})
	}
	balance, err := a.coord.Purchase(number, body.AmountMs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"number":     number,
		"balance_ms": balance,
	})
}

// ─── Calls ───────────────────────────────────────────────────────────────────
func (a *AdminAPI) listActiveCalls(c echo.Context) error {
	return c.JSON(http.StatusOK, a.coord.ActiveSessions())
}

func (a *AdminAPI) placeCall(c echo.Context) error {
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	connected, err := a.coord.Connect(body.From, body.To)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"connected": connected})
}

func (a *AdminAPI) dropCall(c echo.Context) error {
	a.coord.Disconnect(c.Param("number"))
	return c.NoContent(http.StatusOK)
}

// ─── Billing ─────────────────────────────────────────────────────────────────
func (a *AdminAPI) getBilling(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from != "" && to != "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"from":     from,
			"to":       to,
			"total_ms": a.coord.BilledDuration(from, to),
		})
	}
	return c.JSON(http.StatusOK, a.coord.billing.Snapshot())
}
