package restapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"balance_chart/internal/app/provider"
	"balance_chart/internal/config"
	"balance_chart/internal/domain/entity"
)

// NetworksResponse lists the selectable networks and the initial selection.
type NetworksResponse struct {
	Networks       []string `json:"networks"`
	DefaultNetwork string   `json:"defaultNetwork"`
	DefaultAddress string   `json:"defaultAddress"`
}

// SessionResponse describes a session and the view of its current selection.
type SessionResponse struct {
	ID        string           `json:"id"`
	Selection entity.Selection `json:"selection"`
	View      entity.View      `json:"view"`
}

// SelectionRequest is the body of a selection change.
type SelectionRequest struct {
	Network string `json:"network" binding:"required"`
	Address string `json:"address"`
}

// ErrorResponse is the body of every 4xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionHandler serves the widget API.
type SessionHandler struct {
	sessions *provider.SessionProvider
	cfg      *config.Config
	// fetches outlive the request that started them, so they run under the server's context
	baseCtx context.Context
}

// NewSessionHandler creates a handler whose background fetches are bound to baseCtx.
func NewSessionHandler(baseCtx context.Context, sessions *provider.SessionProvider, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		cfg:      cfg,
		baseCtx:  baseCtx,
	}
}

// GetNetworksHandler returns the network selector options.
func (h *SessionHandler) GetNetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, NetworksResponse{
		Networks:       h.cfg.Networks,
		DefaultNetwork: h.cfg.Defaults.Network,
		DefaultAddress: h.cfg.Defaults.Address,
	})
}

// CreateSessionHandler mounts a new widget on the default selection.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	sel := entity.Selection{Network: h.cfg.Defaults.Network, Address: h.cfg.Defaults.Address}
	s := h.sessions.Create(h.baseCtx, sel)
	c.JSON(http.StatusCreated, newSessionResponse(s))
}

// UpdateSelectionHandler changes the selection of a session and starts its fetch.
// It answers before the fetch completes; poll the view to observe the result.
func (h *SessionHandler) UpdateSelectionHandler(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid selection: " + err.Error()})
		return
	}
	if !entity.IsKnownNetwork(h.cfg.Networks, req.Network) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown network: " + req.Network})
		return
	}

	h.sessions.Dispatch(h.baseCtx, s, entity.Selection{Network: req.Network, Address: req.Address})
	c.JSON(http.StatusAccepted, newSessionResponse(s))
}

// GetViewHandler returns the tri-state view of the session's current selection.
func (h *SessionHandler) GetViewHandler(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// DeleteSessionHandler unmounts a widget.
func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.sessions.Get(id); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	}
	h.sessions.Delete(id)
	c.Status(http.StatusNoContent)
}

func newSessionResponse(s *provider.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Selection: s.Selection(),
		View:      s.View(),
	}
}
