package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/river2spring/monad-agent-dating-app/communication"
	"github.com/river2spring/monad-agent-dating-app/core"
	"github.com/river2spring/monad-agent-dating-app/registry"
)

var engine *core.Engine

// Init wires the handlers to the running simulation.
func Init(e *core.Engine) {
	engine = e
}

type registerRequest struct {
	Name          string             `json:"name" binding:"required"`
	Style         string             `json:"attachment_style" binding:"required"`
	Goals         []core.Goal        `json:"goals"`
	Skills        map[string]float64 `json:"skills"`
	Ethics        core.Ethics        `json:"ethics"`
	RiskTolerance float64            `json:"risk_tolerance"`
	Balance       float64            `json:"balance"`
}

// RegisterAgent - adds a new agent to the population
func RegisterAgent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent data"})
		return
	}

	style := core.AttachmentStyle(req.Style)
	switch style {
	case core.StyleSecure, core.StyleAnxious, core.StyleAvoidant, core.StyleDisorganized:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown attachment style"})
		return
	}
	if req.Balance <= 0 {
		req.Balance = 100
	}

	agent := core.NewAgent(uuid.New().String(), req.Name, style, req.Goals, req.Skills, req.Ethics, req.RiskTolerance, req.Balance)
	if err := engine.AddAgent(agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	identity, err := registry.RegisterAgent(agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	communication.BroadcastEvent(communication.EventAgentRegistered, agent.Snapshot())
	c.JSON(http.StatusOK, gin.H{
		"agent":      agent.Snapshot(),
		"public_key": identity.PublicKey,
	})
}

// GetAgents - returns the whole population
func GetAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": engine.AgentSnapshots()})
}

// GetAgent - returns one agent by id
func GetAgent(c *gin.Context) {
	view, err := engine.AgentSnapshot(c.Param("agentID"))
	if errors.Is(err, core.ErrAgentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetBonds - returns active bonds, mid-round moves redacted
func GetBonds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bonds": engine.BondSnapshots()})
}

// GetBond - returns one bond by id, active or archived
func GetBond(c *gin.Context) {
	view, err := engine.BondSnapshot(c.Param("bondID"))
	if errors.Is(err, core.ErrBondNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bond not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetHistory - returns terminated bonds with their full round history
func GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bonds": engine.ArchivedBonds()})
}

// GetStats - population-level statistics
func GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, engine.Statistics())
}

// RunRound - advances the simulation one full generation
func RunRound(c *gin.Context) {
	engine.RunRound()
	c.JSON(http.StatusOK, engine.Statistics())
}
