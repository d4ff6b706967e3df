package handlers

import (
	"net/http"
	"time"

	"backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type agentLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/agent-login
// Issues a JWT whose agent_id claim unlocks that agent's reserved seats.
func (h Handler) AgentLogin(c *gin.Context) {
	var req agentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", nil)
		return
	}

	agent, err := h.Agents.GetByUsername(req.Username)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "username atau password salah"})
			return
		}
		RespondDomainError(c, err)
		return
	}
	if agent.Status != "active" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "akun agen tidak aktif"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "username atau password salah"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"agent_id": agent.ID,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "gagal membuat token", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"agent": agent,
	})
}
