package api

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
	"github.com/sepsiscan/sepsiscan/internal/profile"
	"github.com/sepsiscan/sepsiscan/internal/recovery"
	"github.com/sepsiscan/sepsiscan/internal/risk"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	// Self-hosted: no admin password configured means open access.
	if pw := s.config.Security.AdminPassword; pw != "" {
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(pw)) != 1 {
			return c.Status(401).JSON(fiber.Map{"error": "invalid password"})
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString})
}

// ==================== Profiles ====================

func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	profiles, err := s.store.ListProfiles()
	if err != nil {
		s.logger.Error("Failed to list profiles", zap.Error(err))
		return s.errorJSON(c, err)
	}
	return c.JSON(profiles)
}

func (s *Server) handleCreateProfile(c *fiber.Ctx) error {
	var p profile.Profile
	if err := c.BodyParser(&p); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if strings.TrimSpace(p.Name) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	p.ID = ""
	p.HistoricalData = nil
	if p.PrivacySettings.AutoDeleteDays == 0 {
		p.PrivacySettings.AutoDeleteDays = s.config.Privacy.DefaultAutoDeleteDays
	}

	if err := s.store.CreateProfile(&p); err != nil {
		s.logger.Error("Failed to create profile", zap.Error(err))
		return s.errorJSON(c, err)
	}
	return c.Status(201).JSON(p)
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	p, err := s.store.GetProfile(c.Params("id"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(p)
}

// handleUpdateProfile merges the request body over the stored profile, so
// partial updates keep the derived pattern state intact.
func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	p, err := s.store.GetProfile(c.Params("id"))
	if err != nil {
		return s.errorJSON(c, err)
	}

	id := p.ID
	if err := c.BodyParser(p); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	p.ID = id
	p.UpdatedAt = time.Now()

	if err := s.store.UpdateProfile(p); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return s.errorJSON(c, err)
	}
	return c.JSON(p)
}

func (s *Server) handleDeleteProfile(c *fiber.Ctx) error {
	if err := s.store.DeleteProfile(c.Params("id")); err != nil {
		return s.errorJSON(c, err)
	}
	return c.SendStatus(204)
}

// ==================== Check-ins ====================

type checkinRequest struct {
	risk.RawInputs
	Offline bool `json:"offline"`
}

func (s *Server) handleCreateCheckin(c *fiber.Ctx) error {
	var req checkinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	profileID := c.Params("id")

	if req.Offline {
		if err := s.service.EnqueueOffline(profileID, req.RawInputs, time.Now()); err != nil {
			return s.errorJSON(c, err)
		}
		return c.Status(202).JSON(fiber.Map{"queued": true})
	}

	result, err := s.service.Process(c.Context(), profileID, req.RawInputs, time.Now())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.Status(201).JSON(result)
}

func (s *Server) handleListCheckins(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := s.store.GetEntries(c.Params("id"), limit, offset)
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(entries)
}

// ==================== Recovery coach ====================

func (s *Server) handleRecoveryCheckin(c *fiber.Ctx) error {
	var data recovery.CheckInData
	if err := c.BodyParser(&data); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	result, err := s.service.ProcessRecovery(c.Context(), c.Params("id"), data, time.Now())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.Status(201).JSON(result)
}

func (s *Server) handleRecoverySummary(c *fiber.Ctx) error {
	summary, err := s.service.Summary(c.Params("id"), time.Now())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(summary)
}

// ==================== Alert feed ====================

func (s *Server) handleAlertStream(c *websocket.Conn) {
	defer c.Close()

	feed, cancel := s.dispatcher.Subscribe()
	defer cancel()

	// Read pump only to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case alert, ok := <-feed:
			if !ok {
				return
			}
			if err := c.WriteJSON(alert); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// errorJSON maps domain error codes to HTTP statuses.
func (s *Server) errorJSON(c *fiber.Ctx, err error) error {
	status := 500
	switch apperrors.GetCode(err) {
	case "PROFILE_001":
		status = 404
	case "PROFILE_002":
		status = 409
	case "INPUT_001", "INPUT_002", "INPUT_003":
		status = 400
	case "AUTH_001":
		status = 401
	case "AUTH_002":
		status = 403
	case "AUTH_003":
		status = 429
	case "ALERT_001", "ALERT_002":
		status = 503
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
