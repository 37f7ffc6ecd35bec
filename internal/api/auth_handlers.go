package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/finance-tracker/internal/auth"
	"github.com/insightdelivered/finance-tracker/internal/models"
	"github.com/insightdelivered/finance-tracker/internal/store"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token,omitempty"`
	User  models.User `json:"user"`
}

// HandleRegister creates an account.
func (s *Server) HandleRegister(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
	}
	if !strings.Contains(body.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email")
	}

	hash, err := s.hasher.Hash(body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	user, err := s.store.CreateUser(userContext(c), body.Name, body.Email, hash)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return fiber.NewError(fiber.StatusConflict, "User already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: user})
}

// HandleLogin exchanges credentials for a token.
func (s *Server) HandleLogin(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	user, err := s.store.UserByEmail(userContext(c), body.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}
	if err := s.hasher.Check(user.PasswordHash, body.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(authResponse{Token: token, User: user})
}
