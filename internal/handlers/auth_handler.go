package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	resp, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return errorJSON(c, fiber.StatusConflict, "Email sudah terdaftar")
		case errors.Is(err, services.ErrValidation):
			return errorJSON(c, fiber.StatusBadRequest, "Email harus valid dan kata sandi minimal 8 karakter")
		}
		return reportError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	resp, err := h.authService.SignIn(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return errorJSON(c, fiber.StatusUnauthorized, "Email atau kata sandi salah")
		}
		return reportError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return errorJSON(c, fiber.StatusUnauthorized, "Sesi telah berakhir, silakan masuk kembali")
		}
		return reportError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := session.FromFiber(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgUnauthorized)
	}

	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.authService.SignOut(c.UserContext(), sess, &req); err != nil {
		return reportError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Berhasil keluar"})
}
