// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"wayfarer/internal/config"
	"wayfarer/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// BanStatusFunc resolves a user's current effective access status
// (active, suspended, banned) at request time.
type BanStatusFunc func(ctx context.Context, userID uint) (string, error)

func parseToken(c *fiber.Ctx) (uint, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	return uint(userID), role, nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	userID, role, err := parseToken(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	c.Locals("userID", userID)
	c.Locals("userRole", role)
	return c.Next()
}

// OptionalAuth resolves the caller's identity when a token is present but
// lets anonymous requests through. Handlers see userID 0 for anonymous.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	userID, role, err := parseToken(c)
	if err == nil {
		c.Locals("userID", userID)
		c.Locals("userRole", role)
	}
	return c.Next()
}

// RequireRole restricts a route to callers holding one of the given roles.
// Must run after AuthRequired.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("userRole").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient role for this operation",
		})
	}
}

// BanGuard blocks write requests from banned or currently-suspended users.
// The status is computed lazily per request; expired suspensions pass
// without any sweeper having touched them.
func BanGuard(statusFn BanStatusFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok || userID == 0 {
			return c.Next()
		}
		status, err := statusFn(c.UserContext(), userID)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "ban status check failed", "user_id", userID, "err", err)
			return c.Next()
		}
		switch status {
		case models.AccessBanned:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account banned",
			})
		case models.AccessSuspended:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account suspended",
			})
		}
		return c.Next()
	}
}
