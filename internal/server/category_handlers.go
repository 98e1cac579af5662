package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCategories lists all categories with their published post counts.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}
