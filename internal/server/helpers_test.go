package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "limit=5&offset=40", 5, 40},
		{"zero limit falls back", "limit=0", 20, 0},
		{"negative offset clamped", "offset=-3", 20, 0},
		{"limit capped", "limit=5000", maxPaginationLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", 20, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 20)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest(fiber.MethodGet, "/?"+tc.query, nil)
			_, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tc.wantLimit, got.Limit)
			assert.Equal(t, tc.wantOffset, got.Offset)
		})
	}
}

func TestStatusForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fiber.StatusBadRequest, statusForCode("VALIDATION_ERROR"))
	assert.Equal(t, fiber.StatusForbidden, statusForCode("UNAUTHORIZED"))
	assert.Equal(t, fiber.StatusNotFound, statusForCode("NOT_FOUND"))
	assert.Equal(t, fiber.StatusConflict, statusForCode("INVALID_TRANSITION"))
	assert.Equal(t, fiber.StatusInternalServerError, statusForCode("INTERNAL_ERROR"))
	assert.Equal(t, fiber.StatusInternalServerError, statusForCode("something-new"))
}
