package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsletter/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := map[string]string{
		"id":        "ID",
		"user_id":   "user ID",
		"post_id":   "post ID",
		"commentId": "comment ID",
		"username":  "username",
	}
	for in, want := range tests {
		assert.Equal(t, want, humanizeParam(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{models.NewForbiddenError("no"), http.StatusForbidden},
		{models.NewConflictError("dup"), http.StatusConflict},
		{models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(parsePagination(c, 50))
	})

	tests := []struct {
		query      string
		limit, off int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0", 50, 0},
		{"?limit=1000", maxPaginationLimit, 0},
		{"?offset=-3", 50, 0},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), -1)
		require.NoError(t, err)
		var page Pagination
		require.NoError(t, jsonDecode(resp, &page))
		assert.Equal(t, tt.limit, page.Limit, tt.query)
		assert.Equal(t, tt.off, page.Offset, tt.query)
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:item_id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "item_id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/7", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	for _, bad := range []string{"0", "-2", "seven"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+bad, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		var body errorBody
		require.NoError(t, jsonDecode(resp, &body))
		assert.Equal(t, "Invalid item ID", body.Error)
	}
}

func jsonDecode(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(v)
}
