package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/charleshall888/Vacation-Finder/models"
)

// PropertyController serves the stored-property CRUD surface.
type PropertyController struct {
	store PropertyStore
}

func NewPropertyController(store PropertyStore) *PropertyController {
	return &PropertyController{store: store}
}

// List returns a filtered, sorted, paginated page of stored properties.
func (pc *PropertyController) List(c echo.Context) error {
	skip, err := intParam(c, "skip", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	limit, err := intParam(c, "limit", 50)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	filter := models.PropertyFilter{
		Source: c.QueryParam("source"),
	}
	if v := c.QueryParam("min_bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "min_bedrooms must be an integer"})
		}
		filter.MinBedrooms = n
	}
	if v := c.QueryParam("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_price must be a number"})
		}
		filter.MaxPrice = f
	}

	sort := models.ParseSortKey(c.QueryParam("sort_by"))

	page, err := pc.store.ListProperties(c.Request().Context(), filter, sort, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list properties"})
	}

	return c.JSON(http.StatusOK, page)
}

func (pc *PropertyController) Get(c echo.Context) error {
	id := c.Param("id")

	prop, err := pc.store.GetProperty(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch property"})
	}

	return c.JSON(http.StatusOK, prop)
}

func (pc *PropertyController) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := pc.store.DeleteProperty(c.Request().Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Property not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete property"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted", "id": id})
}

func (pc *PropertyController) DeleteAll(c echo.Context) error {
	if err := pc.store.DeleteAllProperties(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete properties"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "All properties deleted"})
}

// intParam parses a pagination query parameter. Malformed values are an
// error; negatives clamp to zero.
func intParam(c echo.Context, name string, defaultVal int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
