package apiclient

import (
	"context"
	"fmt"

	"farsha/internal/models"
)

// Categories, cities and areas change rarely and are served through the
// optional redis cache.

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	var list models.List[models.Category]
	if err := c.getCached(ctx, "categories", "/categories/", &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := c.getCached(ctx, fmt.Sprintf("category:%d", id), idPath("/categories/%d/", id), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) GetCities(ctx context.Context) ([]models.City, error) {
	var list models.List[models.City]
	if err := c.getCached(ctx, "cities", "/locations/cities/", &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) GetAreas(ctx context.Context, cityID int64) ([]models.Area, error) {
	var list models.List[models.Area]
	if err := c.getCached(ctx, fmt.Sprintf("areas:%d", cityID), idPath("/locations/cities/%d/areas/", cityID), &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}
