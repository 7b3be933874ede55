package apiclient

import (
	"context"
	"net/url"

	"farsha/internal/models"
)

func periodQuery(period string) url.Values {
	if period == "" {
		return nil
	}
	return url.Values{"period": {period}}
}

// DashboardStats accepts period "week", "month" or "year".
func (c *Client) DashboardStats(ctx context.Context, period string) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.doGet(ctx, NamespacePartner, "/partner/dashboard/stats/", periodQuery(period), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) RecentBookings(ctx context.Context) ([]models.Booking, error) {
	var list models.List[models.Booking]
	if err := c.doGet(ctx, NamespacePartner, "/partner/dashboard/recent-bookings/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error) {
	var list models.List[models.RevenuePoint]
	if err := c.doGet(ctx, NamespacePartner, "/partner/dashboard/revenue/", periodQuery(period), &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}

func (c *Client) PopularServices(ctx context.Context) ([]models.PopularService, error) {
	var list models.List[models.PopularService]
	if err := c.doGet(ctx, NamespacePartner, "/partner/dashboard/popular-services/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items(), nil
}
