package rest

import (
	"context"
	"net/http"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

func (c *Client) ListServices(ctx context.Context, creds records.Credentials, q records.ServiceQuery) (records.ServicePage, error) {
	return get[records.ServicePage](ctx, c, creds, "list_services", "/services", q.Values(), "Error al obtener servicios")
}

func (c *Client) GetService(ctx context.Context, creds records.Credentials, id string) (records.DentalService, error) {
	return get[records.DentalService](ctx, c, creds, "get_service", "/services/"+segment(id), nil, "Error al obtener servicio")
}

func (c *Client) ServiceCategories(ctx context.Context, creds records.Credentials) ([]records.CategoryCount, error) {
	return get[[]records.CategoryCount](ctx, c, creds, "service_categories", "/services/categories", nil, "Error al obtener categorías")
}

func (c *Client) ServicesByCategory(ctx context.Context, creds records.Credentials, category taxonomy.Category) ([]records.DentalService, error) {
	return get[[]records.DentalService](ctx, c, creds, "services_by_category", "/services/by-category/"+segment(string(category)), nil, "Error al obtener servicios por categoría")
}

func (c *Client) CreateService(ctx context.Context, creds records.Credentials, in records.ServiceInput) (records.DentalService, error) {
	return send[records.DentalService](ctx, c, creds, "create_service", http.MethodPost, "/services", in, "Error al crear servicio")
}

func (c *Client) UpdateService(ctx context.Context, creds records.Credentials, id string, in records.ServiceInput) (records.DentalService, error) {
	return send[records.DentalService](ctx, c, creds, "update_service", http.MethodPut, "/services/"+segment(id), in, "Error al actualizar servicio")
}

func (c *Client) DeleteService(ctx context.Context, creds records.Credentials, id string) error {
	return c.exec(ctx, creds, "delete_service", http.MethodDelete, "/services/"+segment(id), nil, "Error al eliminar servicio")
}

func (c *Client) RestoreService(ctx context.Context, creds records.Credentials, id string) (records.DentalService, error) {
	return send[records.DentalService](ctx, c, creds, "restore_service", http.MethodPatch, "/services/"+segment(id)+"/restore", nil, "Error al restaurar servicio")
}

func (c *Client) ServiceStats(ctx context.Context, creds records.Credentials) (records.ServiceStats, error) {
	return get[records.ServiceStats](ctx, c, creds, "service_stats", "/services/stats/summary", nil, "Error al obtener estadísticas")
}
