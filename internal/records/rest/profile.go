package rest

import (
	"context"
	"net/http"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

func (c *Client) GetProfile(ctx context.Context, creds records.Credentials) (records.User, error) {
	return get[records.User](ctx, c, creds, "get_profile", "/profile", nil, "Error al obtener perfil")
}

func (c *Client) UpdateProfile(ctx context.Context, creds records.Credentials, u records.ProfileUpdate) (records.User, error) {
	return send[records.User](ctx, c, creds, "update_profile", http.MethodPut, "/profile", u, "Error al actualizar perfil")
}

func (c *Client) UpdateSecurityQuestion(ctx context.Context, creds records.Credentials, u records.SecurityQuestionUpdate) error {
	return c.exec(ctx, creds, "update_security_question", http.MethodPut, "/profile/security-question", u, "Error al actualizar pregunta de seguridad")
}

func (c *Client) ClinicSettings(ctx context.Context, creds records.Credentials) (records.ClinicSettings, error) {
	return get[records.ClinicSettings](ctx, c, creds, "clinic_settings", "/profile/clinic-settings", nil, "Error al obtener configuración")
}

func (c *Client) UpdateClinicSettings(ctx context.Context, creds records.Credentials, u records.ClinicSettingsUpdate) (records.ClinicSettings, error) {
	return send[records.ClinicSettings](ctx, c, creds, "update_clinic_settings", http.MethodPut, "/profile/clinic-settings", u, "Error al actualizar configuración")
}

func (c *Client) ActivityStats(ctx context.Context, creds records.Credentials) (records.ActivityStats, error) {
	return get[records.ActivityStats](ctx, c, creds, "activity_stats", "/profile/activity-stats", nil, "Error al obtener estadísticas de actividad")
}

func (c *Client) ChangePassword(ctx context.Context, creds records.Credentials, p records.PasswordChange) error {
	return c.exec(ctx, creds, "change_password", http.MethodPut, "/auth/change-password", p, "Error al cambiar contraseña")
}
