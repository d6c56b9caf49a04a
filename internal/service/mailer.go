package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/email"
)

// Mailer sends transactional mail. Callers treat failures as best effort;
// nothing user-facing depends on a mail going out.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	Settings  email.Settings
	FromEmail string
	FromName  string
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.Settings.Host == "" {
		return fmt.Errorf("smtp not configured")
	}
	return email.Send(m.Settings, email.Message{
		FromName:  m.FromName,
		FromEmail: m.FromEmail,
		ToEmail:   to,
		Subject:   subject,
		HTMLBody:  htmlBody,
	})
}

func wrapEmail(title, inner string) string {
	return strings.Join([]string{
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`,
		`<div style="background: #1a1a2e; color: #e6b800; padding: 24px; text-align: center;">`,
		`<h1 style="margin: 0;">LunaStudios</h1>`,
		`</div>`,
		`<div style="padding: 24px; background: #f9f9f9;">`,
		`<h2>` + html.EscapeString(title) + `</h2>`,
		inner,
		`</div>`,
		`<div style="padding: 16px; text-align: center; color: #888; font-size: 12px;">`,
		`LunaStudios - Fotografía profesional`,
		`</div>`,
		`</div>`,
	}, "\n")
}

func paymentConfirmationEmail(name string, p domain.Payment, sessionTitle string) (string, string) {
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>Hemos recibido tu pago. Estos son los detalles:</p>
<ul>
<li><strong>Sesión:</strong> %s</li>
<li><strong>Monto:</strong> $%s</li>
<li><strong>Método:</strong> %s</li>
</ul>
<p>Gracias por confiar en LunaStudios.</p>`,
		html.EscapeString(name),
		html.EscapeString(sessionTitle),
		html.EscapeString(p.Amount),
		html.EscapeString(p.PaymentMethod),
	)
	return "Confirmación de pago - LunaStudios", wrapEmail("Pago confirmado", inner)
}

func sessionStatusEmail(name string, s domain.PhotoSession) (string, string) {
	var line string
	switch s.Status {
	case "confirmada":
		line = "Tu sesión ha sido confirmada. ¡Te esperamos!"
	case "completada":
		line = "Tu sesión ha sido completada. Pronto recibirás tu material."
	case "cancelada":
		line = "Tu sesión ha sido cancelada. Contáctanos si tienes dudas."
	default:
		line = fmt.Sprintf("El estado de tu sesión cambió a %q.", s.Status)
	}
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>%s</p>
<ul>
<li><strong>Sesión:</strong> %s</li>
<li><strong>Fecha:</strong> %s</li>
</ul>`,
		html.EscapeString(name),
		html.EscapeString(line),
		html.EscapeString(s.Title),
		s.Date.Format("02/01/2006 15:04"),
	)
	return "Actualización de tu sesión - LunaStudios", wrapEmail("Actualización de sesión", inner)
}

func deliveryReadyEmail(name string, d domain.PhotoDelivery, sessionTitle string) (string, string) {
	expiry := "sin fecha de expiración"
	if d.ExpiryDate != nil {
		expiry = "disponible hasta el " + d.ExpiryDate.Format("02/01/2006")
	}
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>¡Tu material está listo! Ya puedes descargar <strong>%s</strong> de tu sesión <strong>%s</strong> desde tu cuenta.</p>
<p>El enlace está %s.</p>`,
		html.EscapeString(name),
		html.EscapeString(d.Title),
		html.EscapeString(sessionTitle),
		html.EscapeString(expiry),
	)
	return "Tu material está listo - LunaStudios", wrapEmail("Material disponible", inner)
}

func sessionReminderEmail(name string, title string, date time.Time, location string) (string, string) {
	where := ""
	if location != "" {
		where = `<li><strong>Ubicación:</strong> ` + html.EscapeString(location) + `</li>`
	}
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>Te recordamos que tienes una sesión próxima:</p>
<ul>
<li><strong>Sesión:</strong> %s</li>
<li><strong>Fecha:</strong> %s</li>
%s
</ul>
<p>¡Te esperamos!</p>`,
		html.EscapeString(name),
		html.EscapeString(title),
		date.Format("02/01/2006 15:04"),
		where,
	)
	return "Recordatorio de sesión - LunaStudios", wrapEmail("Recordatorio de sesión", inner)
}

func passwordResetEmail(name, resetURL string) (string, string) {
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>Recibimos una solicitud para restablecer tu contraseña. Usa este enlace para elegir una nueva:</p>
<p><a href="%s" style="background: #e6b800; color: #1a1a2e; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Restablecer contraseña</a></p>
<p>Si no solicitaste este cambio, ignora este correo.</p>`,
		html.EscapeString(name),
		resetURL,
	)
	return "Restablecer contraseña - LunaStudios", wrapEmail("Restablecer contraseña", inner)
}

func welcomeEmail(name string) (string, string) {
	inner := fmt.Sprintf(
		`<p>Hola %s,</p>
<p>Tu cuenta en LunaStudios fue creada con éxito. Desde tu panel puedes agendar sesiones, revisar tus pagos y descargar tu material.</p>`,
		html.EscapeString(name),
	)
	return "Bienvenido a LunaStudios", wrapEmail("¡Bienvenido!", inner)
}

func customPackageRequestEmail(name, emailAddr string, r domain.CustomPackageRequest) (string, string) {
	inner := fmt.Sprintf(
		`<p>Nueva solicitud de paquete personalizado:</p>
<ul>
<li><strong>Cliente:</strong> %s (%s)</li>
<li><strong>Tipo:</strong> %s</li>
<li><strong>Tiempo:</strong> %s</li>
<li><strong>Fotos:</strong> %s</li>
<li><strong>Locaciones:</strong> %s</li>
</ul>`,
		html.EscapeString(name),
		html.EscapeString(emailAddr),
		html.EscapeString(r.Tipo),
		html.EscapeString(r.Tiempo),
		html.EscapeString(r.Fotos),
		html.EscapeString(r.Locaciones),
	)
	return "Solicitud de paquete personalizado - LunaStudios", wrapEmail("Paquete personalizado", inner)
}
