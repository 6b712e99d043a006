package email

import (
	"crypto/tls"
	"fmt"
	"strconv"

	"github.com/wneessen/go-mail"
	log "github.com/sirupsen/logrus"
)

// Client representa el cliente de correo electrónico
type Client struct {
	host      string
	port      int
	user      string
	password  string
	fromName  string
	fromEmail string
}

// NewClient crea una nueva instancia del cliente de email
func NewClient(host, portStr, user, password, fromName, fromEmail string) (*Client, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("puerto SMTP inválido: %w", err)
	}

	return &Client{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}, nil
}

// SendEmail envía un correo electrónico con cuerpo HTML
func (c *Client) SendEmail(to, subject, htmlBody string) error {
	m := mail.NewMsg()

	if err := m.From(fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)); err != nil {
		return fmt.Errorf("error al configurar remitente: %w", err)
	}

	if err := m.To(to); err != nil {
		return fmt.Errorf("error al configurar destinatario: %w", err)
	}

	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	log.Printf("[Email] Conectando a %s:%d como %s", c.host, c.port, c.user)

	client, err := mail.NewClient(c.host,
		mail.WithPort(c.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.user),
		mail.WithPassword(c.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{
			ServerName: c.host,
		}),
	)
	if err != nil {
		return fmt.Errorf("error al crear cliente SMTP (host=%s port=%d): %w", c.host, c.port, err)
	}

	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar correo (host=%s port=%d): %w", c.host, c.port, err)
	}

	return nil
}

// SendReportLink envía al emprendedor el enlace de su reporte archivado.
func (c *Client) SendReportLink(to, nombre, url string) error {
	subject := "Tu reporte de experiencia está listo"

	body := fmt.Sprintf(`
		<h2>Hola %s,</h2>
		<p>Tu reporte de experiencia ya está disponible. Puedes descargarlo desde el siguiente enlace:</p>
		<p><a href="%s">Descargar reporte (PDF)</a></p>
		<p>El enlace estará disponible de forma permanente.</p>
		<p>— Equipo Tesoros India</p>
	`, nombre, url)

	return c.SendEmail(to, subject, body)
}
