package infra

import (
	"crypto/tls"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"

	"github.com/r2flows/pharma-vendor-oportunities/internal/config"

	"github.com/jordan-wright/email"
)

const nombreRemitente = "Oportunidades de compra"

// puertoTLSImplicito is the SMTPS port; every other port goes through STARTTLS.
const puertoTLSImplicito = 465

// Mailer delivers POS opportunity reports. SMTP_USER doubles as the sender
// address.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
	}
}

// Configurado reports whether both a host and a sender are set.
func (m *Mailer) Configurado() bool { return m.host != "" && m.user != "" }

// EnviarReporte mails a report with the PDF at pdfPath attached.
func (m *Mailer) EnviarReporte(to, subject, body, pdfPath string) error {
	e, err := m.armarCorreo(to, subject, body, pdfPath)
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	if m.port == puertoTLSImplicito {
		return e.SendWithTLS(addr, auth, &tls.Config{ServerName: m.host})
	}
	return e.Send(addr, auth)
}

func (m *Mailer) armarCorreo(to, subject, body, pdfPath string) (*email.Email, error) {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", nombreRemitente, m.user)
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	e.HTML = []byte("<p>" + html.EscapeString(body) + "</p>")

	if pdfPath == "" {
		return e, nil
	}
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("mailer: open report: %w", err)
	}
	defer f.Close()
	if _, err := e.Attach(f, filepath.Base(pdfPath), "application/pdf"); err != nil {
		return nil, fmt.Errorf("mailer: attach report: %w", err)
	}
	return e, nil
}
