package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/domain"
)

// bookingNotice is the view model for the operator notification email
type bookingNotice struct {
	Reference     string
	FullName      string
	PhoneNumber   string
	Email         string
	PreferredDate string
	PreferredTime string
	Message       string
	Services      []string
	Estimate      string
	Submitted     string
}

const bookingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New Booking Request</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #3b2f33;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #b0577a;">New Booking Request {{.Reference}}</h2>

        <div style="background: #fdf4f7; padding: 20px; border-radius: 8px; margin: 20px 0;">
            <p><strong>Name:</strong> {{.FullName}}</p>
            <p><strong>Phone:</strong> <a href="tel:{{.PhoneNumber}}">{{.PhoneNumber}}</a></p>
            <p><strong>Email:</strong> {{if .Email}}<a href="mailto:{{.Email}}">{{.Email}}</a>{{else}}Not provided{{end}}</p>
            <p><strong>Preferred date:</strong> {{or .PreferredDate "Not specified"}}</p>
            <p><strong>Preferred time:</strong> {{or .PreferredTime "Not specified"}}</p>
            <p><strong>Submitted:</strong> {{.Submitted}}</p>
        </div>
{{if .Services}}
        <h3 style="color: #3b2f33;">Selected services</h3>
        <ul>{{range .Services}}
            <li>{{.}}</li>{{end}}
        </ul>
{{end}}{{if .Estimate}}
        <p><strong>Estimated price:</strong> {{.Estimate}}</p>
{{end}}{{if .Message}}
        <div style="background: #ffffff; padding: 20px; border-left: 4px solid #b0577a; border-radius: 4px; margin: 20px 0;">
            <h3 style="margin-top: 0;">Message:</h3>
            <p style="white-space: pre-wrap;">{{.Message}}</p>
        </div>
{{end}}
    </div>
</body>
</html>`

const bookingText = `New Booking Request {{.Reference}}

Name: {{.FullName}}
Phone: {{.PhoneNumber}}
Email: {{or .Email "Not provided"}}
Preferred date: {{or .PreferredDate "Not specified"}}
Preferred time: {{or .PreferredTime "Not specified"}}
Submitted: {{.Submitted}}
{{if .Services}}
Selected services:
{{range .Services}}- {{.}}
{{end}}{{end}}{{if .Estimate}}
Estimated price: {{.Estimate}}
{{end}}{{if .Message}}
Message:
{{.Message}}
{{end}}`

var (
	bookingHTMLTmpl = htmltemplate.Must(htmltemplate.New("booking.html").Parse(bookingHTML))
	bookingTextTmpl = texttemplate.Must(texttemplate.New("booking.txt").Parse(bookingText))
)

// buildBookingEmail renders the operator notification for a booking.
func buildBookingEmail(b *domain.Booking, services []string, est catalog.Estimate, cat *catalog.Catalog) (subject, htmlBody, textBody string, err error) {
	names := make([]string, 0, len(services))
	for _, id := range services {
		if s, ok := cat.Lookup(id); ok {
			names = append(names, s.Name)
			continue
		}
		names = append(names, id)
	}

	notice := bookingNotice{
		Reference:     b.Reference,
		FullName:      b.FullName,
		PhoneNumber:   b.PhoneNumber,
		Email:         domain.Deref(b.Email),
		PreferredDate: domain.Deref(b.PreferredDate),
		PreferredTime: domain.Deref(b.PreferredTime),
		Message:       domain.Deref(b.Message),
		Services:      names,
		Estimate:      est.String(),
		Submitted:     b.CreatedOn.Format("January 2, 2006 at 3:04 PM MST"),
	}

	var hb, tb bytes.Buffer
	if err := bookingHTMLTmpl.Execute(&hb, notice); err != nil {
		return "", "", "", fmt.Errorf("render booking html: %w", err)
	}
	if err := bookingTextTmpl.Execute(&tb, notice); err != nil {
		return "", "", "", fmt.Errorf("render booking text: %w", err)
	}

	subject = fmt.Sprintf("New booking request from %s", oneLine(b.FullName))
	return subject, hb.String(), tb.String(), nil
}

// oneLine keeps user input from injecting extra mail headers.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
