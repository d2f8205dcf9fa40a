package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
)

//go:embed html/*.html
var files embed.FS

// TimestampLayout matches the long en-US date and time used in notifications.
const TimestampLayout = "Monday, January 2, 2006 at 3:04:05 PM MST"

// ErrNoTemplate is returned for submissions that produce no email, such as unsubscribe.
var ErrNoTemplate = errors.New("no email template for form type")

// headerSafe keeps submitted names from breaking out of the Subject header.
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// Brand holds the company details printed in every email.
type Brand struct {
	CompanyName  string
	LegalName    string
	WebsiteURL   string
	LinkedInURL  string
	ContactEmail string
	Location     *time.Location
}

// LinkedInLabel is the LinkedIn URL without scheme or trailing slash.
func (b Brand) LinkedInLabel() string {
	label := strings.TrimPrefix(b.LinkedInURL, "https://")
	label = strings.TrimPrefix(label, "http://")
	label = strings.TrimPrefix(label, "www.")
	return strings.TrimRight(label, "/")
}

type view struct {
	Brand     Brand
	Sub       any
	Timestamp string
	PageURL   string
}

type rowView struct {
	Label string
	Value string
}

type originView struct {
	Brand Brand
	Form  string
}

// Renderer builds transactional emails. All user values are escaped by html/template.
type Renderer struct {
	brand Brand
	tmpl  *template.Template
}

// NewRenderer parses the embedded templates for brand.
func NewRenderer(brand Brand) (*Renderer, error) {
	if brand.Location == nil {
		brand.Location = time.UTC
	}
	brand.WebsiteURL = strings.TrimRight(brand.WebsiteURL, "/")

	tmpl, err := template.New("emails").Funcs(template.FuncMap{
		"row": func(label, value string) rowView {
			return rowView{Label: label, Value: value}
		},
		"origin": func(v view, form string) originView {
			return originView{Brand: v.Brand, Form: form}
		},
	}).ParseFS(files, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Renderer{brand: brand, tmpl: tmpl}, nil
}

// FormatTimestamp renders t in loc using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}

// Render produces the operator notification and the submitter confirmation for sub.
func (r *Renderer) Render(sub models.Submission, submittedAt time.Time, pageURL string) (notification, confirmation models.RenderedEmail, err error) {
	timestamp := FormatTimestamp(submittedAt, r.brand.Location)

	switch s := sub.(type) {
	case *models.ContactSubmission:
		if notification, err = r.ContactNotification(s, timestamp, pageURL); err != nil {
			return
		}
		confirmation, err = r.ContactConfirmation(s)
	case *models.DiscoverySubmission:
		if notification, err = r.DiscoveryNotification(s, timestamp, pageURL); err != nil {
			return
		}
		confirmation, err = r.DiscoveryConfirmation(s)
	case *models.NewsletterSubmission:
		if notification, err = r.NewsletterNotification(s, timestamp, pageURL); err != nil {
			return
		}
		confirmation, err = r.NewsletterWelcome(s)
	default:
		err = fmt.Errorf("%w: %T", ErrNoTemplate, sub)
	}
	return
}

func (r *Renderer) ContactNotification(sub *models.ContactSubmission, timestamp, pageURL string) (models.RenderedEmail, error) {
	return r.render("contact_notification", "New Contact Form Submission from "+sub.Name, sub, timestamp, pageURL)
}

func (r *Renderer) ContactConfirmation(sub *models.ContactSubmission) (models.RenderedEmail, error) {
	return r.render("contact_confirmation", "Thanks for reaching out to "+r.brand.CompanyName+"!", sub, "", "")
}

func (r *Renderer) DiscoveryNotification(sub *models.DiscoverySubmission, timestamp, pageURL string) (models.RenderedEmail, error) {
	return r.render("discovery_notification", "New Discovery Call Booked - "+sub.Name, sub, timestamp, pageURL)
}

func (r *Renderer) DiscoveryConfirmation(sub *models.DiscoverySubmission) (models.RenderedEmail, error) {
	return r.render("discovery_confirmation", "Your Discovery Call with "+r.brand.CompanyName+" is Confirmed!", sub, "", "")
}

func (r *Renderer) NewsletterNotification(sub *models.NewsletterSubmission, timestamp, pageURL string) (models.RenderedEmail, error) {
	return r.render("newsletter_notification", "New Newsletter Subscriber", sub, timestamp, pageURL)
}

func (r *Renderer) NewsletterWelcome(sub *models.NewsletterSubmission) (models.RenderedEmail, error) {
	return r.render("newsletter_welcome", "Welcome to "+r.brand.CompanyName+"'s Newsletter!", sub, "", "")
}

func (r *Renderer) render(name, subject string, sub any, timestamp, pageURL string) (models.RenderedEmail, error) {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, name, view{
		Brand:     r.brand,
		Sub:       sub,
		Timestamp: timestamp,
		PageURL:   pageURL,
	})
	if err != nil {
		return models.RenderedEmail{}, fmt.Errorf("failed to render %s: %w", name, err)
	}

	return models.RenderedEmail{Subject: headerSafe.Replace(subject), HTML: buf.String()}, nil
}
