package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBrand(t *testing.T) Brand {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	return Brand{
		CompanyName:  "MountArc",
		LegalName:    "MountArc Private Limited",
		WebsiteURL:   "https://mountarc.example/",
		LinkedInURL:  "https://www.linkedin.com/company/mountarc/",
		ContactEmail: "contact@mountarc.com",
		Location:     loc,
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(testBrand(t))
	require.NoError(t, err)
	return r
}

var submittedAt = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func contact() *models.ContactSubmission {
	return &models.ContactSubmission{
		Name:        "Priya Sharma",
		Email:       "priya@example.com",
		Phone:       "+91 9876543210",
		ProjectType: "FinTech Solution",
		Budget:      "$10,000 - $25,000",
		Message:     "We need a real-time risk dashboard.",
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	assert.Equal(t, "Thursday, January 15, 2026 at 3:00:00 PM IST", FormatTimestamp(submittedAt, loc))
	assert.Equal(t, "Thursday, January 15, 2026 at 9:30:00 AM UTC", FormatTimestamp(submittedAt, nil))
}

func TestRender_Contact(t *testing.T) {
	r := newRenderer(t)

	notification, confirmation, err := r.Render(contact(), submittedAt, "https://mountarc.example/contact")

	require.NoError(t, err)
	assert.Equal(t, "New Contact Form Submission from Priya Sharma", notification.Subject)
	assert.Contains(t, notification.HTML, "Priya Sharma")
	assert.Contains(t, notification.HTML, `<a href="mailto:priya@example.com">priya@example.com</a>`)
	assert.Contains(t, notification.HTML, "FinTech Solution")
	assert.Contains(t, notification.HTML, "Thursday, January 15, 2026 at 3:00:00 PM IST")
	assert.Contains(t, notification.HTML, "https://mountarc.example/contact")

	assert.Equal(t, "Thanks for reaching out to MountArc!", confirmation.Subject)
	assert.Contains(t, confirmation.HTML, "Hi Priya Sharma,")
	assert.Contains(t, confirmation.HTML, `href="https://mountarc.example/book-call"`)
	assert.Contains(t, confirmation.HTML, "linkedin.com/company/mountarc</a>")
	assert.NotContains(t, confirmation.HTML, "We need a real-time risk dashboard.")
}

func TestRender_ContactOmitsEmptyOptionalRows(t *testing.T) {
	r := newRenderer(t)
	sub := contact()
	sub.Phone = ""
	sub.ProjectType = ""
	sub.Budget = ""

	notification, _, err := r.Render(sub, submittedAt, "Unknown")

	require.NoError(t, err)
	assert.NotContains(t, notification.HTML, "Phone:")
	assert.NotContains(t, notification.HTML, "Project Type:")
	assert.NotContains(t, notification.HTML, "Budget Range:")
	assert.Contains(t, notification.HTML, "Unknown")
}

func TestRender_Discovery(t *testing.T) {
	r := newRenderer(t)
	sub := &models.DiscoverySubmission{
		Name:          "Alex Doe",
		Email:         "alex@example.com",
		Phone:         "+15551234567",
		PreferredTime: "Tuesday 10:30 AM",
		Description:   "MVP for a fintech product with payments.",
		Budget:        "Not sure yet",
	}

	notification, confirmation, err := r.Render(sub, submittedAt, "https://mountarc.example/book-call")

	require.NoError(t, err)
	assert.Equal(t, "New Discovery Call Booked - Alex Doe", notification.Subject)
	assert.Contains(t, notification.HTML, "Tuesday 10:30 AM")
	assert.Contains(t, notification.HTML, "Action Required:")
	assert.Equal(t, "Your Discovery Call with MountArc is Confirmed!", confirmation.Subject)
	assert.Contains(t, confirmation.HTML, "Hi Alex Doe,")
}

func TestRender_NewsletterWelcomeHasUnsubscribeLink(t *testing.T) {
	r := newRenderer(t)
	sub := &models.NewsletterSubmission{Email: "reader@example.com"}

	notification, welcome, err := r.Render(sub, submittedAt, "https://mountarc.example/blog")

	require.NoError(t, err)
	assert.Equal(t, "New Newsletter Subscriber", notification.Subject)
	assert.Contains(t, notification.HTML, "reader@example.com")
	assert.Equal(t, "Welcome to MountArc's Newsletter!", welcome.Subject)
	assert.Contains(t, welcome.HTML, `href="https://mountarc.example/unsubscribe"`)
}

func TestRender_UnsubscribeHasNoTemplate(t *testing.T) {
	r := newRenderer(t)

	_, _, err := r.Render(&models.UnsubscribeSubmission{Email: "a@b.co"}, submittedAt, "")

	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestRender_EscapesUserInput(t *testing.T) {
	r := newRenderer(t)
	sub := contact()
	sub.Name = `<script>alert("x")</script>`
	sub.Message = `<img src=x onerror=alert(1)> and more text here`

	notification, confirmation, err := r.Render(sub, submittedAt, `"><script>bad()</script>`)

	require.NoError(t, err)
	for _, html := range []string{notification.HTML, confirmation.HTML} {
		assert.NotContains(t, html, "<script>")
		assert.NotContains(t, html, "<img")
	}
	assert.Contains(t, notification.HTML, "&lt;script&gt;")
	assert.Contains(t, notification.HTML, "&lt;img src=x onerror=alert(1)&gt;")
	// Subjects are plain text headers and keep the raw name.
	assert.Equal(t, `New Contact Form Submission from <script>alert("x")</script>`, notification.Subject)
}

func TestRender_SubjectStripsLineBreaks(t *testing.T) {
	r := newRenderer(t)
	sub := contact()
	sub.Name = "Eve\r\nBcc: victim@example.com"

	notification, _, err := r.Render(sub, submittedAt, "")

	require.NoError(t, err)
	assert.False(t, strings.ContainsAny(notification.Subject, "\r\n"))
}

func TestRender_IsDeterministic(t *testing.T) {
	r := newRenderer(t)

	n1, c1, err := r.Render(contact(), submittedAt, "https://mountarc.example/contact")
	require.NoError(t, err)
	n2, c2, err := r.Render(contact(), submittedAt, "https://mountarc.example/contact")
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	assert.Equal(t, c1, c2)
}

func TestBrand_LinkedInLabel(t *testing.T) {
	assert.Equal(t, "linkedin.com/company/mountarc", Brand{LinkedInURL: "https://www.linkedin.com/company/mountarc/"}.LinkedInLabel())
	assert.Equal(t, "linkedin.com/company/x", Brand{LinkedInURL: "http://linkedin.com/company/x"}.LinkedInLabel())
}
