package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mountarc/mountarc-api/internal/models"
	"github.com/mountarc/mountarc-api/internal/services"
)

const samplePageURL = "https://mountarc.com/contact"

// samples are the submissions rendered for each form type. Values sit inside the accepted bounds.
var samples = map[models.FormType]models.Submission{
	models.FormTypeContact: &models.ContactSubmission{
		Name:        "Priya Sharma",
		Email:       "priya@example.com",
		Phone:       "+91 9876543210",
		ProjectType: models.ProjectTypes[1],
		Budget:      models.BudgetRanges[2],
		Message:     "We need a real-time dashboard for our trading desk.",
	},
	models.FormTypeDiscovery: &models.DiscoverySubmission{
		Name:          "Alex Doe",
		Email:         "alex@example.com",
		Phone:         "+1 5551234567",
		PhoneCountry:  "US",
		PreferredTime: "Tuesday 10:30 AM",
		Description:   "MVP for a fintech product with card payments.",
		Budget:        models.BudgetRanges[4],
	},
	models.FormTypeNewsletter: &models.NewsletterSubmission{
		Email: "reader@example.com",
	},
}

// previewTypes expands "all" into every form type that produces email.
func previewTypes(name string) ([]models.FormType, error) {
	if name == "all" {
		return []models.FormType{models.FormTypeContact, models.FormTypeDiscovery, models.FormTypeNewsletter}, nil
	}
	t := models.FormType(name)
	if _, ok := samples[t]; !ok {
		return nil, fmt.Errorf("no preview for form type %q", name)
	}
	return []models.FormType{t}, nil
}

// writePreviews renders each type into dir as <type>_notification.html and
// <type>_confirmation.html and returns the written paths.
func writePreviews(renderer services.EmailRenderer, types []models.FormType, dir string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, t := range types {
		notification, confirmation, err := renderer.Render(samples[t], now, samplePageURL)
		if err != nil {
			return written, fmt.Errorf("render %s: %w", t, err)
		}

		for _, out := range []struct {
			role  models.EmailRole
			email models.RenderedEmail
		}{
			{models.RoleNotification, notification},
			{models.RoleConfirmation, confirmation},
		} {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", t, out.role))
			if err := os.WriteFile(path, []byte(out.email.HTML), 0o644); err != nil { //nolint:gosec // previews are opened in a browser
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}
