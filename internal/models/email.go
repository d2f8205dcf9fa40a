package models

// EmailRole distinguishes the two emails sent per submission
type EmailRole string

const (
	RoleNotification EmailRole = "notification"
	RoleConfirmation EmailRole = "confirmation"
)

// RenderedEmail is a subject/body pair produced by the template renderer
type RenderedEmail struct {
	Subject string
	HTML    string
}
