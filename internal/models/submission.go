package models

import "encoding/json"

// FormType tags which website form a submission came from
type FormType string

const (
	FormTypeContact     FormType = "contact"
	FormTypeDiscovery   FormType = "discovery"
	FormTypeNewsletter  FormType = "newsletter"
	FormTypeUnsubscribe FormType = "unsubscribe"
)

// Valid reports whether t is one of the known form types.
func (t FormType) Valid() bool {
	switch t {
	case FormTypeContact, FormTypeDiscovery, FormTypeNewsletter, FormTypeUnsubscribe:
		return true
	}
	return false
}

// SendEmailRequest is the body of POST /api/send-email.
// Data stays raw until the validation layer decodes it for the given Type.
type SendEmailRequest struct {
	Type           FormType        `json:"type"`
	Data           json.RawMessage `json:"data"`
	RecaptchaToken string          `json:"recaptchaToken"`
	PageURL        string          `json:"pageUrl,omitempty"`
}

// SendEmailResponse is returned for every outcome of the endpoint
type SendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Submission is a validated form payload of one of the four kinds.
type Submission interface {
	Type() FormType
	SubmitterEmail() string
}

// ContactSubmission is the general enquiry form
type ContactSubmission struct {
	Name        string `json:"name" validate:"min=2"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	ProjectType string `json:"projectType"`
	Budget      string `json:"budget"`
	Message     string `json:"message" validate:"min=20,max=250"`
}

func (s *ContactSubmission) Type() FormType         { return FormTypeContact }
func (s *ContactSubmission) SubmitterEmail() string { return s.Email }

// DiscoverySubmission books a discovery call. Phone, preferred time and budget are required.
type DiscoverySubmission struct {
	Name          string `json:"name" validate:"min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone"`
	PhoneCountry  string `json:"phoneCountry,omitempty"`
	PreferredTime string `json:"preferredTime" validate:"min=10"`
	Description   string `json:"description" validate:"min=20,max=250"`
	Budget        string `json:"budget" validate:"required"`
}

func (s *DiscoverySubmission) Type() FormType         { return FormTypeDiscovery }
func (s *DiscoverySubmission) SubmitterEmail() string { return s.Email }

// NewsletterSubmission subscribes an address to the newsletter
type NewsletterSubmission struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *NewsletterSubmission) Type() FormType         { return FormTypeNewsletter }
func (s *NewsletterSubmission) SubmitterEmail() string { return s.Email }

// UnsubscribeSubmission asks for an address to be removed from the newsletter
type UnsubscribeSubmission struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *UnsubscribeSubmission) Type() FormType         { return FormTypeUnsubscribe }
func (s *UnsubscribeSubmission) SubmitterEmail() string { return s.Email }

// ProjectTypes are the options offered by the contact form.
var ProjectTypes = []string{
	"AI-Enabled Web Application",
	"Real-Time Dashboard",
	"SaaS Product Development",
	"FinTech Solution",
	"API Development",
	"MVP Development",
	"Trading",
	"Other",
}

// BudgetRanges are the options offered by the contact and discovery forms.
var BudgetRanges = []string{
	"Under $5,000",
	"$5,000 - $10,000",
	"$10,000 - $25,000",
	"$25,000 - $50,000",
	"Not sure yet",
}
