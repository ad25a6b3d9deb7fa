package entity

const (
	TemplateMention       = "mention"
	TemplatePasswordReset = "password_reset"
)

// EmailMessage is a templated send request. Delivery is fire-and-forget.
type EmailMessage struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}
