package config

// FormsConfig holds the delivery settings of the public forms.
//
// FromAddress is shared: both notification emails go out from the same
// verified sender.
type FormsConfig struct {
	FromAddress    string     `koanf:"from_address"`
	Inquiry        FormConfig `koanf:"inquiry"`
	ServiceRequest FormConfig `koanf:"service_request"`
}

// FormConfig is the per-form destination pair.
type FormConfig struct {
	ToAddress  string `koanf:"to_address"`
	WebhookURL string `koanf:"webhook_url"`
}

// Delivery is everything one form submission needs to leave the process:
// addresses, webhook URL and the provider secrets.
type Delivery struct {
	From            string
	To              string
	WebhookURL      string
	ResendAPIKey    string
	RecaptchaSecret string

	// envPrefix is the env var stem of the per-form block, used to name
	// missing settings.
	envPrefix string
}

// InquiryDelivery resolves the delivery settings of the inquiry form.
func (c *Config) InquiryDelivery() Delivery {
	return c.delivery(c.Forms.Inquiry, EnvPrefix+"FORMS__INQUIRY__")
}

// ServiceRequestDelivery resolves the delivery settings of the service
// request form.
func (c *Config) ServiceRequestDelivery() Delivery {
	return c.delivery(c.Forms.ServiceRequest, EnvPrefix+"FORMS__SERVICE_REQUEST__")
}

func (c *Config) delivery(form FormConfig, envPrefix string) Delivery {
	return Delivery{
		From:            c.Forms.FromAddress,
		To:              form.ToAddress,
		WebhookURL:      form.WebhookURL,
		ResendAPIKey:    c.Integration.ResendAPIKey,
		RecaptchaSecret: c.Integration.RecaptchaSecretKey,
		envPrefix:       envPrefix,
	}
}

// Missing returns the environment variable names of every unset delivery
// setting, in a stable order. It never includes the values themselves.
func (d Delivery) Missing() []string {
	var missing []string
	if d.To == "" {
		missing = append(missing, d.envPrefix+"TO_ADDRESS")
	}
	if d.From == "" {
		missing = append(missing, EnvPrefix+"FORMS__FROM_ADDRESS")
	}
	if d.WebhookURL == "" {
		missing = append(missing, d.envPrefix+"WEBHOOK_URL")
	}
	if d.ResendAPIKey == "" {
		missing = append(missing, EnvPrefix+"INTEGRATION__RESEND_API_KEY")
	}
	if d.RecaptchaSecret == "" {
		missing = append(missing, EnvPrefix+"INTEGRATION__RECAPTCHA_SECRET_KEY")
	}
	return missing
}
