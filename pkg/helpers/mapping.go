package helpers

import (
	"strings"

	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer"
)

// EnsureRecipientAndEmail fills the recipient fields of a queued job from job.To.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"].(string); !ok || v == "" {
		job.Data["Email"] = job.To
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
}
