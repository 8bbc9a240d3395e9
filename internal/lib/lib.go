// Package lib groups the outbound integrations that do not fit strictly
// into other layers: the Resend email client and its templates, the
// reCAPTCHA verifier and the webhook notifier.
package lib
