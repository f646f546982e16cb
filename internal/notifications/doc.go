// Package notifications tells users that their export archive is ready.
//
// Emails are rendered from embedded templates and delivered through SES. When
// email delivery is disabled a no-op sender logs the rendered message instead,
// so the worker flow stays identical in development.
package notifications
