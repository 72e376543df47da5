// Package notifications delivers job lifecycle events via ntfy.
//
// NewService returns an ntfy-backed Service when a topic URL is configured and
// a no-op otherwise. The [notifications] config toggles decide which events are
// sent; suppressed events return nil without touching the network.
package notifications
