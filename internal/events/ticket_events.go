package events

// TopicTicketEvents carries ticket and catalog notifications.
const TopicTicketEvents = "ticket.events"

// Event types published on TopicTicketEvents.
const (
	TicketIssued = "ticket.issued"
	EventCreated = "event.created"
)

// SourceTicketsService identifies this service in CloudEvent envelopes.
const SourceTicketsService = "service-tickets"
