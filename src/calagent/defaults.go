package calagent

// Default agent identity.
const (
	DefaultAgentName = "CalendarAgent"
	DefaultModel     = "gpt-4o"
)
