package tool_currentdatetime

import (
	"context"
	"time"

	"github.com/elee1766/calagent/src/agent"
)

// Tool name constant
const Name = "get_current_datetime"

const currentDatetimePrompt = `Get the current date and time. Call this before interpreting relative dates like "tomorrow" or "next week" so the computed ISO datetimes are anchored to the real current date.`

// The deployment's primary display timezone.
var primaryZone = time.FixedZone("SGT", 8*3600)

// CurrentDatetimeInput represents the parameters for get_current_datetime
type CurrentDatetimeInput struct {
	TimezoneName string `json:"timezone_name,omitempty" description:"Unused. The primary timezone is fixed by deployment."`
}

// CurrentDatetimeOutput represents the response from get_current_datetime
type CurrentDatetimeOutput struct {
	Status            string `json:"status"`
	CurrentUTC        string `json:"current_datetime_utc"`
	CurrentSingapore  string `json:"current_datetime_singapore"`
	CurrentDate       string `json:"current_date"`
	CurrentTime       string `json:"current_time"`
	DayOfWeek         string `json:"day_of_week"`
	MonthName         string `json:"month_name"`
	Year              int    `json:"year"`
	FormattedDate     string `json:"formatted_date"`
	Timezone          string `json:"timezone"`
	ISODate           string `json:"iso_date"`
	ISODatetime       string `json:"iso_datetime"`
}

// Tool returns the get_current_datetime tool definition using GenericTool
func Tool() (agent.Tool, error) {
	return ToolWithClock(time.Now)
}

// ToolWithClock builds the tool with an injected clock.
func ToolWithClock(now func() time.Time) (agent.Tool, error) {
	return agent.NewGenericTool(Name, currentDatetimePrompt, makeCurrentDatetimeHandler(now))
}

func makeCurrentDatetimeHandler(now func() time.Time) func(ctx context.Context, input CurrentDatetimeInput) (CurrentDatetimeOutput, error) {
	return func(ctx context.Context, input CurrentDatetimeInput) (CurrentDatetimeOutput, error) {
		nowUTC := now().UTC()
		local := nowUTC.In(primaryZone)

		return CurrentDatetimeOutput{
			Status:           "success",
			CurrentUTC:       nowUTC.Format(time.RFC3339),
			CurrentSingapore: local.Format(time.RFC3339),
			CurrentDate:      local.Format("2006-01-02"),
			CurrentTime:      local.Format("15:04:05"),
			DayOfWeek:        local.Format("Monday"),
			MonthName:        local.Format("January"),
			Year:             local.Year(),
			FormattedDate:    local.Format("January 02, 2006"),
			Timezone:         "Singapore Standard Time",
			ISODate:          local.Format("2006-01-02"),
			ISODatetime:      local.Format(time.RFC3339),
		}, nil
	}
}
