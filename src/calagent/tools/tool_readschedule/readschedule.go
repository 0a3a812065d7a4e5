package tool_readschedule

import (
	"context"
	"errors"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/graph"
)

// Tool name constant
const Name = "read_schedule"

const readSchedulePrompt = `Read calendar events for a user within a time window. Use this to check availability before booking meetings or approving leave. Datetimes must be ISO 8601 strings. If no window is given the next 7 days are returned.`

// ScheduleReader reads a calendar window.
type ScheduleReader interface {
	ReadSchedule(ctx context.Context, params graph.ReadScheduleParams) (*graph.CalendarView, error)
}

// ReadScheduleInput represents the parameters for read_schedule
type ReadScheduleInput struct {
	UserUPN      string   `json:"user_upn,omitempty" description:"User principal name of the calendar owner. Defaults to the configured user."`
	StartISO     string   `json:"start_iso,omitempty" description:"Window start as an ISO 8601 datetime"`
	EndISO       string   `json:"end_iso,omitempty" description:"Window end as an ISO 8601 datetime"`
	TimezoneName string   `json:"timezone_name,omitempty" description:"Timezone for returned event times"`
	Select       []string `json:"select,omitempty" description:"Event fields to return"`
	Top          int      `json:"top,omitempty" description:"Maximum number of events to return (default 10)"`
}

// ReadScheduleOutput represents the response from read_schedule
type ReadScheduleOutput struct {
	Status string        `json:"status"`
	Count  int           `json:"count"`
	Events []graph.Event `json:"events"`
}

// Tool returns the read_schedule tool definition using GenericTool
func Tool(reader ScheduleReader) (agent.Tool, error) {
	return agent.NewGenericTool(Name, readSchedulePrompt, makeReadScheduleHandler(reader))
}

func makeReadScheduleHandler(reader ScheduleReader) func(ctx context.Context, input ReadScheduleInput) (ReadScheduleOutput, error) {
	return func(ctx context.Context, input ReadScheduleInput) (ReadScheduleOutput, error) {
		logger := toolsutil.GetLogger()
		logger.Info("reading schedule", "user", input.UserUPN, "start", input.StartISO, "end", input.EndISO)

		view, err := reader.ReadSchedule(ctx, graph.ReadScheduleParams{
			UserUPN:      input.UserUPN,
			StartISO:     input.StartISO,
			EndISO:       input.EndISO,
			TimezoneName: input.TimezoneName,
			Select:       input.Select,
			Top:          input.Top,
		})
		if err != nil {
			logger.Error("schedule read failed", "error", err)
			return ReadScheduleOutput{}, asToolError(err)
		}

		return ReadScheduleOutput{
			Status: "success",
			Count:  len(view.Value),
			Events: view.Value,
		}, nil
	}
}

// asToolError converts a backend failure into the structured payload the
// model receives.
func asToolError(err error) error {
	var gerr *graph.Error
	if errors.As(err, &gerr) {
		return toolsutil.NewToolError(gerr.Kind, gerr.Message)
	}
	return toolsutil.NewToolError(graph.KindUnexpectedError, err.Error())
}
