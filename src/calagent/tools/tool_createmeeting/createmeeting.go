package tool_createmeeting

import (
	"context"
	"errors"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/graph"
)

// Tool name constant
const Name = "create_meeting"

const createMeetingPrompt = `Create a calendar event on the user's default calendar. Requires a subject and ISO 8601 start and end datetimes with start before end. Attendees receive invitations. Online meetings get a Teams link unless disabled.`

// MeetingCreator creates a calendar event.
type MeetingCreator interface {
	CreateMeeting(ctx context.Context, params graph.CreateMeetingParams) (*graph.CreatedMeeting, error)
}

// CreateMeetingInput represents the parameters for create_meeting
type CreateMeetingInput struct {
	UserUPN               string   `json:"user_upn,omitempty" description:"User principal name of the calendar owner. Defaults to the configured user."`
	Subject               string   `json:"subject" required:"true" description:"Event subject line"`
	StartISO              string   `json:"start_iso" required:"true" description:"Event start as an ISO 8601 datetime"`
	EndISO                string   `json:"end_iso" required:"true" description:"Event end as an ISO 8601 datetime"`
	TimezoneName          string   `json:"timezone_name,omitempty" description:"Timezone the start and end datetimes are expressed in"`
	Attendees             []string `json:"attendees,omitempty" description:"Attendee email addresses"`
	BodyHTML              string   `json:"body_html,omitempty" description:"Optional HTML body for the invitation"`
	Location              string   `json:"location,omitempty" description:"Optional location display name"`
	AllowNewTimeProposals *bool    `json:"allow_new_time_proposals,omitempty" description:"Whether attendees may propose new times (default true)"`
	IsOnlineMeeting       *bool    `json:"is_online_meeting,omitempty" description:"Whether to attach an online meeting link (default true)"`
}

// CreateMeetingOutput represents the response from create_meeting
type CreateMeetingOutput struct {
	Status  string `json:"status"`
	EventID string `json:"eventId"`
	WebLink string `json:"webLink"`
	Subject string `json:"subject"`
}

// Tool returns the create_meeting tool definition using GenericTool
func Tool(creator MeetingCreator) (agent.Tool, error) {
	return agent.NewGenericTool(Name, createMeetingPrompt, makeCreateMeetingHandler(creator))
}

func makeCreateMeetingHandler(creator MeetingCreator) func(ctx context.Context, input CreateMeetingInput) (CreateMeetingOutput, error) {
	return func(ctx context.Context, input CreateMeetingInput) (CreateMeetingOutput, error) {
		logger := toolsutil.GetLogger()
		logger.Info("creating meeting", "subject", input.Subject, "start", input.StartISO)

		created, err := creator.CreateMeeting(ctx, graph.CreateMeetingParams{
			UserUPN:               input.UserUPN,
			Subject:               input.Subject,
			StartISO:              input.StartISO,
			EndISO:                input.EndISO,
			TimezoneName:          input.TimezoneName,
			Attendees:             input.Attendees,
			BodyHTML:              input.BodyHTML,
			Location:              input.Location,
			AllowNewTimeProposals: input.AllowNewTimeProposals,
			IsOnlineMeeting:       input.IsOnlineMeeting,
		})
		if err != nil {
			logger.Error("meeting creation failed", "error", err)
			var gerr *graph.Error
			if errors.As(err, &gerr) {
				return CreateMeetingOutput{}, toolsutil.NewToolError(gerr.Kind, gerr.Message)
			}
			return CreateMeetingOutput{}, toolsutil.NewToolError(graph.KindUnexpectedError, err.Error())
		}

		return CreateMeetingOutput{
			Status:  created.Status,
			EventID: created.EventID,
			WebLink: created.WebLink,
			Subject: created.Subject,
		}, nil
	}
}
