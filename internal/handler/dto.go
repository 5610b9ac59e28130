package handler

import (
	"time"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// roleResponse はロール情報のAPIレスポンス。
type roleResponse struct {
	ID                 string `json:"id"`
	EventID            string `json:"event_id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	RequiredVolunteers int    `json:"required_volunteers"`
	AssignedCount      int    `json:"assigned_count"`
}

// eventResponse は作成したイベントのAPIレスポンス。
type eventResponse struct {
	ID          string         `json:"id"`
	OrganizerID string         `json:"organizer_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
	Location    string         `json:"location"`
	CreatedAt   time.Time      `json:"created_at"`
	Roles       []roleResponse `json:"roles"`
}

// eventSummaryResponse はイベント一覧の1行。
type eventSummaryResponse struct {
	ID            string    `json:"id"`
	OrganizerID   string    `json:"organizer_id"`
	OrganizerName string    `json:"organizer_name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	RoleCount     int       `json:"role_count"`
}

// eventDetailResponse はイベント詳細のAPIレスポンス。
type eventDetailResponse struct {
	ID            string         `json:"id"`
	OrganizerID   string         `json:"organizer_id"`
	OrganizerName string         `json:"organizer_name"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Date          time.Time      `json:"date"`
	Location      string         `json:"location"`
	CreatedAt     time.Time      `json:"created_at"`
	Roles         []roleResponse `json:"roles"`
}

type assignmentResponse struct {
	ID          string    `json:"id"`
	VolunteerID string    `json:"volunteer_id"`
	RoleID      string    `json:"role_id"`
	Attended    bool      `json:"attended"`
	CreatedAt   time.Time `json:"created_at"`
}

type rosterEntryResponse struct {
	AssignmentID   string `json:"assignment_id"`
	VolunteerID    string `json:"volunteer_id"`
	VolunteerName  string `json:"volunteer_name"`
	VolunteerEmail string `json:"volunteer_email"`
	RoleID         string `json:"role_id"`
	RoleName       string `json:"role_name"`
	Attended       bool   `json:"attended"`
}

type profileEntryResponse struct {
	AssignmentID  string    `json:"assignment_id"`
	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	Location      string    `json:"location"`
	OrganizerName string    `json:"organizer_name"`
	RoleID        string    `json:"role_id"`
	RoleName      string    `json:"role_name"`
	Attended      bool      `json:"attended"`
}

type profileStatsResponse struct {
	TotalEvents int `json:"total_events"`
	TotalHours  int `json:"total_hours"`
}

// profileResponse はボランティアのプロフィール集計のAPIレスポンス。
type profileResponse struct {
	Upcoming []profileEntryResponse `json:"upcoming"`
	Past     []profileEntryResponse `json:"past"`
	Stats    profileStatsResponse   `json:"stats"`
}

// --- 変換 ---

func toEventResponse(ev *model.EventWithRoles) eventResponse {
	roles := make([]roleResponse, 0, len(ev.Roles))
	for _, r := range ev.Roles {
		roles = append(roles, roleResponse{
			ID:                 r.ID,
			EventID:            r.EventID,
			Name:               r.Name,
			Description:        r.Description,
			RequiredVolunteers: r.RequiredVolunteers,
		})
	}
	return eventResponse{
		ID:          ev.ID,
		OrganizerID: ev.OrganizerID,
		Title:       ev.Title,
		Description: ev.Description,
		Date:        ev.Date,
		Location:    ev.Location,
		CreatedAt:   ev.CreatedAt,
		Roles:       roles,
	}
}

func toEventSummaryResponses(summaries []model.EventSummary) []eventSummaryResponse {
	out := make([]eventSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, eventSummaryResponse{
			ID:            s.ID,
			OrganizerID:   s.OrganizerID,
			OrganizerName: s.OrganizerName,
			Title:         s.Title,
			Description:   s.Description,
			Date:          s.Date,
			Location:      s.Location,
			RoleCount:     s.RoleCount,
		})
	}
	return out
}

func toEventDetailResponse(d *model.EventDetail) eventDetailResponse {
	roles := make([]roleResponse, 0, len(d.Roles))
	for _, r := range d.Roles {
		roles = append(roles, roleResponse{
			ID:                 r.ID,
			EventID:            r.EventID,
			Name:               r.Name,
			Description:        r.Description,
			RequiredVolunteers: r.RequiredVolunteers,
			AssignedCount:      r.AssignedCount,
		})
	}
	return eventDetailResponse{
		ID:            d.ID,
		OrganizerID:   d.OrganizerID,
		OrganizerName: d.OrganizerName,
		Title:         d.Title,
		Description:   d.Description,
		Date:          d.Date,
		Location:      d.Location,
		CreatedAt:     d.CreatedAt,
		Roles:         roles,
	}
}

func toAssignmentResponse(a *model.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:          a.ID,
		VolunteerID: a.VolunteerID,
		RoleID:      a.RoleID,
		Attended:    a.Attended,
		CreatedAt:   a.CreatedAt,
	}
}

func toRosterResponses(entries []model.RosterEntry) []rosterEntryResponse {
	out := make([]rosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, rosterEntryResponse(e))
	}
	return out
}

func toProfileEntryResponses(entries []model.ProfileEntry) []profileEntryResponse {
	out := make([]profileEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, profileEntryResponse(e))
	}
	return out
}

func toProfileResponse(p *model.VolunteerProfile) profileResponse {
	return profileResponse{
		Upcoming: toProfileEntryResponses(p.Upcoming),
		Past:     toProfileEntryResponses(p.Past),
		Stats: profileStatsResponse{
			TotalEvents: p.Stats.TotalEvents,
			TotalHours:  p.Stats.TotalHours,
		},
	}
}
