package model

import "time"

// HoursPerAttendedEvent は出席済みイベント1件あたりに計上する活動時間。
const HoursPerAttendedEvent = 3

// Event は団体が主催するイベントを表す。
// OrganizerIDは作成後に変更されない。
type Event struct {
	ID          string
	OrganizerID string
	Title       string
	Description string
	Date        time.Time
	Location    string
	CreatedAt   time.Time
}

// Role はイベント内の募集枠を表す。
// イベント作成時にのみ作成される。
type Role struct {
	ID                 string
	EventID            string
	Name               string
	Description        string
	RequiredVolunteers int
	Position           int
}

// Assignment はボランティアによるロールへの応募（参加枠の確保）を表す。
// (VolunteerID, RoleID) の組につき最大1件。
type Assignment struct {
	ID          string
	VolunteerID string
	RoleID      string
	Attended    bool
	CreatedAt   time.Time
}

// EventWithRoles はイベントと作成されたロール一式。
type EventWithRoles struct {
	Event
	Roles []Role
}

// EventSummary はイベント一覧の1行。
type EventSummary struct {
	Event
	OrganizerName string
	RoleCount     int
}

// RoleWithCount はロールと現在の応募数。
type RoleWithCount struct {
	Role
	AssignedCount int
}

// EventDetail はイベント詳細（主催者名とロール別応募数付き）。
type EventDetail struct {
	Event
	OrganizerName string
	Roles         []RoleWithCount
}

// RosterEntry は主催者向け参加者名簿の1行。
type RosterEntry struct {
	AssignmentID   string
	VolunteerID    string
	VolunteerName  string
	VolunteerEmail string
	RoleID         string
	RoleName       string
	Attended       bool
}

// ProfileEntry はボランティアの参加予定・参加履歴の1行。
type ProfileEntry struct {
	AssignmentID  string
	EventID       string
	EventTitle    string
	EventDate     time.Time
	Location      string
	OrganizerName string
	RoleID        string
	RoleName      string
	Attended      bool
}

// ProfileStats はボランティアの活動統計。
type ProfileStats struct {
	TotalEvents int
	TotalHours  int
}

// VolunteerProfile はボランティアのプロフィール画面に表示する集計結果。
type VolunteerProfile struct {
	Upcoming []ProfileEntry
	Past     []ProfileEntry
	Stats    ProfileStats
}
