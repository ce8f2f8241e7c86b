package model

import "time"

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "Waiting"
	RoomStarted  RoomStatus = "Started"
	RoomFinished RoomStatus = "Finished"
)

const (
	MinRoomDurationMinutes = 10
	MaxRoomDurationMinutes = 120
)

type Room struct {
	ID              string     `json:"id"`
	Name            string     `json:"room_name"`
	DurationMinutes int        `json:"room_duration"`
	MinRating       int        `json:"minimum_rating"`
	MaxRating       int        `json:"maximum_rating"`
	IsPublic        bool       `json:"is_public"`
	PasswordHash    *string    `json:"-"`            // Set iff the room is private
	HostUserID      *string    `json:"host_user_id"` // Nullable: a host may leave
	Status          RoomStatus `json:"status"`
	StartedAt       *time.Time `json:"started_at,omitempty"` // Set once, on Waiting -> Started
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Deadline is the wall-clock instant after which the match may be force-completed.
// Zero time if the room never started.
func (r *Room) Deadline() time.Time {
	if r.StartedAt == nil {
		return time.Time{}
	}
	return r.StartedAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

type Participant struct {
	RoomID          string     `json:"room_id"`
	UserID          string     `json:"user_id"`
	Placement       int        `json:"placement"` // 0 until placements are computed
	ExpEarned       int        `json:"exp_earned"`
	RatingChange    int        `json:"rating_change"`
	SubmissionCount int        `json:"submission_count"`
	TotalScore      int        `json:"total_score"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"` // Null while still competing
	JoinedAt        time.Time  `json:"joined_at"`
	Username        *string    `json:"username,omitempty"` // For display
	Rating          *int       `json:"rating,omitempty"`   // For display
}

// RoomProblem is one entry of the fixed problem snapshot drawn at match start.
type RoomProblem struct {
	ID         string            `json:"id"`
	RoomID     string            `json:"room_id"`
	ProblemID  string            `json:"problem_id"`
	Difficulty ProblemDifficulty `json:"difficulty"`
	CreatedAt  time.Time         `json:"created_at"`
}
