package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type RoomListFilter struct {
	Search        string
	MinRating     *int
	MaxRating     *int
	IsPublic      []bool
	SortBy        string
	SortDirection string
	Limit         int
	Offset        int
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	// FindRoomByIDForUpdate takes a row lock so concurrent lifecycle
	// transitions for the same room serialize at the storage layer.
	FindRoomByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Room, error)
	ListRooms(ctx context.Context, filter RoomListFilter) ([]model.Room, int, error)
	UpdateHost(ctx context.Context, tx *sql.Tx, roomID string, hostUserID *string) error
	// MarkStarted flips Waiting -> Started iff the room is still Waiting.
	// Returns false when the room was already past Waiting.
	MarkStarted(ctx context.Context, tx *sql.Tx, roomID string, startedAt time.Time) (bool, error)
	// MarkFinished flips Started -> Finished iff the room is still Started,
	// guaranteeing the room-level finalize side effects fire at most once.
	MarkFinished(ctx context.Context, tx *sql.Tx, roomID string) (bool, error)
	ListExpiredStartedRooms(ctx context.Context, now time.Time) ([]model.Room, error)

	AddParticipant(ctx context.Context, tx *sql.Tx, p *model.Participant) error
	GetParticipant(ctx context.Context, roomID, userID string) (*model.Participant, error)
	ListParticipants(ctx context.Context, roomID string) ([]model.Participant, error)
	// FinishParticipant records the finalize snapshot iff the participant has
	// not finished yet. Returns false if finished_at was already set.
	FinishParticipant(ctx context.Context, tx *sql.Tx, p *model.Participant) (bool, error)
	UpdatePlacement(ctx context.Context, tx *sql.Tx, roomID, userID string, placement int) error
	DeleteParticipant(ctx context.Context, tx *sql.Tx, roomID, userID string) error
	// FindActiveRoomIDForUser returns the unfinished room the user is
	// currently a participant of, or ErrNotFound.
	FindActiveRoomIDForUser(ctx context.Context, userID string) (string, error)

	AddRoomProblems(ctx context.Context, tx *sql.Tx, problems []model.RoomProblem) error
	GetRoomProblems(ctx context.Context, roomID string) ([]model.RoomProblem, error)
}

type pgRoomRepository struct {
	db *sql.DB
}

func NewPgRoomRepository(db *sql.DB) RoomRepository {
	return &pgRoomRepository{db: db}
}

const roomColumns = `id, name, duration_minutes, min_rating, max_rating, is_public, password_hash, host_user_id, status, started_at, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	room := &model.Room{}
	err := row.Scan(
		&room.ID, &room.Name, &room.DurationMinutes, &room.MinRating, &room.MaxRating,
		&room.IsPublic, &room.PasswordHash, &room.HostUserID, &room.Status,
		&room.StartedAt, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *pgRoomRepository) CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	query := `INSERT INTO rooms (id, name, duration_minutes, min_rating, max_rating, is_public, password_hash, host_user_id, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, room.ID, room.Name, room.DurationMinutes, room.MinRating, room.MaxRating, room.IsPublic, room.PasswordHash, room.HostUserID, room.Status)
	} else {
		_, err = r.db.ExecContext(ctx, query, room.ID, room.Name, room.DurationMinutes, room.MinRating, room.MaxRating, room.IsPublic, room.PasswordHash, room.HostUserID, room.Status)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.CreateRoom: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoomRepository.FindRoomByID: %w", err)
	}
	return room, nil
}

func (r *pgRoomRepository) FindRoomByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`
	var room *model.Room
	var err error
	if tx != nil {
		room, err = scanRoom(tx.QueryRowContext(ctx, query, id))
	} else {
		room, err = scanRoom(r.db.QueryRowContext(ctx, query, id))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoomRepository.FindRoomByIDForUpdate: %w", err)
	}
	return room, nil
}

// sortableRoomColumns whitelists user-supplied sort keys.
var sortableRoomColumns = map[string]string{
	"room_name":      "name",
	"room_duration":  "duration_minutes",
	"minimum_rating": "min_rating",
	"maximum_rating": "max_rating",
	"created_at":     "created_at",
}

func (r *pgRoomRepository) ListRooms(ctx context.Context, filter RoomListFilter) ([]model.Room, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("min_rating >= $%d", argID))
		args = append(args, *filter.MinRating)
		argID++
	}
	if filter.MaxRating != nil {
		conditions = append(conditions, fmt.Sprintf("max_rating <= $%d", argID))
		args = append(args, *filter.MaxRating)
		argID++
	}
	if len(filter.IsPublic) == 1 {
		conditions = append(conditions, fmt.Sprintf("is_public = $%d", argID))
		args = append(args, filter.IsPublic[0])
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM rooms` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms count: %w", err)
	}

	orderColumn, ok := sortableRoomColumns[filter.SortBy]
	if !ok {
		orderColumn = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortDirection, "asc") {
		direction = "ASC"
	}

	query := `SELECT ` + roomColumns + ` FROM rooms` + whereClause +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", orderColumn, direction, argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms query: %w", err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms scan: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms rows.Err: %w", err)
	}
	return rooms, total, nil
}

func (r *pgRoomRepository) UpdateHost(ctx context.Context, tx *sql.Tx, roomID string, hostUserID *string) error {
	query := `UPDATE rooms SET host_user_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, hostUserID, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, hostUserID, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateHost: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) MarkStarted(ctx context.Context, tx *sql.Tx, roomID string, startedAt time.Time) (bool, error) {
	query := `UPDATE rooms SET status = $1, started_at = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3 AND status = $4`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, model.RoomStarted, startedAt, roomID, model.RoomWaiting)
	} else {
		res, err = r.db.ExecContext(ctx, query, model.RoomStarted, startedAt, roomID, model.RoomWaiting)
	}
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.MarkStarted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.MarkStarted rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *pgRoomRepository) MarkFinished(ctx context.Context, tx *sql.Tx, roomID string) (bool, error) {
	query := `UPDATE rooms SET status = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2 AND status = $3`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, model.RoomFinished, roomID, model.RoomStarted)
	} else {
		res, err = r.db.ExecContext(ctx, query, model.RoomFinished, roomID, model.RoomStarted)
	}
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.MarkFinished: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.MarkFinished rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *pgRoomRepository) ListExpiredStartedRooms(ctx context.Context, now time.Time) ([]model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
	          WHERE status = $1 AND started_at IS NOT NULL
	            AND started_at + make_interval(mins => duration_minutes) <= $2`
	rows, err := r.db.QueryContext(ctx, query, model.RoomStarted, now)
	if err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListExpiredStartedRooms query: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("pgRoomRepository.ListExpiredStartedRooms scan: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListExpiredStartedRooms rows.Err: %w", err)
	}
	return rooms, nil
}

func (r *pgRoomRepository) AddParticipant(ctx context.Context, tx *sql.Tx, p *model.Participant) error {
	query := `INSERT INTO match_participants (room_id, user_id, placement, exp_earned, rating_change, submission_count, total_score, finished_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.RoomID, p.UserID, p.Placement, p.ExpEarned, p.RatingChange, p.SubmissionCount, p.TotalScore, p.FinishedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.RoomID, p.UserID, p.Placement, p.ExpEarned, p.RatingChange, p.SubmissionCount, p.TotalScore, p.FinishedAt)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Composite PK (room_id, user_id)
			return fmt.Errorf("already joined: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRoomRepository.AddParticipant: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) GetParticipant(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	query := `SELECT room_id, user_id, placement, exp_earned, rating_change, submission_count, total_score, finished_at, joined_at
	          FROM match_participants WHERE room_id = $1 AND user_id = $2`
	p := &model.Participant{}
	err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(
		&p.RoomID, &p.UserID, &p.Placement, &p.ExpEarned, &p.RatingChange,
		&p.SubmissionCount, &p.TotalScore, &p.FinishedAt, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoomRepository.GetParticipant: %w", err)
	}
	return p, nil
}

func (r *pgRoomRepository) ListParticipants(ctx context.Context, roomID string) ([]model.Participant, error) {
	query := `SELECT mp.room_id, mp.user_id, mp.placement, mp.exp_earned, mp.rating_change,
	                 mp.submission_count, mp.total_score, mp.finished_at, mp.joined_at,
	                 u.username, u.rating
	          FROM match_participants mp
	          JOIN users u ON mp.user_id = u.id
	          WHERE mp.room_id = $1
	          ORDER BY mp.joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListParticipants query: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(
			&p.RoomID, &p.UserID, &p.Placement, &p.ExpEarned, &p.RatingChange,
			&p.SubmissionCount, &p.TotalScore, &p.FinishedAt, &p.JoinedAt,
			&p.Username, &p.Rating,
		); err != nil {
			return nil, fmt.Errorf("pgRoomRepository.ListParticipants scan: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListParticipants rows.Err: %w", err)
	}
	return participants, nil
}

func (r *pgRoomRepository) FinishParticipant(ctx context.Context, tx *sql.Tx, p *model.Participant) (bool, error) {
	query := `UPDATE match_participants
	          SET finished_at = $1, total_score = $2, submission_count = $3, exp_earned = $4
	          WHERE room_id = $5 AND user_id = $6 AND finished_at IS NULL`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, p.FinishedAt, p.TotalScore, p.SubmissionCount, p.ExpEarned, p.RoomID, p.UserID)
	} else {
		res, err = r.db.ExecContext(ctx, query, p.FinishedAt, p.TotalScore, p.SubmissionCount, p.ExpEarned, p.RoomID, p.UserID)
	}
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.FinishParticipant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgRoomRepository.FinishParticipant rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *pgRoomRepository) UpdatePlacement(ctx context.Context, tx *sql.Tx, roomID, userID string, placement int) error {
	query := `UPDATE match_participants SET placement = $1 WHERE room_id = $2 AND user_id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, placement, roomID, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, placement, roomID, userID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdatePlacement: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) DeleteParticipant(ctx context.Context, tx *sql.Tx, roomID, userID string) error {
	query := `DELETE FROM match_participants WHERE room_id = $1 AND user_id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, roomID, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, roomID, userID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.DeleteParticipant: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) FindActiveRoomIDForUser(ctx context.Context, userID string) (string, error) {
	query := `SELECT r.id FROM rooms r
	          JOIN match_participants mp ON mp.room_id = r.id
	          WHERE mp.user_id = $1 AND r.status <> $2
	          ORDER BY r.created_at DESC
	          LIMIT 1`
	var roomID string
	err := r.db.QueryRowContext(ctx, query, userID, model.RoomFinished).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("pgRoomRepository.FindActiveRoomIDForUser: %w", err)
	}
	return roomID, nil
}

func (r *pgRoomRepository) AddRoomProblems(ctx context.Context, tx *sql.Tx, problems []model.RoomProblem) error {
	if len(problems) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO room_problems (id, room_id, problem_id, difficulty) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("pgRoomRepository.AddRoomProblems prepare: %w", err)
	}
	defer stmt.Close()

	for _, rp := range problems {
		if _, err := stmt.ExecContext(ctx, rp.ID, rp.RoomID, rp.ProblemID, rp.Difficulty); err != nil {
			return fmt.Errorf("pgRoomRepository.AddRoomProblems exec for problem %s: %w", rp.ProblemID, err)
		}
	}
	return nil
}

func (r *pgRoomRepository) GetRoomProblems(ctx context.Context, roomID string) ([]model.RoomProblem, error) {
	query := `SELECT id, room_id, problem_id, difficulty, created_at
	          FROM room_problems WHERE room_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgRoomRepository.GetRoomProblems query: %w", err)
	}
	defer rows.Close()

	var problems []model.RoomProblem
	for rows.Next() {
		var rp model.RoomProblem
		if err := rows.Scan(&rp.ID, &rp.RoomID, &rp.ProblemID, &rp.Difficulty, &rp.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgRoomRepository.GetRoomProblems scan: %w", err)
		}
		problems = append(problems, rp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoomRepository.GetRoomProblems rows.Err: %w", err)
	}
	return problems, nil
}
