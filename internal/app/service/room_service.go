package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"sync"
	"time"

	"codearena/internal/common"
	"codearena/internal/common/security"
	"codearena/internal/domain/event"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
	"codearena/internal/domain/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ExpPerScorePoint converts a participant's final match score into
	// profile experience at finalize time.
	ExpPerScorePoint = 100

	// problemsPerTier is the number of problems drawn from each difficulty
	// tier at match start.
	problemsPerTier = 2
)

var drawTiers = []model.ProblemDifficulty{
	model.DifficultyEasy,
	model.DifficultyMedium,
	model.DifficultyHard,
}

// RoomService is the competitive match lifecycle manager: room creation,
// joining, host transfer, match start, submission scoring, finalization and
// placement. All room state transitions run inside a transaction holding the
// room row lock, so concurrent callers (including the timeout sweeper)
// serialize per room.
type RoomService struct {
	roomRepo       repository.RoomRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	broadcaster    event.Broadcaster
	logger         *zap.Logger

	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
	now   func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	broadcaster event.Broadcaster,
	logger *zap.Logger,
	db *sql.DB,
) *RoomService {
	s := &RoomService{
		roomRepo:       roomRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		broadcaster:    broadcaster,
		logger:         logger,
		now:            time.Now,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.runTx = func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return common.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	}
	return s
}

// pendingEvent is collected during a transaction and published after commit,
// so subscribers never observe events for rolled-back state.
type pendingEvent struct {
	roomID  string
	name    string
	payload interface{}
}

func (s *RoomService) publish(ctx context.Context, events []pendingEvent) {
	for _, ev := range events {
		for _, topic := range []string{event.RoomTopic(ev.roomID), event.GlobalTopic} {
			if err := s.broadcaster.Publish(ctx, topic, ev.name, ev.payload); err != nil {
				s.logger.Warn("failed to publish event",
					zap.String("topic", topic),
					zap.String("event", ev.name),
					zap.Error(err))
			}
		}
	}
}

type CreateRoomRequest struct {
	RoomName      string  `json:"room_name"`
	RoomDuration  int     `json:"room_duration"`
	MinimumRating int     `json:"minimum_rating"`
	MaximumRating int     `json:"maximum_rating"`
	IsPublic      bool    `json:"is_public"`
	Password      *string `json:"password,omitempty"`
}

func (s *RoomService) CreateRoom(ctx context.Context, userID string, req CreateRoomRequest) (*model.Room, error) {
	if req.RoomName == "" {
		return nil, common.Errorf("room name is required: %w", common.ErrValidation)
	}
	if req.RoomDuration < model.MinRoomDurationMinutes || req.RoomDuration > model.MaxRoomDurationMinutes {
		return nil, common.Errorf("room duration must be between %d and %d minutes: %w",
			model.MinRoomDurationMinutes, model.MaxRoomDurationMinutes, common.ErrValidation)
	}
	if req.MaximumRating <= req.MinimumRating {
		return nil, common.Errorf("maximum rating must be greater than minimum rating: %w", common.ErrValidation)
	}

	var passwordHash *string
	if !req.IsPublic {
		if req.Password == nil || *req.Password == "" {
			return nil, common.Errorf("password is required for a private room: %w", common.ErrValidation)
		}
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, common.Errorf("failed to hash room password: %w", err)
		}
		passwordHash = &hash
	}

	room := &model.Room{
		ID:              uuid.NewString(),
		Name:            req.RoomName,
		DurationMinutes: req.RoomDuration,
		MinRating:       req.MinimumRating,
		MaxRating:       req.MaximumRating,
		IsPublic:        req.IsPublic,
		PasswordHash:    passwordHash,
		HostUserID:      &userID,
		Status:          model.RoomWaiting,
	}

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.roomRepo.CreateRoom(ctx, tx, room); err != nil {
			return common.Errorf("failed to create room: %w", err)
		}
		creator := &model.Participant{RoomID: room.ID, UserID: userID}
		if err := s.roomRepo.AddParticipant(ctx, tx, creator); err != nil {
			return common.Errorf("failed to add creator as participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, []pendingEvent{{room.ID, event.RoomCreated, room}})
	return room, nil
}

type JoinRoomRequest struct {
	Password *string `json:"password,omitempty"`
}

func (s *RoomService) JoinRoom(ctx context.Context, userID, roomID string, req JoinRoomRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return common.Errorf("user not found: %w", err)
	}

	var events []pendingEvent
	err = s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if room.Status != model.RoomWaiting {
			return common.Errorf("room is not accepting participants: %w", common.ErrBadRequest)
		}
		if user.Rating < room.MinRating || user.Rating > room.MaxRating {
			return common.Errorf("user rating is outside the room rating range: %w", common.ErrBadRequest)
		}
		if _, err := s.roomRepo.GetParticipant(ctx, roomID, userID); err == nil {
			return common.Errorf("already joined: %w", common.ErrBadRequest)
		} else if !errors.Is(err, common.ErrNotFound) {
			return common.Errorf("failed to check participant: %w", err)
		}
		if !room.IsPublic {
			if req.Password == nil || room.PasswordHash == nil || !security.CheckPasswordHash(*req.Password, *room.PasswordHash) {
				return common.Errorf("incorrect room password: %w", common.ErrUnauthorized)
			}
		}

		participant := &model.Participant{RoomID: roomID, UserID: userID}
		if err := s.roomRepo.AddParticipant(ctx, tx, participant); err != nil {
			return err
		}

		// A hostless room adopts the first joiner as its new host.
		if room.HostUserID == nil {
			if err := s.roomRepo.UpdateHost(ctx, tx, roomID, &userID); err != nil {
				return err
			}
			room.HostUserID = &userID
			events = append(events, pendingEvent{roomID, event.RoomUpdated, room})
		}

		events = append(events, pendingEvent{roomID, event.UserJoined, map[string]interface{}{
			"room_id":  roomID,
			"user_id":  userID,
			"username": user.Username,
			"rating":   user.Rating,
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

type PassHostRequest struct {
	NewHostID string `json:"new_host_id"`
}

func (s *RoomService) PassHost(ctx context.Context, userID, roomID string, req PassHostRequest) error {
	var events []pendingEvent
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if room.HostUserID == nil || *room.HostUserID != userID {
			return common.Errorf("only the host can pass host privileges: %w", common.ErrForbidden)
		}
		if _, err := s.roomRepo.GetParticipant(ctx, roomID, req.NewHostID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.Errorf("new host must be a participant of the room: %w", common.ErrBadRequest)
			}
			return common.Errorf("failed to check participant: %w", err)
		}
		if err := s.roomRepo.UpdateHost(ctx, tx, roomID, &req.NewHostID); err != nil {
			return err
		}
		room.HostUserID = &req.NewHostID
		events = append(events, pendingEvent{roomID, event.RoomUpdated, room})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

func (s *RoomService) StartMatch(ctx context.Context, userID, roomID string) error {
	var events []pendingEvent
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if room.HostUserID == nil || *room.HostUserID != userID {
			return common.Errorf("only the host can start the match: %w", common.ErrForbidden)
		}
		if room.Status != model.RoomWaiting {
			return common.Errorf("match already started: %w", common.ErrBadRequest)
		}

		roomProblems, err := s.drawProblemSnapshot(ctx, roomID)
		if err != nil {
			return err
		}

		startedAt := s.now().UTC()
		started, err := s.roomRepo.MarkStarted(ctx, tx, roomID, startedAt)
		if err != nil {
			return err
		}
		if !started {
			return common.Errorf("match already started: %w", common.ErrBadRequest)
		}
		if err := s.roomRepo.AddRoomProblems(ctx, tx, roomProblems); err != nil {
			return err
		}

		room.Status = model.RoomStarted
		room.StartedAt = &startedAt

		problemIDs := make([]string, len(roomProblems))
		for i, rp := range roomProblems {
			problemIDs[i] = rp.ProblemID
		}
		problems, err := s.problemDetails(ctx, problemIDs)
		if err != nil {
			return err
		}

		events = append(events,
			pendingEvent{roomID, event.MatchStarted, map[string]interface{}{
				"room_id":       roomID,
				"room_duration": room.DurationMinutes,
				"started_at":    startedAt,
				"problems":      problems,
			}},
			pendingEvent{roomID, event.RoomUpdated, room},
		)
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

// drawProblemSnapshot samples two problems per difficulty tier, uniformly at
// random without replacement, and returns the fixed snapshot for the room.
func (s *RoomService) drawProblemSnapshot(ctx context.Context, roomID string) ([]model.RoomProblem, error) {
	var snapshot []model.RoomProblem
	for _, tier := range drawTiers {
		pool, err := s.problemRepo.ListProblemIDsByDifficulty(ctx, tier)
		if err != nil {
			return nil, common.Errorf("failed to list %s problems: %w", tier, err)
		}
		if len(pool) < problemsPerTier {
			return nil, common.Errorf("not enough problems: %w", common.ErrBadRequest)
		}
		s.rngMu.Lock()
		picked := scoring.PickWithoutReplacement(pool, problemsPerTier, s.rng)
		s.rngMu.Unlock()
		for _, problemID := range picked {
			snapshot = append(snapshot, model.RoomProblem{
				ID:         uuid.NewString(),
				RoomID:     roomID,
				ProblemID:  problemID,
				Difficulty: tier,
			})
		}
	}
	return snapshot, nil
}

// problemDetails loads full problem payloads (test cases and templates
// included) for the match-started broadcast and the get-match view.
func (s *RoomService) problemDetails(ctx context.Context, problemIDs []string) ([]model.Problem, error) {
	problems, err := s.problemRepo.GetProblemsByIDs(ctx, problemIDs)
	if err != nil {
		return nil, common.Errorf("failed to load room problems: %w", err)
	}
	for i := range problems {
		testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, problems[i].ID)
		if err != nil {
			return nil, common.Errorf("failed to load test cases: %w", err)
		}
		problems[i].TestCases = testCases

		templates, err := s.problemRepo.GetTemplatesByProblemID(ctx, problems[i].ID)
		if err != nil {
			return nil, common.Errorf("failed to load templates: %w", err)
		}
		problems[i].Templates = templates
	}
	return problems, nil
}

type SubmitSolutionRequest struct {
	ProblemID       string   `json:"problem_id"`
	LanguageID      string   `json:"language_id"`
	SourceCode      string   `json:"source_code"`
	TestCaseResults []string `json:"test_case_results"`
}

func (s *RoomService) SubmitSolution(ctx context.Context, userID, roomID string, req SubmitSolutionRequest) (*model.Submission, error) {
	room, err := s.roomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("room not found: %w", err)
	}
	if room.Status != model.RoomStarted {
		return nil, common.Errorf("match is not active: %w", common.ErrBadRequest)
	}
	if _, err := s.roomRepo.GetParticipant(ctx, roomID, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
		}
		return nil, common.Errorf("failed to check participant: %w", err)
	}

	roomProblems, err := s.roomRepo.GetRoomProblems(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("failed to load room problems: %w", err)
	}
	assigned := false
	for _, rp := range roomProblems {
		if rp.ProblemID == req.ProblemID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, common.Errorf("problem is not part of this match: %w", common.ErrBadRequest)
	}

	submission := &model.Submission{
		ID:              uuid.NewString(),
		UserID:          userID,
		RoomID:          roomID,
		ProblemID:       req.ProblemID,
		LanguageID:      req.LanguageID,
		SourceCode:      req.SourceCode,
		Status:          scoring.SubmissionStatus(req.TestCaseResults),
		TestCaseResults: req.TestCaseResults,
		Score:           scoring.SubmissionScore(req.TestCaseResults),
		SubmittedAt:     s.now().UTC(),
	}
	if err := s.submissionRepo.CreateSubmission(ctx, nil, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	s.publish(ctx, []pendingEvent{{roomID, event.SubmissionUpdated, submission}})
	return submission, nil
}

type FinishResult struct {
	TotalScore int `json:"total_score"`
	ExpAwarded int `json:"exp_awarded"`
	Placement  int `json:"placement"`
}

// FinishMatch ends the calling participant's run. If the room deadline has
// already passed it also force-finishes every straggler and closes the room.
func (s *RoomService) FinishMatch(ctx context.Context, userID, roomID string) (*FinishResult, error) {
	var result FinishResult
	var events []pendingEvent
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if room.Status != model.RoomStarted {
			return common.Errorf("match is not active: %w", common.ErrBadRequest)
		}

		// The room lock is held, so earlier finalizers have committed and
		// this read is consistent for the rest of the transaction.
		participants, err := s.roomRepo.ListParticipants(ctx, roomID)
		if err != nil {
			return common.Errorf("failed to list participants: %w", err)
		}
		var actor *model.Participant
		for i := range participants {
			if participants[i].UserID == userID {
				actor = &participants[i]
			}
		}
		if actor == nil {
			return common.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
		}
		if actor.FinishedAt != nil {
			return common.Errorf("participant already finished: %w", common.ErrBadRequest)
		}

		now := s.now().UTC()
		if err := s.finalizeParticipant(ctx, tx, actor, now); err != nil {
			return err
		}

		// Past the deadline any remaining competitors are force-finished and
		// the room closes. The room also closes when the actor was the last
		// one still competing.
		if !now.Before(room.Deadline()) {
			for i := range participants {
				p := &participants[i]
				if p.FinishedAt == nil {
					if err := s.finalizeParticipant(ctx, tx, p, now); err != nil {
						return err
					}
				}
			}
		}
		allFinished := true
		for i := range participants {
			if participants[i].FinishedAt == nil {
				allFinished = false
				break
			}
		}
		if allFinished {
			finished, err := s.roomRepo.MarkFinished(ctx, tx, roomID)
			if err != nil {
				return err
			}
			if finished {
				events = append(events, pendingEvent{roomID, event.MatchEnded, map[string]interface{}{
					"room_id": roomID,
				}})
			}
		}

		if err := s.recomputePlacements(ctx, tx, roomID, participants); err != nil {
			return err
		}

		result = FinishResult{
			TotalScore: actor.TotalScore,
			ExpAwarded: actor.ExpEarned,
			Placement:  actor.Placement,
		}
		events = append(events, pendingEvent{roomID, event.MatchFinished, map[string]interface{}{
			"room_id":     roomID,
			"user_id":     userID,
			"total_score": actor.TotalScore,
			"exp_earned":  actor.ExpEarned,
			"placement":   actor.Placement,
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return &result, nil
}

// TimeoutRoom force-completes a room past its deadline. Invoked by the sweeper
// and by the internal timeout endpoint; calling it twice is a no-op on the
// second call because the room is no longer Started.
func (s *RoomService) TimeoutRoom(ctx context.Context, roomID string) error {
	var events []pendingEvent
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if room.Status != model.RoomStarted {
			return common.Errorf("match not active for timeout: %w", common.ErrBadRequest)
		}
		now := s.now().UTC()
		if now.Before(room.Deadline()) {
			return common.Errorf("match has not yet timed out: %w", common.ErrBadRequest)
		}

		participants, err := s.roomRepo.ListParticipants(ctx, roomID)
		if err != nil {
			return common.Errorf("failed to list participants: %w", err)
		}

		var forced []*model.Participant
		for i := range participants {
			p := &participants[i]
			if p.FinishedAt == nil {
				if err := s.finalizeParticipant(ctx, tx, p, now); err != nil {
					return err
				}
				forced = append(forced, p)
			}
		}

		if _, err := s.roomRepo.MarkFinished(ctx, tx, roomID); err != nil {
			return err
		}

		if err := s.recomputePlacements(ctx, tx, roomID, participants); err != nil {
			return err
		}

		for _, p := range forced {
			events = append(events, pendingEvent{roomID, event.MatchFinished, map[string]interface{}{
				"room_id":     roomID,
				"user_id":     p.UserID,
				"total_score": p.TotalScore,
				"exp_earned":  p.ExpEarned,
				"placement":   p.Placement,
			}})
		}
		events = append(events, pendingEvent{roomID, event.MatchEnded, map[string]interface{}{
			"room_id": roomID,
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

// finalizeParticipant computes the participant's final score from their full
// submission history, awards experience, and records the finish snapshot.
// Guarded by finished_at IS NULL in storage so a participant is finalized and
// awarded at most once even when finish paths race.
func (s *RoomService) finalizeParticipant(ctx context.Context, tx *sql.Tx, p *model.Participant, now time.Time) error {
	submissions, err := s.submissionRepo.ListUserRoomSubmissions(ctx, p.RoomID, p.UserID)
	if err != nil {
		return common.Errorf("failed to load submissions: %w", err)
	}

	p.TotalScore = scoring.TotalScore(submissions)
	p.SubmissionCount = len(submissions)
	p.ExpEarned = p.TotalScore * ExpPerScorePoint
	p.FinishedAt = &now

	finished, err := s.roomRepo.FinishParticipant(ctx, tx, p)
	if err != nil {
		return err
	}
	if !finished {
		// Already finalized by a concurrent caller; nothing to award.
		return nil
	}
	if err := s.userRepo.AddExperience(ctx, tx, p.UserID, p.ExpEarned); err != nil {
		return common.Errorf("failed to award experience: %w", err)
	}
	return nil
}

// recomputePlacements reranks every finished participant of the room and
// persists the result, overwriting prior placements.
func (s *RoomService) recomputePlacements(ctx context.Context, tx *sql.Tx, roomID string, participants []model.Participant) error {
	var finished []*model.Participant
	for i := range participants {
		if participants[i].FinishedAt != nil {
			finished = append(finished, &participants[i])
		}
	}
	scoring.RankFinishers(finished)
	for _, p := range finished {
		if err := s.roomRepo.UpdatePlacement(ctx, tx, roomID, p.UserID, p.Placement); err != nil {
			return err
		}
	}
	return nil
}

func (s *RoomService) LeaveRoom(ctx context.Context, userID, roomID string) error {
	var events []pendingEvent
	err := s.runTx(ctx, func(tx *sql.Tx) error {
		room, err := s.roomRepo.FindRoomByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return common.Errorf("room not found: %w", err)
		}
		if _, err := s.roomRepo.GetParticipant(ctx, roomID, userID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.Errorf("user is not a participant of this room: %w", common.ErrBadRequest)
			}
			return common.Errorf("failed to check participant: %w", err)
		}

		// A departing host hands the room to any remaining participant; if
		// nobody is left the room stays alive without a host.
		if room.Status == model.RoomWaiting && room.HostUserID != nil && *room.HostUserID == userID {
			participants, err := s.roomRepo.ListParticipants(ctx, roomID)
			if err != nil {
				return common.Errorf("failed to list participants: %w", err)
			}
			var newHost *string
			for i := range participants {
				if participants[i].UserID != userID {
					newHost = &participants[i].UserID
					break
				}
			}
			if err := s.roomRepo.UpdateHost(ctx, tx, roomID, newHost); err != nil {
				return err
			}
			room.HostUserID = newHost
			events = append(events, pendingEvent{roomID, event.RoomUpdated, room})
		}

		if err := s.roomRepo.DeleteParticipant(ctx, tx, roomID, userID); err != nil {
			return err
		}
		events = append(events, pendingEvent{roomID, event.UserLeft, map[string]interface{}{
			"room_id": roomID,
			"user_id": userID,
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

type RoomDetails struct {
	Room         *model.Room         `json:"room"`
	Participants []model.Participant `json:"participants"`
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*RoomDetails, error) {
	room, err := s.roomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("room not found: %w", err)
	}
	participants, err := s.roomRepo.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("failed to list participants: %w", err)
	}
	return &RoomDetails{Room: room, Participants: participants}, nil
}

type MatchDetails struct {
	Room        *model.Room        `json:"room"`
	Problems    []model.Problem    `json:"problems"`
	Submissions []model.Submission `json:"submissions"`
}

// GetMatch returns the room, its problem snapshot, and the caller's own
// submission history for the match view.
func (s *RoomService) GetMatch(ctx context.Context, userID, roomID string) (*MatchDetails, error) {
	room, err := s.roomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("room not found: %w", err)
	}
	if room.Status == model.RoomWaiting {
		return nil, common.Errorf("match has not started: %w", common.ErrBadRequest)
	}
	if _, err := s.roomRepo.GetParticipant(ctx, roomID, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
		}
		return nil, common.Errorf("failed to check participant: %w", err)
	}

	roomProblems, err := s.roomRepo.GetRoomProblems(ctx, roomID)
	if err != nil {
		return nil, common.Errorf("failed to load room problems: %w", err)
	}
	problemIDs := make([]string, len(roomProblems))
	for i, rp := range roomProblems {
		problemIDs[i] = rp.ProblemID
	}
	problems, err := s.problemDetails(ctx, problemIDs)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListUserRoomSubmissions(ctx, roomID, userID)
	if err != nil {
		return nil, common.Errorf("failed to load submissions: %w", err)
	}

	return &MatchDetails{Room: room, Problems: problems, Submissions: submissions}, nil
}

func (s *RoomService) ListRooms(ctx context.Context, filter repository.RoomListFilter) ([]model.Room, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.roomRepo.ListRooms(ctx, filter)
}

// PendingRoomID returns the unfinished room the user currently belongs to,
// or empty when there is none.
func (s *RoomService) PendingRoomID(ctx context.Context, userID string) (string, error) {
	roomID, err := s.roomRepo.FindActiveRoomIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil
		}
		return "", common.Errorf("failed to find pending room: %w", err)
	}
	return roomID, nil
}
