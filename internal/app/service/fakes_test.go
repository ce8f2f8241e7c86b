package service

import (
	"context"
	"database/sql"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"
)

// In-memory repository fakes so lifecycle tests run against the real service
// logic without a database. Transaction arguments are ignored; the service's
// runTx is stubbed to call straight through.

type fakeRoomRepo struct {
	rooms        map[string]*model.Room
	participants map[string][]*model.Participant
	roomProblems map[string][]model.RoomProblem
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        make(map[string]*model.Room),
		participants: make(map[string][]*model.Participant),
		roomProblems: make(map[string][]model.RoomProblem),
	}
}

func (r *fakeRoomRepo) CreateRoom(_ context.Context, _ *sql.Tx, room *model.Room) error {
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) FindRoomByID(_ context.Context, id string) (*model.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) FindRoomByIDForUpdate(ctx context.Context, _ *sql.Tx, id string) (*model.Room, error) {
	return r.FindRoomByID(ctx, id)
}

func (r *fakeRoomRepo) ListRooms(_ context.Context, _ repository.RoomListFilter) ([]model.Room, int, error) {
	var out []model.Room
	for _, room := range r.rooms {
		out = append(out, *room)
	}
	return out, len(out), nil
}

func (r *fakeRoomRepo) UpdateHost(_ context.Context, _ *sql.Tx, roomID string, hostUserID *string) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return common.ErrNotFound
	}
	room.HostUserID = hostUserID
	return nil
}

func (r *fakeRoomRepo) MarkStarted(_ context.Context, _ *sql.Tx, roomID string, startedAt time.Time) (bool, error) {
	room, ok := r.rooms[roomID]
	if !ok || room.Status != model.RoomWaiting {
		return false, nil
	}
	room.Status = model.RoomStarted
	room.StartedAt = &startedAt
	return true, nil
}

func (r *fakeRoomRepo) MarkFinished(_ context.Context, _ *sql.Tx, roomID string) (bool, error) {
	room, ok := r.rooms[roomID]
	if !ok || room.Status != model.RoomStarted {
		return false, nil
	}
	room.Status = model.RoomFinished
	return true, nil
}

func (r *fakeRoomRepo) ListExpiredStartedRooms(_ context.Context, now time.Time) ([]model.Room, error) {
	var out []model.Room
	for _, room := range r.rooms {
		if room.Status == model.RoomStarted && room.StartedAt != nil && !now.Before(room.Deadline()) {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) AddParticipant(_ context.Context, _ *sql.Tx, p *model.Participant) error {
	for _, existing := range r.participants[p.RoomID] {
		if existing.UserID == p.UserID {
			return common.Errorf("already joined: %w", common.ErrConflict)
		}
	}
	cp := *p
	cp.JoinedAt = time.Now()
	r.participants[p.RoomID] = append(r.participants[p.RoomID], &cp)
	return nil
}

func (r *fakeRoomRepo) GetParticipant(_ context.Context, roomID, userID string) (*model.Participant, error) {
	for _, p := range r.participants[roomID] {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeRoomRepo) ListParticipants(_ context.Context, roomID string) ([]model.Participant, error) {
	var out []model.Participant
	for _, p := range r.participants[roomID] {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRoomRepo) FinishParticipant(_ context.Context, _ *sql.Tx, p *model.Participant) (bool, error) {
	for _, stored := range r.participants[p.RoomID] {
		if stored.UserID == p.UserID {
			if stored.FinishedAt != nil {
				return false, nil
			}
			stored.FinishedAt = p.FinishedAt
			stored.TotalScore = p.TotalScore
			stored.SubmissionCount = p.SubmissionCount
			stored.ExpEarned = p.ExpEarned
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoomRepo) UpdatePlacement(_ context.Context, _ *sql.Tx, roomID, userID string, placement int) error {
	for _, stored := range r.participants[roomID] {
		if stored.UserID == userID {
			stored.Placement = placement
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeRoomRepo) DeleteParticipant(_ context.Context, _ *sql.Tx, roomID, userID string) error {
	list := r.participants[roomID]
	for i, p := range list {
		if p.UserID == userID {
			r.participants[roomID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeRoomRepo) FindActiveRoomIDForUser(_ context.Context, userID string) (string, error) {
	for roomID, list := range r.participants {
		room := r.rooms[roomID]
		if room == nil || room.Status == model.RoomFinished {
			continue
		}
		for _, p := range list {
			if p.UserID == userID {
				return roomID, nil
			}
		}
	}
	return "", common.ErrNotFound
}

func (r *fakeRoomRepo) AddRoomProblems(_ context.Context, _ *sql.Tx, problems []model.RoomProblem) error {
	for _, rp := range problems {
		r.roomProblems[rp.RoomID] = append(r.roomProblems[rp.RoomID], rp)
	}
	return nil
}

func (r *fakeRoomRepo) GetRoomProblems(_ context.Context, roomID string) ([]model.RoomProblem, error) {
	return r.roomProblems[roomID], nil
}

type fakeProblemRepo struct {
	problems []*model.Problem
}

func (r *fakeProblemRepo) CreateProblem(_ context.Context, _ *sql.Tx, p *model.Problem) error {
	cp := *p
	r.problems = append(r.problems, &cp)
	return nil
}

func (r *fakeProblemRepo) FindProblemByID(_ context.Context, id string) (*model.Problem, error) {
	for _, p := range r.problems {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) FindProblemBySlug(_ context.Context, slug string) (*model.Problem, error) {
	for _, p := range r.problems {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeProblemRepo) ListProblems(_ context.Context, _, _ int, _ model.ProblemDifficulty, _ string) ([]model.Problem, int, error) {
	var out []model.Problem
	for _, p := range r.problems {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeProblemRepo) ListProblemIDsByDifficulty(_ context.Context, difficulty model.ProblemDifficulty) ([]string, error) {
	var ids []string
	for _, p := range r.problems {
		if p.Difficulty == difficulty {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (r *fakeProblemRepo) GetProblemsByIDs(_ context.Context, ids []string) ([]model.Problem, error) {
	var out []model.Problem
	for _, id := range ids {
		for _, p := range r.problems {
			if p.ID == id {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (r *fakeProblemRepo) AddTestCases(_ context.Context, _ *sql.Tx, _ string, _ []model.TestCase) error {
	return nil
}

func (r *fakeProblemRepo) GetTestCasesByProblemID(_ context.Context, _ string) ([]model.TestCase, error) {
	return nil, nil
}

func (r *fakeProblemRepo) AddTemplates(_ context.Context, _ *sql.Tx, _ string, _ []model.Template) error {
	return nil
}

func (r *fakeProblemRepo) GetTemplatesByProblemID(_ context.Context, _ string) ([]model.Template, error) {
	return nil, nil
}

type fakeSubmissionRepo struct {
	submissions []model.Submission
}

func (r *fakeSubmissionRepo) CreateSubmission(_ context.Context, _ *sql.Tx, sub *model.Submission) error {
	r.submissions = append(r.submissions, *sub)
	return nil
}

func (r *fakeSubmissionRepo) ListUserRoomSubmissions(_ context.Context, roomID, userID string) ([]model.Submission, error) {
	var out []model.Submission
	for _, sub := range r.submissions {
		if sub.RoomID == roomID && sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) CountUserRoomSubmissions(ctx context.Context, roomID, userID string) (int, error) {
	subs, err := r.ListUserRoomSubmissions(ctx, roomID, userID)
	return len(subs), err
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) AddExperience(_ context.Context, _ *sql.Tx, userID string, exp int) error {
	u, ok := r.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.Experience += exp
	return nil
}

type recordedEvent struct {
	Topic   string
	Name    string
	Payload interface{}
}

// recordingBroadcaster captures published events so tests assert on emissions
// instead of network calls.
type recordingBroadcaster struct {
	events []recordedEvent
}

func (b *recordingBroadcaster) Publish(_ context.Context, topic string, eventName string, payload interface{}) error {
	b.events = append(b.events, recordedEvent{Topic: topic, Name: eventName, Payload: payload})
	return nil
}

func (b *recordingBroadcaster) namesForTopic(topic string) []string {
	var out []string
	for _, ev := range b.events {
		if ev.Topic == topic {
			out = append(out, ev.Name)
		}
	}
	return out
}

func (b *recordingBroadcaster) countOnTopic(topic, name string) int {
	n := 0
	for _, ev := range b.events {
		if ev.Topic == topic && ev.Name == name {
			n++
		}
	}
	return n
}

func (b *recordingBroadcaster) reset() {
	b.events = nil
}

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
