package worker

import (
	"context"
	"errors"
	"time"

	"codearena/internal/app/service"
	"codearena/internal/common"
	"codearena/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TimeoutSweeper periodically force-completes rooms whose match deadline has
// elapsed without every participant finishing. It is the only actor that
// finalizes an abandoned room nobody touches. Failures are logged and the
// room stays Started for the next tick to retry.
type TimeoutSweeper struct {
	roomRepo    repository.RoomRepository
	roomService *service.RoomService
	logger      *zap.Logger
	schedule    string
	cron        *cron.Cron
}

func NewTimeoutSweeper(
	roomRepo repository.RoomRepository,
	roomService *service.RoomService,
	logger *zap.Logger,
	schedule string,
) *TimeoutSweeper {
	return &TimeoutSweeper{
		roomRepo:    roomRepo,
		roomService: roomService,
		logger:      logger,
		schedule:    schedule,
	}
}

func (s *TimeoutSweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return common.Errorf("failed to schedule timeout sweep: %w", err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("timeout sweeper started", zap.String("schedule", s.schedule))
	return nil
}

func (s *TimeoutSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("timeout sweeper stopped")
	}
}

// Sweep runs one pass: every Started room past its deadline is timed out.
func (s *TimeoutSweeper) Sweep(ctx context.Context) {
	rooms, err := s.roomRepo.ListExpiredStartedRooms(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to list expired rooms", zap.Error(err))
		return
	}
	for _, room := range rooms {
		if err := s.roomService.TimeoutRoom(ctx, room.ID); err != nil {
			// A room finished between the query and this call reports
			// "not active"; that is the race resolving, not a failure.
			if errors.Is(err, common.ErrBadRequest) {
				s.logger.Debug("room no longer eligible for timeout",
					zap.String("room_id", room.ID), zap.Error(err))
				continue
			}
			s.logger.Error("failed to time out room",
				zap.String("room_id", room.ID), zap.Error(err))
			continue
		}
		s.logger.Info("room timed out", zap.String("room_id", room.ID))
	}
}
