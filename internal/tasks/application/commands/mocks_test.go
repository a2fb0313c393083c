package commands

import (
	"context"
	"time"

	notifications "github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/chivvyhq/chivvy/internal/shared/infrastructure/outbox"
	"github.com/chivvyhq/chivvy/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindPending(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindAllPending(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindRecentlyCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockPostponementRepo struct{ mock.Mock }

func (m *mockPostponementRepo) Save(ctx context.Context, p task.Postponement) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPostponementRepo) ListActiveTaskIDs(ctx context.Context, now time.Time) (map[uuid.UUID]struct{}, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]struct{}), args.Error(1)
}

type mockNotifyLog struct{ mock.Mock }

func (m *mockNotifyLog) Append(ctx context.Context, entry *notifications.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockNotifyLog) Exists(ctx context.Context, taskID uuid.UUID, tier notifications.Tier, channel notifications.Channel) (bool, error) {
	args := m.Called(ctx, taskID, tier, channel)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotifyLog) MostRecent(ctx context.Context, taskID uuid.UUID, tier notifications.Tier) (time.Time, bool, error) {
	args := m.Called(ctx, taskID, tier)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *mockNotifyLog) PurgeForTask(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

type mockPickerNotifier struct{ mock.Mock }

func (m *mockPickerNotifier) NotifyCompleted(ctx context.Context, userID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}
