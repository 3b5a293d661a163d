package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues document tasks. Archive tasks carry a per-document task
// id and run after a delay, so a burst of saves produces one archive.
type Scheduler struct {
	client Enqueuer
	delay  time.Duration
}

// NewScheduler 构造任务调度器。
func NewScheduler(client Enqueuer, archiveDelay time.Duration) *Scheduler {
	return &Scheduler{client: client, delay: archiveDelay}
}

// ArchiveTaskID is the asynq task id of a document's pending archive.
func ArchiveTaskID(documentID uint) string {
	return fmt.Sprintf("archive:%d", documentID)
}

// ScheduleArchive queues an archive of the document unless one is already
// pending.
func (s *Scheduler) ScheduleArchive(ctx context.Context, documentID uint, correlationID string) error {
	task, err := NewDocumentArchiveTask(documentID, correlationID)
	if err != nil {
		return fmt.Errorf("build archive task: %w", err)
	}
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.TaskID(ArchiveTaskID(documentID)),
		asynq.ProcessIn(s.delay),
		asynq.MaxRetry(5),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue archive task: %w", err)
	}
	return nil
}

// SchedulePurge queues removal of every archive of a deleted document.
func (s *Scheduler) SchedulePurge(ctx context.Context, documentID uint, correlationID string) error {
	task, err := NewDocumentPurgeTask(documentID, correlationID)
	if err != nil {
		return fmt.Errorf("build purge task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(10)); err != nil {
		return fmt.Errorf("enqueue purge task: %w", err)
	}
	return nil
}
