package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"resumesync/internal/database"
	"resumesync/internal/errcode"
	"resumesync/internal/events"
	"resumesync/internal/resume"
	"resumesync/internal/tasks"
)

// DocumentSource loads the document to archive.
type DocumentSource interface {
	GetDocument(ctx context.Context, id uint) (resume.Document, error)
}

// ObjectStore is the part of the storage client the worker uses.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

// Publisher sends document events to open editors.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Archive is the object written for every archived document version.
type Archive struct {
	ArchivedAt time.Time       `json:"archived_at"`
	Document   resume.Document `json:"document"`
}

// ArchivePrefix is the object key prefix of a document's archives.
func ArchivePrefix(documentID uint) string {
	return fmt.Sprintf("document-archives/%d/", documentID)
}

// ArchiveTaskHandler 负责消费文档归档任务。
type ArchiveTaskHandler struct {
	documents DocumentSource
	storage   ObjectStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewArchiveTaskHandler 创建归档任务处理器。
func NewArchiveTaskHandler(documents DocumentSource, storage ObjectStore, publisher Publisher, logger *slog.Logger) *ArchiveTaskHandler {
	return &ArchiveTaskHandler{
		documents: documents,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ArchiveTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.DocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal archive payload: %w", asynq.SkipRetry)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("document_id", int(payload.DocumentID)),
	)

	doc, err := h.documents.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			log.Warn("document not found, skipping archive")
			return nil
		}
		log.Error("query document failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := events.Event{
			Type:          events.TypeArchiveFailed,
			DocumentID:    payload.DocumentID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.ArchiveFailed,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publisher.Publish(ctx, notify); err != nil {
			log.Error("publish archive failure event failed", slog.Any("error", err))
		}
	}()

	data, err := json.Marshal(Archive{ArchivedAt: h.now().UTC(), Document: doc})
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	objectName := ArchivePrefix(payload.DocumentID) + uuid.NewString() + ".json"
	if err := h.storage.Put(ctx, objectName, data); err != nil {
		log.Error("upload archive to minio failed", slog.Any("error", err))
		return err
	}

	notify := events.Event{
		Type:          events.TypeArchived,
		DocumentID:    payload.DocumentID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		ObjectKey:     objectName,
	}
	if err := h.publisher.Publish(ctx, notify); err != nil {
		log.Warn("publish archive event failed", slog.Any("error", err))
	}

	log.Info("document archived", slog.String("object", objectName))
	return nil
}

// PurgeTaskHandler 删除已删除文档的全部归档对象。
type PurgeTaskHandler struct {
	storage ObjectStore
	logger  *slog.Logger
}

// NewPurgeTaskHandler 创建清理任务处理器。
func NewPurgeTaskHandler(storage ObjectStore, logger *slog.Logger) *PurgeTaskHandler {
	return &PurgeTaskHandler{storage: storage, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *PurgeTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.DocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal purge payload: %w", asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("document_id", int(payload.DocumentID)),
	)

	removed, err := h.storage.RemovePrefix(ctx, ArchivePrefix(payload.DocumentID))
	if err != nil {
		log.Error("purge archives failed", slog.Int("removed", removed), slog.Any("error", err))
		return err
	}
	log.Info("document archives purged", slog.Int("removed", removed))
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
