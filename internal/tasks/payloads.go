package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeDocumentArchive = "document:archive"
	TypeDocumentPurge   = "document:purge"
)

// DocumentPayload 描述处理文档任务所需的最小信息。
type DocumentPayload struct {
	DocumentID    uint   `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewDocumentArchiveTask 构造一个文档归档任务。
func NewDocumentArchiveTask(id uint, correlationID string) (*asynq.Task, error) {
	return newDocumentTask(TypeDocumentArchive, id, correlationID)
}

// NewDocumentPurgeTask 构造一个清理文档归档对象的任务。
func NewDocumentPurgeTask(id uint, correlationID string) (*asynq.Task, error) {
	return newDocumentTask(TypeDocumentPurge, id, correlationID)
}

func newDocumentTask(typename string, id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentPayload{
		DocumentID:    id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, payload), nil
}
