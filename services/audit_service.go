package services

import (
	"context"
	"encoding/json"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionLogin  = "login"
)

// AuditSink stores audit entries. Entries are never updated.
type AuditSink interface {
	Write(ctx context.Context, entry *models.AuditLog) error
}

type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Write(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

type dynamoPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type auditItem struct {
	ID         string `dynamodbav:"id"`
	UserID     string `dynamodbav:"user_id"`
	Action     string `dynamodbav:"action"`
	EntityType string `dynamodbav:"entity_type"`
	EntityID   string `dynamodbav:"entity_id"`
	Detail     string `dynamodbav:"detail,omitempty"`
	Metadata   string `dynamodbav:"metadata,omitempty"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// DynamoAuditSink writes to a table keyed by id (string).
type DynamoAuditSink struct {
	ddb       dynamoPutter
	tableName string
}

func NewDynamoAuditSink(ddb *dynamodb.Client, tableName string) *DynamoAuditSink {
	return &DynamoAuditSink{ddb: ddb, tableName: tableName}
}

func (s *DynamoAuditSink) Write(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	av, err := attributevalue.MarshalMap(auditItem{
		ID:         entry.ID.String(),
		UserID:     entry.UserID.String(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     entry.Detail,
		Metadata:   string(entry.Metadata),
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	return err
}

type AuditService struct {
	sink AuditSink
	db   *gorm.DB
	log  *zap.Logger
}

// NewAuditService lists entries from db regardless of sink; with the dynamodb
// sink the local table stays empty.
func NewAuditService(sink AuditSink, db *gorm.DB, log *zap.Logger) *AuditService {
	return &AuditService{sink: sink, db: db, log: log}
}

// Record never fails the caller. Errors are logged.
func (s *AuditService) Record(ctx context.Context, userID uuid.UUID, action, entityType, entityID, detail string, metadata map[string]interface{}) {
	if s == nil || s.sink == nil {
		return
	}

	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.sink.Write(ctx, entry); err != nil {
		s.log.Error("audit write failed",
			zap.String("action", action),
			zap.String("entityType", entityType),
			zap.String("entityId", entityID),
			zap.Error(err),
		)
	}
}

func (s *AuditService) List(ctx context.Context, userID uuid.UUID, entityType string, p utils.Pagination) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{}).Where("user_id = ?", userID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&logs).Error
	return logs, total, err
}
