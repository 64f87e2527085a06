package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mpetrenko/shiftnotes/internal/common"
)

// DynamoStore keeps records in one DynamoDB table with partition key
// "userId" and sort key "entityId". Prefix queries map to begins_with key
// conditions on the sort key.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// DynamoConfig carries the connection settings for the records table.
// AccessKey/SecretKey are optional; when empty the default AWS credential
// chain applies. Endpoint is optional and exists for local DynamoDB.
type DynamoConfig struct {
	Table     string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// dynamoItem mirrors Record with the table's attribute names. Timestamps
// are stored as RFC3339 strings, matching the entity payloads.
type dynamoItem struct {
	UserID     string `dynamodbav:"userId"`
	EntityID   string `dynamodbav:"entityId"`
	EntityType string `dynamodbav:"entityType"`
	Data       []byte `dynamodbav:"data"`
	CreatedAt  string `dynamodbav:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt"`
}

func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DynamoStore{client: client, table: cfg.Table}, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec Record) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		UserID:     rec.OwnerID,
		EntityID:   rec.EntityID,
		EntityType: rec.EntityType,
		Data:       rec.Data,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, ownerID, entityID string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(ownerID, entityID),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if out.Item == nil {
		return nil, common.ErrorNotFound
	}
	return unmarshalRecord(out.Item)
}

func (s *DynamoStore) QueryPrefix(ctx context.Context, ownerID, prefix string) ([]Record, error) {
	var result []Record
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("userId = :u AND begins_with(entityId, :p)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: ownerID},
				":p": &types.AttributeValueMemberS{Value: prefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query prefix %q: %w", prefix, err)
		}

		for _, item := range out.Items {
			rec, err := unmarshalRecord(item)
			if err != nil {
				return nil, err
			}
			result = append(result, *rec)
		}

		if out.LastEvaluatedKey == nil {
			return result, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (s *DynamoStore) Delete(ctx context.Context, ownerID, entityID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(ownerID, entityID),
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// BatchDelete removes records in sequential chunks of MaxBatchDelete.
// Unprocessed keys within a chunk are retried once; keys still unprocessed
// after that fail the whole call so the caller can re-run the cascade.
func (s *DynamoStore) BatchDelete(ctx context.Context, ownerID string, entityIDs []string) error {
	for start := 0; start < len(entityIDs); start += MaxBatchDelete {
		end := min(start+MaxBatchDelete, len(entityIDs))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range entityIDs[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: s.key(ownerID, id)},
			})
		}

		if err := s.writeBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamoStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	for attempt := 0; attempt < 2; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			return fmt.Errorf("batch write: %w", err)
		}

		remaining := out.UnprocessedItems[s.table]
		if len(remaining) == 0 {
			return nil
		}
		requests = remaining
	}
	return errors.New("batch write: unprocessed items remain")
}

func (s *DynamoStore) key(ownerID, entityID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":   &types.AttributeValueMemberS{Value: ownerID},
		"entityId": &types.AttributeValueMemberS{Value: entityID},
	}
}

func unmarshalRecord(item map[string]types.AttributeValue) (*Record, error) {
	var di dynamoItem
	if err := attributevalue.UnmarshalMap(item, &di); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, di.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse createdAt: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, di.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updatedAt: %w", err)
	}

	return &Record{
		OwnerID:    di.UserID,
		EntityID:   di.EntityID,
		EntityType: di.EntityType,
		Data:       di.Data,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}
