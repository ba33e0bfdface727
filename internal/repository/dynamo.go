package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/xiaot623/gogo/callbot/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore implements Store on a DynamoDB table keyed by
// phoneNumber (partition) and date (sort).
type DynamoStore struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
}

type dynamoItem struct {
	PhoneNumber string    `dynamodbav:"phoneNumber"`
	Date        string    `dynamodbav:"date"`
	InputMode   string    `dynamodbav:"inputMode"`
	Counter     int       `dynamodbav:"counter"`
	BlankCount  int       `dynamodbav:"blankCount"`
	Turns       string    `dynamodbav:"turns"`
	CreatedAt   time.Time `dynamodbav:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updatedAt"`
	TTL         int64     `dynamodbav:"ttl,omitempty"`
}

// NewDynamoStore loads the default AWS configuration and opens table.
func NewDynamoStore(ctx context.Context, table string, ttl time.Duration) (*DynamoStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewDynamoStoreWithClient(dynamodb.NewFromConfig(cfg), table, ttl), nil
}

// NewDynamoStoreWithClient wraps an existing client.
func NewDynamoStoreWithClient(client DynamoAPI, table string, ttl time.Duration) *DynamoStore {
	return &DynamoStore{client: client, table: table, ttl: ttl}
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }

func dynamoKey(key domain.SessionKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"phoneNumber": &types.AttributeValueMemberS{Value: key.CallerID},
		"date":        &types.AttributeValueMemberS{Value: key.Date},
	}
}

// GetSession reads one session item.
func (s *DynamoStore) GetSession(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            dynamoKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeErr("get", key, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	session, err := itemToSession(out.Item)
	if err != nil {
		return nil, storeErr("get", key, err)
	}
	return session, nil
}

// SaveSession replaces the session item.
func (s *DynamoStore) SaveSession(ctx context.Context, session *domain.Session) error {
	turns, err := encodeTurns(session.Turns)
	if err != nil {
		return storeErr("save", session.Key(), err)
	}
	item := dynamoItem{
		PhoneNumber: session.CallerID,
		Date:        session.Date,
		InputMode:   string(session.InputMode),
		Counter:     session.Counter,
		BlankCount:  session.BlankCount,
		Turns:       turns,
		CreatedAt:   session.CreatedAt.UTC(),
		UpdatedAt:   session.UpdatedAt.UTC(),
	}
	if s.ttl > 0 {
		item.TTL = session.UpdatedAt.Add(s.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return storeErr("save", session.Key(), fmt.Errorf("failed to marshal item: %w", err))
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return storeErr("save", session.Key(), err)
	}
	return nil
}

// ListSessions queries a caller's items, newest date first.
func (s *DynamoStore) ListSessions(ctx context.Context, callerID string, limit int) ([]domain.Session, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("phoneNumber = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: callerID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(normalizeLimit(limit))),
	})
	if err != nil {
		return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
	}

	sessions := make([]domain.Session, 0, len(out.Items))
	for _, it := range out.Items {
		session, err := itemToSession(it)
		if err != nil {
			return nil, storeErr("list", domain.SessionKey{CallerID: callerID}, err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

func itemToSession(av map[string]types.AttributeValue) (*domain.Session, error) {
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	turns, err := decodeTurns(item.Turns)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		CallerID:   item.PhoneNumber,
		Date:       item.Date,
		InputMode:  domain.InputMode(item.InputMode),
		Counter:    item.Counter,
		BlankCount: item.BlankCount,
		Turns:      turns,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}, nil
}
