package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"portfolio-assistant/internal/domain"
)

const (
	pkPrefixDay      = "DAY#"
	skPrefixExchange = "EXCH#"
	dayLayout        = "2006-01-02"
	ttlDuration      = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client stores answered chat exchanges in a DynamoDB table, partitioned by
// UTC day.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
	newID     func() string
}

type Option func(*Client)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	c := &Client{api: api, tableName: tableName, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// dayPK returns the partition key for the UTC day of ts.
func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format(dayLayout)
}

// exchangeSK sorts exchanges chronologically within a day; the id keeps
// same-instant writes distinct.
func exchangeSK(ts time.Time, id string) string {
	return skPrefixExchange + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

// RecordExchange persists ex, assigning its keys, id, timestamp and TTL.
// The stored record is returned.
func (c *Client) RecordExchange(ctx context.Context, ex domain.Exchange) (domain.Exchange, error) {
	if !ex.Source.Valid() {
		return domain.Exchange{}, fmt.Errorf("repository: RecordExchange: unknown source %q", ex.Source)
	}
	now := c.now().UTC()
	if ex.ID == "" {
		ex.ID = c.newID()
	}
	ex.PK = dayPK(now)
	ex.SK = exchangeSK(now, ex.ID)
	ex.CreatedAt = now.Format(time.RFC3339Nano)
	ex.TTL = now.Add(ttlDuration).Unix()

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return domain.Exchange{}, fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return ex, nil
}

// ListExchanges returns the exchanges recorded on the UTC day of day in
// chronological order. limit <= 0 means all.
func (c *Client) ListExchanges(ctx context.Context, day time.Time, limit int) ([]domain.Exchange, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: dayPK(day)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixExchange},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	var out []domain.Exchange
	for {
		page, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: ListExchanges query: %w", err)
		}
		for _, item := range page.Items {
			ex, err := itemToExchange(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListExchanges unmarshal: %w", err)
			}
			out = append(out, ex)
		}
		if len(page.LastEvaluatedKey) == 0 || (limit > 0 && len(out) >= limit) {
			break
		}
		in.ExclusiveStartKey = page.LastEvaluatedKey
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: ex.PK},
		"SK":              &types.AttributeValueMemberS{Value: ex.SK},
		"id":              &types.AttributeValueMemberS{Value: ex.ID},
		"correlationId":   &types.AttributeValueMemberS{Value: ex.CorrelationID},
		"originalMessage": &types.AttributeValueMemberS{Value: ex.OriginalMessage},
		"enhancedMessage": &types.AttributeValueMemberS{Value: ex.EnhancedMessage},
		"response":        &types.AttributeValueMemberS{Value: ex.Response},
		"source":          &types.AttributeValueMemberS{Value: string(ex.Source)},
		"fallbackReason":  &types.AttributeValueMemberS{Value: ex.FallbackReason},
		"createdAt":       &types.AttributeValueMemberS{Value: ex.CreatedAt},
		"ttl":             &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.TTL, 10)},
	}
}

// itemToExchange converts a DynamoDB attribute map to an Exchange.
func itemToExchange(item map[string]types.AttributeValue) (domain.Exchange, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Exchange{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Exchange{}, err
	}
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Exchange{}, err
	}
	source, err := strAttr(item, "source")
	if err != nil {
		return domain.Exchange{}, err
	}
	ttl, err := int64Attr(item, "ttl")
	if err != nil {
		return domain.Exchange{}, err
	}
	// allow empty
	correlationID, _ := strAttr(item, "correlationId")
	original, _ := strAttr(item, "originalMessage")
	enhanced, _ := strAttr(item, "enhancedMessage")
	response, _ := strAttr(item, "response")
	reason, _ := strAttr(item, "fallbackReason")
	createdAt, _ := strAttr(item, "createdAt")

	return domain.Exchange{
		PK:              pk,
		SK:              sk,
		ID:              id,
		CorrelationID:   correlationID,
		OriginalMessage: original,
		EnhancedMessage: enhanced,
		Response:        response,
		Source:          domain.Source(source),
		FallbackReason:  reason,
		CreatedAt:       createdAt,
		TTL:             ttl,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
