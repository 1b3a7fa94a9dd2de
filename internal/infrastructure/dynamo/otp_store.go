package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/skillshare/api/internal/application/otp"
)

// OTPStore implements otp.Store on a DynamoDB table keyed by
// (identity, purpose). expires_at is stored as an epoch so the table's
// TTL handles expiry reaping; Sweep is therefore a no-op.
type OTPStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPStore(client *dynamodb.Client, tableName string) *OTPStore {
	return &OTPStore{client: client, tableName: tableName}
}

// otpRecord is the table shape. expires_at must be a Number for TTL.
type otpRecord struct {
	Identity    string `dynamodbav:"identity"`
	Purpose     string `dynamodbav:"purpose"`
	Code        string `dynamodbav:"code"`
	CreatedAt   int64  `dynamodbav:"created_at"`
	ExpiresAt   int64  `dynamodbav:"expires_at"`
	Attempts    int    `dynamodbav:"attempts"`
	MaxAttempts int    `dynamodbav:"max_attempts"`
	Used        bool   `dynamodbav:"used"`
}

func (s *OTPStore) Save(ctx context.Context, e otp.Entry) error {
	item, err := attributevalue.MarshalMap(otpRecord{
		Identity:    e.Identity,
		Purpose:     e.Purpose.String(),
		Code:        e.Code,
		CreatedAt:   e.CreatedAt.Unix(),
		ExpiresAt:   e.ExpiresAt.Unix(),
		Attempts:    e.Attempts,
		MaxAttempts: e.MaxAttempts,
		Used:        e.Used,
	})
	if err != nil {
		return fmt.Errorf("marshal otp entry: %w", err)
	}
	// PutItem replaces any prior entry for the same key, which is what
	// keeps at most one live code per (identity, purpose).
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	return err
}

func (s *OTPStore) Get(ctx context.Context, identity string, purpose otp.Purpose) (*otp.Entry, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       compositeKey("identity", identity, "purpose", purpose.String()),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, otp.ErrNotFound
	}
	var rec otpRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &otp.Entry{
		Code:        rec.Code,
		Identity:    rec.Identity,
		Purpose:     otp.Purpose(rec.Purpose),
		CreatedAt:   time.Unix(rec.CreatedAt, 0).UTC(),
		ExpiresAt:   time.Unix(rec.ExpiresAt, 0).UTC(),
		Attempts:    rec.Attempts,
		MaxAttempts: rec.MaxAttempts,
		Used:        rec.Used,
	}, nil
}

func (s *OTPStore) Delete(ctx context.Context, identity string, purpose otp.Purpose) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       compositeKey("identity", identity, "purpose", purpose.String()),
	})
	return err
}

func (s *OTPStore) IncrementAttempts(ctx context.Context, identity string, purpose otp.Purpose) (int, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 compositeKey("identity", identity, "purpose", purpose.String()),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(identity)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return 0, otp.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	attr, ok := out.Attributes["attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected attempts attribute %T", out.Attributes["attempts"])
	}
	return strconv.Atoi(attr.Value)
}

func (s *OTPStore) MarkUsed(ctx context.Context, identity string, purpose otp.Purpose) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 compositeKey("identity", identity, "purpose", purpose.String()),
		UpdateExpression:    aws.String("SET used = :t"),
		ConditionExpression: aws.String("attribute_exists(identity)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return otp.ErrNotFound
	}
	return err
}

// Sweep is a no-op: the table's TTL on expires_at reaps dead entries.
func (s *OTPStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
