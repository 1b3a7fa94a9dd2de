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
	"github.com/skillshare/api/internal/domain"
)

// WalletRepo provides typed DynamoDB operations for wallets and their
// immutable entry log. Balance movements are never blind SETs: credits ride
// in the payment-completion transaction and withdrawals are guarded ADDs,
// and both append a WalletEntry in the same transaction.
type WalletRepo struct {
	client        *dynamodb.Client
	walletsTable  string
	entriesTable  string
	paymentsTable string
}

func NewWalletRepo(client *dynamodb.Client, walletsTable, entriesTable, paymentsTable string) *WalletRepo {
	return &WalletRepo{
		client:        client,
		walletsTable:  walletsTable,
		entriesTable:  entriesTable,
		paymentsTable: paymentsTable,
	}
}

// Get returns the user's wallet; a user who never received funds gets a
// zero-balance wallet rather than ErrNotFound.
func (r *WalletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.walletsTable),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return &domain.Wallet{UserID: userID, Currency: "USD"}, nil
	}
	var w domain.Wallet
	if err := attributevalue.UnmarshalMap(out.Item, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepo) ListEntries(ctx context.Context, userID string) ([]domain.WalletEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.entriesTable),
		IndexName:                 aws.String("user_id-created_at-index"),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.WalletEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreditForPayment atomically: moves the payment processing -> completed,
// adds the amount to the payee's wallet, and appends the credit entry.
// A replayed webhook delivery fails the payment condition and the whole
// transaction, leaving the balance credited exactly once.
func (r *WalletRepo) CreditForPayment(ctx context.Context, e *domain.WalletEntry, providerRef string) error {
	entryItem, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal wallet entry: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.paymentsTable),
					Key:                 strKey("payment_id", e.PaymentID),
					UpdateExpression:    aws.String("SET #s = :completed, #p = :ref, #u = :now"),
					ConditionExpression: aws.String("#s = :processing"),
					ExpressionAttributeNames: map[string]string{
						"#s": fieldStatus,
						"#p": fieldProviderRef,
						"#u": fieldUpdatedAt,
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":completed":  &types.AttributeValueMemberS{Value: domain.PaymentCompleted},
						":processing": &types.AttributeValueMemberS{Value: domain.PaymentProcessing},
						":ref":        &types.AttributeValueMemberS{Value: providerRef},
						":now":        &types.AttributeValueMemberS{Value: now},
					},
				},
			},
			{
				Update: &types.Update{
					TableName:        aws.String(r.walletsTable),
					Key:              strKey("user_id", e.UserID),
					UpdateExpression: aws.String("ADD balance_cents :amt SET #u = :now, currency = if_not_exists(currency, :cur)"),
					ExpressionAttributeNames: map[string]string{
						"#u": fieldUpdatedAt,
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amt": &types.AttributeValueMemberN{Value: strconv.FormatInt(e.AmountCents, 10)},
						":now": &types.AttributeValueMemberS{Value: now},
						":cur": &types.AttributeValueMemberS{Value: "USD"},
					},
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.entriesTable),
					Item:      entryItem,
				},
			},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return fmt.Errorf("payment %s already settled: %w", e.PaymentID, domain.ErrConflict)
	}
	return err
}

// Withdraw atomically debits the wallet, guarded by balance_cents >= amount
// so a stale read can never overdraw, and appends the withdrawal entry.
// e.AmountCents must be negative.
func (r *WalletRepo) Withdraw(ctx context.Context, e *domain.WalletEntry) error {
	if e.AmountCents >= 0 {
		return fmt.Errorf("withdrawal amount must be negative: %w", domain.ErrBadRequest)
	}
	entryItem, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal wallet entry: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.walletsTable),
					Key:                 strKey("user_id", e.UserID),
					UpdateExpression:    aws.String("ADD balance_cents :amt SET #u = :now"),
					ConditionExpression: aws.String("balance_cents >= :abs"),
					ExpressionAttributeNames: map[string]string{
						"#u": fieldUpdatedAt,
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amt": &types.AttributeValueMemberN{Value: strconv.FormatInt(e.AmountCents, 10)},
						":abs": &types.AttributeValueMemberN{Value: strconv.FormatInt(-e.AmountCents, 10)},
						":now": &types.AttributeValueMemberS{Value: now},
					},
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.entriesTable),
					Item:      entryItem,
				},
			},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return fmt.Errorf("insufficient funds: %w", domain.ErrConflict)
	}
	return err
}
