package repository

import (
	"context"
	"errors"
	"os"
	"time"

	"xandr_checkout/internal/domain/entities"
	"xandr_checkout/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultProvisionedTableName = "provisioned_payments"
	defaultAuditTableName       = "payment_audit"
)

type provisionedItem struct {
	PaymentID     string `dynamodbav:"payment_id"`
	ProvisionedAt string `dynamodbav:"provisioned_at"`
}

type paymentAuditItem struct {
	PaymentID string `dynamodbav:"payment_id"`
	Status    string `dynamodbav:"status"`
	Payload   string `dynamodbav:"payload,omitempty"`
	Date      string `dynamodbav:"date"`
}

// PaymentRecordDynamoRepository keeps per-payment bookkeeping in DynamoDB.
//
// Table requirements:
//   - provisioned_payments: PK payment_id (string)
//   - payment_audit: PK payment_id (string)
//
// The provisioned marker uses a conditional put so concurrent webhook
// deliveries for the same payment resolve to exactly one winner.

type PaymentRecordDynamoRepository struct {
	ddb              *dynamodb.Client
	provisionedTable string
	auditTable       string
}

var _ interfaces.IPaymentRecordRepository = (*PaymentRecordDynamoRepository)(nil)

func NewPaymentRecordDynamoRepository(ddb *dynamodb.Client) *PaymentRecordDynamoRepository {
	return &PaymentRecordDynamoRepository{
		ddb:              ddb,
		provisionedTable: getenvDefault("PROVISIONED_PAYMENTS_TABLE", defaultProvisionedTableName),
		auditTable:       getenvDefault("PAYMENT_AUDIT_TABLE", defaultAuditTableName),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// MarkProvisioned records that paymentID has been provisioned. Returns
// false when some other delivery won the conditional put first.
func (r *PaymentRecordDynamoRepository) MarkProvisioned(ctx context.Context, paymentID string) (bool, error) {
	it := provisionedItem{
		PaymentID:     paymentID,
		ProvisionedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return false, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.provisionedTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#pid)"),
		ExpressionAttributeNames: map[string]string{
			"#pid": "payment_id",
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PaymentRecordDynamoRepository) SaveAudit(ctx context.Context, rec entities.PaymentAuditRecord) error {
	date := rec.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	it := paymentAuditItem{
		PaymentID: rec.PaymentID,
		Status:    rec.Status,
		Payload:   string(rec.Payload),
		Date:      date.UTC().Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.auditTable),
		Item:      av,
	})
	return err
}
