package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

// otpAPI is the narrow DynamoDB call surface the repo uses,
// satisfied by *dynamodb.Client.
type otpAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// OTPRepo manages one-time codes keyed by email address.
// PK: email — a PutItem on the same address atomically supersedes the
// previous code, so at most one code per address is ever live.
type OTPRepo struct {
	client    otpAPI
	tableName string
	now       func() time.Time
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, now: time.Now}
}

// Store writes a fresh code for email, replacing any live one, with
// expires_at = now + ttl.
func (r *OTPRepo) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if email == "" || code == "" {
		return domain.BadRequest(domain.CodeMissingFields, "email and OTP are required")
	}
	now := r.now().UTC()
	v := &domain.EmailOTP{
		Email:     email,
		Code:      code,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return domain.StorageError(err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		return domain.StorageError(err)
	}
	return nil
}

// Consume atomically deletes the record for (email, code) and reports the
// outcome. A wrong code (or no record) fails the conditional delete and
// leaves any live record untouched. A matched record is always removed,
// then rejected with EXPIRED_OTP when past its window — so a code can
// succeed at most once and an expired code cannot be replayed.
func (r *OTPRepo) Consume(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return domain.BadRequest(domain.CodeMissingFields, "email and OTP are required")
	}
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		ConditionExpression:       aws.String("code = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: code}},
		ReturnValues:              types.ReturnValueAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.BadRequest(domain.CodeInvalidOTP, "invalid OTP")
		}
		return domain.StorageError(err)
	}
	var v domain.EmailOTP
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return domain.StorageError(err)
	}
	return checkConsumed(&v, r.now())
}

// checkConsumed evaluates a consumed record against the clock.
func checkConsumed(v *domain.EmailOTP, now time.Time) error {
	if now.Unix() > v.ExpiresAt {
		return domain.BadRequest(domain.CodeExpiredOTP, "OTP has expired")
	}
	return nil
}

// SweepExpired deletes every record whose expiry is in the past and returns
// the number removed. The expiry comparison uses the same Unix-seconds clock
// as Store, so a sweep running concurrently with Store/Consume can never
// remove a live code.
func (r *OTPRepo) SweepExpired(ctx context.Context) (int, error) {
	nowUnix := r.now().Unix()
	removed := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("expires_at < :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: formatInt(nowUnix)},
			},
			ProjectionExpression: aws.String("email"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return removed, domain.StorageError(err)
		}
		for _, item := range out.Items {
			emailAttr, ok := item["email"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			// Re-check expiry on delete so a code refreshed between scan and
			// delete survives the sweep.
			if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey("email", emailAttr.Value),
				ConditionExpression:       aws.String("expires_at < :now"),
				ExpressionAttributeValues: map[string]types.AttributeValue{":now": &types.AttributeValueMemberN{Value: formatInt(nowUnix)}},
			}); err != nil {
				var ccf *types.ConditionalCheckFailedException
				if errors.As(err, &ccf) {
					continue
				}
				return removed, domain.StorageError(err)
			}
			removed++
		}
		if out.LastEvaluatedKey == nil {
			return removed, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
