package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

// UserDetailRepo provides typed DynamoDB operations for the user_details table.
// PK: user_id, SK: role.
type UserDetailRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserDetailRepo(client *dynamodb.Client, tableName string) *UserDetailRepo {
	return &UserDetailRepo{client: client, tableName: tableName}
}

func (r *UserDetailRepo) Put(ctx context.Context, d *domain.UserDetail) error {
	item, err := attributevalue.MarshalMap(d)
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

func (r *UserDetailRepo) Get(ctx context.Context, userID, role string) (*domain.UserDetail, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "role", role),
	})
	if err != nil {
		return nil, domain.StorageError(err)
	}
	if out.Item == nil {
		return nil, domain.NotFound(domain.CodeDetailNotFound, "user detail not found")
	}
	var d domain.UserDetail
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, domain.StorageError(err)
	}
	return &d, nil
}

func (r *UserDetailRepo) Update(ctx context.Context, userID, role string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withUpdatedAt(updates))
	if err != nil {
		return err
	}
	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", userID, "role", role),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}); err != nil {
		return domain.StorageError(err)
	}
	return nil
}
