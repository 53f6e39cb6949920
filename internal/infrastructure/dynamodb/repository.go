package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"institute-admin/internal/domain"
)

type Client struct {
	db        *awsv2dynamodb.Client
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg)
	return &Client{db: client, tableName: tableName}, nil
}

func rolePermsPK(roleID string) string { return "ROLEPERMS#" + roleID }
func rolePermsSK() string              { return "META" }
func auditPK() string                  { return "AUDIT" }
func auditSK(ts time.Time, id string) string {
	return "ENTRY#" + ts.Format(time.RFC3339Nano) + "#" + id
}

// RolePermsRepository is the remote override tier, one item per role id.
type RolePermsRepository struct{ client *Client }

func NewRolePermsRepository(client *Client) *RolePermsRepository {
	return &RolePermsRepository{client: client}
}

func (r *RolePermsRepository) Put(ctx context.Context, roleID string, perms domain.RolePermissions) error {
	permsAV, err := attributevalue.Marshal(perms)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutRolePerms", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(r.client.tableName),
			Item: map[string]awsv2types.AttributeValue{
				"PK":          &awsv2types.AttributeValueMemberS{Value: rolePermsPK(roleID)},
				"SK":          &awsv2types.AttributeValueMemberS{Value: rolePermsSK()},
				"EntityType":  &awsv2types.AttributeValueMemberS{Value: "ROLE_PERMS"},
				"RoleID":      &awsv2types.AttributeValueMemberS{Value: roleID},
				"Permissions": permsAV,
				"UpdatedAt":   &awsv2types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			},
		})
		return err
	})
}

func (r *RolePermsRepository) Get(ctx context.Context, roleID string) (domain.RolePermissions, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetRolePerms", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: rolePermsPK(roleID)},
				"SK": &awsv2types.AttributeValueMemberS{Value: rolePermsSK()},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	raw := struct {
		Permissions domain.RolePermissions `dynamodbav:"Permissions"`
	}{}
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return nil, err
	}
	if raw.Permissions == nil {
		return nil, domain.ErrNotFound
	}
	return raw.Permissions, nil
}

func (r *RolePermsRepository) All(ctx context.Context) (map[string]domain.RolePermissions, error) {
	var out *awsv2dynamodb.ScanOutput
	err := xray.Capture(ctx, "DynamoDB.ScanRolePerms", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Scan(ctx, &awsv2dynamodb.ScanInput{
			TableName:        aws.String(r.client.tableName),
			FilterExpression: aws.String("EntityType = :t"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":t": &awsv2types.AttributeValueMemberS{Value: "ROLE_PERMS"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	all := make(map[string]domain.RolePermissions, len(out.Items))
	for _, item := range out.Items {
		raw := struct {
			RoleID      string                 `dynamodbav:"RoleID"`
			Permissions domain.RolePermissions `dynamodbav:"Permissions"`
		}{}
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		if raw.RoleID != "" && raw.Permissions != nil {
			all[raw.RoleID] = raw.Permissions
		}
	}
	return all, nil
}

// AuditRepository stores the append-only audit trail under a single
// partition, newest entries first on read.
type AuditRepository struct{ client *Client }

func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{client: client}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	return xray.Capture(ctx, "DynamoDB.PutAuditEntry", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(r.client.tableName),
			Item: map[string]awsv2types.AttributeValue{
				"PK":         &awsv2types.AttributeValueMemberS{Value: auditPK()},
				"SK":         &awsv2types.AttributeValueMemberS{Value: auditSK(entry.Timestamp, entry.ID)},
				"EntityType": &awsv2types.AttributeValueMemberS{Value: "AUDIT_ENTRY"},
				"ID":         &awsv2types.AttributeValueMemberS{Value: entry.ID},
				"Timestamp":  &awsv2types.AttributeValueMemberS{Value: entry.Timestamp.Format(time.RFC3339Nano)},
				"User":       &awsv2types.AttributeValueMemberS{Value: entry.User},
				"Action":     &awsv2types.AttributeValueMemberS{Value: entry.Action},
				"Details":    &awsv2types.AttributeValueMemberS{Value: entry.Details},
			},
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		return err
	})
}

func (r *AuditRepository) List(ctx context.Context) ([]domain.AuditEntry, error) {
	var out *awsv2dynamodb.QueryOutput
	err := xray.Capture(ctx, "DynamoDB.QueryAuditEntries", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Query(ctx, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: auditPK()},
				":sk": &awsv2types.AttributeValueMemberS{Value: "ENTRY#"},
			},
			ScanIndexForward: aws.Bool(false),
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	entries := make([]domain.AuditEntry, 0, len(out.Items))
	for _, item := range out.Items {
		raw := struct {
			ID        string `dynamodbav:"ID"`
			Timestamp string `dynamodbav:"Timestamp"`
			User      string `dynamodbav:"User"`
			Action    string `dynamodbav:"Action"`
			Details   string `dynamodbav:"Details"`
		}{}
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, raw.Timestamp)
		entries = append(entries, domain.AuditEntry{ID: raw.ID, Timestamp: ts, User: raw.User, Action: raw.Action, Details: raw.Details})
	}
	return entries, nil
}
