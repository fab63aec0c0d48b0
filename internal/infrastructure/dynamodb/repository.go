package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"

	"elearn-backoffice/internal/domain"
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

const rolePartition = "ROLE"

func roleSK(name string) string       { return "ROLE#" + name }
func principalPK(email string) string { return "PRINCIPAL#" + email }
func principalAccessSK() string       { return "ACCESS" }
func treePK(key string) string        { return "TREE#" + key }
func treeNodeSK(nodeID string) string { return "NODE#" + nodeID }

func isConditionalCheckFailure(err error) bool {
	var condErr *awsv2types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

type RoleRepository struct{ client *Client }

type AssignmentRepository struct{ client *Client }

type TreeRepository struct{ client *Client }

func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{client: client}
}

func NewAssignmentRepository(client *Client) *AssignmentRepository {
	return &AssignmentRepository{client: client}
}

func NewTreeRepository(client *Client) *TreeRepository {
	return &TreeRepository{client: client}
}

type roleItem struct {
	Name        string                            `dynamodbav:"RoleName"`
	Permissions map[string]domain.PermissionFlags `dynamodbav:"Permissions"`
	UIAccess    []domain.UIAccessEntry            `dynamodbav:"UIAccess"`
	CreatedAt   string                            `dynamodbav:"CreatedAt"`
	UpdatedAt   string                            `dynamodbav:"UpdatedAt"`
}

func roleFromItem(raw roleItem) domain.Role {
	permissions := make(map[domain.Resource]domain.PermissionFlags, len(raw.Permissions))
	for resource, flags := range raw.Permissions {
		permissions[domain.Resource(resource)] = flags
	}
	createdAt, _ := time.Parse(time.RFC3339, raw.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, raw.UpdatedAt)
	return domain.Role{
		Name:        raw.Name,
		Permissions: permissions,
		UIAccess:    raw.UIAccess,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func rolePermissionsItem(role domain.Role) map[string]domain.PermissionFlags {
	permissions := make(map[string]domain.PermissionFlags, len(role.Permissions))
	for resource, flags := range role.Permissions {
		permissions[string(resource)] = flags
	}
	return permissions
}

func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	item := map[string]any{
		"PK":          rolePartition,
		"SK":          roleSK(role.Name),
		"EntityType":  "ROLE",
		"RoleName":    role.Name,
		"Permissions": rolePermissionsItem(role),
		"UIAccess":    role.UIAccess,
		"CreatedAt":   role.CreatedAt.Format(time.RFC3339),
		"UpdatedAt":   role.UpdatedAt.Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutRole", func(ctx context.Context) error {
		_, err = r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           aws.String(r.client.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrAlreadyExists
		}
		return err
	})
}

func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	permissionsAV, err := attributevalue.Marshal(rolePermissionsItem(role))
	if err != nil {
		return err
	}
	uiAccessAV, err := attributevalue.Marshal(role.UIAccess)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.UpdateRole", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: rolePartition},
				"SK": &awsv2types.AttributeValueMemberS{Value: roleSK(role.Name)},
			},
			UpdateExpression: aws.String("SET Permissions = :p, UIAccess = :ua, UpdatedAt = :u"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":p":  permissionsAV,
				":ua": uiAccessAV,
				":u":  &awsv2types.AttributeValueMemberS{Value: role.UpdatedAt.Format(time.RFC3339)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *RoleRepository) Delete(ctx context.Context, name string) error {
	return xray.Capture(ctx, "DynamoDB.DeleteRole", func(ctx context.Context) error {
		_, err := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: rolePartition},
				"SK": &awsv2types.AttributeValueMemberS{Value: roleSK(name)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (domain.Role, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetRole", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: rolePartition},
				"SK": &awsv2types.AttributeValueMemberS{Value: roleSK(name)},
			},
		})
		return e
	})
	if err != nil {
		return domain.Role{}, err
	}
	if out.Item == nil {
		return domain.Role{}, domain.ErrNotFound
	}
	var raw roleItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.Role{}, err
	}
	return roleFromItem(raw), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var out *awsv2dynamodb.QueryOutput
	err := xray.Capture(ctx, "DynamoDB.QueryRoles", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Query(ctx, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: rolePartition},
				":sk": &awsv2types.AttributeValueMemberS{Value: "ROLE#"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(out.Items))
	for _, item := range out.Items {
		var raw roleItem
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		roles = append(roles, roleFromItem(raw))
	}
	return roles, nil
}

func (r *AssignmentRepository) Put(ctx context.Context, assignment domain.AccessAssignment) error {
	rolesAV, err := attributevalue.Marshal(assignment.RoleNames)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutAssignment", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(r.client.tableName),
			Item: map[string]awsv2types.AttributeValue{
				"PK":         &awsv2types.AttributeValueMemberS{Value: principalPK(assignment.Principal)},
				"SK":         &awsv2types.AttributeValueMemberS{Value: principalAccessSK()},
				"EntityType": &awsv2types.AttributeValueMemberS{Value: "ACCESS_ASSIGNMENT"},
				"RoleNames":  rolesAV,
				"UpdatedAt":  &awsv2types.AttributeValueMemberS{Value: assignment.UpdatedAt.Format(time.RFC3339)},
			},
		})
		return err
	})
}

func (r *AssignmentRepository) GetByPrincipal(ctx context.Context, principal string) (domain.AccessAssignment, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetAssignment", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: principalPK(principal)},
				"SK": &awsv2types.AttributeValueMemberS{Value: principalAccessSK()},
			},
		})
		return e
	})
	if err != nil {
		return domain.AccessAssignment{}, err
	}
	if out.Item == nil {
		return domain.AccessAssignment{}, domain.ErrNotFound
	}
	raw := struct {
		RoleNames []string `dynamodbav:"RoleNames"`
		UpdatedAt string   `dynamodbav:"UpdatedAt"`
	}{}
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.AccessAssignment{}, err
	}
	updatedAt, _ := time.Parse(time.RFC3339, raw.UpdatedAt)
	return domain.AccessAssignment{Principal: principal, RoleNames: raw.RoleNames, UpdatedAt: updatedAt}, nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, principal string) error {
	return xray.Capture(ctx, "DynamoDB.DeleteAssignment", func(ctx context.Context) error {
		_, err := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
			TableName: aws.String(r.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: principalPK(principal)},
				"SK": &awsv2types.AttributeValueMemberS{Value: principalAccessSK()},
			},
		})
		return err
	})
}

type treeNodeItem struct {
	ID       string            `dynamodbav:"ID"`
	Ordinal  int               `dynamodbav:"Ordinal"`
	Name     string            `dynamodbav:"NodeName"`
	Path     string            `dynamodbav:"Path"`
	IconName string            `dynamodbav:"IconName"`
	Children []domain.TreeNode `dynamodbav:"Children"`
}

// Get loads every top-level node item of the document and orders them by
// ordinal. Children are embedded on their parent item.
func (r *TreeRepository) Get(ctx context.Context, key string) (domain.Forest, error) {
	var out *awsv2dynamodb.QueryOutput
	err := xray.Capture(ctx, "DynamoDB.QueryTree", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.Query(ctx, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(r.client.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: treePK(key)},
				":sk": &awsv2types.AttributeValueMemberS{Value: "NODE#"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrNotFound
	}
	forest := make(domain.Forest, 0, len(out.Items))
	for _, item := range out.Items {
		var raw treeNodeItem
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		forest = append(forest, domain.TreeNode{
			ID:       raw.ID,
			Ordinal:  raw.Ordinal,
			Name:     raw.Name,
			Path:     raw.Path,
			IconName: raw.IconName,
			Children: raw.Children,
		})
	}
	sort.Slice(forest, func(i, j int) bool { return forest[i].Ordinal < forest[j].Ordinal })
	return forest, nil
}

// Replace overwrites the whole document: stale top-level items are deleted
// and every submitted node is written. There is no version guard; the last
// writer wins.
func (r *TreeRepository) Replace(ctx context.Context, key string, forest domain.Forest) error {
	current, err := r.Get(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	keep := make(map[string]bool, len(forest))
	for _, node := range forest {
		keep[node.ID] = true
	}
	for _, node := range current {
		if keep[node.ID] {
			continue
		}
		stale := node
		err := xray.Capture(ctx, "DynamoDB.DeleteTreeNode", func(ctx context.Context) error {
			_, e := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
				TableName: aws.String(r.client.tableName),
				Key: map[string]awsv2types.AttributeValue{
					"PK": &awsv2types.AttributeValueMemberS{Value: treePK(key)},
					"SK": &awsv2types.AttributeValueMemberS{Value: treeNodeSK(stale.ID)},
				},
			})
			return e
		})
		if err != nil {
			return err
		}
	}
	for _, node := range forest {
		item := map[string]any{
			"PK":         treePK(key),
			"SK":         treeNodeSK(node.ID),
			"EntityType": "TREE_NODE",
			"ID":         node.ID,
			"Ordinal":    node.Ordinal,
			"NodeName":   node.Name,
			"Path":       node.Path,
			"IconName":   node.IconName,
			"Children":   node.Children,
		}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return err
		}
		err = xray.Capture(ctx, "DynamoDB.PutTreeNode", func(ctx context.Context) error {
			_, e := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
				TableName: aws.String(r.client.tableName),
				Item:      av,
			})
			return e
		})
		if err != nil {
			return err
		}
	}
	return nil
}
