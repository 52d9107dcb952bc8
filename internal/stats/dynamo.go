package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoConfig 描述聚合存储所在的 DynamoDB 表。
// Endpoint 非空时指向本地实例（dynamodb-local），使用占位凭证。
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string
}

// DynamoStore 是 Store 的 DynamoDB 实现。
// 表结构：分区键 userId (N)，排序键 exerciseName (S)。
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoStore 构造 DynamoDB 客户端并校验目标表可用。
// 针对本地端点会在表缺失时自动建表，线上环境的表由基础设施管理。
func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	// 本地 DynamoDB 不校验凭证内容，但 SDK 要求必须存在
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *dynamodb.Client
	if cfg.Endpoint != "" {
		client = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	} else {
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoStore{client: client, table: cfg.Table}

	if cfg.Endpoint != "" {
		if err := store.ensureTable(ctx); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// aggregateItem 是聚合行在 DynamoDB 中的存储形态，日期存 RFC3339 字符串。
type aggregateItem struct {
	UserID          uint    `dynamodbav:"userId"`
	ExerciseName    string  `dynamodbav:"exerciseName"`
	TotalWorkouts   int     `dynamodbav:"totalWorkouts"`
	TotalSets       int     `dynamodbav:"totalSets"`
	TotalReps       int     `dynamodbav:"totalReps"`
	TotalVolume     float64 `dynamodbav:"totalVolume"`
	MaxWeight       float64 `dynamodbav:"maxWeight"`
	LastWorkoutDate string  `dynamodbav:"lastWorkoutDate"`
	LastUpdated     string  `dynamodbav:"lastUpdated"`
}

func toItem(agg *ExerciseAggregate) aggregateItem {
	item := aggregateItem{
		UserID:        agg.UserID,
		ExerciseName:  agg.ExerciseName,
		TotalWorkouts: agg.TotalWorkouts,
		TotalSets:     agg.TotalSets,
		TotalReps:     agg.TotalReps,
		TotalVolume:   agg.TotalVolume,
		MaxWeight:     agg.MaxWeight,
	}
	if !agg.LastWorkoutDate.IsZero() {
		item.LastWorkoutDate = agg.LastWorkoutDate.Format(time.RFC3339)
	}
	if !agg.LastUpdated.IsZero() {
		item.LastUpdated = agg.LastUpdated.Format(time.RFC3339)
	}
	return item
}

func fromItem(item aggregateItem) ExerciseAggregate {
	agg := ExerciseAggregate{
		UserID:        item.UserID,
		ExerciseName:  item.ExerciseName,
		TotalWorkouts: item.TotalWorkouts,
		TotalSets:     item.TotalSets,
		TotalReps:     item.TotalReps,
		TotalVolume:   item.TotalVolume,
		MaxWeight:     item.MaxWeight,
	}
	if item.LastWorkoutDate != "" {
		if t, err := time.Parse(time.RFC3339, item.LastWorkoutDate); err == nil {
			agg.LastWorkoutDate = t
		}
	}
	if item.LastUpdated != "" {
		if t, err := time.Parse(time.RFC3339, item.LastUpdated); err == nil {
			agg.LastUpdated = t
		}
	}
	return agg
}

func (s *DynamoStore) key(userID uint, exerciseName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":       &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
		"exerciseName": &types.AttributeValueMemberS{Value: exerciseName},
	}
}

// Get 读取单个聚合行，不存在时返回 (nil, nil)
func (s *DynamoStore) Get(ctx context.Context, userID uint, exerciseName string) (*ExerciseAggregate, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(userID, exerciseName),
	})
	if err != nil {
		return nil, fmt.Errorf("get aggregate item: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var item aggregateItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal aggregate item: %w", err)
	}

	agg := fromItem(item)
	return &agg, nil
}

// Put 覆盖写入聚合行
func (s *DynamoStore) Put(ctx context.Context, agg *ExerciseAggregate) error {
	item, err := attributevalue.MarshalMap(toItem(agg))
	if err != nil {
		return fmt.Errorf("marshal aggregate item: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put aggregate item: %w", err)
	}

	return nil
}

// ListByUser 查询指定用户的全部聚合行，按动作名称排序返回
func (s *DynamoStore) ListByUser(ctx context.Context, userID uint) ([]ExerciseAggregate, error) {
	var rows []ExerciseAggregate

	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("userId = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query aggregates: %w", err)
		}

		var items []aggregateItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal aggregate items: %w", err)
		}
		for _, item := range items {
			rows = append(rows, fromItem(item))
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ExerciseName < rows[j].ExerciseName
	})

	return rows, nil
}

// ensureTable 在本地开发环境补建聚合表（对应线上的初始化脚本）
func (s *DynamoStore) ensureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe stats table: %w", err)
	}

	if _, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("userId"), AttributeType: types.ScalarAttributeTypeN},
			{AttributeName: aws.String("exerciseName"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("userId"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("exerciseName"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}); err != nil {
		return fmt.Errorf("create stats table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for stats table: %w", err)
	}

	return nil
}
