package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
)

// dynamoiface is the subset of the dynamodb client we call; tests swap in a fake.
type dynamoiface interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var newDynamoClient = func(ctx context.Context, o storage.AWSOptions) (dynamoiface, error) {
	cfg, err := storage.LoadAWSConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(do *dynamodb.Options) {
		if o.Endpoint != "" {
			do.BaseEndpoint = aws.String(o.Endpoint)
		}
	}), nil
}

// Dynamo is a DynamoDB-backed table. The table's key schema decides which
// attributes identify an item; PutItem replaces any item with the same key.
type Dynamo struct {
	client dynamoiface
	name   string
}

func NewDynamo(ctx context.Context, name string, o storage.AWSOptions) (*Dynamo, error) {
	if name == "" {
		return nil, fmt.Errorf("dynamodb: table name required")
	}
	c, err := newDynamoClient(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("dynamodb init: %w", err)
	}
	return &Dynamo{client: c, name: name}, nil
}

func (d *Dynamo) Name() string { return d.name }

func (d *Dynamo) Put(ctx context.Context, rec normalize.Record) error {
	item, err := ToItem(rec)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.name),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item into %s: %w", d.name, err)
	}
	return nil
}

// Scan pages through the whole table.
func (d *Dynamo) Scan(ctx context.Context, fn func(normalize.Record) error) error {
	p := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: aws.String(d.name)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("scan %s: %w", d.name, err)
		}
		for _, item := range page.Items {
			rec, err := FromItem(item)
			if err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				if errors.Is(err, ErrStopScan) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// ToItem converts a record to DynamoDB attributes. Integers and decimals
// become N attributes holding their exact digits.
func ToItem(rec normalize.Record) (map[string]types.AttributeValue, error) {
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		m[k] = plain(v)
	}
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return item, nil
}

func plain(v normalize.Value) any {
	switch v.Kind() {
	case normalize.KindInt, normalize.KindDecimal:
		return attributevalue.Number(v.String())
	case normalize.KindList:
		elems := v.List()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = plain(e)
		}
		return out
	default:
		s, _ := v.Str()
		return s
	}
}

// FromItem converts DynamoDB attributes back into a record. Attribute types
// the loader never writes (maps, sets, booleans, null) come back as strings.
func FromItem(item map[string]types.AttributeValue) (normalize.Record, error) {
	var m map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &m, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	rec := make(normalize.Record, len(m))
	for k, raw := range m {
		v, err := fromPlain(raw, true)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		rec[k] = v
	}
	return rec, nil
}

func fromPlain(raw any, allowList bool) (normalize.Value, error) {
	switch x := raw.(type) {
	case attributevalue.Number:
		return normalize.ParseNumber(string(x))
	case string:
		return normalize.StringValue(x), nil
	case []any:
		if !allowList {
			break
		}
		elems := make([]normalize.Value, len(x))
		for i, e := range x {
			v, err := fromPlain(e, false)
			if err != nil {
				return normalize.Value{}, err
			}
			elems[i] = v
		}
		return normalize.ListValue(elems...), nil
	case nil:
		return normalize.StringValue(""), nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return normalize.Value{}, err
	}
	return normalize.StringValue(string(b)), nil
}
