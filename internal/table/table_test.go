package table

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/csv-loader/internal/config"
	"github.com/yourorg/csv-loader/internal/normalize"
	"github.com/yourorg/csv-loader/internal/storage"
)

// fakeDynamo keeps puts in order and serves scans one item per page.
type fakeDynamo struct {
	items   []map[string]types.AttributeValue
	putErr  error
	lastTbl string
	scans   int
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.lastTbl = aws.ToString(in.TableName)
	f.items = append(f.items, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans++
	start := 0
	if in.ExclusiveStartKey != nil {
		start = int(mustInt(in.ExclusiveStartKey["pos"])) + 1
	}
	if start >= len(f.items) {
		return &dynamodb.ScanOutput{}, nil
	}
	out := &dynamodb.ScanOutput{Items: f.items[start : start+1]}
	if start+1 < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"pos": &types.AttributeValueMemberN{Value: itoa(start)},
		}
	}
	return out, nil
}

func mustInt(av types.AttributeValue) int64 {
	v, _ := normalize.ParseNumber(av.(*types.AttributeValueMemberN).Value)
	n, _ := v.Int()
	return n
}

func itoa(n int) string { return normalize.IntValue(int64(n)).String() }

func withFakeDynamo(t *testing.T, f *fakeDynamo) {
	t.Helper()
	old := newDynamoClient
	newDynamoClient = func(ctx context.Context, _ storage.AWSOptions) (dynamoiface, error) { return f, nil }
	t.Cleanup(func() { newDynamoClient = old })
}

func sampleRecords(t *testing.T) []normalize.Record {
	t.Helper()
	res, err := normalize.Normalize("id,score,name,tags\n1,2.5,alpha,\"[1, 0.25, \"\"x\"\"]\"\n2,3.14,beta,\"[2]\"\n")
	require.NoError(t, err)
	return res.Records
}

func TestToItemKeepsExactNumbers(t *testing.T) {
	item, err := ToItem(sampleRecords(t)[1])
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, item["id"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "3.14"}, item["score"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "beta"}, item["name"])
	l, ok := item["tags"].(*types.AttributeValueMemberL)
	require.True(t, ok)
	assert.Equal(t, []types.AttributeValue{&types.AttributeValueMemberN{Value: "2"}}, l.Value)
}

func TestFromItemRoundTrip(t *testing.T) {
	for _, rec := range sampleRecords(t) {
		item, err := ToItem(rec)
		require.NoError(t, err)
		back, err := FromItem(item)
		require.NoError(t, err)
		assert.True(t, back.Equal(rec), "%v != %v", back, rec)
	}
}

func TestFromItemForeignTypes(t *testing.T) {
	rec, err := FromItem(map[string]types.AttributeValue{
		"flag": &types.AttributeValueMemberBOOL{Value: true},
		"none": &types.AttributeValueMemberNULL{Value: true},
	})
	require.NoError(t, err)
	assert.True(t, rec["flag"].Equal(normalize.StringValue("true")))
	assert.True(t, rec["none"].Equal(normalize.StringValue("")))
}

func TestDynamoPutAndScan(t *testing.T) {
	f := &fakeDynamo{}
	withFakeDynamo(t, f)
	d, err := NewDynamo(context.Background(), "scores", storage.AWSOptions{})
	require.NoError(t, err)
	assert.Equal(t, "scores", d.Name())

	recs := sampleRecords(t)
	for _, r := range recs {
		require.NoError(t, d.Put(context.Background(), r))
	}
	assert.Equal(t, "scores", f.lastTbl)

	var got []normalize.Record
	require.NoError(t, d.Scan(context.Background(), func(r normalize.Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(recs[0]))
	assert.True(t, got[1].Equal(recs[1]))
	assert.Equal(t, 2, f.scans)
}

func TestDynamoPutError(t *testing.T) {
	boom := errors.New("ValidationException: missing key")
	withFakeDynamo(t, &fakeDynamo{putErr: boom})
	d, err := NewDynamo(context.Background(), "scores", storage.AWSOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Put(context.Background(), sampleRecords(t)[0]), boom)

	_, err = NewDynamo(context.Background(), "", storage.AWSOptions{})
	assert.Error(t, err)
}

func TestBadgerUpsertAndScan(t *testing.T) {
	b, err := OpenBadger("", "scores", "id")
	require.NoError(t, err)
	defer b.Close()

	recs := sampleRecords(t)
	for _, r := range recs {
		require.NoError(t, b.Put(context.Background(), r))
	}
	// same key overwrites
	updated := normalize.Record{"id": normalize.IntValue(1), "name": normalize.StringValue("gamma")}
	require.NoError(t, b.Put(context.Background(), updated))

	var got []normalize.Record
	require.NoError(t, b.Scan(context.Background(), func(r normalize.Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(updated))
	assert.True(t, got[1].Equal(recs[1]))
}

func TestBadgerTablesShareDatabase(t *testing.T) {
	a, err := OpenBadger("", "a", "id")
	require.NoError(t, err)
	defer a.Close()
	other, err := NewBadger(a.db, "b", "id")
	require.NoError(t, err)
	require.NoError(t, other.Close())

	require.NoError(t, a.Put(context.Background(), normalize.Record{"id": normalize.IntValue(1)}))
	n := 0
	require.NoError(t, other.Scan(context.Background(), func(normalize.Record) error { n++; return nil }))
	assert.Zero(t, n)
}

func TestBadgerMissingKey(t *testing.T) {
	b, err := OpenBadger("", "scores", "id")
	require.NoError(t, err)
	defer b.Close()
	err = b.Put(context.Background(), normalize.Record{"name": normalize.StringValue("x")})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestBadgerStopScan(t *testing.T) {
	b, err := OpenBadger("", "scores", "id")
	require.NoError(t, err)
	defer b.Close()
	for _, r := range sampleRecords(t) {
		require.NoError(t, b.Put(context.Background(), r))
	}
	n := 0
	require.NoError(t, b.Scan(context.Background(), func(normalize.Record) error {
		n++
		return ErrStopScan
	}))
	assert.Equal(t, 1, n)
}

func TestOpenBackends(t *testing.T) {
	tbl, closeFn, err := Open(context.Background(), config.Config{
		Backend: config.BackendBadger, TableName: "scores", TableKey: "id",
	})
	require.NoError(t, err)
	assert.Equal(t, "scores", tbl.Name())
	require.NoError(t, closeFn())

	withFakeDynamo(t, &fakeDynamo{})
	tbl, closeFn, err = Open(context.Background(), config.Config{Backend: config.BackendDynamo, TableName: "scores"})
	require.NoError(t, err)
	assert.IsType(t, &Dynamo{}, tbl)
	assert.NoError(t, closeFn())

	_, closeFn, err = Open(context.Background(), config.Config{Backend: "redis", TableName: "x"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
