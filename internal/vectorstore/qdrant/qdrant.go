package qdrant

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"librarian/internal/domain"
)

const (
	payloadID       = "record_id"
	payloadTitle    = "title"
	payloadDocument = "document"
)

// Storage keeps book embeddings in a Qdrant collection over gRPC.
// The collection uses cosine distance and is created on Init when missing.
type Storage struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dimension   int
	timeout     time.Duration
}

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) (*Storage, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant: empty collection name")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	creds := insecure.NewCredentials()
	if cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}
	conn, err := grpc.NewClient(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), opts...)
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Storage{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
		timeout:     cfg.Timeout,
	}, nil
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	exists, err := s.exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) exists(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: s.collection})
	if err != nil {
		return false, fmt.Errorf("qdrant collection exists: %w", err)
	}
	return resp.GetResult().GetExists(), nil
}

func (s *Storage) create(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(s.dimension),
			Distance: pb.Distance_Cosine,
		}}},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	exists, err := s.exists(ctx)
	if err != nil || !exists {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{CollectionName: s.collection, Exact: &exact})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *Storage) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("entry without id")
		}
		if s.dimension != 0 && len(e.Embedding) != s.dimension {
			return fmt.Errorf("entry %s: vector dimension mismatch", e.ID)
		}
		points = append(points, toPoint(e))
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	wait := true
	if _, err := s.points.Upsert(ctx, &pb.UpsertPoints{CollectionName: s.collection, Wait: &wait, Points: points}); err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         toFloat32(vector),
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	hits := make([]domain.Hit, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		hits = append(hits, fromScored(pt))
	}
	return hits, nil
}

// Clear drops and recreates the collection.
func (s *Storage) Clear(ctx context.Context) error {
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.collections.Delete(dctx, &pb.DeleteCollection{CollectionName: s.collection})
	cancel()
	if err != nil {
		return fmt.Errorf("qdrant delete collection: %w", err)
	}
	if s.dimension == 0 {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) Close() error { return s.conn.Close() }

// pointID maps a record ID to a stable numeric Qdrant point ID.
func pointID(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func toPoint(e domain.IndexEntry) *pb.PointStruct {
	return &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: pointID(e.ID)}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: toFloat32(e.Embedding)}}},
		Payload: map[string]*pb.Value{
			payloadID:       {Kind: &pb.Value_StringValue{StringValue: e.ID}},
			payloadTitle:    {Kind: &pb.Value_StringValue{StringValue: e.Metadata.Title}},
			payloadDocument: {Kind: &pb.Value_StringValue{StringValue: e.Document}},
		},
	}
}

// fromScored converts a cosine similarity score into a distance.
func fromScored(pt *pb.ScoredPoint) domain.Hit {
	payload := pt.GetPayload()
	e := domain.IndexEntry{
		ID:       payload[payloadID].GetStringValue(),
		Metadata: domain.EntryMetadata{Title: payload[payloadTitle].GetStringValue()},
		Document: payload[payloadDocument].GetStringValue(),
	}
	if v := pt.GetVectors().GetVector(); v != nil {
		e.Embedding = toFloat64(v.GetData())
	}
	return domain.Hit{Entry: e, Distance: 1 - float64(pt.GetScore())}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

var _ domain.VectorStore = (*Storage)(nil)
