package vector

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/andrew/ai-gateway/pkg/models"
)

// payloadDocumentID is the payload field carrying the owning document id.
const payloadDocumentID = "document_id"

// QdrantStore is a vector Store backed by a Qdrant collection over gRPC.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      qdrantclient.PointsClient
	collections qdrantclient.CollectionsClient
	collection  string
}

// NewQdrantStore connects to the Qdrant server at addr (host:port of the
// gRPC endpoint) and operates on the given collection.
func NewQdrantStore(addr, collection string) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:        conn,
		points:      qdrantclient.NewPointsClient(conn),
		collections: qdrantclient.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with the given vector size and
// cosine distance if it does not already exist. With recreate set, an
// existing collection is dropped first.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize uint64, recreate bool) error {
	collections, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	exists := false
	for _, col := range collections.GetCollections() {
		if col.GetName() == s.collection {
			exists = true
			break
		}
	}

	if exists && recreate {
		if _, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{
			CollectionName: s.collection,
		}); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
		exists = false
	}
	if exists {
		return nil
	}

	_, err = s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     vectorSize,
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert inserts or updates a document vector, keyed by the document id.
func (s *QdrantStore) Upsert(ctx context.Context, documentID string, vector []float32, payload map[string]string) error {
	fields := map[string]*qdrantclient.Value{
		payloadDocumentID: {Kind: &qdrantclient.Value_StringValue{StringValue: documentID}},
	}
	for key, value := range payload {
		fields[key] = &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: value}}
	}
	point := &qdrantclient.PointStruct{
		Id: &qdrantclient.PointId{
			PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: documentID},
		},
		Vectors: &qdrantclient.Vectors{
			VectorsOptions: &qdrantclient.Vectors_Vector{
				Vector: &qdrantclient.Vector{Data: vector},
			},
		},
		Payload: fields,
	}
	_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrantclient.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Search returns the ids of the documents most similar to the query vector,
// along with their similarity scores.
func (s *QdrantStore) Search(ctx context.Context, queryVector []float32, limit int) ([]models.SearchResult, error) {
	searchReq := &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         queryVector,
		Limit:          uint64(limit),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Include{
				Include: &qdrantclient.PayloadIncludeSelector{
					Fields: []string{payloadDocumentID},
				},
			},
		},
	}

	resp, err := s.points.Search(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Qdrant: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, point := range resp.Result {
		id := ""
		if val, ok := point.Payload[payloadDocumentID]; ok {
			id = val.GetStringValue()
		}
		if id == "" {
			continue
		}
		results = append(results, models.SearchResult{DocumentID: id, Score: point.GetScore()})
	}
	return results, nil
}

// Delete removes a document vector from the index.
func (s *QdrantStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.points.Delete(ctx, &qdrantclient.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrantclient.PointsSelector{
			PointsSelectorOneOf: &qdrantclient.PointsSelector_Points{
				Points: &qdrantclient.PointsIdsList{
					Ids: []*qdrantclient.PointId{
						{PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: documentID}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}
