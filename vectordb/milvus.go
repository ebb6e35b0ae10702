package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// MilvusIndex queries a Milvus collection holding one dense and one
// sparse vector field per document. Blending is delegated to the
// server-side weighted ranker.
type MilvusIndex struct {
	c          client.Client
	collection string
	fields     MilvusFields
}

// MilvusFields names the collection fields the index reads and searches.
// Keywords is optional; when set, the field's comma-separated value is
// split into the document's keyword tags.
type MilvusFields struct {
	Dense    string
	Sparse   string
	Title    string
	Content  string
	URL      string
	Keywords string
}

// MilvusOptions configures the connection.
type MilvusOptions struct {
	Address  string
	Username string
	Password string
	Database string

	Collection string
	Fields     MilvusFields
}

func NewMilvusIndex(ctx context.Context, opt MilvusOptions) (*MilvusIndex, error) {
	c, err := client.NewClient(ctx, client.Config{
		Address:  opt.Address,
		Username: opt.Username,
		Password: opt.Password,
		DBName:   opt.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus connect: %w", err)
	}
	return &MilvusIndex{c: c, collection: opt.Collection, fields: opt.Fields}, nil
}

func (m *MilvusIndex) HybridQuery(ctx context.Context, dense []float32, sparse schema.SparseVector, alpha float64, topK int) ([]schema.Document, error) {
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, fmt.Errorf("milvus search param: %w", err)
	}

	denseReq := client.NewANNSearchRequest(m.fields.Dense, entity.IP, "",
		[]entity.Vector{entity.FloatVector(dense)}, sp, topK)

	var reqs []*client.ANNSearchRequest
	var weights []float64
	if sparse.IsZero() {
		reqs = []*client.ANNSearchRequest{denseReq}
		weights = []float64{1}
	} else {
		sv, err := entity.NewSliceSparseEmbedding(sparse.Indices, sparse.Values)
		if err != nil {
			return nil, fmt.Errorf("milvus sparse vector: %w", err)
		}
		sparseReq := client.NewANNSearchRequest(m.fields.Sparse, entity.IP, "",
			[]entity.Vector{sv}, sp, topK)
		// Weight order follows request order: sparse first.
		reqs = []*client.ANNSearchRequest{sparseReq, denseReq}
		weights = []float64{1 - alpha, alpha}
	}

	outputFields := []string{m.fields.Title, m.fields.Content, m.fields.URL}
	if m.fields.Keywords != "" {
		outputFields = append(outputFields, m.fields.Keywords)
	}
	results, err := m.c.HybridSearch(ctx, m.collection, nil, topK, outputFields,
		client.NewWeightedReranker(weights), reqs)
	if err != nil {
		return nil, fmt.Errorf("milvus hybrid search: %w", err)
	}

	var docs []schema.Document
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			doc := schema.Document{Score: float64(rs.Scores[i])}
			doc.Title = m.stringField(rs.Fields, m.fields.Title, i)
			doc.Content = m.stringField(rs.Fields, m.fields.Content, i)
			doc.URL = m.stringField(rs.Fields, m.fields.URL, i)
			if m.fields.Keywords != "" {
				doc.Keywords = splitKeywords(m.stringField(rs.Fields, m.fields.Keywords, i))
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// splitKeywords parses a comma-separated tag field, dropping blanks.
func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func (m *MilvusIndex) stringField(rs client.ResultSet, name string, i int) string {
	col := rs.GetColumn(name)
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		logger.Debugf("vectordb: field %s row %d: %v", name, i, err)
		return ""
	}
	return v
}

func (m *MilvusIndex) Close() error {
	return m.c.Close()
}
