package storage

import (
	"context"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement
const DefaultBatchSize = 10000

const (
	createIndexQuery = `CREATE INDEX vertex_id IF NOT EXISTS FOR (v:Vertex) ON (v.id)`

	mergeVerticesQuery = `
		UNWIND $rows AS row
		MERGE (v:Vertex {id: row.id})
		SET v.type = row.type
	`

	createEdgesQuery = `
		UNWIND $rows AS row
		MATCH (s:Vertex {id: row.src})
		MATCH (d:Vertex {id: row.dst})
		CREATE (s)-[:EDGE {partition: $partition, seq: row.seq}]->(d)
	`
)

// Neo4jLoader writes plain vertex and edge lists into Neo4j. Dense ids are
// stored as strings because hash-mode ids can exceed the int64 range.
type Neo4jLoader struct {
	driver    neo4j.Driver
	batchSize int
	logger    logrus.FieldLogger
}

// NewNeo4jLoader creates a loader for the given server
func NewNeo4jLoader(uri, username, password string, batchSize int, logger logrus.FieldLogger) (*Neo4jLoader, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Neo4j driver")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Neo4jLoader{
		driver:    driver,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Connect verifies the server is reachable and creates the id index
func (l *Neo4jLoader) Connect(ctx context.Context) error {
	if err := l.driver.VerifyConnectivity(); err != nil {
		return errors.Wrap(err, "connect to Neo4j")
	}

	session := l.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.Run(createIndexQuery, nil)
	if err != nil {
		return errors.Wrap(err, "create vertex index")
	}
	_, err = result.Consume()
	return errors.Wrap(err, "create vertex index")
}

// Close releases the driver
func (l *Neo4jLoader) Close() error {
	if l.driver != nil {
		return l.driver.Close()
	}
	return nil
}

// LoadVertices merges the vertices in batches
func (l *Neo4jLoader) LoadVertices(ctx context.Context, vertices []graph.PlainVertex) error {
	for i, batch := range VertexBatches(vertices, l.batchSize) {
		if err := l.write(ctx, mergeVerticesQuery, map[string]interface{}{"rows": batch}); err != nil {
			return errors.Wrapf(err, "vertex batch %d", i)
		}
	}
	l.logger.WithField("vertices", len(vertices)).Info("Loaded vertices")
	return nil
}

// LoadEdges creates the edges of one partition in batches. Each edge keeps
// its list position as seq, which is the temporal order for dynamic edges.
func (l *Neo4jLoader) LoadEdges(ctx context.Context, partition string, edges [][2]string) error {
	for i, batch := range EdgeBatches(edges, l.batchSize) {
		params := map[string]interface{}{"rows": batch, "partition": partition}
		if err := l.write(ctx, createEdgesQuery, params); err != nil {
			return errors.Wrapf(err, "%s edge batch %d", partition, i)
		}
	}
	l.logger.WithFields(logrus.Fields{
		"partition": partition,
		"edges":     len(edges),
	}).Info("Loaded edges")
	return nil
}

func (l *Neo4jLoader) write(ctx context.Context, query string, params map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session := l.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})
	return err
}

// VertexBatches splits vertices into UNWIND parameter rows
func VertexBatches(vertices []graph.PlainVertex, size int) [][]interface{} {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]interface{}
	for start := 0; start < len(vertices); start += size {
		end := min(start+size, len(vertices))
		batch := make([]interface{}, 0, end-start)
		for _, v := range vertices[start:end] {
			batch = append(batch, map[string]interface{}{"id": v.ID, "type": v.Prefix})
		}
		batches = append(batches, batch)
	}
	return batches
}

// EdgeBatches splits edges into UNWIND parameter rows
func EdgeBatches(edges [][2]string, size int) [][]interface{} {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]interface{}
	for start := 0; start < len(edges); start += size {
		end := min(start+size, len(edges))
		batch := make([]interface{}, 0, end-start)
		for i, e := range edges[start:end] {
			batch = append(batch, map[string]interface{}{
				"src": e[0],
				"dst": e[1],
				"seq": int64(start + i),
			})
		}
		batches = append(batches, batch)
	}
	return batches
}
