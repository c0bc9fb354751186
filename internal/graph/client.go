// Package graph exports finished runs into a property graph so the generated
// account network and its labeled alert subgraphs can be inspected with
// Cypher. Only writes are needed; analysis happens in the database.
package graph

import (
	"context"
	"errors"
)

// Client is the minimal contract the exporter needs from the underlying graph
// database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
