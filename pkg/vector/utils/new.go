// Package vectorutils builds vector drivers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vector/chroma"
	"github.com/papercomputeco/shelf/pkg/vector/inmemory"
	"github.com/papercomputeco/shelf/pkg/vector/pgvector"
	"github.com/papercomputeco/shelf/pkg/vector/qdrant"
	"github.com/papercomputeco/shelf/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// TargetURL is the server address, DSN or file path, depending on the provider.
	TargetURL string

	// Collection names the collection or table documents are stored in.
	Collection string

	// Dimensions is required by drivers that declare the vector size up front.
	Dimensions uint

	// APIKey is used by hosted Qdrant.
	APIKey string

	Logger *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "", "inmemory":
		return inmemory.NewDriver(), nil
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL:            o.TargetURL,
			CollectionName: o.Collection,
		}, o.Logger)
	case "sqlite", "sqlitevec":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.TargetURL,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.TargetURL,
			APIKey:         o.APIKey,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "pgvector":
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.TargetURL,
			TableName:  o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
