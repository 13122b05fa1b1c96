package graph

import "github.com/pkg/errors"

var (
	// ErrMalformedID is returned for sparse ids that cannot form a dense id
	ErrMalformedID = errors.New("malformed sparse id")

	// ErrRegistryExhausted is returned when hash mode cannot find a free dense id
	ErrRegistryExhausted = errors.New("dense id registry exhausted")

	// ErrIDCollision is returned when a passthrough id is already assigned in hash mode
	ErrIDCollision = errors.New("dense id already assigned")

	// ErrUnknownEntity is returned for entity types outside the fixed enumeration
	ErrUnknownEntity = errors.New("unknown entity type")

	// ErrUnknownRelation is returned for relation names without a code
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrMissingColumn is returned when an input table lacks a required column
	ErrMissingColumn = errors.New("missing column")

	// ErrVertexTableMissing is returned when a dynamic edge join has no vertex table
	ErrVertexTableMissing = errors.New("vertex table not transformed")

	// ErrUnsupportedScaleFactor is returned for scale factors without a bit width
	ErrUnsupportedScaleFactor = errors.New("unsupported scale factor")
)
