package graph

import (
	"crypto/md5"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// idFieldWidth is the number of characters the sparse id occupies after the
// entity prefix. Sparse ids wider than the field pass through unchanged.
const idFieldWidth = 17

// DefaultMaxHashRetries bounds rehashing of a colliding id in hash mode
const DefaultMaxHashRetries = 1024

// RegistryConfig configures dense id assignment
type RegistryConfig struct {
	NumBits        int
	HashMode       bool
	Seed           uint64
	MaxHashRetries int
}

// DefaultRegistryConfig returns the configuration for scale factor 0.1
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		NumBits:        64,
		MaxHashRetries: DefaultMaxHashRetries,
	}
}

// RegistryConfigForScaleFactor selects the dense id width for a scale factor
func RegistryConfigForScaleFactor(sf string, hashMode bool) (RegistryConfig, error) {
	bits, ok := ScaleFactorBits[sf]
	if !ok {
		return RegistryConfig{}, errors.Wrapf(ErrUnsupportedScaleFactor, "scale factor %q", sf)
	}
	cfg := DefaultRegistryConfig()
	cfg.NumBits = bits
	cfg.HashMode = hashMode
	return cfg, nil
}

// Registry owns the sparse to dense id mapping. State is sharded by entity
// type; the hash-mode collision set is shared by all shards.
type Registry struct {
	cfg     RegistryConfig
	shards  map[EntityType]*registryShard
	modulus *big.Int

	hashMu sync.Mutex
	used   mapset.Set[DenseID]
	rng    *rand.Rand
}

type registryShard struct {
	mu       sync.Mutex
	ids      map[string]DenseID
	recorded map[string]DenseID
}

// NewRegistry creates an empty registry
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.NumBits <= 0 || cfg.NumBits > 64 {
		return nil, errors.Errorf("dense id width must be within 1..64 bits, got %d", cfg.NumBits)
	}
	if cfg.MaxHashRetries <= 0 {
		cfg.MaxHashRetries = DefaultMaxHashRetries
	}

	modulus := new(big.Int).Lsh(big.NewInt(1), uint(cfg.NumBits))
	modulus.Sub(modulus, big.NewInt(1))

	shards := make(map[EntityType]*registryShard, len(EntityTypes))
	for _, e := range EntityTypes {
		shards[e] = &registryShard{
			ids:      make(map[string]DenseID),
			recorded: make(map[string]DenseID),
		}
	}

	return &Registry{
		cfg:     cfg,
		shards:  shards,
		modulus: modulus,
		used:    mapset.NewThreadUnsafeSet[DenseID](),
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Config returns the registry configuration with defaults applied
func (r *Registry) Config() RegistryConfig {
	return r.cfg
}

// Resolve maps a sparse id of the given entity type to its dense id
func (r *Registry) Resolve(entity EntityType, sparse string) (DenseID, error) {
	return r.resolve(entity, sparse, false)
}

// ResolveAndRecord resolves like Resolve and records the mapping in the
// dictionary persisted at the end of a run.
func (r *Registry) ResolveAndRecord(entity EntityType, sparse string) (DenseID, error) {
	return r.resolve(entity, sparse, true)
}

func (r *Registry) resolve(entity EntityType, sparse string, record bool) (DenseID, error) {
	shard, ok := r.shards[entity]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownEntity, "%q", entity)
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	dense, ok := shard.ids[sparse]
	if !ok {
		var err error
		dense, err = r.densify(entity.Prefix(), sparse)
		if err != nil {
			return 0, errors.Wrapf(err, "resolve %s id %q", entity, sparse)
		}
		// Non-hash ids are a pure function of the input and need no memo.
		if r.cfg.HashMode {
			shard.ids[sparse] = dense
		}
	}

	if record {
		shard.recorded[sparse] = dense
	}
	metrics.IDsResolved.WithLabelValues(string(entity)).Inc()
	return dense, nil
}

func (r *Registry) densify(prefix, sparse string) (DenseID, error) {
	if sparse == "" {
		return 0, errors.Wrap(ErrMalformedID, "empty id")
	}

	pad := idFieldWidth - len(sparse)
	if pad < 0 {
		v, err := strconv.ParseUint(sparse, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedID, "wide id %q: %v", sparse, err)
		}
		if r.cfg.HashMode {
			return r.claim(DenseID(v), sparse)
		}
		return DenseID(v), nil
	}

	raw := prefix + strings.Repeat("0", pad) + sparse
	if r.cfg.HashMode {
		return r.hash(raw)
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedID, "%q: %v", sparse, err)
	}
	return DenseID(v), nil
}

func (r *Registry) hash(raw string) (DenseID, error) {
	r.hashMu.Lock()
	defer r.hashMu.Unlock()

	for attempt := 0; attempt <= r.cfg.MaxHashRetries; attempt++ {
		sum := md5.Sum([]byte(raw))
		v := new(big.Int).SetBytes(sum[:])
		v.Mod(v, r.modulus)

		dense := DenseID(v.Uint64())
		if !r.used.Contains(dense) {
			r.used.Add(dense)
			return dense, nil
		}

		metrics.HashCollisions.Inc()
		raw += strconv.Itoa(r.rng.IntN(10000))
	}

	return 0, errors.Wrapf(ErrRegistryExhausted, "no free %d-bit id after %d retries", r.cfg.NumBits, r.cfg.MaxHashRetries)
}

// claim takes a passthrough id in hash mode. A value already handed out to
// another pair or reserved from an earlier run cannot be taken twice.
func (r *Registry) claim(dense DenseID, sparse string) (DenseID, error) {
	r.hashMu.Lock()
	defer r.hashMu.Unlock()
	if r.used.Contains(dense) {
		return 0, errors.Wrapf(ErrIDCollision, "wide id %q", sparse)
	}
	r.used.Add(dense)
	return dense, nil
}

// Reserve marks dense ids as taken. Hashing skips them, and a wide id equal
// to a reserved one fails with ErrIDCollision.
func (r *Registry) Reserve(ids ...DenseID) {
	r.hashMu.Lock()
	defer r.hashMu.Unlock()
	for _, id := range ids {
		r.used.Add(id)
	}
}

// Dictionary returns a snapshot of every recorded sparse to dense mapping.
// Shards are merged in prefix order, so a sparse id recorded for several
// entity types keeps the mapping of the highest prefix.
func (r *Registry) Dictionary() map[string]DenseID {
	dict := make(map[string]DenseID)
	for _, e := range EntityTypes {
		shard := r.shards[e]
		shard.mu.Lock()
		for sparse, dense := range shard.recorded {
			dict[sparse] = dense
		}
		shard.mu.Unlock()
	}
	return dict
}

// Len returns the number of recorded mappings per entity type
func (r *Registry) Len(entity EntityType) int {
	shard, ok := r.shards[entity]
	if !ok {
		return 0
	}
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return len(shard.recorded)
}
