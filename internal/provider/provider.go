package provider

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/calvinalkan/shelter/internal/logging"
	"github.com/calvinalkan/shelter/internal/router"
	"github.com/calvinalkan/shelter/internal/schema"
	"github.com/calvinalkan/shelter/internal/store"
)

// Provider is the capability set callers depend on.
type Provider interface {
	Query(ctx context.Context, uri string, opts QueryOptions) (*Cursor, error)
	Insert(ctx context.Context, uri string, values Values) (string, error)
	Update(ctx context.Context, uri string, values Values, selection string, selectionArgs ...any) (int64, error)
	Delete(ctx context.Context, uri string, selection string, selectionArgs ...any) (int64, error)
	TypeOf(uri string) (string, error)
}

// Store is the part of [store.Store] the provider needs.
type Store interface {
	Readable(ctx context.Context) (store.Reader, error)
	Writable(ctx context.Context) (store.Writer, error)
}

// Routes returns the registrations for the pets collection and its items.
func Routes() []router.Route {
	return []router.Route{
		{Pattern: schema.PathPets, Kind: router.Collection},
		{Pattern: schema.PathPets + "/#", Kind: router.Item},
	}
}

// NewRouter builds the pets router for authority.
func NewRouter(authority string) (*router.Router, error) {
	return router.New(authority, Routes()...)
}

// Option configures a PetProvider.
type Option func(*PetProvider)

// WithLogger sets the operation logger. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(p *PetProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// PetProvider mediates between identifiers and the pets table.
//
// It holds no row state: every call reads or writes the store directly.
// Calls block until the store answers or ctx is done. Nothing is retried.
type PetProvider struct {
	store  Store
	router *router.Router
	logger *slog.Logger
}

var _ Provider = (*PetProvider)(nil)

// New returns a provider over st that classifies identifiers with rt.
// rt must not be modified afterwards.
func New(st Store, rt *router.Router, opts ...Option) *PetProvider {
	p := &PetProvider{
		store:  st,
		router: rt,
		logger: logging.Discard(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Router returns the router the provider dispatches with.
func (p *PetProvider) Router() *router.Router {
	return p.router
}

// TypeOf returns [schema.CollectionType] or [schema.ItemType].
func (p *PetProvider) TypeOf(uri string) (string, error) {
	match := p.router.Match(uri)

	switch match.Kind {
	case router.Collection:
		return schema.CollectionType, nil
	case router.Item:
		return schema.ItemType, nil
	default:
		return "", withContext(ErrUnsupportedResource, "type", uri)
	}
}

// route is a classified identifier plus the parsed item id.
type route struct {
	match router.Match
	id    int64
}

// resolve classifies uri and parses the item id. It rejects unmatched
// identifiers and ids that do not fit in an int64.
func (p *PetProvider) resolve(uri string) (route, error) {
	match := p.router.Match(uri)

	switch match.Kind {
	case router.Collection:
		return route{match: match}, nil
	case router.Item:
		id, err := strconv.ParseInt(match.LastSegment(), 10, 64)
		if err != nil || id < 0 {
			return route{}, ErrMalformedIdentifier
		}

		return route{match: match, id: id}, nil
	default:
		return route{}, ErrUnsupportedResource
	}
}

// itemSelection replaces any caller selection with the id filter.
func itemSelection(id int64) (string, []any) {
	return schema.ColumnID + " = ?", []any{id}
}

// opLogger returns a logger tagged with a fresh operation id so every line
// of one call can be correlated.
func (p *PetProvider) opLogger(op, uri string) *slog.Logger {
	return p.logger.With("op", op, "op_id", uuid.NewString(), "uri", uri)
}

// fail logs err and returns it with operation context attached.
func fail(logger *slog.Logger, err error, op, uri string) error {
	err = withContext(err, op, uri)
	logger.Warn("operation failed", "err", err)

	return err
}

// itemURI appends id to the collection path of m.
func (p *PetProvider) itemURI(m router.Match, id int64) string {
	return p.router.URI(strings.Join(m.Segments, "/") + "/" + strconv.FormatInt(id, 10))
}
