package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/domain"
	"github.com/jbweber/homelab/tripdesk/internal/repository"
)

// Options tunes the REST exporter.
type Options struct {
	Logger *slog.Logger

	// ReturnBodyOnCreate and ReturnBodyOnUpdate force a response body on or
	// off. Nil means a body is returned only when the request has an Accept header.
	ReturnBodyOnCreate *bool
	ReturnBodyOnUpdate *bool

	DefaultPageSize int
	MaxPageSize     int
}

// API holds the exported resources
type API struct {
	logger    *slog.Logger
	opts      Options
	resources []Exported
}

// NewAPI creates a new API exporting customers and trips from the datastore
func NewAPI(ds *datastore.Datastore, opts Options) *API {
	customers := repository.NewCustomerRepository(ds)
	trips := repository.NewTripRepository(ds)

	return New(opts,
		&Resource[domain.Customer]{
			Rel:     "customers",
			ItemRel: "customer",
			Repo:    customers,
			Searches: []Search[domain.Customer]{
				{Name: "findByLastName", Param: "name", Find: customers.FindByLastName},
			},
		},
		&Resource[domain.Trip]{
			Rel:     "trips",
			ItemRel: "trip",
			Repo:    trips,
			Searches: []Search[domain.Trip]{
				{Name: "findByDestination", Param: "destination", Find: trips.FindByDestination},
			},
		},
	)
}

// New creates an API for arbitrary resources. Resources are *Resource[T] values.
func New(opts Options, resources ...Exported) *API {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = 2000
	}
	opts.DefaultPageSize = min(opts.DefaultPageSize, opts.MaxPageSize)

	return &API{
		logger:    opts.Logger.With("component", "api"),
		opts:      opts,
		resources: resources,
	}
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/", a.rootHandler)

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", a.profileHandler)
		for _, res := range a.resources {
			r.Get("/"+res.rel(), a.alpsHandler(res))
		}
	})

	for _, res := range a.resources {
		r.Mount("/"+res.rel(), res.routes(a))
	}
}

func (a *API) returnBody(setting *bool, r *http.Request) bool {
	if setting != nil {
		return *setting
	}
	return r.Header.Get("Accept") != ""
}

// rootHandler handles GET / with a link to every collection.
func (a *API) rootHandler(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	links := Links{"profile": {Href: base + "/profile"}}
	for _, res := range a.resources {
		links[res.rel()] = Link{Href: base + "/" + res.rel() + pagingTemplate, Templated: true}
	}
	a.respondHAL(w, http.StatusOK, linksModel{Links: links})
}

// profileHandler handles GET /profile.
func (a *API) profileHandler(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	links := Links{"self": {Href: base + "/profile"}}
	for _, res := range a.resources {
		links[res.rel()] = Link{Href: base + "/profile/" + res.rel()}
	}
	a.respondHAL(w, http.StatusOK, linksModel{Links: links})
}

func (a *API) alpsHandler(res Exported) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respondJSON(w, http.StatusOK, alpsContentType, res.alps(baseURL(r)))
	}
}
