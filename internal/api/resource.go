package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/tripdesk/internal/domain"
	"github.com/jbweber/homelab/tripdesk/internal/repository"
)

// Search is a finder exported under /{rel}/search/{Name}. Param names the
// query parameter passed to Find; a missing parameter is passed as nil.
type Search[T any] struct {
	Name  string
	Param string
	Find  func(ctx context.Context, value *string) ([]T, error)
}

// Resource exports a repository as a HAL collection resource.
type Resource[T domain.Entity[T]] struct {
	Rel      string // collection relation and path segment, e.g. "customers"
	ItemRel  string // item relation, e.g. "customer"
	Repo     repository.Repository[T, int64]
	Searches []Search[T]
}

// Exported is the type-erased view of a Resource. It is implemented by *Resource[T] only.
type Exported interface {
	rel() string
	routes(a *API) http.Handler
	alps(base string) alpsDocument
}

func (res *Resource[T]) rel() string { return res.Rel }

func (res *Resource[T]) routes(a *API) http.Handler {
	h := &resourceHandler[T]{api: a, res: res}
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/search", h.searchIndex)
	r.Get("/search/{method}", h.search)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.replace)
	r.Patch("/{id}", h.patch)
	r.Delete("/{id}", h.delete)
	return r
}

type resourceHandler[T domain.Entity[T]] struct {
	api *API
	res *Resource[T]
}

func (h *resourceHandler[T]) collectionHref(r *http.Request) string {
	return baseURL(r) + "/" + h.res.Rel
}

func (h *resourceHandler[T]) itemHref(r *http.Request, id int64) string {
	return h.collectionHref(r) + "/" + strconv.FormatInt(id, 10)
}

func (h *resourceHandler[T]) model(r *http.Request, entity T) (entityModel, error) {
	self := Link{Href: h.itemHref(r, entity.GetID())}
	return newEntityModel(entity, Links{"self": self, h.res.ItemRel: self})
}

func (h *resourceHandler[T]) models(r *http.Request, entities []T) ([]entityModel, error) {
	models := make([]entityModel, 0, len(entities))
	for _, e := range entities {
		m, err := h.model(r, e)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// parseID resolves the {id} path parameter. An id that can't name an entity
// is reported as not found.
func (h *resourceHandler[T]) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// list handles GET /{rel}.
func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	pageable, err := h.api.parsePageable(r)
	if err != nil {
		h.api.respondError(w, http.StatusBadRequest, err)
		return
	}

	page, err := h.res.Repo.FindPage(r.Context(), pageable)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidPageable) {
			h.api.respondError(w, http.StatusBadRequest, err)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}

	content, err := h.models(r, page.Content)
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}

	collection := h.collectionHref(r)
	links := Links{
		"profile": {Href: baseURL(r) + "/profile/" + h.res.Rel},
	}
	if len(h.res.Searches) > 0 {
		links["search"] = Link{Href: collection + "/search"}
	}
	pageLinks(links, collection, hasPagingParams(r), page, pageable.Sort)

	h.api.respondHAL(w, http.StatusOK, collectionModel{
		Embedded: map[string][]entityModel{h.res.Rel: content},
		Links:    links,
		Page: &PageMetadata{
			Size:          page.Size,
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages,
			Number:        page.Number,
		},
	})
}

// create handles POST /{rel}.
func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	var entity T
	if err := decodeBody(r, &entity); err != nil {
		h.api.respondError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.res.Repo.Save(r.Context(), entity.WithID(0))
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}
	h.api.logger.Info("created entity", "rel", h.res.Rel, "id", saved.GetID())
	h.respondCreated(w, r, saved)
}

func (h *resourceHandler[T]) respondCreated(w http.ResponseWriter, r *http.Request, entity T) {
	w.Header().Set("Location", h.itemHref(r, entity.GetID()))
	if !h.api.returnBody(h.api.opts.ReturnBodyOnCreate, r) {
		w.WriteHeader(http.StatusCreated)
		return
	}
	h.respondEntity(w, r, http.StatusCreated, entity)
}

func (h *resourceHandler[T]) respondUpdated(w http.ResponseWriter, r *http.Request, entity T) {
	if !h.api.returnBody(h.api.opts.ReturnBodyOnUpdate, r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.respondEntity(w, r, http.StatusOK, entity)
}

func (h *resourceHandler[T]) respondEntity(w http.ResponseWriter, r *http.Request, status int, entity T) {
	m, err := h.model(r, entity)
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}
	h.api.respondHAL(w, status, m)
}

// get handles GET /{rel}/{id}.
func (h *resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.res.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}
	h.respondEntity(w, r, http.StatusOK, entity)
}

// replace handles PUT /{rel}/{id}: a full replacement, or a create when the id is free.
func (h *resourceHandler[T]) replace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var entity T
	if err := decodeBody(r, &entity); err != nil {
		h.api.respondError(w, http.StatusBadRequest, err)
		return
	}
	entity = entity.WithID(id)

	exists, err := h.res.Repo.ExistsByID(r.Context(), id)
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}

	if !exists {
		created, err := h.res.Repo.Create(r.Context(), entity)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				h.api.respondError(w, http.StatusConflict, err)
				return
			}
			h.api.respondInternalError(w, r, err)
			return
		}
		h.api.logger.Info("created entity", "rel", h.res.Rel, "id", created.GetID())
		h.respondCreated(w, r, created)
		return
	}

	updated, err := h.res.Repo.Save(r.Context(), entity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}
	h.respondUpdated(w, r, updated)
}

// patch handles PATCH /{rel}/{id}, merging the body onto the stored entity.
func (h *resourceHandler[T]) patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.res.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}

	if err := decodeBody(r, &entity); err != nil {
		h.api.respondError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.res.Repo.Save(r.Context(), entity.WithID(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}
	h.respondUpdated(w, r, updated)
}

// delete handles DELETE /{rel}/{id}.
func (h *resourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.res.Repo.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.api.respondInternalError(w, r, err)
		return
	}
	h.api.logger.Info("deleted entity", "rel", h.res.Rel, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// searchIndex handles GET /{rel}/search.
func (h *resourceHandler[T]) searchIndex(w http.ResponseWriter, r *http.Request) {
	if len(h.res.Searches) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	base := h.collectionHref(r) + "/search"
	links := Links{"self": {Href: base}}
	for _, s := range h.res.Searches {
		links[s.Name] = Link{Href: fmt.Sprintf("%s/%s{?%s}", base, s.Name, s.Param), Templated: true}
	}
	h.api.respondHAL(w, http.StatusOK, linksModel{Links: links})
}

// search handles GET /{rel}/search/{method}.
func (h *resourceHandler[T]) search(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	var found *Search[T]
	for i := range h.res.Searches {
		if h.res.Searches[i].Name == method {
			found = &h.res.Searches[i]
			break
		}
	}
	if found == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var value *string
	q := r.URL.Query()
	if q.Has(found.Param) {
		v := q.Get(found.Param)
		value = &v
	}

	entities, err := found.Find(r.Context(), value)
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}
	content, err := h.models(r, entities)
	if err != nil {
		h.api.respondInternalError(w, r, err)
		return
	}

	self := h.collectionHref(r) + "/search/" + found.Name
	if value != nil {
		self += "?" + url.Values{found.Param: {*value}}.Encode()
	}
	h.api.respondHAL(w, http.StatusOK, collectionModel{
		Embedded: map[string][]entityModel{h.res.Rel: content},
		Links:    Links{"self": {Href: self}},
	})
}
