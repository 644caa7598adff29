package api

// ALPS (Application-Level Profile Semantics) documents served under /profile/{rel}.

type alpsDoc struct {
	Format string `json:"format"`
	Value  string `json:"value"`
}

type alpsDescriptor struct {
	ID          string           `json:"id,omitempty"`
	Href        string           `json:"href,omitempty"`
	Name        string           `json:"name,omitempty"`
	Type        string           `json:"type,omitempty"`
	Rt          string           `json:"rt,omitempty"`
	Doc         *alpsDoc         `json:"doc,omitempty"`
	Descriptors []alpsDescriptor `json:"descriptor,omitempty"`
}

type alpsBody struct {
	Version     string           `json:"version"`
	Descriptors []alpsDescriptor `json:"descriptor"`
}

type alpsDocument struct {
	Alps alpsBody `json:"alps"`
}

func semantic(name string) alpsDescriptor {
	return alpsDescriptor{Name: name, Type: "SEMANTIC"}
}

func documented(name, doc string) alpsDescriptor {
	d := semantic(name)
	d.Doc = &alpsDoc{Format: "TEXT", Value: doc}
	return d
}

func (res *Resource[T]) alps(base string) alpsDocument {
	representation := res.ItemRel + "-representation"
	rt := "#" + representation

	props := make([]alpsDescriptor, 0, len(res.Repo.Properties()))
	for _, p := range res.Repo.Properties() {
		props = append(props, semantic(p))
	}

	paging := []alpsDescriptor{
		documented("page", "The page to return."),
		documented("size", "The size of the page to return."),
		documented("sort", "The sorting criteria to use to calculate the content of the page."),
	}

	descriptors := []alpsDescriptor{
		{ID: representation, Href: base + "/profile/" + res.Rel, Descriptors: props},
		{ID: "get-" + res.Rel, Name: res.Rel, Type: "SAFE", Rt: rt, Descriptors: paging},
		{ID: "create-" + res.Rel, Name: res.Rel, Type: "UNSAFE", Rt: rt},
		{ID: "get-" + res.ItemRel, Name: res.ItemRel, Type: "SAFE", Rt: rt},
		{ID: "update-" + res.ItemRel, Name: res.ItemRel, Type: "IDEMPOTENT", Rt: rt},
		{ID: "patch-" + res.ItemRel, Name: res.ItemRel, Type: "UNSAFE", Rt: rt},
		{ID: "delete-" + res.ItemRel, Name: res.ItemRel, Type: "IDEMPOTENT", Rt: rt},
	}
	for _, s := range res.Searches {
		descriptors = append(descriptors, alpsDescriptor{
			Name:        s.Name,
			Type:        "SAFE",
			Descriptors: []alpsDescriptor{semantic(s.Param)},
		})
	}

	return alpsDocument{Alps: alpsBody{Version: "1.0", Descriptors: descriptors}}
}
