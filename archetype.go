package bitecs

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/rotisserie/eris"
)

// templateEntry is one component of an entity archetype with its default
// properties, already validated against the component type.
type templateEntry struct {
	id    ComponentID
	name  string
	props json.RawMessage
}

// template is a named entity archetype: an ordered list of components.
type template struct {
	name    string
	entries []templateEntry
}

func (t *template) has(component string) bool {
	for _, entry := range t.entries {
		if entry.name == component {
			return true
		}
	}
	return false
}

// ParseTemplates is LoadTemplates over an in-memory document.
func (r *Registry) ParseTemplates(data []byte) error {
	return r.LoadTemplates(bytes.NewReader(data))
}

// LoadTemplates reads entity archetypes from a JSON document of the form
//
//	{"<archetype>": {"<component>": {<properties>}, ...}, ...}
//
// Component order is kept. Every property object is decoded into its
// component type right away, so unknown components or fields fail here and
// not when an entity is created.
func (r *Registry) LoadTemplates(rd io.Reader) error {
	if r.frozen {
		return eris.Wrap(ErrRegistryFrozen, "loading templates")
	}
	dec := json.NewDecoder(rd)
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		name, err := expectKey(dec)
		if err != nil {
			return err
		}
		tmpl, err := r.parseTemplate(dec, name)
		if err != nil {
			return err
		}
		if _, err := r.templates.Register(name, tmpl); err != nil {
			return eris.Wrapf(err, "registering archetype %q", name)
		}
	}
	return expectDelim(dec, '}')
}

func (r *Registry) parseTemplate(dec *json.Decoder, name string) (template, error) {
	tmpl := template{name: name}
	if err := expectDelim(dec, '{'); err != nil {
		return tmpl, eris.Wrapf(err, "archetype %q", name)
	}
	for dec.More() {
		component, err := expectKey(dec)
		if err != nil {
			return tmpl, eris.Wrapf(err, "archetype %q", name)
		}
		var props json.RawMessage
		if err := dec.Decode(&props); err != nil {
			return tmpl, eris.Wrapf(err, "archetype %q component %q", name, component)
		}
		id, ok := r.ComponentID(component)
		if !ok {
			return tmpl, eris.Wrapf(UnknownComponentError{Name: component}, "archetype %q", name)
		}
		if tmpl.has(component) {
			return tmpl, eris.Errorf("archetype %q lists component %q twice", name, component)
		}
		info := r.component(id)
		probe := reflect.New(info.elem.Type()).Interface()
		if err := info.decode(probe, props); err != nil {
			return tmpl, eris.Wrapf(err, "archetype %q component %q", name, component)
		}
		tmpl.entries = append(tmpl.entries, templateEntry{id: id, name: component, props: props})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return tmpl, eris.Wrapf(err, "archetype %q", name)
	}
	return tmpl, nil
}

// Archetypes returns the loaded archetype names in load order.
func (r *Registry) Archetypes() []string {
	names := make([]string, 0, r.templates.Len())
	r.templates.Each(func(_ int, t *template) {
		names = append(names, t.name)
	})
	return names
}

// ArchetypeComponents returns the component names of an archetype in
// declaration order.
func (r *Registry) ArchetypeComponents(name string) ([]string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tmpl.entries))
	for i, entry := range tmpl.entries {
		names[i] = entry.name
	}
	return names, nil
}

func (r *Registry) template(name string) (*template, error) {
	idx, ok := r.templates.GetIndex(name)
	if !ok {
		return nil, UnknownArchetypeError{Name: name}
	}
	return r.templates.GetItem(idx), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "reading templates")
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return eris.Errorf("reading templates: expected %q, got %v", want, tok)
	}
	return nil
}

func expectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", eris.Wrap(err, "reading templates")
	}
	key, ok := tok.(string)
	if !ok {
		return "", eris.Errorf("reading templates: expected a name, got %v", tok)
	}
	return key, nil
}
