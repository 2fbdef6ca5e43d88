package store

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// profileKeyPattern is the allow-list for free-text profile sub-fields. The
// key set under "perfil_vaga" varies between document revisions, so fields
// are discovered dynamically instead of hardcoded, but only keys matching
// this pattern are accepted.
var profileKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Requisition is a job opening with a free-text skill/behavior profile.
// Immutable once loaded.
type Requisition struct {
	ID     string
	Title  string
	Client string
	// Profile holds the string-valued sub-fields found under the profile
	// object, keyed by their source names.
	Profile map[string]string
	// ProfileText is the space-joined concatenation of all profile fields,
	// ordered by key for determinism.
	ProfileText string
}

// Competencies returns the dedicated technical/behavioral competencies field
// when the document carries one, falling back to the full profile text.
func (r *Requisition) Competencies() string {
	if text, ok := r.Profile["competencia_tecnicas_e_comportamentais"]; ok && text != "" {
		return text
	}
	return r.ProfileText
}

type Requisitions struct {
	Items []*Requisition
}

// NewRequisitions wraps the given items into a collection.
func NewRequisitions(items []*Requisition) *Requisitions {
	return &Requisitions{Items: items}
}

// LoadRequisitions parses the requisition store: a JSON document keyed by
// requisition id. Entries are returned sorted by id.
func LoadRequisitions(path string) (*Requisitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading requisitions %q: %v", ErrUnavailable, path, err)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: requisitions %q is not a JSON object", ErrUnavailable, path)
	}

	reqs := &Requisitions{}
	doc.ForEach(func(key, value gjson.Result) bool {
		reqs.Items = append(reqs.Items, parseRequisition(key.String(), value))
		return true
	})

	sort.Slice(reqs.Items, func(i, j int) bool { return reqs.Items[i].ID < reqs.Items[j].ID })

	return reqs, nil
}

func parseRequisition(id string, value gjson.Result) *Requisition {
	req := &Requisition{
		ID:      id,
		Title:   textAt(value, "informacoes_basicas.titulo_vaga"),
		Client:  textAt(value, "informacoes_basicas.cliente"),
		Profile: map[string]string{},
	}

	value.Get("perfil_vaga").ForEach(func(key, field gjson.Result) bool {
		name := key.String()
		if !profileKeyPattern.MatchString(name) || field.Type != gjson.String {
			return true
		}
		if text := strings.TrimSpace(field.String()); text != "" {
			req.Profile[name] = text
		}
		return true
	})

	keys := make([]string, 0, len(req.Profile))
	for key := range req.Profile {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, req.Profile[key])
	}
	req.ProfileText = strings.Join(parts, " ")

	return req
}

func (r *Requisitions) Len() int {
	return len(r.Items)
}

func (r *Requisitions) FindByID(id string) *Requisition {
	for _, req := range r.Items {
		if req.ID == id {
			return req
		}
	}
	return nil
}

// Search returns requisitions whose title, client, or id contains the term,
// case-insensitively. An empty term returns the whole collection.
func (r *Requisitions) Search(term string) *Requisitions {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return &Requisitions{Items: r.Items}
	}

	matched := &Requisitions{}
	for _, req := range r.Items {
		if strings.Contains(strings.ToLower(req.Title), term) ||
			strings.Contains(strings.ToLower(req.Client), term) ||
			strings.Contains(req.ID, term) {
			matched.Items = append(matched.Items, req)
		}
	}
	return matched
}
