package app

import (
	"context"

	"studyhub-service/internal/domain"
)

// Crumb is one breadcrumb hop along a resolved path.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ChildRef is a browsable child listing entry.
type ChildRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// BrowseView is what the presentation layer renders for a resolved path:
// breadcrumbs, the node itself, and either its children or the leaf
// payload. An empty Children slice is a valid page ("no materials"), not
// an error.
type BrowseView struct {
	Breadcrumbs []Crumb      `json:"breadcrumbs"`
	Kind        string       `json:"kind"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Children    []ChildRef   `json:"children,omitempty"`
	Note        *domain.Note `json:"note,omitempty"`
	MCQSetSize  int          `json:"mcqSetSize,omitempty"`
}

// BrowseService resolves catalog paths and gates notes behind the access
// chain.
type BrowseService struct {
	catalog CatalogRepository
	users   UserStore
}

func NewBrowseService(catalog CatalogRepository, users UserStore) *BrowseService {
	return &BrowseService{catalog: catalog, users: users}
}

// Browse resolves the segments and, for note leaves, enforces the access
// decision. Denied and missing resources both surface as errors the
// transport maps to the same not-found response.
func (s *BrowseService) Browse(ctx context.Context, userID string, segments []string) (BrowseView, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return BrowseView{}, err
	}
	node, chain, err := ResolvePath(catalog, segments)
	if err != nil {
		return BrowseView{}, err
	}

	view := BrowseView{
		Breadcrumbs: crumbs(chain),
		Kind:        node.Kind.String(),
		ID:          node.ID(),
		Name:        node.Name(),
	}

	switch node.Kind {
	case domain.KindSubject:
		for i := range node.Subject.SubSubjects {
			ss := &node.Subject.SubSubjects[i]
			view.Children = append(view.Children, ChildRef{ID: ss.ID, Name: ss.Name, Kind: domain.KindSubSubject.String()})
		}
	case domain.KindSubSubject:
		for i := range node.SubSubject.Chapters {
			ch := &node.SubSubject.Chapters[i]
			view.Children = append(view.Children, ChildRef{ID: ch.ID, Name: ch.Name, Kind: domain.KindChapter.String()})
		}
	case domain.KindChapter:
		view.Children = make([]ChildRef, 0, len(node.Chapter.Notes)+len(node.Chapter.MCQSets))
		for i := range node.Chapter.Notes {
			n := &node.Chapter.Notes[i]
			view.Children = append(view.Children, ChildRef{ID: n.ID, Name: n.Name, Kind: domain.KindNote.String()})
		}
		for i := range node.Chapter.MCQSets {
			m := &node.Chapter.MCQSets[i]
			view.Children = append(view.Children, ChildRef{ID: m.ID, Name: m.Name, Kind: domain.KindMCQSet.String()})
		}
	case domain.KindNote:
		principal, err := s.users.GetUser(ctx, userID)
		if err != nil {
			return BrowseView{}, err
		}
		if !CanViewNote(principal, *node.Note) {
			return BrowseView{}, domain.ErrPermissionDenied
		}
		view.Note = node.Note
	case domain.KindMCQSet:
		view.MCQSetSize = len(node.MCQSet.Questions)
	}
	return view, nil
}

func crumbs(chain []domain.Node) []Crumb {
	out := make([]Crumb, 0, len(chain))
	for _, node := range chain {
		out = append(out, Crumb{ID: node.ID(), Name: node.Name(), Kind: node.Kind.String()})
	}
	return out
}
