package app

import (
	"studyhub-service/internal/domain"
)

// ResolvePath walks slug segments from the catalog root. The virtual root's
// children are the subjects; each level below exposes exactly one children
// collection (subject -> sub-subjects, sub-subject -> chapters, chapter ->
// notes and MCQ sets). On success it returns the resolved node and the
// chain of visited nodes, root-first, ending with the node itself — the
// caller uses the chain for breadcrumbs. Any unmatched segment returns
// ErrNotFound with no partial result. Resolution never mutates the tree.
func ResolvePath(catalog domain.Catalog, segments []string) (domain.Node, []domain.Node, error) {
	if len(segments) == 0 {
		return domain.Node{}, nil, domain.ErrNotFound
	}

	chain := make([]domain.Node, 0, len(segments))

	node, ok := findSubject(catalog.Subjects, segments[0])
	if !ok {
		return domain.Node{}, nil, domain.ErrNotFound
	}
	chain = append(chain, node)

	for _, segment := range segments[1:] {
		child, ok := childByID(node, segment)
		if !ok {
			return domain.Node{}, nil, domain.ErrNotFound
		}
		node = child
		chain = append(chain, node)
	}
	return node, chain, nil
}

func findSubject(subjects []domain.Subject, id string) (domain.Node, bool) {
	for i := range subjects {
		if subjects[i].ID == id {
			return domain.Node{Kind: domain.KindSubject, Subject: &subjects[i]}, true
		}
	}
	return domain.Node{}, false
}

// childByID returns the first child with a matching ID. Sibling IDs are
// unique by catalog invariant; if that is ever violated, first match in
// insertion order keeps resolution deterministic.
func childByID(node domain.Node, id string) (domain.Node, bool) {
	switch node.Kind {
	case domain.KindSubject:
		for i := range node.Subject.SubSubjects {
			if node.Subject.SubSubjects[i].ID == id {
				return domain.Node{Kind: domain.KindSubSubject, SubSubject: &node.Subject.SubSubjects[i]}, true
			}
		}
	case domain.KindSubSubject:
		for i := range node.SubSubject.Chapters {
			if node.SubSubject.Chapters[i].ID == id {
				return domain.Node{Kind: domain.KindChapter, Chapter: &node.SubSubject.Chapters[i]}, true
			}
		}
	case domain.KindChapter:
		for i := range node.Chapter.Notes {
			if node.Chapter.Notes[i].ID == id {
				return domain.Node{Kind: domain.KindNote, Note: &node.Chapter.Notes[i]}, true
			}
		}
		for i := range node.Chapter.MCQSets {
			if node.Chapter.MCQSets[i].ID == id {
				return domain.Node{Kind: domain.KindMCQSet, MCQSet: &node.Chapter.MCQSets[i]}, true
			}
		}
	}
	// Notes and MCQ sets are leaves.
	return domain.Node{}, false
}
