package domain

import "time"

// NodeKind identifies the level of a catalog node. The catalog is a fixed
// four-level hierarchy: Subject -> SubSubject -> Chapter -> {Note | MCQSet}.
type NodeKind int

const (
	KindSubject NodeKind = iota + 1
	KindSubSubject
	KindChapter
	KindNote
	KindMCQSet
)

func (k NodeKind) String() string {
	switch k {
	case KindSubject:
		return "subject"
	case KindSubSubject:
		return "subSubject"
	case KindChapter:
		return "chapter"
	case KindNote:
		return "note"
	case KindMCQSet:
		return "mcqSet"
	}
	return "unknown"
}

// Subject is a top-level catalog entry. Its ID is unique among subjects but
// not globally; full identity is the path from the root.
type Subject struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	SubSubjects []SubSubject `json:"subSubjects"`
}

// SubSubject groups chapters under a subject.
type SubSubject struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is the innermost grouping; its children are the leaf resources.
type Chapter struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Notes   []Note   `json:"notes"`
	MCQSets []MCQSet `json:"mcqSets"`
}

// Note is a viewable study material. Note IDs are globally unique.
type Note struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	PDFURL    string    `json:"pdfUrl"`
	IsPublic  bool      `json:"isPublic"`
	ChapterID string    `json:"chapterId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MCQ is a single multiple-choice question. CorrectOptionIndex is the
// authoritative answer key; it never comes from client input.
type MCQ struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// MCQSet is an ordered collection of MCQs attached to a chapter.
type MCQSet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Questions []MCQ  `json:"questions"`
}

// Catalog is the full content tree plus the dated question-of-the-day
// collection. It is an immutable snapshot: resolvers and engines read it,
// only editors (outside this service) replace it.
type Catalog struct {
	Subjects  []Subject          `json:"subjects"`
	Questions []QuestionOfTheDay `json:"questions"`
}

// FindMCQSet scans the tree for a set by its ID.
func (c Catalog) FindMCQSet(setID string) (MCQSet, bool) {
	for si := range c.Subjects {
		for ssi := range c.Subjects[si].SubSubjects {
			for ci := range c.Subjects[si].SubSubjects[ssi].Chapters {
				chapter := &c.Subjects[si].SubSubjects[ssi].Chapters[ci]
				for mi := range chapter.MCQSets {
					if chapter.MCQSets[mi].ID == setID {
						return chapter.MCQSets[mi], true
					}
				}
			}
		}
	}
	return MCQSet{}, false
}

// FindQuestion returns the question-of-the-day with the given ID.
func (c Catalog) FindQuestion(questionID string) (QuestionOfTheDay, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == questionID {
			return c.Questions[i], true
		}
	}
	return QuestionOfTheDay{}, false
}

// QuestionForDate returns the question published for the given calendar
// date (YYYY-MM-DD).
func (c Catalog) QuestionForDate(date string) (QuestionOfTheDay, bool) {
	for i := range c.Questions {
		if c.Questions[i].Date == date {
			return c.Questions[i], true
		}
	}
	return QuestionOfTheDay{}, false
}

// Node is a closed tagged variant over the catalog levels; exactly one of
// the pointer fields matching Kind is set. PathResolver dispatches on Kind
// instead of probing fields.
type Node struct {
	Kind       NodeKind
	Subject    *Subject
	SubSubject *SubSubject
	Chapter    *Chapter
	Note       *Note
	MCQSet     *MCQSet
}

// ID returns the node's sibling-unique identifier.
func (n Node) ID() string {
	switch n.Kind {
	case KindSubject:
		return n.Subject.ID
	case KindSubSubject:
		return n.SubSubject.ID
	case KindChapter:
		return n.Chapter.ID
	case KindNote:
		return n.Note.ID
	case KindMCQSet:
		return n.MCQSet.ID
	}
	return ""
}

// Name returns the node's display name.
func (n Node) Name() string {
	switch n.Kind {
	case KindSubject:
		return n.Subject.Name
	case KindSubSubject:
		return n.SubSubject.Name
	case KindChapter:
		return n.Chapter.Name
	case KindNote:
		return n.Note.Name
	case KindMCQSet:
		return n.MCQSet.Name
	}
	return ""
}
