package app_test

import (
	"time"

	"studyhub-service/internal/domain"
)

// testCatalog mirrors a small real tree: two subjects, one empty chapter,
// one note-bearing chapter with a three-question set, and one dated
// question.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		Subjects: []domain.Subject{
			{
				ID:   "science",
				Name: "Science",
				SubSubjects: []domain.SubSubject{
					{
						ID:   "physics",
						Name: "Physics",
						Chapters: []domain.Chapter{
							{
								ID:   "motion",
								Name: "Motion",
							},
							{
								ID:   "waves",
								Name: "Waves",
								Notes: []domain.Note{
									{ID: "n-sound", Name: "Sound waves", Type: "pdf", PDFURL: "https://example.com/sound.pdf", IsPublic: false, ChapterID: "waves"},
									{ID: "n-light", Name: "Light waves", Type: "pdf", PDFURL: "https://example.com/light.pdf", IsPublic: true, ChapterID: "waves"},
								},
								MCQSets: []domain.MCQSet{
									{
										ID:   "set-waves",
										Name: "Waves basics",
										Questions: []domain.MCQ{
											{ID: "q1", Question: "Sound needs a medium?", Options: []string{"yes", "no"}, CorrectOptionIndex: 0},
											{ID: "q2", Question: "Light speed in vacuum (m/s)?", Options: []string{"3e8", "3e5", "3e6"}, CorrectOptionIndex: 0},
											{ID: "q3", Question: "Unit of frequency?", Options: []string{"watt", "hertz"}, CorrectOptionIndex: 1},
										},
									},
									{ID: "set-empty", Name: "Placeholder set"},
								},
							},
						},
					},
				},
			},
			{
				ID:   "maths",
				Name: "Maths",
			},
		},
		Questions: []domain.QuestionOfTheDay{
			{
				ID:       "qotd-1",
				Question: "What is 2 + 2?",
				Options: []domain.QotdOption{
					{ID: "a", Text: "4"},
					{ID: "b", Text: "5"},
				},
				CorrectOptionID: "a",
				Date:            "2024-01-01",
			},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
