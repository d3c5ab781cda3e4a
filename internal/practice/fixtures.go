package practice

// Default returns the sample modules served in development.
func Default() *Fixtures {
	return NewFixtures(
		Module{
			ID:          "resume-basics",
			Title:       "Resume basics",
			Description: "What belongs on a one-page resume.",
			Questions: []Question{
				{
					ID:      "rb-1",
					Kind:    SingleChoice,
					Prompt:  "Which section should come first on a student resume?",
					Options: []string{"Hobbies", "Header with contact details", "References"},
					Answer:  1,
				},
				{
					ID:      "rb-2",
					Kind:    MultiChoice,
					Prompt:  "Which of these are required in the header?",
					Options: []string{"Full name", "Date of birth", "Email", "Photo"},
					Answer:  []int{0, 2},
				},
				{
					ID:     "rb-3",
					Kind:   ShortText,
					Prompt: "What file format do most applicant tracking systems accept?",
					Answer: "PDF",
				},
			},
		},
		Module{
			ID:          "interview-prep",
			Title:       "Interview preparation",
			Description: "Common behavioural questions.",
			Questions: []Question{
				{
					ID:      "ip-1",
					Kind:    SingleChoice,
					Prompt:  "STAR stands for Situation, Task, Action and ...",
					Options: []string{"Result", "Review", "Reason"},
					Answer:  0,
				},
			},
		},
	)
}
