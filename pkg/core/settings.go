package core

// Settings are the format constants shared by the TeX parser and serializer.
type Settings struct {
	QuestionNameLength int
	ImageFormats       []string
	Newline            string
	CategoryFromTitle  bool
	DefaultCategory    string
	MacroFile          string
	CorporateFile      string
	QuizFile           string
	ImageFolder        string
}

// DefaultSettings returns the stock format settings.
func DefaultSettings() Settings {
	return Settings{
		QuestionNameLength: 50,
		ImageFormats:       []string{"png", "jpg", "gif"},
		Newline:            "\r\n",
		CategoryFromTitle:  false,
		DefaultCategory:    "QuestionTeX import",
		MacroFile:          "MoodleQuiz_Macros.tex",
		CorporateFile:      "MoodleQuiz_Corporate.tex",
		QuizFile:           "MoodleQuiz.tex",
		ImageFolder:        "images/",
	}
}
