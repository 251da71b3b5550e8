package models

// Method is a revision technique used during a session.
type Method string

const (
	MethodReadingNotes    Method = "Reading notes"
	MethodWritingNotes    Method = "Writing notes"
	MethodBlurting        Method = "Blurting"
	MethodFlashcards      Method = "Flashcards"
	MethodExamQuestions   Method = "Exam questions"
	MethodMindMaps        Method = "Mind maps"
	MethodTeachingSomeone Method = "Teaching someone"
	MethodMarkingAnswers  Method = "Marking answers"
)

// Methods lists every known revision method in display order.
var Methods = []Method{
	MethodReadingNotes,
	MethodWritingNotes,
	MethodBlurting,
	MethodFlashcards,
	MethodExamQuestions,
	MethodMindMaps,
	MethodTeachingSomeone,
	MethodMarkingAnswers,
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// HasMethod reports whether methods contains m.
func HasMethod(methods []Method, m Method) bool {
	for _, x := range methods {
		if x == m {
			return true
		}
	}
	return false
}
