package cli

import "quiz-progress-service/internal/domain"

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Demo Learner", Email: "learner@example.com", Role: domain.RoleLearner},
		{ID: 2, Name: "Demo Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
	}
}

func strPtr(s string) *string { return &s }

// sampleQuestions is a small Spanish vocabulary bank covering every level.
func sampleQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{ID: 1, Level: domain.LevelEasy, Prompt: "What does \"hola\" mean?", OptionA: "Goodbye", OptionB: "Hello", OptionC: "Thanks", OptionD: "Please", CorrectOption: domain.OptionB},
		{ID: 2, Level: domain.LevelEasy, Prompt: "Translate \"cat\".", OptionA: "gato", OptionB: "perro", OptionC: "pájaro", OptionD: "pez", CorrectOption: domain.OptionA},
		{ID: 3, Level: domain.LevelEasy, Prompt: "Which word means \"water\"?", OptionA: "leche", OptionB: "pan", OptionC: "agua", OptionD: "vino", CorrectOption: domain.OptionC},
		{ID: 4, Level: domain.LevelEasy, Prompt: "What is \"rojo\"?", OptionA: "Blue", OptionB: "Green", OptionC: "Yellow", OptionD: "Red", CorrectOption: domain.OptionD},
		{ID: 5, Level: domain.LevelEasy, Prompt: "Translate \"thank you\".", OptionA: "de nada", OptionB: "gracias", OptionC: "perdón", OptionD: "lo siento", CorrectOption: domain.OptionB},
		{ID: 6, Level: domain.LevelEasy, Prompt: "What number is \"tres\"?", OptionA: "3", OptionB: "2", OptionC: "13", OptionD: "30", CorrectOption: domain.OptionA},
		{ID: 7, Level: domain.LevelIntermediate, Prompt: "Choose the correct form: Yo ___ estudiante.", OptionA: "es", OptionB: "estoy", OptionC: "soy", OptionD: "eres", CorrectOption: domain.OptionC, Explanation: strPtr("Ser is used for identity.")},
		{ID: 8, Level: domain.LevelIntermediate, Prompt: "Past tense of \"comer\" for nosotros:", OptionA: "comemos", OptionB: "comimos", OptionC: "comíamos", OptionD: "comeremos", CorrectOption: domain.OptionB},
		{ID: 9, Level: domain.LevelIntermediate, Prompt: "\"Biblioteca\" means:", OptionA: "Bookstore", OptionB: "Bible", OptionC: "Library", OptionD: "Office", CorrectOption: domain.OptionC, Explanation: strPtr("A bookstore is a librería.")},
		{ID: 10, Level: domain.LevelIntermediate, Prompt: "Which is a reflexive verb?", OptionA: "levantarse", OptionB: "correr", OptionC: "hablar", OptionD: "vivir", CorrectOption: domain.OptionA},
		{ID: 11, Level: domain.LevelHard, Prompt: "Complete: Espero que tú ___ bien.", OptionA: "estás", OptionB: "estarás", OptionC: "estabas", OptionD: "estés", CorrectOption: domain.OptionD, Explanation: strPtr("Esperar que triggers the subjunctive.")},
		{ID: 12, Level: domain.LevelHard, Prompt: "Si yo ___ rico, viajaría.", OptionA: "soy", OptionB: "fuera", OptionC: "sería", OptionD: "fui", CorrectOption: domain.OptionB},
		{ID: 13, Level: domain.LevelHard, Prompt: "\"Echar de menos\" means:", OptionA: "To throw away", OptionB: "To miss someone", OptionC: "To subtract", OptionD: "To forget", CorrectOption: domain.OptionB},
		{ID: 14, Level: domain.LevelHard, Prompt: "Choose the correct pronoun order: ___ lo di.", OptionA: "Le", OptionB: "Les", OptionC: "Se", OptionD: "Me lo", CorrectOption: domain.OptionC, Explanation: strPtr("Le becomes se before lo.")},
	}
}
