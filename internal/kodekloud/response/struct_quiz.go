package response

// Quiz is an element of /api/quizzes/all
type Quiz struct {
	ID        ObjectID          `json:"_id"`
	Questions map[string]string `json:"questions"`
	Name      string            `json:"name"`
	Topic     string            `json:"topic"`
	ProjectID string            `json:"projectId"`
	Order     ID                `json:"order"`
}

// QuizQuestion is /api/questions/question?id=
type QuizQuestion struct {
	ID                ObjectID          `json:"_id"`
	Type              int               `json:"type"`
	CorrectAnswers    []string          `json:"correctAnswers"`
	Code              map[string]string `json:"code"`
	Question          string            `json:"question"`
	Answers           []string          `json:"answers"`
	Labels            []string          `json:"labels"`
	DocumentationLink string            `json:"documentationLink"`
	Explanation       string            `json:"explanation"`
	Topic             string            `json:"topic"`
}
