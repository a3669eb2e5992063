package handler

type createAssessmentRequest struct {
	Title           string `json:"title"            validate:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0,max=480"`
}

type updateAssessmentRequest struct {
	Title           string `json:"title"            validate:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0,max=480"`
}

type addQuestionRequest struct {
	Text          string   `json:"text"           validate:"required"`
	Kind          string   `json:"kind"           validate:"required,oneof=multiple_choice true_false short_text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        int      `json:"points"         validate:"required,gt=0"`
}
